/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the shift points server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (defaults, YAML file, env), then apply flags
  2. Initialize logger
  3. Resolve the rule set (registered version or JSON file)
  4. Initialize SQLite store
  5. Create metrics manager and API handler
  6. Configure HTTP router, start the recompute scheduler
  7. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (overrides addr)
  -db      SQLite database path (overrides db_path)
           Use ":memory:" for in-memory database
  -rules   Rule set JSON file (overrides rules_path)

ENVIRONMENT:
  SHIFTPOINTS_CONFIG              optional YAML config file
  SHIFTPOINTS_ADDR, SHIFTPOINTS_DB_PATH, SHIFTPOINTS_LOG_LEVEL,
  SHIFTPOINTS_LOG_FORMAT, SHIFTPOINTS_RULE_SET, SHIFTPOINTS_RULES_PATH,
  SHIFTPOINTS_ALLOWED_ORIGINS, SHIFTPOINTS_METRICS_ENABLED,
  SHIFTPOINTS_RECOMPUTE_INTERVAL

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the recompute scheduler
  2. Stop accepting new connections
  3. Wait for active requests to complete (30s timeout)
  4. Close database connection

EXAMPLES:
  # Run with file database
  ./server -db="./data/points.db"

  # Run with in-memory database and JSON logs
  SHIFTPOINTS_LOG_FORMAT=json ./server -db=":memory:"

SEE ALSO:
  - config/config.go: Configuration layering
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/warp/shift-points/api"
	"github.com/warp/shift-points/config"
	"github.com/warp/shift-points/logger"
	"github.com/warp/shift-points/metrics"
	"github.com/warp/shift-points/rules"
	"github.com/warp/shift-points/store/sqlite"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// Flags
	port := flag.Int("port", 0, "HTTP server port (overrides config addr)")
	dbPath := flag.String("db", "", "SQLite database path (overrides config db_path)")
	rulesPath := flag.String("rules", "", "Rule set JSON file (overrides config rules_path)")
	flag.Parse()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	if *port != 0 {
		cfg.Addr = fmt.Sprintf(":%d", *port)
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	if *rulesPath != "" {
		cfg.RulesPath = *rulesPath
	}

	// Logger
	if err := logger.InitWithWriter(os.Stdout, cfg.LogFormat); err != nil {
		return err
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		return err
	}
	log := logger.Named("server")

	// Rule set
	rs, err := rules.Resolve(cfg.RuleSet, cfg.RulesPath)
	if err != nil {
		return err
	}
	log.Info(ctx, "rule set selected", logger.String("version", rs.Version))

	// Initialize store
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer store.Close()

	// Initialize handler
	m := metrics.NewManager(metrics.WithMetricsEnabled(cfg.MetricsEnabled))
	handler := api.NewHandler(store, rs, logger.Get(), m)

	// Create router
	router := api.NewRouter(handler, cfg.Origins())

	scheduler := api.NewRecomputeScheduler(handler)
	scheduler.CheckInterval = cfg.RecomputeInterval
	scheduler.Enabled = cfg.RecomputeInterval > 0
	scheduler.Start()
	defer scheduler.Stop()

	// Create server
	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	serveErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "server starting",
			logger.String("addr", cfg.Addr),
			logger.String("db", cfg.DBPath),
			logger.Bool("metrics", cfg.MetricsEnabled),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err, ok := <-serveErr:
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}
	}

	log.Info(ctx, "shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info(ctx, "server stopped")
	return nil
}
