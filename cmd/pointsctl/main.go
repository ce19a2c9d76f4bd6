package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/warp/shift-points/cli"
	"github.com/warp/shift-points/config"
	"github.com/warp/shift-points/logger"
	"github.com/warp/shift-points/rules"
	"github.com/warp/shift-points/store/sqlite"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", color.New(color.FgRed, color.Bold).Sprint("Error:"), err)
		os.Exit(1)
	}
}

func run() error {
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		color.NoColor = true
	}

	// Same configuration as the server: SHIFTPOINTS_DB_PATH, SHIFTPOINTS_RULE_SET, ...
	cfg, err := config.Load(context.Background())
	if err != nil {
		return err
	}

	if err := logger.InitWithWriter(os.Stderr, cfg.LogFormat); err != nil {
		return err
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		return err
	}

	rs, err := rules.Resolve(cfg.RuleSet, cfg.RulesPath)
	if err != nil {
		return err
	}

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer store.Close()
	logger.Named("pointsctl").Debug(context.Background(), "database opened",
		logger.String("db", cfg.DBPath),
		logger.String("rule_set", rs.Version),
	)

	app := &cli.App{Store: store, Rules: rs}
	return cli.NewRootCmd(app).Execute()
}
