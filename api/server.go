/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. Observe:    Structured request log + Prometheus request metrics
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/entries/*     Entry management
  /api/days/*        Computed daily totals
  /api/summary       Monthly rollup
  /api/preview       Draft computation
  /api/holidays/*    Holiday calendar
  /api/rules         Active rule set
  /api/export/*      CSV sheets
  /api/import/*      CSV upload
  /api/scenarios/*   Demo data
  /metrics           Prometheus scrape endpoint (when enabled)
  /healthz           Liveness + storage ping

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/warp/shift-points/logger"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.observe)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Route("/entries", func(r chi.Router) {
			r.Get("/", h.ListEntries)
			r.Post("/", h.CreateEntry)
			r.Get("/{id}", h.GetEntry)
			r.Put("/{id}", h.UpdateEntry)
			r.Delete("/{id}", h.DeleteEntry)
		})

		r.Route("/days", func(r chi.Router) {
			r.Get("/", h.GetDays)
			r.Get("/{date}", h.GetDay)
		})
		r.Get("/summary", h.GetSummary)
		r.Post("/preview", h.Preview)
		r.Get("/rules", h.GetRules)

		r.Route("/holidays", func(r chi.Router) {
			r.Get("/", h.ListHolidays)
			r.Post("/", h.CreateHoliday)
			r.Delete("/{id}", h.DeleteHoliday)
		})

		r.Route("/export", func(r chi.Router) {
			r.Get("/entries.csv", h.ExportEntries)
			r.Get("/daily.csv", h.ExportDaily)
		})
		r.Post("/import/entries.csv", h.ImportEntries)

		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
			r.Post("/reset", h.ResetDatabase)
		})
	})

	if h.Metrics.Enabled() {
		r.Method(http.MethodGet, "/metrics", h.Metrics.Handler())
	}
	r.Get("/healthz", h.Health)

	return r
}

// Health reports liveness, pinging the store when it supports it.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	type pinger interface {
		Ping(ctx context.Context) error
	}
	if p, ok := h.Store.(pinger); ok {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := p.Ping(ctx); err != nil {
			writeError(w, http.StatusServiceUnavailable, "Storage unavailable", err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "rule_set": h.Rules.Version})
}

// observe logs each request and records it in metrics, labelled by the
// matched route pattern rather than the raw path.
func (h *Handler) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		took := time.Since(start)

		h.Metrics.RecordHTTPRequest(route, r.Method, status, took)
		h.Log.Info(r.Context(), "request",
			logger.String("method", r.Method),
			logger.String("route", route),
			logger.Int("status", status),
			logger.Int("bytes", ww.BytesWritten()),
			logger.Duration("took", took),
			logger.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
