/*
scheduler.go - Periodic month-to-date recompute

PURPOSE:
  Recomputes the current month in the background so the month-to-date
  gauge and the issue counters stay fresh even when nobody is querying
  the API. Entries added by import or by direct database edits show up
  in metrics within one interval.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Runs once immediately on Start, then on every tick
  - Recomputes the month containing Handler.Now(); when the month has
    just turned over, the previous month is recomputed once more so its
    final total is recorded
  - Keeps the last run for display
  - Stop/Start may be repeated; each Start gets a fresh stop channel

CONFIGURATION:
  - CheckInterval: How often to recompute (default: 15 minutes)
  - Enabled: Whether scheduler is active (default: true)

USAGE:
  scheduler := NewRecomputeScheduler(handler)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: compute(), shared with GET /api/days
  - metrics/prometheus.go: RecordScheduledRecompute
*/
package api

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/shift-points/engine"
	"github.com/warp/shift-points/logger"
)

// RecomputeRun describes one scheduled recompute.
type RecomputeRun struct {
	Month    engine.MonthKey `json:"month"`
	Total    decimal.Decimal `json:"total"`
	Days     int             `json:"days"`
	Issues   int             `json:"issues"`
	Error    string          `json:"error,omitempty"`
	Started  time.Time       `json:"started"`
	Duration time.Duration   `json:"duration"`
}

// RecomputeScheduler periodically recomputes the current month.
type RecomputeScheduler struct {
	Handler       *Handler
	CheckInterval time.Duration
	Enabled       bool

	log       logger.Logger
	ticker    *time.Ticker
	stop      chan struct{}
	wg        sync.WaitGroup
	mu        sync.Mutex
	lastMonth engine.MonthKey
	last      *RecomputeRun
}

// NewRecomputeScheduler creates a new scheduler.
func NewRecomputeScheduler(h *Handler) *RecomputeScheduler {
	return &RecomputeScheduler{
		Handler:       h,
		CheckInterval: 15 * time.Minute,
		Enabled:       true,
		log:           h.Log.Named("scheduler"),
	}
}

// Start begins the scheduler.
func (rs *RecomputeScheduler) Start() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	ctx := context.Background()
	if !rs.Enabled {
		rs.log.Info(ctx, "scheduler disabled, not starting")
		return
	}
	if rs.ticker != nil {
		return
	}

	rs.ticker = time.NewTicker(rs.CheckInterval)
	rs.stop = make(chan struct{})
	rs.wg.Add(1)
	go rs.run(rs.ticker, rs.stop)

	rs.log.Info(ctx, "scheduler started", logger.Duration("interval", rs.CheckInterval))
}

// Stop stops the scheduler and waits for an in-flight run to finish.
// A stopped scheduler may be started again.
func (rs *RecomputeScheduler) Stop() {
	rs.mu.Lock()
	ticker, stop := rs.ticker, rs.stop
	rs.ticker, rs.stop = nil, nil
	rs.mu.Unlock()

	if ticker == nil {
		return
	}
	ticker.Stop()
	close(stop)
	rs.wg.Wait()
	rs.log.Info(context.Background(), "scheduler stopped")
}

func (rs *RecomputeScheduler) run(ticker *time.Ticker, stop <-chan struct{}) {
	defer rs.wg.Done()

	// Run immediately on start
	rs.RunNow(context.Background())

	for {
		select {
		case <-ticker.C:
			rs.RunNow(context.Background())
		case <-stop:
			return
		}
	}
}

// RunNow recomputes the current month immediately and returns the run.
func (rs *RecomputeScheduler) RunNow(ctx context.Context) RecomputeRun {
	month := engine.DateOf(rs.Handler.Now()).MonthKey()

	rs.mu.Lock()
	previous := rs.lastMonth
	rs.lastMonth = month
	rs.mu.Unlock()

	if previous != (engine.MonthKey{}) && previous.Before(month) {
		rs.recompute(ctx, previous)
	}
	return rs.recompute(ctx, month)
}

func (rs *RecomputeScheduler) recompute(ctx context.Context, month engine.MonthKey) RecomputeRun {
	run := RecomputeRun{Month: month, Total: decimal.Zero, Started: time.Now()}

	result, err := rs.Handler.compute(ctx, engine.MonthPeriod(month))
	run.Duration = time.Since(run.Started)
	if err != nil {
		run.Error = err.Error()
		rs.log.Error(ctx, "scheduled recompute failed",
			logger.Stringer("month", month),
			logger.Error(err),
		)
	} else {
		if m, ok := result.Summary().Month(month); ok {
			run.Total = m.Total
		}
		run.Days = len(result.Days)
		run.Issues = len(result.Issues)
		rs.log.Debug(ctx, "scheduled recompute",
			logger.Stringer("month", month),
			logger.String("total", run.Total.String()),
			logger.Int("days", run.Days),
			logger.Int("issues", run.Issues),
		)
	}
	rs.Handler.Metrics.RecordScheduledRecompute(month, run.Total.InexactFloat64(), err)

	rs.mu.Lock()
	rs.last = &run
	rs.mu.Unlock()
	return run
}

// LastRun returns the most recent run, or nil before the first one.
func (rs *RecomputeScheduler) LastRun() *RecomputeRun {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	if rs.last == nil {
		return nil
	}
	run := *rs.last
	return &run
}

