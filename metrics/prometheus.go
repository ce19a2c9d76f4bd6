// Package metrics provides Prometheus metrics for the points service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/warp/shift-points/engine"
)

// Manager owns every Prometheus metric of the service. A nil or
// disabled Manager accepts all calls and records nothing.
type Manager struct {
	namespace      string
	latencyBuckets []float64
	enabled        bool
	registry       *prometheus.Registry

	// Computation
	computations       prometheus.Counter
	entriesComputed    prometheus.Counter
	daysComputed       prometheus.Counter
	floorsApplied      prometheus.Counter
	entryIssues        *prometheus.CounterVec
	computeDuration    prometheus.Histogram
	pointsByCategory   *prometheus.CounterVec
	lastComputeEntries prometheus.Gauge
	monthToDate        *prometheus.GaugeVec
	recomputeRuns      *prometheus.CounterVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

const engineSubsystem = "engine"

// Option configures a Manager.
type Option func(*Manager)

// WithMetricsEnabled turns recording on or off. /metrics stays mounted
// by the router only when enabled.
func WithMetricsEnabled(enabled bool) Option {
	return func(m *Manager) { m.enabled = enabled }
}

// WithRegistry registers and serves metrics from registry.
func WithRegistry(registry *prometheus.Registry) Option {
	return func(m *Manager) {
		if registry != nil {
			m.registry = registry
		}
	}
}

// WithNamespace replaces the "shiftpoints" metric prefix.
func WithNamespace(namespace string) Option {
	return func(m *Manager) {
		if namespace != "" {
			m.namespace = namespace
		}
	}
}

// WithLatencyBuckets sets the buckets shared by the computation and
// HTTP duration histograms.
func WithLatencyBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if len(buckets) > 0 {
			m.latencyBuckets = buckets
		}
	}
}

// NewManager creates a metrics manager. Without WithRegistry it uses a
// fresh registry, so several managers can coexist in tests.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:      "shiftpoints",
		latencyBuckets: prometheus.DefBuckets,
		enabled:        true,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.computations = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: engineSubsystem,
		Name:      "computations_total",
		Help:      "Total number of batch computations run",
	})

	m.entriesComputed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: engineSubsystem,
		Name:      "entries_total",
		Help:      "Total number of shift entries fed to the calculator",
	})

	m.daysComputed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: engineSubsystem,
		Name:      "days_total",
		Help:      "Total number of daily totals produced",
	})

	m.floorsApplied = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: engineSubsystem,
		Name:      "floors_applied_total",
		Help:      "Total number of daily totals raised to a category floor",
	})

	m.entryIssues = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: engineSubsystem,
		Name:      "entry_issues_total",
		Help:      "Per-entry issues by kind and severity (data quality)",
	}, []string{"kind", "severity"})

	m.computeDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: engineSubsystem,
		Name:      "compute_duration_seconds",
		Help:      "Duration of one batch computation",
		Buckets:   m.latencyBuckets,
	})

	m.pointsByCategory = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: engineSubsystem,
		Name:      "category_points_total",
		Help:      "Points credited per category across computations",
	}, []string{"category"})

	m.lastComputeEntries = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: engineSubsystem,
		Name:      "last_batch_entries",
		Help:      "Number of entries in the most recent computation",
	})

	m.monthToDate = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: engineSubsystem,
		Name:      "month_points",
		Help:      "Points accumulated in a calendar month at the last scheduled recompute",
	}, []string{"month"})

	m.recomputeRuns = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: engineSubsystem,
		Name:      "scheduled_recomputes_total",
		Help:      "Scheduled recomputes by outcome",
	}, []string{"outcome"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of HTTP requests by route, method and status",
	}, []string{"route", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request duration by route and method",
		Buckets:   m.latencyBuckets,
	}, []string{"route", "method"})
}

func (m *Manager) active() bool { return m != nil && m.enabled }

// Enabled reports whether the manager records anything.
func (m *Manager) Enabled() bool { return m.active() }

// RecordComputation records one Calculator.Compute call.
func (m *Manager) RecordComputation(entries int, result engine.Result, took time.Duration) {
	if !m.active() {
		return
	}
	m.computations.Inc()
	m.entriesComputed.Add(float64(entries))
	m.lastComputeEntries.Set(float64(entries))
	m.daysComputed.Add(float64(len(result.Days)))
	m.computeDuration.Observe(took.Seconds())

	for _, day := range result.Days {
		if day.FloorApplied {
			m.floorsApplied.Inc()
		}
		for _, c := range day.Categories {
			m.pointsByCategory.WithLabelValues(c.Category.ID()).Add(c.Points.InexactFloat64())
		}
	}
	for _, issue := range result.Issues {
		m.entryIssues.WithLabelValues(issue.Kind(), string(issue.Severity())).Inc()
	}
}

// RecordHTTPRequest records one served request.
func (m *Manager) RecordHTTPRequest(route, method string, status int, took time.Duration) {
	if !m.active() {
		return
	}
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(route, method).Observe(took.Seconds())
}

// RecordScheduledRecompute records one background recompute of a month.
// A failed run leaves the month gauge untouched.
func (m *Manager) RecordScheduledRecompute(month engine.MonthKey, total float64, err error) {
	if !m.active() {
		return
	}
	if err != nil {
		m.recomputeRuns.WithLabelValues("error").Inc()
		return
	}
	m.recomputeRuns.WithLabelValues("ok").Inc()
	m.monthToDate.WithLabelValues(month.String()).Set(total)
}

// Registry returns the registry metrics are registered on.
func (m *Manager) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
