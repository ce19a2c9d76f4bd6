package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/warp/shift-points/engine"
	"github.com/warp/shift-points/rules"
)

func sampleResult() engine.Result {
	day := engine.NewDate(2025, time.March, 10)
	calc := engine.NewCalculator(rules.MWA2025(), nil)
	return calc.Compute([]engine.ShiftEntry{
		{ID: "a", Date: day, Category: engine.CategoryAssigned, Start: "0", End: "030"},
		{ID: "b", Date: day, Category: engine.CategoryAssigned, Start: "9", End: "25"},
		{ID: "c", Date: day, Category: engine.Category(77)},
	})
}

func TestMetricsManager(t *testing.T) {
	Convey("Given a metrics manager on its own registry", t, func() {
		registry := prometheus.NewRegistry()
		m := NewManager(WithRegistry(registry), WithNamespace("test"), WithLatencyBuckets([]float64{0.001, 0.01, 0.1}))

		So(m.Registry(), ShouldEqual, registry)

		Convey("When a computation is recorded", func() {
			result := sampleResult()
			m.RecordComputation(3, result, 2*time.Millisecond)

			Convey("Then the counters reflect the result", func() {
				So(testutil.ToFloat64(m.computations), ShouldEqual, 1)
				So(testutil.ToFloat64(m.entriesComputed), ShouldEqual, 3)
				So(testutil.ToFloat64(m.daysComputed), ShouldEqual, 1)
				So(testutil.ToFloat64(m.floorsApplied), ShouldEqual, 1)
				So(testutil.ToFloat64(m.entryIssues.WithLabelValues("invalid_time_format", "rejected")), ShouldEqual, 1)
				So(testutil.ToFloat64(m.entryIssues.WithLabelValues("unknown_category", "warning")), ShouldEqual, 1)
				So(testutil.ToFloat64(m.pointsByCategory.WithLabelValues("assigned")), ShouldEqual, 12.5)
			})
		})

		Convey("When an HTTP request is recorded", func() {
			m.RecordHTTPRequest("/api/days", "GET", 200, time.Millisecond)

			Convey("Then it is exposed by the handler", func() {
				rec := httptest.NewRecorder()
				m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
				body, _ := io.ReadAll(rec.Body)

				So(rec.Code, ShouldEqual, 200)
				So(string(body), ShouldContainSubstring, `test_http_requests_total{method="GET",route="/api/days",status_code="200"} 1`)
			})
		})
	})

	Convey("Given a manager tracking scheduled recomputes", t, func() {
		m := NewManager()
		march := engine.MonthKey{Year: 2025, Month: time.March}

		m.RecordScheduledRecompute(march, 1234.5, nil)
		m.RecordScheduledRecompute(march, 0, io.ErrUnexpectedEOF)

		Convey("Then the gauge keeps the last good value", func() {
			So(m.Enabled(), ShouldBeTrue)
			So(testutil.ToFloat64(m.monthToDate.WithLabelValues("2025-03")), ShouldEqual, 1234.5)
			So(testutil.ToFloat64(m.recomputeRuns.WithLabelValues("ok")), ShouldEqual, 1)
			So(testutil.ToFloat64(m.recomputeRuns.WithLabelValues("error")), ShouldEqual, 1)
		})
	})

	Convey("Given a disabled or nil manager", t, func() {
		disabled := NewManager(WithMetricsEnabled(false))
		var nilManager *Manager

		Convey("Then recording is a no-op", func() {
			So(func() { disabled.RecordComputation(1, sampleResult(), time.Millisecond) }, ShouldNotPanic)
			So(func() { nilManager.RecordHTTPRequest("/", "GET", 200, time.Millisecond) }, ShouldNotPanic)
			So(testutil.ToFloat64(disabled.computations), ShouldEqual, 0)
			So(nilManager.Enabled(), ShouldBeFalse)
		})
	})
}
