package otfbenchmark

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/nsip/otf-benchmark/benchmark"
	"github.com/nsip/otf-benchmark/metric"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// lookupsTotal counts metric calculations.
	// Labels: operation (percentile, performing_grade, threshold), outcome (ok or error code)
	lookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "otf_benchmark",
		Subsystem: "metric",
		Name:      "lookups_total",
		Help:      "Metric calculations by operation and outcome",
	}, []string{"operation", "outcome"})

	// requestDuration measures handler latency.
	// Labels: route, code
	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "otf_benchmark",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Request latency by route and status code",
		Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5},
	}, []string{"route", "code"})

	tableRecords = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "otf_benchmark",
		Subsystem: "table",
		Name:      "records",
		Help:      "Records in the published benchmark table",
	})

	tableSubjects = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "otf_benchmark",
		Subsystem: "table",
		Name:      "subjects",
		Help:      "Subjects in the published benchmark table",
	})

	tableViolations = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "otf_benchmark",
		Subsystem: "table",
		Name:      "monotonicity_violations",
		Help:      "Monotonicity violations in the published benchmark table",
	})

	// reloadsTotal counts benchmark reloads triggered by file changes.
	// Labels: result (ok, error)
	reloadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "otf_benchmark",
		Subsystem: "table",
		Name:      "reloads_total",
		Help:      "Benchmark table reloads by result",
	}, []string{"result"})
)

func observeTable(tbl *benchmark.Table) {
	tableRecords.Set(float64(tbl.Len()))
	tableSubjects.Set(float64(len(tbl.Subjects())))
	tableViolations.Set(float64(len(tbl.Violations())))
}

func observeLookup(operation string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = metric.ErrorCode(err)
	}
	lookupsTotal.WithLabelValues(operation, outcome).Inc()
}

func observeCombined(cr metric.CombinedResult) {
	observeLookup("percentile", cr.PercentileErr)
	observeLookup("performing_grade", cr.PerformingGradeErr)
	observeLookup("threshold", cr.ThresholdErr)
}

//
// middleware timing every request by matched route
//
func instrument(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		code := c.Response().Status
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
		}
		requestDuration.WithLabelValues(c.Path(), strconv.Itoa(code)).Observe(time.Since(start).Seconds())
		return err
	}
}
