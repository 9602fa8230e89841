// Package observability registers the service's Prometheus metrics.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	runsStartedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "runtracker",
		Subsystem: "runs",
		Name:      "started_total",
		Help:      "Number of runs started.",
	})
	runsFinishedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "runtracker",
		Subsystem: "runs",
		Name:      "finished_total",
		Help:      "Number of runs finished.",
	})
	lastRunFinishedGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "runtracker",
		Subsystem: "runs",
		Name:      "last_finished_timestamp_seconds",
		Help:      "Unix timestamp of the most recent finished run.",
	})
	httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "runtracker",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by route, method and status.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method", "status"})
)

func init() {
	prometheus.MustRegister(runsStartedTotal, runsFinishedTotal, lastRunFinishedGauge, httpRequestDuration)
}

// RecordRunStarted increments the started-runs counter.
func RecordRunStarted() {
	runsStartedTotal.Inc()
}

// RecordRunFinished increments the finished-runs counter and updates the
// finish watermark gauge.
func RecordRunFinished(ts time.Time) {
	runsFinishedTotal.Inc()
	if ts.IsZero() {
		return
	}
	lastRunFinishedGauge.Set(float64(ts.Unix()))
}

// ObserveHTTPRequest records one request's latency.
func ObserveHTTPRequest(route, method string, status int, elapsed time.Duration) {
	httpRequestDuration.WithLabelValues(route, method, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// StatusRecorder captures the response status written by a handler.
type StatusRecorder struct {
	http.ResponseWriter
	Status int
}

// WriteHeader implements http.ResponseWriter.
func (r *StatusRecorder) WriteHeader(status int) {
	r.Status = status
	r.ResponseWriter.WriteHeader(status)
}
