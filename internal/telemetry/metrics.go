// Package telemetry exposes Prometheus metrics for file processing.
package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for FilesTotal.
const (
	OutcomeOK          = "ok"
	OutcomeParseError  = "parse_error"
	OutcomeValidation  = "validation_error"
	OutcomeRejected    = "rejected"
	OutcomeServerError = "error"
)

// Metrics holds the collectors. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	files        *prometheus.CounterVec
	rows         prometheus.Counter
	rulesApplied prometheus.Counter
	rulesSkipped prometheus.Counter
	duration     prometheus.Histogram

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// New registers the collectors on a fresh registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: reg,
		files: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "reorganizer",
			Name:      "files_total",
			Help:      "Processed files by outcome.",
		}, []string{"outcome"}),
		rows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "reorganizer",
			Name:      "rows_total",
			Help:      "Rows written to processed files.",
		}),
		rulesApplied: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "reorganizer",
			Name:      "rules_applied_total",
			Help:      "Column rules that took effect.",
		}),
		rulesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "reorganizer",
			Name:      "rules_skipped_total",
			Help:      "Column rules skipped because of an unusable value or unknown type.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "reorganizer",
			Name:      "process_duration_seconds",
			Help:      "Time to parse, transform and serialize one file.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	m.requests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "reorganizer",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by route pattern, method and status code.",
	}, []string{"route", "method", "code"})
	m.requestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "reorganizer",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by route pattern.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route"})

	reg.MustRegister(m.files, m.rows, m.rulesApplied, m.rulesSkipped, m.duration, m.requests, m.requestDuration)
	return m
}

// ObserveFile records one processed file.
func (m *Metrics) ObserveFile(outcome string, rows, applied, skipped int, d time.Duration) {
	if m == nil {
		return
	}
	m.files.WithLabelValues(outcome).Inc()
	if outcome != OutcomeOK {
		return
	}
	m.rows.Add(float64(rows))
	m.rulesApplied.Add(float64(applied))
	m.rulesSkipped.Add(float64(skipped))
	m.duration.Observe(d.Seconds())
}

// ObserveRequest records one HTTP request. route is the matched pattern,
// not the raw path, to keep label cardinality bounded.
func (m *Metrics) ObserveRequest(route, method string, code int, d time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.requests.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
	m.requestDuration.WithLabelValues(route).Observe(d.Seconds())
}

// Files returns the processed-files counter for outcome.
func (m *Metrics) Files(outcome string) prometheus.Counter {
	return m.files.WithLabelValues(outcome)
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
