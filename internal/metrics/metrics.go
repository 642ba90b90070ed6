// Package metrics exposes dashboard counters and timings to Prometheus.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder owns a private registry so several servers (and tests) can run in
// one process without duplicate registration panics. A nil *Recorder is a
// valid no-op recorder.
type Recorder struct {
	registry *prometheus.Registry

	requests    *prometheus.CounterVec
	latency     *prometheus.HistogramVec
	operations  *prometheus.CounterVec
	opDuration  *prometheus.HistogramVec
	datasetRows prometheus.Gauge
}

// New registers the dashboard collectors plus the Go runtime collectors.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	r := &Recorder{
		registry: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "adoptdash",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"route", "method", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "adoptdash",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "adoptdash",
			Name:      "operations_total",
			Help:      "Service operations by name and result.",
		}, []string{"operation", "result"}),
		opDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "adoptdash",
			Name:      "operation_duration_seconds",
			Help:      "Service operation latency (dataset load, report, chart render).",
			Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 5},
		}, []string{"operation"}),
		datasetRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "adoptdash",
			Name:      "dataset_rows",
			Help:      "Observations in the loaded dataset.",
		}),
	}
	reg.MustRegister(
		r.requests, r.latency, r.operations, r.opDuration, r.datasetRows,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// ObserveRequest records one HTTP request.
func (r *Recorder) ObserveRequest(route, method string, status int, d time.Duration) {
	if r == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	r.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	r.latency.WithLabelValues(route).Observe(d.Seconds())
}

// Observe records a service operation outcome.
func (r *Recorder) Observe(operation string, success bool, d time.Duration) {
	if r == nil || operation == "" {
		return
	}
	result := "error"
	if success {
		result = "success"
	}
	r.operations.WithLabelValues(operation, result).Inc()
	r.opDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// SetDatasetRows publishes the size of the cached dataset.
func (r *Recorder) SetDatasetRows(n int) {
	if r == nil {
		return
	}
	r.datasetRows.Set(float64(n))
}

// Registry returns the underlying registry for tests and custom exporters.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
