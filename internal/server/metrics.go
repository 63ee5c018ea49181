package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the server's collectors. Each Server owns its registry so
// that tests can build many servers in one process.
type Metrics struct {
	registry *prometheus.Registry

	requests    *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	simulations *prometheus.CounterVec
	qubits      prometheus.Histogram
	cache       *prometheus.CounterVec
	breaker     prometheus.Gauge
}

// NewMetrics registers the blochview collectors plus the Go runtime and
// process collectors on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "blochview_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"path", "method", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "blochview_http_request_duration_seconds",
				Help:    "HTTP request latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"path", "method"},
		),
		simulations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "blochview_simulations_total",
				Help: "Circuits processed, by outcome",
			},
			[]string{"outcome"},
		),
		qubits: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "blochview_circuit_qubits",
				Help:    "Width of successfully processed circuits",
				Buckets: prometheus.LinearBuckets(1, 2, 13),
			},
		),
		cache: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "blochview_response_cache_total",
				Help: "Response cache lookups, by result",
			},
			[]string{"result"},
		),
		breaker: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "blochview_breaker_state",
				Help: "Processing circuit breaker state (0 closed, 1 half-open, 2 open)",
			},
		),
	}
	m.registry.MustRegister(
		m.requests, m.duration, m.simulations, m.qubits, m.cache, m.breaker,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }
