// Package metrics wraps a private Prometheus registry with the counters the
// pricer reports.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for PricingRequests.
const (
	OutcomeOK      = "ok"
	OutcomeInvalid = "invalid"
	OutcomeError   = "error"
)

type Metrics struct {
	registry *prometheus.Registry

	PricingRequests *prometheus.CounterVec   // operation, kind, outcome
	PricingDuration *prometheus.HistogramVec // operation
	SpotLookups     *prometheus.CounterVec   // provider, outcome
	HTTPRequests    *prometheus.CounterVec   // method, path, status
	HTTPDuration    *prometheus.HistogramVec // method, path
}

// New creates a registry with Go runtime and process collectors plus the
// pricer's own metrics.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{registry: reg}

	m.PricingRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "option_pricer_requests_total",
		Help: "Pricing operations by operation, option kind and outcome",
	}, []string{"operation", "kind", "outcome"})

	m.PricingDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "option_pricer_duration_seconds",
		Help:    "Time spent in a pricing operation, including spot lookup",
		Buckets: []float64{1e-6, 1e-5, 1e-4, 1e-3, 1e-2, 0.1, 1},
	}, []string{"operation"})

	m.SpotLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "option_pricer_spot_lookups_total",
		Help: "Spot price lookups by provider and outcome",
	}, []string{"provider", "outcome"})

	m.HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_server_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	m.HTTPDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_server_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	reg.MustRegister(m.PricingRequests, m.PricingDuration, m.SpotLookups, m.HTTPRequests, m.HTTPDuration)
	return m
}

// ObservePricing records one pricing operation.
func (m *Metrics) ObservePricing(operation, kind, outcome string, start time.Time) {
	if m == nil {
		return
	}
	m.PricingRequests.WithLabelValues(operation, kind, outcome).Inc()
	m.PricingDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// ObserveSpot records one spot lookup.
func (m *Metrics) ObserveSpot(provider, outcome string) {
	if m == nil {
		return
	}
	m.SpotLookups.WithLabelValues(provider, outcome).Inc()
}

// Registry exposes the underlying registry, e.g. for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
