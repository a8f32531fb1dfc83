package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"flights_backend/internal/models"
)

// Registry holds all Prometheus metrics of the flights backend. Every
// registry owns its prometheus.Registry so tests can build as many as they
// need.
type Registry struct {
	registry *prometheus.Registry

	// HTTP Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Business Metrics
	FlightTransitionsTotal *prometheus.CounterVec
	NotificationsTotal     *prometheus.CounterVec
	RateLimitedTotal       prometheus.Counter
}

// NewRegistry initializes and returns a new Registry with all metrics.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Registry{
		registry: reg,

		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flights_http_requests_total",
				Help: "Total HTTP requests processed by route, method, and status code",
			},
			[]string{"route", "method", "status_code"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "flights_http_request_duration_seconds",
				Help:    "HTTP request latency distribution in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"route", "method"},
		),
		HTTPRequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "flights_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
		),

		FlightTransitionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flights_status_transitions_total",
				Help: "Flight status transitions applied, by source and target status",
			},
			[]string{"from", "to"},
		),
		NotificationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flights_formed_notifications_total",
				Help: "Calls to the state calculation service by result",
			},
			[]string{"result"},
		),
		RateLimitedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "flights_http_rate_limited_total",
				Help: "Requests rejected by the per-client rate limiter",
			},
		),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Gatherer exposes the underlying registry to tests.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// ObserveTransition counts an applied status change. Safe on a nil Registry.
func (r *Registry) ObserveTransition(from, to models.FlightStatus) {
	if r == nil {
		return
	}
	r.FlightTransitionsTotal.WithLabelValues(from.String(), to.String()).Inc()
}

// ObserveNotification counts a finished notification attempt. Safe on a nil
// Registry.
func (r *Registry) ObserveNotification(err error) {
	if r == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.NotificationsTotal.WithLabelValues(result).Inc()
}
