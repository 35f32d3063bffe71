package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "creatorhub"

// Metrics holds the Prometheus collectors of the service
type Metrics struct {
	HTTPRequests   *prometheus.CounterVec
	HTTPDuration   *prometheus.HistogramVec
	GuardDecisions *prometheus.CounterVec
	GhostAttempts  *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// NewMetrics registers every collector on registry
func NewMetrics(registry *prometheus.Registry) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		GuardDecisions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "guard_decisions_total",
				Help:      "Total number of route guard decisions",
			},
			[]string{"guard", "outcome"},
		),
		GhostAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ghost_attempts_total",
				Help:      "Total number of Ghost API attempts",
			},
			[]string{"operation", "result"},
		),
		gatherer: registry,
	}
}

// ObserveHTTPRequest records one completed request
func (m *Metrics) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObserveGuardDecision records one allow or deny decision
func (m *Metrics) ObserveGuardDecision(guard, outcome string) {
	m.GuardDecisions.WithLabelValues(guard, outcome).Inc()
}

// ObserveGhostAttempt records one Ghost API attempt
func (m *Metrics) ObserveGhostAttempt(operation string, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	m.GhostAttempts.WithLabelValues(operation, result).Inc()
}

// Handler serves the registered collectors in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
