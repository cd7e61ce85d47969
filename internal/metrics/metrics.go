// Package metrics holds the Prometheus collectors for the API client
// transports and the development REST backend.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all collectors on a private registry. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	// Client transport metrics.
	ClientOperationsTotal   *prometheus.CounterVec
	ClientOperationDuration *prometheus.HistogramVec
	BreakerState            *prometheus.GaugeVec

	// REST backend metrics.
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// New creates and registers all metrics on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,

		ClientOperationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "surfapp_client_operations_total",
			Help: "Total number of API client operations by result code.",
		}, []string{"transport", "operation", "code"}),

		ClientOperationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "surfapp_client_operation_duration_seconds",
			Help:    "API client operation duration in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"transport", "operation"}),

		BreakerState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "surfapp_client_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open).",
		}, []string{"name"}),

		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "surfapp_http_requests_total",
			Help: "Total number of HTTP requests served.",
		}, []string{"method", "route", "status_code"}),

		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "surfapp_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	reg.MustRegister(
		m.ClientOperationsTotal,
		m.ClientOperationDuration,
		m.BreakerState,
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
	)
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return m
}

// Registry returns the private Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveOperation records one client operation. code is empty on success.
func (m *Metrics) ObserveOperation(transport, operation, code string, started time.Time) {
	if m == nil {
		return
	}
	if code == "" {
		code = "OK"
	}
	m.ClientOperationsTotal.WithLabelValues(transport, operation, code).Inc()
	m.ClientOperationDuration.WithLabelValues(transport, operation).Observe(time.Since(started).Seconds())
}

// SetBreakerState records the breaker state as 0, 1 or 2.
func (m *Metrics) SetBreakerState(name string, state int) {
	if m == nil {
		return
	}
	m.BreakerState.WithLabelValues(name).Set(float64(state))
}

// ObserveHTTPRequest records one request served by the REST backend.
func (m *Metrics) ObserveHTTPRequest(method, route string, status int, started time.Time) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(time.Since(started).Seconds())
}
