// Package metrics exposes Prometheus collectors on a private registry.
package metrics

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"ventas/internal/domain/service"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every collector the service exports.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests        *prometheus.CounterVec
	httpDuration        *prometheus.HistogramVec
	authAttempts        *prometheus.CounterVec
	sessionsCompromised prometheus.Counter
	ordersCreated       prometheus.Counter
	webhookEvents       *prometheus.CounterVec
	dbConnections       *prometheus.GaugeVec
}

var _ service.MetricsRecorder = (*Metrics)(nil)

// New builds the registry with process and Go runtime collectors included.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests processed, by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency, by method and route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		authAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_attempts_total",
			Help: "Authentication operations, by operation and result.",
		}, []string{"operation", "result"}),
		sessionsCompromised: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sessions_compromised_total",
			Help: "Accounts marked compromised after a refresh from a foreign context.",
		}),
		ordersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "orders_created_total",
			Help: "Orders committed.",
		}),
		webhookEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "webhook_events_total",
			Help: "Inbound webhook deliveries, by source and result.",
		}, []string{"source", "result"}),
		dbConnections: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "db_connections",
			Help: "Postgres pool connections, by state.",
		}, []string{"state"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpDuration,
		m.authAttempts,
		m.sessionsCompromised,
		m.ordersCreated,
		m.webhookEvents,
		m.dbConnections,
	)

	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveHTTP records one served request. route is the registered path
// template, not the raw URL, to keep label cardinality bounded.
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveDBPool exports a snapshot of the connection pool.
func (m *Metrics) ObserveDBPool(stats sql.DBStats) {
	m.dbConnections.WithLabelValues("open").Set(float64(stats.OpenConnections))
	m.dbConnections.WithLabelValues("in_use").Set(float64(stats.InUse))
	m.dbConnections.WithLabelValues("idle").Set(float64(stats.Idle))
}

// AuthAttempt implements service.MetricsRecorder.
func (m *Metrics) AuthAttempt(operation, result string) {
	m.authAttempts.WithLabelValues(operation, result).Inc()
}

// SessionCompromised implements service.MetricsRecorder.
func (m *Metrics) SessionCompromised() {
	m.sessionsCompromised.Inc()
}

// OrderCreated implements service.MetricsRecorder.
func (m *Metrics) OrderCreated() {
	m.ordersCreated.Inc()
}

// WebhookEvent implements service.MetricsRecorder.
func (m *Metrics) WebhookEvent(source, result string) {
	m.webhookEvents.WithLabelValues(source, result).Inc()
}
