package metrics

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the registry
type Metrics struct {
	registry        *prometheus.Registry
	CitizensCreated prometheus.Counter
	CitizensDeleted prometheus.Counter
	Requests        *prometheus.CounterVec
	AccessLogDrops  prometheus.Counter
}

// New creates the metrics on a dedicated registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		CitizensCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "citoyens_created_total",
			Help: "Total number of citizens registered",
		}),
		CitizensDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "citoyens_deleted_total",
			Help: "Total number of citizens deleted",
		}),
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "citoyens_http_requests_total",
			Help: "HTTP requests by method and status code",
		}, []string{"method", "status"}),
		AccessLogDrops: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "citoyens_access_log_dropped_total",
			Help: "Access log entries dropped because the queue was full",
		}),
	}
	reg.MustRegister(m.CitizensCreated, m.CitizensDeleted, m.Requests, m.AccessLogDrops)
	return m
}

// IncrementCitizensCreated increments the created counter. Safe on a nil receiver.
func (m *Metrics) IncrementCitizensCreated() {
	if m != nil {
		m.CitizensCreated.Inc()
	}
}

// IncrementCitizensDeleted increments the deleted counter. Safe on a nil receiver.
func (m *Metrics) IncrementCitizensDeleted() {
	if m != nil {
		m.CitizensDeleted.Inc()
	}
}

// ObserveRequest counts a completed request. Safe on a nil receiver.
func (m *Metrics) ObserveRequest(method string, status int) {
	if m != nil {
		m.Requests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	}
}

// IncrementAccessLogDrops counts a dropped access log entry. Safe on a nil receiver.
func (m *Metrics) IncrementAccessLogDrops() {
	if m != nil {
		m.AccessLogDrops.Inc()
	}
}

// Registry exposes the underlying registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the Prometheus exposition format.
func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}
