package auth

import (
	"context"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors of the service.
type Metrics struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	logins   *prometheus.CounterVec
	tokens   *prometheus.CounterVec
	codes    prometheus.Counter
	events   *prometheus.CounterVec
}

// NewMetrics registers all collectors on a fresh registry, including
// the Go runtime and process collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by route and method.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_logins_total",
			Help: "Login attempts by result.",
		}, []string{"result"}),
		tokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_person_tokens_total",
			Help: "Person token generation attempts by result.",
		}, []string{"result"}),
		codes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "auth_codes_issued_total",
			Help: "One-time codes issued.",
		}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_activity_events_total",
			Help: "Activity events by type.",
		}, []string{"type"}),
	}

	reg.MustRegister(
		m.requests,
		m.duration,
		m.logins,
		m.tokens,
		m.codes,
		m.events,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Registry exposes the underlying registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Middleware records request count and latency per matched route.
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = StatusFor(err)
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			}
		}

		route := c.Route().Path
		if route == "" {
			route = "unmatched"
		}

		m.requests.WithLabelValues(route, c.Method(), strconv.Itoa(status)).Inc()
		m.duration.WithLabelValues(route, c.Method()).Observe(time.Since(start).Seconds())
		return err
	}
}

// Handler serves the exposition format.
func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}

// ActivitySink counts activity events by type.
func (m *Metrics) ActivitySink() ActivitySink {
	return ActivitySinkFunc(func(_ context.Context, event ActivityEvent) error {
		m.events.WithLabelValues(string(event.EventType)).Inc()
		return nil
	})
}

func (m *Metrics) observeLogin(err error) {
	if m == nil {
		return
	}
	m.logins.WithLabelValues(resultLabel(err)).Inc()
}

func (m *Metrics) observeToken(err error) {
	if m == nil {
		return
	}
	m.tokens.WithLabelValues(resultLabel(err)).Inc()
}

func (m *Metrics) observeCode() {
	if m == nil {
		return
	}
	m.codes.Inc()
}

func resultLabel(err error) string {
	if err == nil {
		return "success"
	}
	if e, ok := AsError(err); ok {
		return string(e.Category)
	}
	return "error"
}
