package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Business metrics
	UsersRegistered  prometheus.Counter
	LoginAttempts    *prometheus.CounterVec
	Mutations        *prometheus.CounterVec
	RemoteWriteFails prometheus.Counter
	TemplatesSent    prometheus.Counter
	ExportsCreated   prometheus.Counter
}

// New creates a new Metrics instance with all metrics registered
func New() *Metrics {
	return &Metrics{
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		UsersRegistered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "users_registered_total",
			Help: "Total number of users registered",
		}),
		LoginAttempts: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "login_attempts_total",
				Help: "Total number of login attempts",
			},
			[]string{"status"}, // success, failed
		),
		Mutations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crm_mutations_total",
				Help: "Total number of CRM mutations applied",
			},
			[]string{"kind"}, // contact, reminder, template, activity, showing
		),
		RemoteWriteFails: promauto.NewCounter(prometheus.CounterOpts{
			Name: "crm_remote_write_failures_total",
			Help: "Total number of remote writes that fell back to local state",
		}),
		TemplatesSent: promauto.NewCounter(prometheus.CounterOpts{
			Name: "templates_sent_total",
			Help: "Total number of template emails sent",
		}),
		ExportsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "exports_created_total",
			Help: "Total number of exports created",
		}),
	}
}

// Middleware creates an Echo middleware for Prometheus metrics
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()
			path := c.Path() // route pattern, not the raw URL

			err := next(c)

			status := strconv.Itoa(c.Response().Status)
			m.HTTPRequestsTotal.WithLabelValues(req.Method, path, status).Inc()
			m.HTTPRequestDuration.WithLabelValues(req.Method, path, status).Observe(time.Since(start).Seconds())

			return err
		}
	}
}

// RecordUserRegistered increments users registered counter
func (m *Metrics) RecordUserRegistered() {
	m.UsersRegistered.Inc()
}

// RecordLoginAttempt increments login attempts counter
func (m *Metrics) RecordLoginAttempt(success bool) {
	status := "failed"
	if success {
		status = "success"
	}
	m.LoginAttempts.WithLabelValues(status).Inc()
}

// RecordMutation increments the mutation counter for an entity kind
func (m *Metrics) RecordMutation(kind string) {
	m.Mutations.WithLabelValues(kind).Inc()
}

// RecordRemoteWriteFailure increments the failed remote write counter
func (m *Metrics) RecordRemoteWriteFailure() {
	m.RemoteWriteFails.Inc()
}

// RecordTemplateSent increments the sent template counter
func (m *Metrics) RecordTemplateSent() {
	m.TemplatesSent.Inc()
}

// RecordExportCreated increments exports created counter
func (m *Metrics) RecordExportCreated() {
	m.ExportsCreated.Inc()
}
