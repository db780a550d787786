package prometheus

import (
	"net/http"
	"strconv"
	"time"

	"checksuite-service/pkg/config"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Auth metrics
	LoginCounter     prometheus.Counter
	RegisterCounter  prometheus.Counter
	AuthErrorCounter *prometheus.CounterVec

	// Template metrics
	TemplateOperationCounter *prometheus.CounterVec
	TemplatePublishCounter   prometheus.Counter
	DraftCloneSkippedCounter prometheus.Counter

	// Process metrics
	ProcessStartCounter       prometheus.Counter
	ProcessStepSkippedCounter prometheus.Counter

	// Board/card metrics
	CardMoveCounter        *prometheus.CounterVec
	ComplianceBlockCounter prometheus.Counter
	OverrideCounter        prometheus.Counter

	// Audit metrics
	AuditEventCounter   *prometheus.CounterVec
	AuditFailureCounter prometheus.Counter

	// HTTP request metrics
	HTTPRequestCounter *prometheus.CounterVec
	RequestDuration    *prometheus.HistogramVec

	// Database operation metrics
	DBOperationDuration *prometheus.HistogramVec

	// Namespace prefix for metrics
	namespace string
)

// InitMetrics initializes all Prometheus metrics
func InitMetrics(cfg *config.Config) {
	namespace = cfg.Metrics.Prefix

	LoginCounter = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_total",
		Help:      "Total number of login attempts",
	})

	RegisterCounter = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "register_total",
		Help:      "Total number of user registrations",
	})

	AuthErrorCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_errors_total",
			Help:      "Total number of authentication errors",
		},
		[]string{"type"},
	)

	TemplateOperationCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "template_operations_total",
			Help:      "Total number of process template operations",
		},
		[]string{"operation"}, // "create", "new_draft", "publish", "deactivate", etc.
	)

	TemplatePublishCounter = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "template_publish_total",
		Help:      "Total number of template version publishes",
	})

	DraftCloneSkippedCounter = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "draft_clone_skipped_rows_total",
		Help:      "Total number of rows skipped during draft deep clones",
	})

	ProcessStartCounter = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "process_start_total",
		Help:      "Total number of boards instantiated from templates",
	})

	ProcessStepSkippedCounter = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "process_step_skipped_total",
		Help:      "Total number of steps skipped during process instantiation",
	})

	CardMoveCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "card_moves_total",
			Help:      "Total number of card move attempts",
		},
		[]string{"outcome"}, // "committed", "blocked", "overridden", "rejected"
	)

	ComplianceBlockCounter = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "compliance_blocks_total",
		Help:      "Total number of card moves blocked by the compliance gate",
	})

	OverrideCounter = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "compliance_overrides_total",
		Help:      "Total number of compliance gate overrides by admins or owners",
	})

	AuditEventCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audit_events_total",
			Help:      "Total number of audit events recorded",
		},
		[]string{"event_type"},
	)

	AuditFailureCounter = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_failures_total",
		Help:      "Total number of audit events that failed to persist",
	})

	HTTPRequestCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and status",
		},
		[]string{"endpoint", "method", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status"},
	)

	DBOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "db_operation_duration_seconds",
			Help:      "Duration of database operations in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation"}, // "query", "insert", "update", "delete"
	)
}

// GetPrometheusHandler returns an HTTP handler for the Prometheus metrics
func GetPrometheusHandler() http.Handler {
	return promhttp.Handler()
}

// TrackDBOperation measures database operation durations
func TrackDBOperation(operation string) func(time.Time) {
	startTime := time.Now()
	return func(endTime time.Time) {
		duration := time.Since(startTime).Seconds()
		DBOperationDuration.WithLabelValues(operation).Observe(duration)
	}
}

// MetricsMiddleware creates a middleware function that captures metrics for each request
func MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			// Execute the request handler
			err := next(c)

			// Record request duration
			duration := time.Since(start).Seconds()
			status := strconv.Itoa(c.Response().Status)
			endpoint := c.Path()
			method := c.Request().Method

			RequestDuration.With(prometheus.Labels{
				"endpoint": endpoint,
				"method":   method,
				"status":   status,
			}).Observe(duration)

			HTTPRequestCounter.With(prometheus.Labels{
				"endpoint": endpoint,
				"method":   method,
				"status":   status,
			}).Inc()

			return err
		}
	}
}

// RecordAuthError increments the auth error counter for the given error type
func RecordAuthError(errorType string) {
	AuthErrorCounter.WithLabelValues(errorType).Inc()
}

// RecordTemplateOperation increments the template operation counter
func RecordTemplateOperation(operation string) {
	TemplateOperationCounter.WithLabelValues(operation).Inc()
}

// RecordCardMove increments the card move counter for the given outcome
func RecordCardMove(outcome string) {
	CardMoveCounter.WithLabelValues(outcome).Inc()
}

// RecordAuditEvent increments the audit event counter for the given event type
func RecordAuditEvent(eventType string) {
	AuditEventCounter.WithLabelValues(eventType).Inc()
}
