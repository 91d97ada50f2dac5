package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// Invitation coordination
	InvitationsCreated  prometheus.Counter
	InvitationsBlocked  *prometheus.CounterVec
	InvitationsResolved *prometheus.CounterVec
	InvitationsExpired  prometheus.Counter

	// Notification fan-out
	NotificationsEmitted *prometheus.CounterVec
	UnreadGauge          prometheus.Gauge

	// Presence
	PresenceActive prometheus.Gauge

	// Diagnostics suppression
	SuppressedDiagnostics *prometheus.CounterVec

	// Infrastructure
	DatabaseLatency *prometheus.HistogramVec
	RedisOperations *prometheus.CounterVec
}

// NewMetrics creates and registers all application metrics
func NewMetrics(namespace, subsystem string) *Metrics {
	return &Metrics{
		InvitationsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "invitations_created_total",
			Help:      "Total number of pending invitations created",
		}),
		InvitationsBlocked: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "invitations_blocked_total",
			Help:      "Invitation requests blocked, by verdict",
		}, []string{"verdict"}),
		InvitationsResolved: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "invitations_resolved_total",
			Help:      "Invitations resolved by the recipient, by response",
		}, []string{"response"}),
		InvitationsExpired: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "invitations_expired_total",
			Help:      "Invitations observed expired at response time",
		}),
		NotificationsEmitted: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "notifications_emitted_total",
			Help:      "Notifications emitted, by type",
		}, []string{"type"}),
		UnreadGauge: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "notifications_unread",
			Help:      "Unread notifications observed at last count",
		}),
		PresenceActive: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "presence_active",
			Help:      "Users currently broadcasting availability",
		}),
		SuppressedDiagnostics: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "suppressed_diagnostics_total",
			Help:      "Diagnostic messages suppressed by the noise filter, by pattern",
		}, []string{"pattern"}),
		DatabaseLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "database_operation_duration_seconds",
			Help:      "Time spent in database operations",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"operation"}),
		RedisOperations: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "redis_operations_total",
			Help:      "Redis operations by type and status",
		}, []string{"operation", "status"}),
	}
}
