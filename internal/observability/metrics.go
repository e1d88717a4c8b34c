package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce           sync.Once
	reconcilerSyncsTotal   *prometheus.CounterVec
	achievementsEarned     prometheus.Counter
	xpAwardedTotal         prometheus.Counter
	httpRequestsTotal      *prometheus.CounterVec
	httpLatencySeconds     *prometheus.HistogramVec
	mentorRequestsDuration *prometheus.HistogramVec
	mentorFailuresTotal    *prometheus.CounterVec
	notificationsPublished *prometheus.CounterVec
	streamClientsActive    prometheus.Gauge
)

// RegisterMetrics initialises the Prometheus collectors used across the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		reconcilerSyncsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "codequest_reconciler_syncs_total",
			Help: "Total number of achievement reconciliation runs.",
		}, []string{"outcome"})

		achievementsEarned = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "codequest_achievements_earned_total",
			Help: "Total number of achievements newly awarded.",
		})

		xpAwardedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "codequest_xp_awarded_total",
			Help: "Total XP granted through achievement awards.",
		})

		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "codequest_http_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "codequest_http_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		mentorRequestsDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: "codequest_mentor_request_duration_seconds",
			Help: "Duration of mentor LLM requests.",
		}, []string{"provider", "model"})

		mentorFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "codequest_mentor_failures_total",
			Help: "Number of failed mentor LLM requests.",
		}, []string{"provider", "model", "cause"})

		notificationsPublished = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "codequest_notifications_published_total",
			Help: "Total number of notifications published.",
		}, []string{"type"})

		streamClientsActive = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "codequest_stream_clients_active",
			Help: "Number of currently connected notification stream clients.",
		})

		prometheus.MustRegister(
			reconcilerSyncsTotal,
			achievementsEarned,
			xpAwardedTotal,
			httpRequestsTotal,
			httpLatencySeconds,
			mentorRequestsDuration,
			mentorFailuresTotal,
			notificationsPublished,
			streamClientsActive,
		)
	})
}

// ReconcilerSyncs exposes the counter for reconciliation runs.
func ReconcilerSyncs() *prometheus.CounterVec {
	RegisterMetrics()
	return reconcilerSyncsTotal
}

// AchievementsEarned exposes the counter for newly awarded achievements.
func AchievementsEarned() prometheus.Counter {
	RegisterMetrics()
	return achievementsEarned
}

// XPAwarded exposes the counter for XP granted via achievements.
func XPAwarded() prometheus.Counter {
	RegisterMetrics()
	return xpAwardedTotal
}

// HTTPRequests exposes the counter for API requests.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the latency histogram for API requests.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// MentorDuration exposes the mentor request duration histogram.
func MentorDuration() *prometheus.HistogramVec {
	RegisterMetrics()
	return mentorRequestsDuration
}

// MentorFailures exposes the mentor failure counter.
func MentorFailures() *prometheus.CounterVec {
	RegisterMetrics()
	return mentorFailuresTotal
}

// NotificationsPublished exposes the notification publish counter.
func NotificationsPublished() *prometheus.CounterVec {
	RegisterMetrics()
	return notificationsPublished
}

// StreamClientsActive exposes the gauge for connected stream clients.
func StreamClientsActive() prometheus.Gauge {
	RegisterMetrics()
	return streamClientsActive
}
