package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// VerificationRequests counts verification requests created per guild.
	VerificationRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gatewarden_verification_requests_total",
			Help: "Total number of verification requests created",
		},
		[]string{"guild"},
	)

	// VerificationDecisions counts administrator decisions by outcome (approved|rejected).
	VerificationDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gatewarden_verification_decisions_total",
			Help: "Total number of verification decisions",
		},
		[]string{"guild", "outcome"},
	)

	// SideEffectFailures counts best-effort side effects that failed after a
	// committed state transition (notify|role|dm|broadcast).
	SideEffectFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gatewarden_side_effect_failures_total",
			Help: "Total number of failed post-decision side effects",
		},
		[]string{"effect"},
	)

	// PendingRequests tracks the live pending request count per guild,
	// refreshed by the maintenance reporter.
	PendingRequests = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "gatewarden_pending_requests",
			Help: "Current number of pending verification requests",
		},
		[]string{"guild"},
	)

	// APILatency measures dashboard API request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gatewarden_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
