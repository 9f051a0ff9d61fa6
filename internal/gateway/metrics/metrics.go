package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the access gateway.
type Metrics struct {
	// Authorization decisions by resource, operation and outcome.
	Decisions *prometheus.CounterVec

	// Lifecycle transitions by source and target status.
	Transitions *prometheus.CounterVec

	// Full perform latency including policy evaluation and store writes.
	PerformLatency *prometheus.HistogramVec

	// Store write retries under the transient-error policy.
	StoreRetries prometheus.Counter
}

// New creates a Metrics instance with all gateway metrics registered.
func New() *Metrics {
	return &Metrics{
		Decisions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "grantgate_authorization_decisions_total",
			Help: "Total authorization decisions by resource, operation and outcome",
		}, []string{"resource", "operation", "outcome"}),

		Transitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "grantgate_lifecycle_transitions_total",
			Help: "Total lifecycle transitions by source and target status",
		}, []string{"from", "to"}),

		PerformLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "grantgate_perform_duration_seconds",
			Help:    "Duration of gateway perform calls",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"resource", "operation"}),

		StoreRetries: promauto.NewCounter(prometheus.CounterOpts{
			Name: "grantgate_store_retries_total",
			Help: "Total store write retries on transient errors",
		}),
	}
}

// IncrementDecision records an authorization decision.
func (m *Metrics) IncrementDecision(resource, operation string, allowed bool) {
	if m != nil {
		outcome := "deny"
		if allowed {
			outcome = "allow"
		}
		m.Decisions.WithLabelValues(resource, operation, outcome).Inc()
	}
}

// IncrementTransition records a lifecycle transition.
func (m *Metrics) IncrementTransition(from, to string) {
	if m != nil {
		m.Transitions.WithLabelValues(from, to).Inc()
	}
}

// ObservePerformLatency records the duration of a perform call.
func (m *Metrics) ObservePerformLatency(resource, operation string, d time.Duration) {
	if m != nil {
		m.PerformLatency.WithLabelValues(resource, operation).Observe(d.Seconds())
	}
}

// IncrementStoreRetry records one store write retry.
func (m *Metrics) IncrementStoreRetry() {
	if m != nil {
		m.StoreRetries.Inc()
	}
}
