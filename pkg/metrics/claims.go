package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ClaimMetrics counts claim workflow outcomes. A nil receiver is a no-op so
// tests and tools can run without a registry.
type ClaimMetrics struct {
	submissions  *prometheus.CounterVec
	transitions  *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	sideEffects  *prometheus.CounterVec
	autoRejected prometheus.Counter
}

// NewClaimMetrics registers the claim metrics on the provided registerer.
func NewClaimMetrics(reg prometheus.Registerer) *ClaimMetrics {
	if reg == nil {
		return &ClaimMetrics{}
	}
	submissions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "claim_submissions_total",
		Help: "Claim submissions by outcome code.",
	}, []string{"result"})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "claim_transitions_total",
		Help: "Staff claim status transitions by target status and outcome code.",
	}, []string{"status", "result"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "claim_transition_duration_seconds",
		Help:    "Time spent inside the claim transition transaction.",
		Buckets: prometheus.DefBuckets,
	}, []string{"status"})
	sideEffects := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "claim_side_effect_failures_total",
		Help: "Post-commit notification or email deliveries that failed.",
	}, []string{"channel"})
	autoRejected := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "claim_auto_rejections_total",
		Help: "Competing claims rejected automatically when another claim was approved.",
	})
	reg.MustRegister(submissions, transitions, duration, sideEffects, autoRejected)
	return &ClaimMetrics{
		submissions:  submissions,
		transitions:  transitions,
		duration:     duration,
		sideEffects:  sideEffects,
		autoRejected: autoRejected,
	}
}

// IncSubmission records a submission outcome; result is "ok" or an error code.
func (c *ClaimMetrics) IncSubmission(result string) {
	if c == nil || c.submissions == nil {
		return
	}
	c.submissions.WithLabelValues(normalizeLabel(result)).Inc()
}

// IncTransition records a transition outcome for the requested status.
func (c *ClaimMetrics) IncTransition(status, result string) {
	if c == nil || c.transitions == nil {
		return
	}
	c.transitions.WithLabelValues(normalizeLabel(status), normalizeLabel(result)).Inc()
}

// ObserveTransition records how long the transition transaction took.
func (c *ClaimMetrics) ObserveTransition(status string, d time.Duration) {
	if c == nil || c.duration == nil {
		return
	}
	c.duration.WithLabelValues(normalizeLabel(status)).Observe(d.Seconds())
}

// IncSideEffectFailure counts a failed delivery on the given channel.
func (c *ClaimMetrics) IncSideEffectFailure(channel string) {
	if c == nil || c.sideEffects == nil {
		return
	}
	c.sideEffects.WithLabelValues(normalizeLabel(channel)).Inc()
}

// AddAutoRejected counts claims rejected by an approval of a competitor.
func (c *ClaimMetrics) AddAutoRejected(n int) {
	if c == nil || c.autoRejected == nil || n <= 0 {
		return
	}
	c.autoRejected.Add(float64(n))
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
