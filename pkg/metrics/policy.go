package metrics

import "github.com/prometheus/client_golang/prometheus"

const (
	OutcomeAllow = "allow"
	OutcomeDeny  = "deny"
)

// PolicyMetrics counts access decisions.
type PolicyMetrics struct {
	decisions *prometheus.CounterVec
}

// NewPolicyMetrics registers the policy decision counter on the provided registerer.
func NewPolicyMetrics(reg prometheus.Registerer) *PolicyMetrics {
	if reg == nil {
		return &PolicyMetrics{}
	}
	decisions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "policy_decisions_total",
		Help: "Access policy decisions by resource, action and outcome.",
	}, []string{"resource", "action", "outcome"})
	reg.MustRegister(decisions)
	return &PolicyMetrics{decisions: decisions}
}

// Record counts one decision.
func (m *PolicyMetrics) Record(resource, action string, allowed bool) {
	if m == nil || m.decisions == nil {
		return
	}
	outcome := OutcomeDeny
	if allowed {
		outcome = OutcomeAllow
	}
	m.decisions.WithLabelValues(normalizeLabel(resource), normalizeLabel(action), outcome).Inc()
}
