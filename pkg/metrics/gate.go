package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// GateMetrics counts payment gate decisions.
type GateMetrics struct {
	claims   *prometheus.CounterVec
	verifies *prometheus.CounterVec
	rejects  *prometheus.CounterVec
	advances *prometheus.CounterVec
	blocked  prometheus.Counter
}

// NewGateMetrics registers the gate metrics on the provided registerer.
func NewGateMetrics(reg prometheus.Registerer) *GateMetrics {
	if reg == nil {
		return &GateMetrics{}
	}
	claims := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gate_claims_total",
		Help: "Payment claims accepted, by method.",
	}, []string{"method"})
	verifies := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gate_verifications_total",
		Help: "Payment verifications, by verifier role.",
	}, []string{"role"})
	rejects := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gate_claim_rejections_total",
		Help: "Payment claims rejected by validation, by reason.",
	}, []string{"reason"})
	advances := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gate_order_advances_total",
		Help: "Order transitions that passed the gate, by target status.",
	}, []string{"status"})
	blocked := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gate_order_advances_blocked_total",
		Help: "Order transitions blocked pending payment verification.",
	})
	reg.MustRegister(claims, verifies, rejects, advances, blocked)
	return &GateMetrics{
		claims:   claims,
		verifies: verifies,
		rejects:  rejects,
		advances: advances,
		blocked:  blocked,
	}
}

// IncClaim counts an accepted claim for the method.
func (g *GateMetrics) IncClaim(method string) {
	if g == nil || g.claims == nil {
		return
	}
	g.claims.WithLabelValues(normalizeLabel(method)).Inc()
}

// IncVerification counts a verification by the acting role.
func (g *GateMetrics) IncVerification(role string) {
	if g == nil || g.verifies == nil {
		return
	}
	g.verifies.WithLabelValues(normalizeLabel(role)).Inc()
}

// IncClaimRejection counts a validation rejection.
func (g *GateMetrics) IncClaimRejection(reason string) {
	if g == nil || g.rejects == nil {
		return
	}
	g.rejects.WithLabelValues(normalizeLabel(reason)).Inc()
}

// IncAdvance counts an order transition that passed the gate.
func (g *GateMetrics) IncAdvance(status string) {
	if g == nil || g.advances == nil {
		return
	}
	g.advances.WithLabelValues(normalizeLabel(status)).Inc()
}

// IncBlocked counts an order transition held back by the gate.
func (g *GateMetrics) IncBlocked() {
	if g == nil || g.blocked == nil {
		return
	}
	g.blocked.Inc()
}
