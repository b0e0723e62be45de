package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// WorkflowMetrics records pricing recomputations and cost sheet lifecycle
// transitions.
type WorkflowMetrics struct {
	pricingDuration *prometheus.HistogramVec
	transitions     *prometheus.CounterVec
	marginBlocks    prometheus.Counter
	obsoleted       prometheus.Counter
}

// NewWorkflowMetrics registers the workflow metrics on the provided registerer.
func NewWorkflowMetrics(reg prometheus.Registerer) *WorkflowMetrics {
	if reg == nil {
		return &WorkflowMetrics{}
	}
	pricingDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pricing_recompute_duration_seconds",
		Help:    "Duration of quote pricing recomputations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cost_sheet_transitions_total",
		Help: "Cost sheet workflow transitions by outcome.",
	}, []string{"transition"})
	marginBlocks := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "margin_gate_blocks_total",
		Help: "Cost sheet submissions blocked by the margin gate.",
	})
	obsoleted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cost_sheets_obsoleted_total",
		Help: "Cost sheets invalidated by vehicle line changes.",
	})
	reg.MustRegister(pricingDuration, transitions, marginBlocks, obsoleted)
	return &WorkflowMetrics{
		pricingDuration: pricingDuration,
		transitions:     transitions,
		marginBlocks:    marginBlocks,
		obsoleted:       obsoleted,
	}
}

// ObservePricingDuration records how long a pricing pass took.
func (w *WorkflowMetrics) ObservePricingDuration(operation string, duration time.Duration) {
	if w == nil || w.pricingDuration == nil {
		return
	}
	w.pricingDuration.WithLabelValues(normalizeLabel(operation)).Observe(duration.Seconds())
}

// IncTransition counts a completed workflow transition.
func (w *WorkflowMetrics) IncTransition(transition string) {
	if w == nil || w.transitions == nil {
		return
	}
	w.transitions.WithLabelValues(normalizeLabel(transition)).Inc()
}

// IncMarginBlock counts a submission stopped by the margin gate.
func (w *WorkflowMetrics) IncMarginBlock() {
	if w == nil || w.marginBlocks == nil {
		return
	}
	w.marginBlocks.Inc()
}

// IncObsoleted counts a cost sheet flipped to obsolete.
func (w *WorkflowMetrics) IncObsoleted() {
	if w == nil || w.obsoleted == nil {
		return
	}
	w.obsoleted.Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
