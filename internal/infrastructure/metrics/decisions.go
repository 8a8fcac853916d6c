package metrics

// DecisionRecorder fans access decisions out to the collector and, if set, the exporter.
type DecisionRecorder struct {
	collector *Collector
	exporter  *PrometheusExporter
}

// NewDecisionRecorder creates a DecisionRecorder; exporter may be nil.
func NewDecisionRecorder(collector *Collector, exporter *PrometheusExporter) *DecisionRecorder {
	return &DecisionRecorder{collector: collector, exporter: exporter}
}

// RecordDecision records one access decision.
func (r *DecisionRecorder) RecordDecision(reason string, allowed bool) {
	r.collector.RecordDecision(reason, allowed)
	if r.exporter != nil {
		r.exporter.RecordDecision(reason, allowed)
	}
}
