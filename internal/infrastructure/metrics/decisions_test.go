package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestDecisionRecorder_RecordDecision(t *testing.T) {
	collector := NewCollector()
	exporter := NewPrometheusExporter(prometheus.NewRegistry())
	recorder := NewDecisionRecorder(collector, exporter)

	recorder.RecordDecision("explicit_allow", true)
	recorder.RecordDecision("explicit_allow", true)
	recorder.RecordDecision("implicit_deny", false)

	got := collector.GetDecisionMetrics()
	if got.Allowed != 2 || got.Denied != 1 {
		t.Errorf("expected 2 allowed and 1 denied, got %d allowed and %d denied", got.Allowed, got.Denied)
	}
	if got.ByReason["explicit_allow"] != 2 {
		t.Errorf("expected 2 explicit_allow decisions, got %d", got.ByReason["explicit_allow"])
	}
	if got.ByReason["implicit_deny"] != 1 {
		t.Errorf("expected 1 implicit_deny decision, got %d", got.ByReason["implicit_deny"])
	}

	if v := testutil.ToFloat64(exporter.decisions.WithLabelValues("explicit_allow", "true")); v != 2 {
		t.Errorf("expected exported explicit_allow=2, got %v", v)
	}
	if v := testutil.ToFloat64(exporter.decisions.WithLabelValues("implicit_deny", "false")); v != 1 {
		t.Errorf("expected exported implicit_deny=1, got %v", v)
	}
}

func TestDecisionRecorder_NilExporter(t *testing.T) {
	collector := NewCollector()
	recorder := NewDecisionRecorder(collector, nil)

	recorder.RecordDecision("default_open", true)

	if got := collector.GetDecisionMetrics().ByReason["default_open"]; got != 1 {
		t.Errorf("expected 1 default_open decision, got %d", got)
	}
}

func TestNewPrometheusExporter_SeparateRegistries(t *testing.T) {
	// Each registry gets its own metric set; registering twice in one process must not panic
	_ = NewPrometheusExporter(prometheus.NewRegistry())
	_ = NewPrometheusExporter(prometheus.NewRegistry())
}
