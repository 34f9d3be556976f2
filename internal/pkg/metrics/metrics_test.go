package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_RegisteredOnDefaultRegistry(t *testing.T) {
	ChatRequestsTotal.WithLabelValues("ok").Inc()
	HistoryPersistFailuresTotal.Inc()

	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	want := map[string]bool{
		"chatbot_chat_requests_total":            false,
		"chatbot_history_persist_failures_total": false,
	}
	for _, f := range families {
		if _, ok := want[f.GetName()]; ok {
			want[f.GetName()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Fatalf("metric %s not registered", name)
		}
	}
}

func TestMetrics_CounterIncrements(t *testing.T) {
	before := testutil.ToFloat64(AuthAttemptsTotal.WithLabelValues("login", "success"))
	AuthAttemptsTotal.WithLabelValues("login", "success").Inc()

	if got := testutil.ToFloat64(AuthAttemptsTotal.WithLabelValues("login", "success")); got != before+1 {
		t.Fatalf("expected %v, got %v", before+1, got)
	}
}
