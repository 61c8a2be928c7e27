package metrics

import (
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordDecision(t *testing.T) {
	m := NewAdvisorMetrics()

	m.RecordDecision("EXECUTE", "USD/CNY", 3, true, 0.002)
	m.RecordDecision("EXECUTE", "USD/CNY", 2, false, 0.001)
	m.RecordDecision("NONE", "USD/CNY", 0, false, 0.0001)

	if got := testutil.ToFloat64(m.DecisionsTotal.WithLabelValues("EXECUTE", "USD/CNY")); got != 2 {
		t.Errorf("decisions EXECUTE = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.RateLookupsTotal.WithLabelValues("fallback")); got != 2 {
		t.Errorf("fallback lookups = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.RateLookupsTotal.WithLabelValues("live")); got != 1 {
		t.Errorf("live lookups = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(m.DecisionDuration); got != 2 {
		t.Errorf("duration series = %d, want 2", got)
	}
}

func TestRecordRefresh(t *testing.T) {
	tests := []struct {
		name    string
		warmed  int
		err     error
		outcome string
	}{
		{name: "all pairs", warmed: 4, outcome: "ok"},
		{name: "some pairs", warmed: 1, err: errors.New("boom"), outcome: "partial"},
		{name: "no pairs", warmed: 0, err: errors.New("boom"), outcome: "failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewAdvisorMetrics()
			m.RecordRefresh(tt.warmed, tt.err)
			if got := testutil.ToFloat64(m.RateRefreshTotal.WithLabelValues(tt.outcome)); got != 1 {
				t.Errorf("refresh %s = %v, want 1", tt.outcome, got)
			}
		})
	}
}

func TestSetLeader(t *testing.T) {
	m := NewAdvisorMetrics()
	m.SetLeader(true)
	if got := testutil.ToFloat64(m.RefreshLeader); got != 1 {
		t.Errorf("leader = %v, want 1", got)
	}
	m.SetLeader(false)
	if got := testutil.ToFloat64(m.RefreshLeader); got != 0 {
		t.Errorf("leader = %v, want 0", got)
	}
}

func TestRegistriesAreIndependent(t *testing.T) {
	a := NewAdvisorMetrics()
	b := NewAdvisorMetrics()

	a.RecordError("validation")
	if got := testutil.ToFloat64(b.ErrorsTotal.WithLabelValues("validation")); got != 0 {
		t.Errorf("second instance saw %v errors", got)
	}
}

func TestHTTPMetricsExposition(t *testing.T) {
	m := NewAdvisorMetrics()
	m.RecordHTTPRequest("/health", "GET", 200, 0.001)

	expected := `
# HELP fxadvisor_http_requests_total HTTP requests by route, method and status code
# TYPE fxadvisor_http_requests_total counter
fxadvisor_http_requests_total{code="200",method="GET",route="/health"} 1
`
	if err := testutil.GatherAndCompare(m.Registry, strings.NewReader(expected), "fxadvisor_http_requests_total"); err != nil {
		t.Error(err)
	}
}
