package metrics

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestHTTPMetricsExportsCounterAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)
	m.Observe(http.MethodGet, "/api/v1/campaigns/{id}", http.StatusOK, 120*time.Millisecond)
	m.Observe(http.MethodGet, "/api/v1/campaigns/{id}", http.StatusOK, 80*time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	got, err := fetchCounterValue(mfs, "http_requests_total", map[string]string{"route": "/api/v1/campaigns/{id}", "status": "200"})
	if err != nil {
		t.Fatalf("fetch requests: %v", err)
	}
	if got != 2 {
		t.Fatalf("expected 2 requests, got %f", got)
	}

	mf := findMetricFamily(mfs, "http_request_duration_seconds")
	if mf == nil || mf.GetMetric()[0].GetHistogram().GetSampleCount() != 2 {
		t.Fatalf("expected two histogram samples")
	}
}

func TestPolicyMetricsCountsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPolicyMetrics(reg)
	m.Record("mission", "read", true)
	m.Record("mission", "read", false)
	m.Record("mission", "read", false)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	deny, err := fetchCounterValue(mfs, "policy_decisions_total", map[string]string{"resource": "mission", "outcome": OutcomeDeny})
	if err != nil {
		t.Fatalf("fetch deny: %v", err)
	}
	if deny != 2 {
		t.Fatalf("expected 2 denials, got %f", deny)
	}
}

func TestNilRegistererIsNoop(t *testing.T) {
	NewHTTPMetrics(nil).Observe(http.MethodGet, "", 200, time.Second)
	NewPolicyMetrics(nil).Record("", "", true)
	var m *PolicyMetrics
	m.Record("campaign", "delete", false)
}

func fetchCounterValue(mfs []*dto.MetricFamily, name string, labels map[string]string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabels(metric.GetLabel(), labels) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing labels %v", name, labels)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabels(pairs []*dto.LabelPair, want map[string]string) bool {
	matched := 0
	for _, pair := range pairs {
		if v, ok := want[pair.GetName()]; ok && v == pair.GetValue() {
			matched++
		}
	}
	return matched == len(want)
}
