package telemetry

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveFile(t *testing.T) {
	m := New()

	m.ObserveFile(OutcomeOK, 10, 3, 1, 20*time.Millisecond)
	m.ObserveFile(OutcomeOK, 5, 2, 0, 10*time.Millisecond)
	m.ObserveFile(OutcomeValidation, 100, 9, 9, time.Second)

	if got := testutil.ToFloat64(m.files.WithLabelValues(OutcomeOK)); got != 2 {
		t.Errorf("files_total{ok} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.files.WithLabelValues(OutcomeValidation)); got != 1 {
		t.Errorf("files_total{validation_error} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.rows); got != 15 {
		t.Errorf("rows_total = %v, want 15", got)
	}
	if got := testutil.ToFloat64(m.rulesApplied); got != 5 {
		t.Errorf("rules_applied_total = %v, want 5", got)
	}
	if got := testutil.ToFloat64(m.rulesSkipped); got != 1 {
		t.Errorf("rules_skipped_total = %v, want 1", got)
	}
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.ObserveFile(OutcomeOK, 1, 1, 1, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveFile(OutcomeOK, 1, 0, 0, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), "reorganizer_files_total") {
		t.Error("exposition should contain reorganizer_files_total")
	}
}

func TestObserveRequest(t *testing.T) {
	m := New()
	m.ObserveRequest("/api/process/{campaignID}", http.MethodPost, 200, 5*time.Millisecond)
	m.ObserveRequest("/api/process/{campaignID}", http.MethodPost, 200, 5*time.Millisecond)
	m.ObserveRequest("", http.MethodGet, 404, time.Millisecond)

	if got := testutil.ToFloat64(m.requests.WithLabelValues("/api/process/{campaignID}", "POST", "200")); got != 2 {
		t.Errorf("requests_total = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.requests.WithLabelValues("unmatched", "GET", "404")); got != 1 {
		t.Errorf("unmatched requests_total = %v, want 1", got)
	}
}
