package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveRequest(t *testing.T) {
	t.Parallel()

	m := New()
	m.ObserveRequest(http.MethodGet, "/bands/{bandID}", http.StatusOK, 5*time.Millisecond)
	m.ObserveRequest(http.MethodGet, "/bands/{bandID}", http.StatusOK, 7*time.Millisecond)
	m.ObserveRequest(http.MethodGet, "/bands/{bandID}", http.StatusNotFound, time.Millisecond)

	if got := testutil.ToFloat64(m.requests.WithLabelValues("GET", "/bands/{bandID}", "200")); got != 2 {
		t.Fatalf("expected 2 ok requests, got %v", got)
	}
	if got := testutil.ToFloat64(m.requests.WithLabelValues("GET", "/bands/{bandID}", "404")); got != 1 {
		t.Fatalf("expected 1 not found request, got %v", got)
	}
}

func TestRecordCreated(t *testing.T) {
	t.Parallel()

	m := New()
	m.RecordCreated("concert")
	m.RecordCreated("concert")
	m.RecordCreated("band")

	if got := testutil.ToFloat64(m.writes.WithLabelValues("concert")); got != 2 {
		t.Fatalf("expected 2 concerts, got %v", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	t.Parallel()

	var m *Metrics
	m.ObserveRequest(http.MethodGet, "/", http.StatusOK, time.Millisecond)
	m.RecordCreated("band")
}

func TestHandler(t *testing.T) {
	t.Parallel()

	m := New()
	m.RecordCreated("venue")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `concert_ledger_records_created_total{kind="venue"} 1`) {
		t.Fatalf("expected venue counter in output, got %q", rec.Body.String())
	}
}
