package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveOperation(t *testing.T) {
	m := New()
	m.ObserveOperation("direct", "login", "", time.Now())
	m.ObserveOperation("direct", "login", "INVALID_CREDENTIALS", time.Now())
	m.ObserveOperation("direct", "login", "INVALID_CREDENTIALS", time.Now())

	if got := testutil.ToFloat64(m.ClientOperationsTotal.WithLabelValues("direct", "login", "OK")); got != 1 {
		t.Errorf("OK count = %v; want 1", got)
	}
	if got := testutil.ToFloat64(m.ClientOperationsTotal.WithLabelValues("direct", "login", "INVALID_CREDENTIALS")); got != 2 {
		t.Errorf("INVALID_CREDENTIALS count = %v; want 2", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveOperation("http", "login", "", time.Now())
	m.SetBreakerState("api", 2)
	m.ObserveHTTPRequest("GET", "/api/photographers", 200, time.Now())
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.SetBreakerState("api", 2)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `surfapp_client_breaker_state{name="api"} 2`) {
		t.Errorf("breaker gauge missing from exposition:\n%s", rec.Body.String())
	}
}
