package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Boluski2/lendsqr-admin/internal/domain"
)

func counterValue(t *testing.T, m *Metrics, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := m.Gatherer().Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	next:
		for _, metric := range mf.GetMetric() {
			for _, lp := range metric.GetLabel() {
				if labels[lp.GetName()] != lp.GetValue() {
					continue next
				}
			}
			return metric.GetCounter().GetValue()
		}
	}
	return 0
}

func TestMetrics_Counters(t *testing.T) {
	m := New()
	m.StatusChanged(domain.StatusBlacklisted)
	m.StatusChanged(domain.StatusBlacklisted)
	m.CacheLookup(true)
	m.CacheLookup(false)
	m.CacheLookup(false)
	m.ObserveRequest(http.MethodGet, "/users", http.StatusOK, 20*time.Millisecond)

	if v := counterValue(t, m, "lendsqr_user_status_changes_total", map[string]string{"status": "Blacklisted"}); v != 2 {
		t.Errorf("expected 2 blacklist mutations, got %v", v)
	}
	if v := counterValue(t, m, "lendsqr_cache_lookups_total", map[string]string{"result": "miss"}); v != 2 {
		t.Errorf("expected 2 misses, got %v", v)
	}
	if v := counterValue(t, m, "lendsqr_http_requests_total", map[string]string{"method": "GET", "route": "/users", "code": "200"}); v != 1 {
		t.Errorf("expected 1 request, got %v", v)
	}
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	m.StatusChanged(domain.StatusActive)
	m.CacheLookup(true)
	m.ObserveRequest(http.MethodGet, "/", http.StatusOK, time.Millisecond)
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.CacheLookup(true)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	if !strings.Contains(string(body), `lendsqr_cache_lookups_total{result="hit"} 1`) {
		t.Fatalf("exposition missing cache counter:\n%s", body)
	}
}
