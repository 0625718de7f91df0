package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordCountsRequestsAndRateLimits(t *testing.T) {
	c := New()
	c.Record(http.MethodGet, "/api/v1/employees", http.StatusOK, 20*time.Millisecond)
	c.Record(http.MethodGet, "/api/v1/employees", http.StatusOK, 30*time.Millisecond)
	c.Record(http.MethodPost, "/api/v1/auth/login", http.StatusTooManyRequests, time.Millisecond)

	if got := testutil.ToFloat64(c.requests.WithLabelValues(http.MethodGet, "/api/v1/employees", "200")); got != 2 {
		t.Fatalf("expected 2 requests, got %v", got)
	}
	if got := testutil.ToFloat64(c.rateLimited); got != 1 {
		t.Fatalf("expected 1 rate limited request, got %v", got)
	}
}

func TestDomainCounters(t *testing.T) {
	c := New()
	c.Submission("ok")
	c.NineBoxAssigned(5)
	c.NineBoxAssigned(5)
	c.CacheLookup("ninebox", true)
	c.CacheLookup("ninebox", false)
	c.JobRun("evaluation_recompute", "completed")

	if got := testutil.ToFloat64(c.nineBox.WithLabelValues("5")); got != 2 {
		t.Fatalf("expected 2 assignments at position 5, got %v", got)
	}
	if got := testutil.ToFloat64(c.cacheLookups.WithLabelValues("ninebox", "miss")); got != 1 {
		t.Fatalf("expected 1 miss, got %v", got)
	}
}

func TestNilCollectorIsSafe(t *testing.T) {
	var c *Collector
	c.Record(http.MethodGet, "/", http.StatusOK, time.Millisecond)
	c.Submission("ok")
	c.CacheLookup("merit", true)
}

func TestHandlerExposesMetrics(t *testing.T) {
	c := New()
	c.Submission("window_closed")

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `hrkey_evaluation_submissions_total{result="window_closed"} 1`) {
		t.Fatalf("expected submission counter in output, got:\n%s", body)
	}
}
