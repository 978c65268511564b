package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCountersAndHandler(t *testing.T) {
	t.Parallel()

	m := New()
	m.ObservePage("extracted")
	m.ObservePage("extracted")
	m.ObservePage("not_html")
	m.ObserveChat("ok", true)
	m.ObserveRequest("GET", "/knowledge", 200, 15*time.Millisecond)

	if got := testutil.ToFloat64(m.pages.WithLabelValues("extracted")); got != 2 {
		t.Fatalf("expected 2 extracted pages, got %v", got)
	}
	if got := testutil.ToFloat64(m.chats.WithLabelValues("ok", "true")); got != 1 {
		t.Fatalf("expected 1 chat reply, got %v", got)
	}

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	for _, want := range []string{
		`helpdesk_crawler_pages_total{outcome="not_html"} 1`,
		`helpdesk_http_requests_total{code="200",method="GET",route="/knowledge"} 1`,
	} {
		if !strings.Contains(string(body), want) {
			t.Fatalf("metrics output misses %q", want)
		}
	}
}
