package observability_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Be114/insyoku-sakura/internal/adapters/observability"
)

func TestMetricsRegistryAndHandler(t *testing.T) {
	reg := observability.InitRegistry()

	// record samples so every vector has at least one series
	observability.ObserveHTTP("/analyze", "POST", 200, 12*time.Millisecond)
	observability.ObserveExternal("google", "details", 200, 40*time.Millisecond)
	observability.ObserveCache("redis", "miss")
	observability.ObserveAnalysis("high", 74, 0)
	observability.ObserveSnapshot("provider")

	mh := observability.MetricsHandler(reg)
	req := httptest.NewRequest("GET", "/metrics", nil)
	rr := httptest.NewRecorder()
	mh.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("metrics status: %d", rr.Code)
	}
	body, _ := io.ReadAll(rr.Body)
	out := string(body)
	for _, name := range []string{
		"sakura_http_requests_total",
		"sakura_external_requests_total",
		"sakura_cache_events_total",
		`sakura_analyses_total{risk_label="high"}`,
		`sakura_analysis_score_bucket{kind="sakura"`,
		`sakura_snapshot_source_total{source="provider"}`,
	} {
		if !strings.Contains(out, name) {
			t.Fatalf("expected %s in output", name)
		}
	}
}

func TestLabelErr(t *testing.T) {
	if got := observability.LabelErr(nil); got != "none" {
		t.Fatalf("LabelErr(nil) = %q", got)
	}
	if got := observability.LabelErr(io.EOF); got != "*errors.errorString" {
		t.Fatalf("LabelErr(io.EOF) = %q", got)
	}
}
