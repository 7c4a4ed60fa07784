package metrics_test

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Paintersrp/sockscope/internal/metrics"
)

func TestRegistryExposesMetrics(t *testing.T) {
	metrics.EmitBuildInfo()

	done := metrics.ScanStarted()
	done("")
	failed := metrics.ScanStarted()
	failed("execution")
	metrics.ObserveKill("signal")
	metrics.ObserveKill("")

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{}).ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("unexpected status code from metrics handler: %d", rec.Code)
	}

	body := rec.Body.String()
	for _, line := range []string{
		`sockscope_scans_total{result="success"}`,
		`sockscope_scans_total{result="execution"}`,
		`sockscope_kills_total{result="signal"}`,
		`sockscope_kills_total{result="success"}`,
		`sockscope_scan_duration_seconds_count{result="success"}`,
		"sockscope_scans_in_flight 0",
		"sockscope_build_info{",
		"go_version=",
	} {
		if !strings.Contains(body, line) {
			t.Fatalf("expected %q in metrics body:\n%s", line, body)
		}
	}
}
