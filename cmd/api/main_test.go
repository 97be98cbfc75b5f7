package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	appconfig "github.com/wolfman30/property-lead-bridge/internal/config"
	"github.com/wolfman30/property-lead-bridge/internal/observability/metrics"
)

func TestSetupMetricsExposesLeadMetrics(t *testing.T) {
	registry, handler := setupMetrics()
	if registry == nil || handler == nil {
		t.Fatalf("expected non-nil registry and handler")
	}

	leadMetrics := metrics.NewLeadMetrics(registry)
	leadMetrics.ObserveLead("webhook", "submitted")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "leadbridge_leads_processed_total") {
		t.Fatalf("expected lead counter to be exported")
	}
	if !strings.Contains(body, "go_goroutines") {
		t.Fatalf("expected go runtime collector to be exported")
	}
}

func TestNewServerWriteTimeoutCoversPipeline(t *testing.T) {
	cfg := &appconfig.Config{Port: "9090", PropertyPageTimeout: 10 * time.Second, CRMTimeout: 15 * time.Second}
	srv := newServer(cfg, http.NotFoundHandler())

	if srv.Addr != ":9090" {
		t.Fatalf("expected addr :9090, got %q", srv.Addr)
	}
	if srv.WriteTimeout != 30*time.Second {
		t.Fatalf("expected write timeout 30s, got %s", srv.WriteTimeout)
	}
}
