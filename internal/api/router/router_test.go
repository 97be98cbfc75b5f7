package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/property-lead-bridge/internal/leads"
	"github.com/wolfman30/property-lead-bridge/internal/observability/metrics"
	"github.com/wolfman30/property-lead-bridge/pkg/logging"
)

type capturingCRM struct {
	mu    sync.Mutex
	leads []*leads.Lead
}

func (c *capturingCRM) Submit(_ context.Context, lead *leads.Lead) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.leads = append(c.leads, lead)
	return nil
}

const webhookBody = `{"subject":"Request for information - Villa - Buy - Dubai","body_html":"<p>Contact name Jane Smith</p><p>Phone number +971 50 123 4567</p>"}`

func newTestRouter(t *testing.T, cfg Config) (http.Handler, *capturingCRM) {
	t.Helper()

	logger := logging.Default()
	crm := &capturingCRM{}
	reg := prometheus.NewRegistry()
	svc := leads.NewService(crm, logger, leads.WithMetrics(metrics.NewLeadMetrics(reg)))

	cfg.Logger = logger
	cfg.LeadsHandler = leads.NewHandler(svc, logger)
	cfg.MetricsHandler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	return New(&cfg), crm
}

func postWebhook(router http.Handler, path string, mutate func(*http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(webhookBody))
	req.Header.Set("Content-Type", "application/json")
	if mutate != nil {
		mutate(req)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestRouterHealthEndpoints(t *testing.T) {
	router, _ := newTestRouter(t, Config{})

	for _, path := range []string{"/", "/health"} {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))

		if rr.Code != http.StatusOK {
			t.Fatalf("%s: expected status %d, got %d", path, http.StatusOK, rr.Code)
		}
		if body := rr.Body.String(); body != "Green-Acres CRM Worker is running" {
			t.Fatalf("%s: unexpected body %q", path, body)
		}
	}
}

func TestRouterWebhookEndpoints(t *testing.T) {
	router, crm := newTestRouter(t, Config{})

	for _, path := range []string{"/", "/webhooks/green-acres"} {
		rr := postWebhook(router, path, nil)
		require.Equal(t, http.StatusOK, rr.Code, path)

		var resp leads.WebhookResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		assert.True(t, resp.Success)
		assert.Equal(t, "Jane Smith", resp.Lead.ContactName)
	}
	assert.Len(t, crm.leads, 2)
}

func TestRouterMethodNotAllowed(t *testing.T) {
	router, _ := newTestRouter(t, Config{})

	for _, method := range []string{http.MethodPut, http.MethodDelete, http.MethodPatch} {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(method, "/", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, rr.Code, method)
		assert.Contains(t, rr.Body.String(), "Method not allowed")
	}
}

func TestRouterWebhookToken(t *testing.T) {
	router, crm := newTestRouter(t, Config{WebhookToken: "s3cret"})

	rr := postWebhook(router, "/webhooks/green-acres", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = postWebhook(router, "/webhooks/green-acres", func(r *http.Request) {
		r.Header.Set("X-Webhook-Token", "wrong")
	})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = postWebhook(router, "/webhooks/green-acres", func(r *http.Request) {
		r.Header.Set("X-Webhook-Token", "s3cret")
	})
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = postWebhook(router, "/webhooks/green-acres?token=s3cret", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	assert.Len(t, crm.leads, 2)

	// Health checks stay public.
	health := httptest.NewRecorder()
	router.ServeHTTP(health, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, health.Code)
}

func TestRouterWebhookRateLimit(t *testing.T) {
	router, _ := newTestRouter(t, Config{WebhookRateLimit: 0.01, WebhookRateBurst: 1})

	first := postWebhook(router, "/", nil)
	second := postWebhook(router, "/", nil)

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}

func TestRouterMetricsEndpoint(t *testing.T) {
	router, _ := newTestRouter(t, Config{})
	postWebhook(router, "/", nil)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `leadbridge_leads_processed_total{status="submitted",transport="webhook"} 1`)
}
