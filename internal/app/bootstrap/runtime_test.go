package bootstrap

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"

	appconfig "github.com/wolfman30/property-lead-bridge/internal/config"
	"github.com/wolfman30/property-lead-bridge/internal/inbound"
	"github.com/wolfman30/property-lead-bridge/pkg/logging"
)

func TestBuildRedisClientDisabled(t *testing.T) {
	if client := BuildRedisClient(context.Background(), &appconfig.Config{}, logging.New("error"), true); client != nil {
		t.Fatalf("expected nil client when REDIS_ADDR is empty")
	}
	if client := BuildRedisClient(context.Background(), nil, logging.New("error"), true); client != nil {
		t.Fatalf("expected nil client for nil config")
	}
}

func TestBuildRedisClientVerifies(t *testing.T) {
	mr := miniredis.RunT(t)

	client := BuildRedisClient(context.Background(), &appconfig.Config{RedisAddr: mr.Addr()}, logging.New("error"), true)
	if client == nil {
		t.Fatalf("expected redis client")
	}
	defer client.Close()

	addr := mr.Addr()
	mr.Close()
	if unreachable := BuildRedisClient(context.Background(), &appconfig.Config{RedisAddr: addr}, logging.New("error"), true); unreachable != nil {
		t.Fatalf("expected nil client when ping fails")
	}
}

func TestBuildPipelineSubmitsToCRM(t *testing.T) {
	var gotKey string
	crmServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-api-key")
		w.WriteHeader(http.StatusCreated)
	}))
	defer crmServer.Close()

	mr := miniredis.RunT(t)
	cfg := &appconfig.Config{
		CRMAPIURL:            crmServer.URL,
		CRMAPIKey:            "k-1",
		CRMTimeout:           time.Second,
		PropertyPageTimeout:  time.Second,
		PropertyPageCacheTTL: time.Hour,
		RedisAddr:            mr.Addr(),
	}

	pipeline := BuildPipeline(context.Background(), cfg, prometheus.NewRegistry(), logging.New("error"))
	defer pipeline.Close()
	if pipeline.Redis == nil {
		t.Fatalf("expected redis client to be wired")
	}

	processor := BuildEmailProcessor(cfg, pipeline, logging.New("error"))
	raw := "From: noreply@green-acres.com\r\nSubject: Request for information - Villa - Buy - Dubai\r\nContent-Type: text/html\r\n\r\n<p>Contact name Jane Smith</p>"
	result, err := processor.Process(context.Background(), inbound.Email{MessageID: "m-1", Raw: raw})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Submitted {
		t.Fatalf("expected lead to be submitted")
	}
	if gotKey != "k-1" {
		t.Fatalf("expected api key header, got %q", gotKey)
	}
}

func TestBuildEmailProcessorUsesConfiguredPolicy(t *testing.T) {
	cfg := &appconfig.Config{EmailAllowedDomain: "partner.example", CRMTimeout: time.Second}
	pipeline := BuildPipeline(context.Background(), cfg, prometheus.NewRegistry(), logging.New("error"))
	processor := BuildEmailProcessor(cfg, pipeline, logging.New("error"))

	raw := "From: noreply@green-acres.com\r\nSubject: Hello\r\nContent-Type: text/html\r\n\r\n<p>x</p>"
	if _, err := processor.Process(context.Background(), inbound.Email{Raw: raw}); !errors.Is(err, inbound.ErrRejectedOrigin) {
		t.Fatalf("expected origin rejection, got %v", err)
	}
}
