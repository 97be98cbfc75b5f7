package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wolfman30/property-lead-bridge/internal/api/router"
	"github.com/wolfman30/property-lead-bridge/internal/app/bootstrap"
	appconfig "github.com/wolfman30/property-lead-bridge/internal/config"
	"github.com/wolfman30/property-lead-bridge/internal/leads"
	"github.com/wolfman30/property-lead-bridge/pkg/logging"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting property-lead-bridge API server", "env", cfg.Env, "port", cfg.Port)

	if err := run(cfg, logger); err != nil {
		logger.Error("api server stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("api server exited cleanly")
}

func run(cfg *appconfig.Config, logger *logging.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	registry, metricsHandler := setupMetrics()
	pipeline := bootstrap.BuildPipeline(ctx, cfg, registry, logger)
	defer pipeline.Close()

	srv := newServer(cfg, router.New(&router.Config{
		Logger:           logger,
		LeadsHandler:     leads.NewHandler(pipeline.Service, logger),
		MetricsHandler:   metricsHandler,
		WebhookToken:     cfg.WebhookToken,
		WebhookRateLimit: cfg.WebhookRateLimit,
		WebhookRateBurst: cfg.WebhookRateBurst,
	}))

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("listening for webhooks", "addr", srv.Addr)
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	logger.Info("signal received, draining in-flight webhooks")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

const shutdownGrace = 30 * time.Second

// newServer sizes the write timeout so a request may spend a full property
// page fetch plus a full CRM call.
func newServer(cfg *appconfig.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.PropertyPageTimeout + cfg.CRMTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

func setupMetrics() (*prometheus.Registry, http.Handler) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return registry, promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
