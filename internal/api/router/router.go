package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	httpmiddleware "github.com/wolfman30/property-lead-bridge/internal/http/middleware"
	"github.com/wolfman30/property-lead-bridge/internal/leads"
	"github.com/wolfman30/property-lead-bridge/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger         *logging.Logger
	LeadsHandler   *leads.Handler
	MetricsHandler http.Handler

	// Optional webhook protection
	WebhookToken     string
	WebhookRateLimit float64
	WebhookRateBurst int
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	if cfg == nil || cfg.LeadsHandler == nil {
		panic("router: leads handler is required")
	}
	h := cfg.LeadsHandler

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.MethodNotAllowed(h.MethodNotAllowed)

	r.Get("/", h.HealthCheck)
	r.Get("/health", h.HealthCheck)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Group(func(webhook chi.Router) {
		webhook.Use(httpmiddleware.RateLimit(cfg.WebhookRateLimit, cfg.WebhookRateBurst))
		webhook.Use(requireWebhookToken(cfg.WebhookToken))
		webhook.Post("/", h.Webhook)
		webhook.Post("/webhooks/green-acres", h.Webhook)
	})

	return r
}
