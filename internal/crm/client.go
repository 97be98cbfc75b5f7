// Package crm submits extracted leads to the CRM's lead intake API.
package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/property-lead-bridge/internal/leads"
	"github.com/wolfman30/property-lead-bridge/pkg/logging"
)

var crmTracer = otel.Tracer("bridge.internal.crm")

var (
	// ErrNotConfigured is returned when no CRM endpoint is set.
	ErrNotConfigured = errors.New("crm: endpoint not configured")
	// ErrUnexpectedStatus wraps any non-2xx CRM response.
	ErrUnexpectedStatus = errors.New("crm: unexpected status")
)

const maxErrorBody = 4 << 10

// Config holds the CRM connection settings.
type Config struct {
	Endpoint   string
	APIKey     string
	LeadSource string
	Timeout    time.Duration
}

// Client posts lead payloads to the CRM.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *logging.Logger
}

// ClientOption is a functional option for configuring the Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *logging.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a CRM client.
func NewClient(cfg Config, opts ...ClientOption) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.LeadSource == "" {
		cfg.LeadSource = DefaultLeadSource
	}
	c := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logging.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Submit posts the lead. Any non-2xx response is an error carrying the
// status code and response body.
func (c *Client) Submit(ctx context.Context, lead *leads.Lead) error {
	if c.cfg.Endpoint == "" {
		return ErrNotConfigured
	}

	ctx, span := crmTracer.Start(ctx, "crm.submit", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	payload := BuildPayload(lead, c.cfg.LeadSource)
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("crm: marshal payload: %w", err)
	}
	c.logger.Debug("crm payload", "payload", logging.ScrubPII(string(body)))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("crm: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		return fmt.Errorf("crm: request failed: %w", err)
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		span.SetStatus(codes.Error, "unexpected status")
		c.logger.Error("crm rejected lead", "status", resp.StatusCode, "body", logging.ScrubPII(string(respBody)), "name", payload.Name)
		return fmt.Errorf("%w %d: %s", ErrUnexpectedStatus, resp.StatusCode, string(respBody))
	}

	c.logger.Info("lead posted to crm", "name", payload.Name, "status", resp.StatusCode)
	return nil
}
