package leads

import (
	"context"
	"encoding/json"
	"errors"
	"mime"
	"net/http"

	"github.com/wolfman30/property-lead-bridge/pkg/logging"
)

const (
	healthMessage       = "Green-Acres CRM Worker is running"
	missingBodyMessage  = "No body_html provided"
	defaultMaxBodyBytes = 10 << 20
)

// LeadProcessor is the pipeline the webhook hands notifications to.
type LeadProcessor interface {
	Process(ctx context.Context, in Inbound) (*Result, error)
}

// Handler serves the webhook transport.
type Handler struct {
	processor LeadProcessor
	logger    *logging.Logger
	maxBody   int64
}

// NewHandler creates a webhook handler.
func NewHandler(processor LeadProcessor, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		processor: processor,
		logger:    logger,
		maxBody:   defaultMaxBodyBytes,
	}
}

// WebhookRequest is the body accepted by POST, as JSON or form fields.
type WebhookRequest struct {
	Subject  string `json:"subject"`
	BodyHTML string `json:"body_html"`
	Content  string `json:"content"`
	From     string `json:"from"`
}

// HTML returns body_html, falling back to content.
func (r WebhookRequest) HTML() string {
	if r.BodyHTML != "" {
		return r.BodyHTML
	}
	return r.Content
}

// WebhookResponse is returned on a processed notification.
type WebhookResponse struct {
	Success bool    `json:"success"`
	Lead    Summary `json:"lead"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// HealthCheck handles GET / and GET /health.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(healthMessage))
}

// MethodNotAllowed answers every method the webhook does not serve.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
}

// Webhook handles POST / and POST /webhooks/green-acres.
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	req, err := h.decode(w, r)
	if err != nil {
		h.logger.Error("failed to decode webhook request", "error", err)
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid request body"})
		return
	}

	html := req.HTML()
	if html == "" {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: missingBodyMessage})
		return
	}

	result, err := h.processor.Process(r.Context(), Inbound{
		Transport: TransportWebhook,
		Subject:   req.Subject,
		HTML:      html,
		From:      req.From,
	})
	if errors.Is(err, ErrEmptyBody) {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: missingBodyMessage})
		return
	}
	if err != nil {
		h.logger.Error("failed to process webhook", "error", err)
		h.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	h.writeJSON(w, http.StatusOK, WebhookResponse{
		Success: result.Submitted,
		Lead:    result.Lead.Summarize(),
	})
}

// decode reads the request as form-urlencoded, multipart or JSON, in that
// order of Content-Type precedence; anything else is parsed as JSON.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (WebhookRequest, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return WebhookRequest{}, err
		}
		return formRequest(r), nil
	case "multipart/form-data":
		if err := r.ParseMultipartForm(h.maxBody); err != nil {
			return WebhookRequest{}, err
		}
		return formRequest(r), nil
	default:
		var req WebhookRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return WebhookRequest{}, err
		}
		return req, nil
	}
}

func formRequest(r *http.Request) WebhookRequest {
	return WebhookRequest{
		Subject:  r.FormValue("subject"),
		BodyHTML: r.FormValue("body_html"),
		Content:  r.FormValue("content"),
		From:     r.FormValue("from"),
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", "error", err)
	}
}
