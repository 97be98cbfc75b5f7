// Package inbound adapts inbound email delivered through SES into lead
// notifications: origin check, MIME body extraction, S3 raw-message
// loading and the SQS notification worker.
package inbound

import (
	"context"
	"fmt"

	"github.com/wolfman30/property-lead-bridge/internal/leads"
	"github.com/wolfman30/property-lead-bridge/internal/observability/metrics"
	"github.com/wolfman30/property-lead-bridge/pkg/logging"
)

// Email is one received message. From is the envelope sender; HeaderFrom
// and Subject are read from Raw when left empty.
type Email struct {
	MessageID  string
	From       string
	HeaderFrom string
	Subject    string
	Raw        string
}

// Processor runs the email transport in front of the lead service.
type Processor struct {
	policy  OriginPolicy
	leads   leads.LeadProcessor
	metrics *metrics.LeadMetrics
	logger  *logging.Logger
}

// ProcessorOption customizes a Processor.
type ProcessorOption func(*Processor)

// WithOriginPolicy replaces DefaultOriginPolicy.
func WithOriginPolicy(policy OriginPolicy) ProcessorOption {
	return func(p *Processor) {
		p.policy = policy
	}
}

// WithMetrics counts messages rejected before they reach the lead service.
func WithMetrics(m *metrics.LeadMetrics) ProcessorOption {
	return func(p *Processor) {
		p.metrics = m
	}
}

// NewProcessor creates an email processor.
func NewProcessor(service leads.LeadProcessor, logger *logging.Logger, opts ...ProcessorOption) *Processor {
	if service == nil {
		panic("inbound: lead processor cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	p := &Processor{
		policy: DefaultOriginPolicy(),
		leads:  service,
		logger: logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process checks the message origin, extracts its HTML body and hands it
// to the lead service. ErrRejectedOrigin and ErrNoHTMLBody are returned
// before any parsing happens.
func (p *Processor) Process(ctx context.Context, e Email) (*leads.Result, error) {
	if e.HeaderFrom == "" || e.Subject == "" {
		from, subject := ParseHeaders(e.Raw)
		if e.HeaderFrom == "" {
			e.HeaderFrom = from
		}
		if e.Subject == "" {
			e.Subject = subject
		}
	}
	logger := p.logger.With("message_id", e.MessageID)

	if err := p.policy.Check(e); err != nil {
		p.metrics.ObserveLead(string(leads.TransportEmail), "rejected_origin")
		logger.Info("email rejected", "reason", RejectReason, "from", e.From)
		return nil, err
	}

	body, ok := ExtractHTMLBody(e.Raw)
	if !ok {
		p.metrics.ObserveLead(string(leads.TransportEmail), "no_html")
		logger.Error("no html body found", "subject", e.Subject)
		return nil, ErrNoHTMLBody
	}

	result, err := p.leads.Process(ctx, leads.Inbound{
		Transport: leads.TransportEmail,
		Subject:   e.Subject,
		HTML:      body,
		From:      e.From,
	})
	if err != nil {
		return nil, fmt.Errorf("inbound: process message %s: %w", e.MessageID, err)
	}
	return result, nil
}
