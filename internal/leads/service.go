package leads

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/wolfman30/property-lead-bridge/internal/observability/metrics"
	"github.com/wolfman30/property-lead-bridge/pkg/logging"
)

var leadsTracer = otel.Tracer("bridge.internal.leads")

// PageClassifier classifies a property from its remote detail page.
type PageClassifier interface {
	Classify(ctx context.Context, url string) (Category, error)
}

// Submitter hands a finished lead to the CRM.
type Submitter interface {
	Submit(ctx context.Context, lead *Lead) error
}

// Result is the outcome of processing one notification.
type Result struct {
	Lead      *Lead
	Submitted bool
}

// Service runs the full pipeline shared by every transport: parse, remote
// classification fallback, CRM submission.
type Service struct {
	parser  *Parser
	pages   PageClassifier
	crm     Submitter
	metrics *metrics.LeadMetrics
	logger  *logging.Logger
}

// ServiceOption customizes a Service.
type ServiceOption func(*Service)

// WithParser overrides the default parser.
func WithParser(p *Parser) ServiceOption {
	return func(s *Service) {
		if p != nil {
			s.parser = p
		}
	}
}

// WithPageClassifier enables the remote classification stage.
func WithPageClassifier(pc PageClassifier) ServiceOption {
	return func(s *Service) {
		s.pages = pc
	}
}

// WithMetrics records pipeline metrics.
func WithMetrics(m *metrics.LeadMetrics) ServiceOption {
	return func(s *Service) {
		s.metrics = m
	}
}

// NewService creates the lead pipeline.
func NewService(crm Submitter, logger *logging.Logger, opts ...ServiceOption) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	s := &Service{
		parser: NewParser(),
		crm:    crm,
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Process turns one notification into a lead and submits it. The only
// error returned is input rejection; fallback and CRM failures are logged
// and reflected in Result.Submitted.
func (s *Service) Process(ctx context.Context, in Inbound) (*Result, error) {
	start := time.Now()
	transport := string(in.Transport)

	ctx, span := leadsTracer.Start(ctx, "leads.process")
	defer span.End()
	span.SetAttributes(attribute.String("lead.transport", transport))

	logger := s.logger.With("transport", transport)
	logger.Info("processing notification", "subject", in.Subject, "from", logging.ScrubPII(in.From))

	lead, err := s.parser.Parse(in.Subject, in.HTML)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "rejected")
		s.metrics.ObserveLead(transport, "rejected")
		logger.Warn("notification rejected", "error", err)
		return nil, err
	}
	if missing := MissingFields(lead); len(missing) > 0 {
		logger.Debug("fields not extracted", "fields", missing)
	}

	s.classifyRemote(ctx, lead, logger)

	result := &Result{Lead: lead}
	result.Submitted = s.submit(ctx, lead, logger)

	status := "submitted"
	if !result.Submitted {
		status = "submit_failed"
	}
	span.SetAttributes(
		attribute.String("lead.category", string(lead.PropertyCategory)),
		attribute.String("lead.category_source", string(lead.CategorySource)),
		attribute.Bool("lead.submitted", result.Submitted),
	)
	s.metrics.ObserveLead(transport, status)
	s.metrics.ObserveLatency(transport, time.Since(start).Seconds())

	attrs := []any{
		"contact_name", lead.ContactName,
		"city", lead.City,
		"property_category", lead.PropertyCategory,
		"category_source", lead.CategorySource,
		"price", lead.Price,
		"submitted", result.Submitted,
	}
	if lead.Phone != "" {
		attrs = append(attrs, "phone_hash", logging.HashValue(lead.Phone))
	}
	logger.Info("lead processed", attrs...)
	return result, nil
}

// classifyRemote is the last classification stage. It runs only when the
// local stages found nothing and the lead links to a property page.
func (s *Service) classifyRemote(ctx context.Context, lead *Lead, logger *logging.Logger) {
	if lead.PropertyCategory != CategoryNone || lead.PropertyURL == "" || s.pages == nil {
		return
	}
	logger.Info("fetching property page for classification", "url", lead.PropertyURL)

	category, err := s.pages.Classify(ctx, lead.PropertyURL)
	if err != nil {
		s.metrics.ObserveRemote("error")
		logger.Warn("property page classification failed", "error", err, "url", lead.PropertyURL)
		return
	}
	if category == CategoryNone {
		s.metrics.ObserveRemote("miss")
		return
	}
	s.metrics.ObserveRemote("hit")
	lead.PropertyCategory = category
	lead.CategorySource = StageRemote
}

func (s *Service) submit(ctx context.Context, lead *Lead, logger *logging.Logger) bool {
	if s.crm == nil {
		logger.Warn("no CRM configured; lead not submitted")
		return false
	}
	if err := s.crm.Submit(ctx, lead); err != nil {
		s.metrics.ObserveSubmission(false)
		logger.Error("crm submission failed", "error", err)
		return false
	}
	s.metrics.ObserveSubmission(true)
	return true
}
