package inbound

import (
	"context"
	"errors"
	"strings"

	"github.com/aws/aws-lambda-go/events"

	"github.com/wolfman30/property-lead-bridge/pkg/logging"
)

// MessageLoader fetches a raw message stored by an earlier receipt action.
type MessageLoader interface {
	LoadMessage(ctx context.Context, messageID string) (string, error)
}

// SESHandler is the Lambda entry point for an SES receipt rule. SES only
// passes headers to Lambda, so the raw message is read from the S3 object
// written by the rule's preceding S3 action.
type SESHandler struct {
	processor *Processor
	loader    MessageLoader
	logger    *logging.Logger
}

// NewSESHandler creates the Lambda handler.
func NewSESHandler(processor *Processor, loader MessageLoader, logger *logging.Logger) *SESHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &SESHandler{processor: processor, loader: loader, logger: logger}
}

// Handle processes every record. A rejected origin stops the rule so later
// actions never see the message; all other failures are logged and the
// rule set continues.
func (h *SESHandler) Handle(ctx context.Context, event events.SimpleEmailEvent) (events.SimpleEmailDisposition, error) {
	disposition := events.SimpleEmailDisposition{Disposition: events.SimpleEmailContinue}

	for _, record := range event.Records {
		mail := record.SES.Mail
		logger := h.logger.With("message_id", mail.MessageID)

		raw, err := h.loader.LoadMessage(ctx, mail.MessageID)
		if err != nil {
			logger.Error("failed to load raw message", "error", err)
			continue
		}

		_, err = h.processor.Process(ctx, Email{
			MessageID:  mail.MessageID,
			From:       mail.Source,
			HeaderFrom: strings.Join(mail.CommonHeaders.From, ", "),
			Subject:    mail.CommonHeaders.Subject,
			Raw:        raw,
		})
		switch {
		case errors.Is(err, ErrRejectedOrigin):
			disposition.Disposition = events.SimpleEmailStopRule
		case err != nil:
			logger.Error("failed to process email", "error", err)
		}
	}
	return disposition, nil
}
