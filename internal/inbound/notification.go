package inbound

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-lambda-go/events"
)

// ErrNoContent is returned for a notification that carries neither inline
// content nor an S3 location.
var ErrNoContent = errors.New("inbound: notification has no message content")

// snsEnvelope wraps the SES notification unless raw message delivery is
// enabled on the subscription.
type snsEnvelope struct {
	Type      string `json:"Type"`
	MessageID string `json:"MessageId"`
	Message   string `json:"Message"`
}

// Notification is an SES "Received" notification published by an SNS or
// S3 receipt action.
type Notification struct {
	NotificationType string                    `json:"notificationType"`
	Mail             events.SimpleEmailMessage `json:"mail"`
	Receipt          struct {
		Action NotificationAction `json:"action"`
	} `json:"receipt"`
	Content string `json:"content"`
}

// NotificationAction is the receipt action that produced the notification.
type NotificationAction struct {
	Type       string `json:"type"`
	Encoding   string `json:"encoding"`
	BucketName string `json:"bucketName"`
	ObjectKey  string `json:"objectKey"`
}

// ObjectLoader fetches a raw message from an explicit S3 location.
type ObjectLoader interface {
	Load(ctx context.Context, bucket, key string) (string, error)
}

// DecodeNotification reads an SQS message body as an SNS envelope holding
// an SES notification, or as a bare notification.
func DecodeNotification(body string) (*Notification, error) {
	payload := body
	var envelope snsEnvelope
	if err := json.Unmarshal([]byte(body), &envelope); err == nil && envelope.Type == "Notification" && envelope.Message != "" {
		payload = envelope.Message
	}

	var n Notification
	if err := json.Unmarshal([]byte(payload), &n); err != nil {
		return nil, fmt.Errorf("inbound: decode ses notification: %w", err)
	}
	return &n, nil
}

// RawMessage returns the full MIME message, decoding inline content or
// loading it from S3 for S3 actions.
func (n *Notification) RawMessage(ctx context.Context, loader ObjectLoader) (string, error) {
	if n.Content != "" {
		if strings.EqualFold(n.Receipt.Action.Encoding, "BASE64") {
			decoded, err := base64.StdEncoding.DecodeString(n.Content)
			if err != nil {
				return "", fmt.Errorf("inbound: decode notification content: %w", err)
			}
			return string(decoded), nil
		}
		return n.Content, nil
	}

	action := n.Receipt.Action
	if strings.EqualFold(action.Type, "S3") && action.ObjectKey != "" && loader != nil {
		return loader.Load(ctx, action.BucketName, action.ObjectKey)
	}
	return "", ErrNoContent
}

// Email converts the notification into the processor's input.
func (n *Notification) Email(raw string) Email {
	return Email{
		MessageID:  n.Mail.MessageID,
		From:       n.Mail.Source,
		HeaderFrom: strings.Join(n.Mail.CommonHeaders.From, ", "),
		Subject:    n.Mail.CommonHeaders.Subject,
		Raw:        raw,
	}
}
