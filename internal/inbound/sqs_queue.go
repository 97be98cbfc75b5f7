package inbound

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

// receiveRequest is one long poll.
type receiveRequest struct {
	MaxMessages int32
	Wait        time.Duration
}

type queueMessage struct {
	ID            string
	Body          string
	ReceiptHandle string
}

// notificationQueue is the queue the Worker drains.
type notificationQueue interface {
	Receive(ctx context.Context, req receiveRequest) ([]queueMessage, error)
	Delete(ctx context.Context, receiptHandle string) error
}

// SQSAPI is the subset of the SQS client used by SQSQueue.
type SQSAPI interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// SQSQueue reads SES notifications from the queue subscribed to the
// receipt rule's SNS topic.
type SQSQueue struct {
	client   SQSAPI
	queueURL string
}

// NewSQSQueue wraps an SQS client bound to one queue URL.
func NewSQSQueue(client SQSAPI, queueURL string) *SQSQueue {
	if client == nil {
		panic("inbound: SQS client cannot be nil")
	}
	if queueURL == "" {
		panic("inbound: SQS queueURL cannot be empty")
	}
	return &SQSQueue{client: client, queueURL: queueURL}
}

// Receive long-polls for up to req.MaxMessages notifications.
func (q *SQSQueue) Receive(ctx context.Context, req receiveRequest) ([]queueMessage, error) {
	out, err := q.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(q.queueURL),
		MaxNumberOfMessages: req.MaxMessages,
		WaitTimeSeconds:     int32(req.Wait / time.Second),
	})
	if err != nil {
		return nil, fmt.Errorf("inbound: receive notifications: %w", err)
	}
	return toQueueMessages(out.Messages), nil
}

// Delete acknowledges a handled notification. An empty handle is a no-op.
func (q *SQSQueue) Delete(ctx context.Context, receiptHandle string) error {
	if receiptHandle == "" {
		return nil
	}
	if _, err := q.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(q.queueURL),
		ReceiptHandle: aws.String(receiptHandle),
	}); err != nil {
		return fmt.Errorf("inbound: delete notification: %w", err)
	}
	return nil
}

func toQueueMessages(msgs []sqstypes.Message) []queueMessage {
	out := make([]queueMessage, len(msgs))
	for i, m := range msgs {
		out[i] = queueMessage{
			ID:            aws.ToString(m.MessageId),
			Body:          aws.ToString(m.Body),
			ReceiptHandle: aws.ToString(m.ReceiptHandle),
		}
	}
	return out
}
