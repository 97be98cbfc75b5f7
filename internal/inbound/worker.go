package inbound

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/wolfman30/property-lead-bridge/pkg/logging"
)

// SQS caps long polls at 20s and batches at 10 messages.
const (
	defaultPollers    = 2
	defaultPollWait   = 20 * time.Second
	maxPollWait       = 20 * time.Second
	defaultBatchSize  = 5
	maxBatchSize      = 10
	deleteTimeout     = 5 * time.Second
	initialBackoff    = time.Second
	maxReceiveBackoff = 5 * time.Second
)

// WorkerOption customizes a Worker.
type WorkerOption func(*Worker)

// WithPollers sets how many goroutines poll the queue.
func WithPollers(n int) WorkerOption {
	return func(w *Worker) {
		if n > 0 {
			w.pollers = n
		}
	}
}

// WithPollWait sets the long-poll wait, clamped to what SQS allows.
func WithPollWait(d time.Duration) WorkerOption {
	return func(w *Worker) {
		if d >= 0 {
			w.pollWait = min(d, maxPollWait)
		}
	}
}

// WithBatchSize sets how many notifications one poll may return.
func WithBatchSize(n int) WorkerOption {
	return func(w *Worker) {
		if n > 0 {
			w.batchSize = int32(min(n, maxBatchSize))
		}
	}
}

// WithObjectLoader enables notifications produced by S3 receipt actions.
func WithObjectLoader(loader ObjectLoader) WorkerOption {
	return func(w *Worker) {
		w.loader = loader
	}
}

// Worker drains SES notifications (SES → SNS → SQS) into the email
// Processor. Every notification is deleted once handled, whatever the
// outcome, unless shutdown interrupted it. Failed CRM submissions are not
// retried.
type Worker struct {
	processor *Processor
	queue     notificationQueue
	loader    ObjectLoader
	logger    *logging.Logger

	pollers   int
	pollWait  time.Duration
	batchSize int32

	wg sync.WaitGroup
}

// NewWorker creates a notification worker.
func NewWorker(processor *Processor, queue notificationQueue, logger *logging.Logger, opts ...WorkerOption) *Worker {
	if processor == nil {
		panic("inbound: processor cannot be nil")
	}
	if queue == nil {
		panic("inbound: queue cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	w := &Worker{
		processor: processor,
		queue:     queue,
		logger:    logger,
		pollers:   defaultPollers,
		pollWait:  defaultPollWait,
		batchSize: defaultBatchSize,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start launches the pollers; they stop when ctx is cancelled.
func (w *Worker) Start(ctx context.Context) {
	for i := 1; i <= w.pollers; i++ {
		w.wg.Add(1)
		go w.poll(ctx, i)
	}
}

// Wait blocks until every poller has returned.
func (w *Worker) Wait() {
	w.wg.Wait()
}

func (w *Worker) poll(ctx context.Context, id int) {
	defer w.wg.Done()
	logger := w.logger.With("poller", id)
	backoff := initialBackoff

	for ctx.Err() == nil {
		msgs, err := w.queue.Receive(ctx, receiveRequest{MaxMessages: w.batchSize, Wait: w.pollWait})
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Error("failed to receive email notifications", "error", err, "retry_in", backoff)
			if !sleepCtx(ctx, backoff) {
				return
			}
			backoff = min(backoff*2, maxReceiveBackoff)
			continue
		}
		backoff = initialBackoff

		for _, msg := range msgs {
			w.handle(ctx, msg)
		}
	}
}

// handle processes one notification and always acknowledges it.
func (w *Worker) handle(ctx context.Context, msg queueMessage) {
	logger := w.logger.With("sqs_message_id", msg.ID)

	err := w.safeProcess(ctx, msg)
	switch {
	case err == nil, errors.Is(err, ErrRejectedOrigin):
	case ctx.Err() != nil:
		// Interrupted by shutdown; SQS redelivers after the visibility timeout.
		logger.Warn("email notification interrupted, leaving it queued", "error", err)
		return
	default:
		logger.Error("email notification failed", "error", err)
	}

	deleteCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), deleteTimeout)
	defer cancel()
	if err := w.queue.Delete(deleteCtx, msg.ReceiptHandle); err != nil {
		logger.Error("failed to delete email notification", "error", err)
	}
}

func (w *Worker) safeProcess(ctx context.Context, msg queueMessage) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("inbound: panic handling notification: %v", r)
		}
	}()

	n, err := DecodeNotification(msg.Body)
	if err != nil {
		return err
	}
	raw, err := n.RawMessage(ctx, w.loader)
	if err != nil {
		return fmt.Errorf("inbound: raw message %s: %w", n.Mail.MessageID, err)
	}
	result, err := w.processor.Process(ctx, n.Email(raw))
	if err != nil {
		return err
	}
	w.logger.Info("email notification handled", "message_id", n.Mail.MessageID, "submitted", result.Submitted)
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
