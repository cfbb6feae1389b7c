// Package worker runs the delivery side of the image pipeline: it
// consumes optimized-image messages and emails the artifacts to their
// recipients.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Morty67/kollectiv-api/internal/platform/smtp"
	"github.com/Morty67/kollectiv-api/internal/queue"
)

// Email template for optimized image delivery.
const (
	emailSubject   = "Optimized Image"
	emailBody      = "Optimized image is attached."
	attachmentName = "optimized_image.jpg"
)

// Worker consumes delivery messages and sends each artifact as an
// email attachment. Send failures are logged and the message dropped;
// delivery is best-effort and never retried.
type Worker struct {
	consumer queue.Consumer
	sender   smtp.Sender
	workers  int
	logger   *slog.Logger
}

// New creates a Worker running the given number of concurrent
// consumers. A count below one is raised to one.
// If log is nil, a default logger is used.
func New(consumer queue.Consumer, sender smtp.Sender, workers int, log *slog.Logger) *Worker {
	if consumer == nil {
		panic("consumer cannot be nil")
	}
	if sender == nil {
		panic("sender cannot be nil")
	}
	if workers < 1 {
		workers = 1
	}
	if log == nil {
		log = slog.Default()
	}
	return &Worker{
		consumer: consumer,
		sender:   sender,
		workers:  workers,
		logger:   log.With(slog.String("component", "email_worker")),
	}
}

// Run starts the consumer goroutines and blocks until ctx is canceled
// or every consumer has stopped. Context cancellation is the normal
// way to stop and is not reported as an error.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info("starting email workers", slog.Int("count", w.workers))

	errs := make([]error, w.workers)
	var wg sync.WaitGroup
	wg.Add(w.workers)
	for i := 0; i < w.workers; i++ {
		go func(i int) {
			defer wg.Done()
			err := w.consumer.Consume(ctx, w.handle)
			if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, queue.ErrClosed) {
				errs[i] = err
			}
		}(i)
	}
	wg.Wait()

	w.logger.Info("email workers stopped")
	return errors.Join(errs...)
}

// handle delivers one message. The returned error is informational to
// the consume loop; failed messages are not redelivered.
func (w *Worker) handle(ctx context.Context, msg queue.Message) error {
	err := w.sender.Send(ctx, smtp.Message{
		To:             msg.Recipient,
		Subject:        emailSubject,
		Body:           emailBody,
		AttachmentName: attachmentName,
		Attachment:     msg.Artifact,
	})
	if err != nil {
		w.logger.Error("failed to deliver optimized image",
			slog.String("message_id", msg.ID.String()),
			slog.String("recipient", msg.Recipient),
			slog.String("error", err.Error()))
		return fmt.Errorf("deliver %s: %w", msg.ID, err)
	}

	w.logger.Info("optimized image delivered",
		slog.String("message_id", msg.ID.String()),
		slog.String("recipient", msg.Recipient),
		slog.Int("artifact_bytes", len(msg.Artifact)))
	return nil
}
