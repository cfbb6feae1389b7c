package queue

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Memory implements a buffered in-process queue that satisfies both
// the Publisher and Consumer interfaces. It backs single-process
// deployments where the worker runs inside the API server.
type Memory struct {
	messages chan Message
	logger   *slog.Logger

	mu     sync.Mutex
	closed bool
}

// NewMemory creates an in-process queue with the specified buffer size.
// If log is nil, a default logger is used.
func NewMemory(size int, log *slog.Logger) *Memory {
	if log == nil {
		log = slog.Default()
	}
	return &Memory{
		messages: make(chan Message, size),
		logger:   log.With(slog.String("component", "memory_queue")),
	}
}

// Ensure Memory satisfies both queue surfaces
var (
	_ Publisher = (*Memory)(nil)
	_ Consumer  = (*Memory)(nil)
)

// Publish adds a message to the queue without blocking.
// Returns ErrFull if the buffer is at capacity and ErrClosed after Close.
func (q *Memory) Publish(ctx context.Context, msg Message) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrClosed
	}

	// Send under the lock so Close cannot close the channel mid-send.
	select {
	case q.messages <- msg:
		q.mu.Unlock()
		q.logger.Debug("message enqueued",
			slog.String("message_id", msg.ID.String()),
			slog.Int("queue_len", len(q.messages)),
			slog.Int("queue_cap", cap(q.messages)))
		return nil
	default:
		q.mu.Unlock()
		return fmt.Errorf("%w: queue capacity %d reached", ErrFull, cap(q.messages))
	}
}

// Consume delivers queued messages to the handler until ctx is
// canceled or the queue is closed and drained.
func (q *Memory) Consume(ctx context.Context, handler Handler) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-q.messages:
			if !ok {
				return nil
			}
			if err := handler(ctx, msg); err != nil {
				// Handler errors are terminal for the message, not
				// for the consume loop.
				q.logger.Error("handler failed, dropping message",
					slog.String("message_id", msg.ID.String()),
					slog.String("error", err.Error()))
			}
		}
	}
}

// Close closes the queue, preventing further publishes. Messages
// already buffered are still delivered to an active consumer.
func (q *Memory) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.closed {
		q.closed = true
		close(q.messages)
		q.logger.Info("memory queue closed")
	}
	return nil
}
