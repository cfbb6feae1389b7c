// Package queue defines the message contract between the image
// producer and the email worker, with in-memory and RabbitMQ backends.
package queue

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// Common queue errors.
var (
	// ErrFull is returned when a publish is rejected because the queue
	// has no capacity left.
	ErrFull = errors.New("queue is full")

	// ErrClosed is returned when operating on a closed queue.
	ErrClosed = errors.New("queue is closed")
)

// Message is a unit of work handed from the producer to the worker:
// an optimized image artifact and the address to deliver it to.
type Message struct {
	ID        uuid.UUID `json:"id"`
	Artifact  []byte    `json:"artifact"`
	Recipient string    `json:"recipient"`
}

// NewMessage creates a Message with a fresh ID.
func NewMessage(artifact []byte, recipient string) Message {
	return Message{
		ID:        uuid.New(),
		Artifact:  artifact,
		Recipient: recipient,
	}
}

// Handler processes a single message. A nil return acknowledges the
// message; consumers never see it again either way, since delivery
// failures are logged and dropped rather than retried.
type Handler func(ctx context.Context, msg Message) error

// Publisher is the producer-side queue surface.
type Publisher interface {
	// Publish enqueues the message. Returns ErrFull when the queue is
	// at capacity and ErrClosed after Close.
	Publish(ctx context.Context, msg Message) error

	// Close releases the publisher's resources. Subsequent publishes
	// return ErrClosed.
	Close() error
}

// Consumer is the worker-side queue surface.
type Consumer interface {
	// Consume delivers messages to the handler until ctx is canceled
	// or the queue closes. It blocks for the duration.
	Consume(ctx context.Context, handler Handler) error
}
