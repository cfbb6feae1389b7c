package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Rabbit implements the Publisher and Consumer interfaces on top of a
// RabbitMQ broker, for deployments where the email worker runs as a
// separate process.
type Rabbit struct {
	conn      *amqp.Connection
	channel   *amqp.Channel
	queueName string
	logger    *slog.Logger
}

// NewRabbit dials the broker and declares the queue as a durable
// quorum queue. If log is nil, a default logger is used.
func NewRabbit(url, queueName string, log *slog.Logger) (*Rabbit, error) {
	if log == nil {
		log = slog.Default()
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	_, err = ch.QueueDeclare(queueName, true, false, false, false, amqp.Table{
		"x-queue-type": "quorum",
	})
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare queue %q: %w", queueName, err)
	}

	return &Rabbit{
		conn:      conn,
		channel:   ch,
		queueName: queueName,
		logger:    log.With(slog.String("component", "rabbit_queue")),
	}, nil
}

// Ensure Rabbit satisfies both queue surfaces
var (
	_ Publisher = (*Rabbit)(nil)
	_ Consumer  = (*Rabbit)(nil)
)

// Publish sends the message to the queue as a persistent JSON payload.
func (q *Rabbit) Publish(ctx context.Context, msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	err = q.channel.PublishWithContext(ctx, "", q.queueName, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    msg.ID.String(),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	q.logger.Debug("message published",
		slog.String("message_id", msg.ID.String()),
		slog.String("queue", q.queueName))
	return nil
}

// Consume delivers messages to the handler until ctx is canceled or
// the broker closes the delivery channel. Messages are acknowledged
// after the handler returns; malformed payloads are acknowledged and
// dropped.
func (q *Rabbit) Consume(ctx context.Context, handler Handler) error {
	deliveries, err := q.channel.Consume(q.queueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	q.logger.Info("waiting for messages", slog.String("queue", q.queueName))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case delivery, ok := <-deliveries:
			if !ok {
				return ErrClosed
			}

			var msg Message
			if err := json.Unmarshal(delivery.Body, &msg); err != nil {
				q.logger.Error("discarding malformed message",
					slog.String("error", err.Error()))
				_ = delivery.Ack(false)
				continue
			}

			if err := handler(ctx, msg); err != nil {
				q.logger.Error("handler failed, dropping message",
					slog.String("message_id", msg.ID.String()),
					slog.String("error", err.Error()))
			}
			_ = delivery.Ack(false)
		}
	}
}

// Close shuts down the channel and connection.
func (q *Rabbit) Close() error {
	if q.channel != nil {
		_ = q.channel.Close()
	}
	if q.conn != nil {
		return q.conn.Close()
	}
	return nil
}
