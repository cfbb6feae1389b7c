package queue

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestMemoryPublishAndConsume(t *testing.T) {
	t.Parallel()

	q := NewMemory(4, discardLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sent := []Message{
		NewMessage([]byte("one"), "a@example.com"),
		NewMessage([]byte("two"), "b@example.com"),
	}
	for _, msg := range sent {
		require.NoError(t, q.Publish(ctx, msg))
	}

	var mu sync.Mutex
	var received []Message
	done := make(chan struct{})

	go func() {
		defer close(done)
		_ = q.Consume(ctx, func(_ context.Context, msg Message) error {
			mu.Lock()
			received = append(received, msg)
			if len(received) == len(sent) {
				cancel()
			}
			mu.Unlock()
			return nil
		})
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("consumer did not receive all messages in time")
	}

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, received, 2)
	assert.Equal(t, sent[0].ID, received[0].ID)
	assert.Equal(t, "a@example.com", received[0].Recipient)
	assert.Equal(t, []byte("two"), received[1].Artifact)
}

func TestMemoryPublishFull(t *testing.T) {
	t.Parallel()

	q := NewMemory(1, discardLogger())
	ctx := context.Background()

	require.NoError(t, q.Publish(ctx, NewMessage([]byte("one"), "a@example.com")))

	err := q.Publish(ctx, NewMessage([]byte("two"), "b@example.com"))
	assert.ErrorIs(t, err, ErrFull)
}

func TestMemoryPublishAfterClose(t *testing.T) {
	t.Parallel()

	q := NewMemory(1, discardLogger())
	require.NoError(t, q.Close())

	err := q.Publish(context.Background(), NewMessage([]byte("one"), "a@example.com"))
	assert.ErrorIs(t, err, ErrClosed)

	// Close is idempotent
	assert.NoError(t, q.Close())
}

func TestMemoryConsumeDrainsAfterClose(t *testing.T) {
	t.Parallel()

	q := NewMemory(4, discardLogger())
	require.NoError(t, q.Publish(context.Background(), NewMessage([]byte("one"), "a@example.com")))
	require.NoError(t, q.Close())

	var count int
	err := q.Consume(context.Background(), func(_ context.Context, _ Message) error {
		count++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestMemoryConsumeSurvivesHandlerError(t *testing.T) {
	t.Parallel()

	q := NewMemory(4, discardLogger())
	ctx := context.Background()
	require.NoError(t, q.Publish(ctx, NewMessage([]byte("bad"), "a@example.com")))
	require.NoError(t, q.Publish(ctx, NewMessage([]byte("good"), "b@example.com")))
	require.NoError(t, q.Close())

	var delivered []string
	err := q.Consume(ctx, func(_ context.Context, msg Message) error {
		delivered = append(delivered, string(msg.Artifact))
		if string(msg.Artifact) == "bad" {
			return errors.New("boom")
		}
		return nil
	})
	require.NoError(t, err)

	// The failed message is dropped, not redelivered, and the loop
	// keeps going.
	assert.Equal(t, []string{"bad", "good"}, delivered)
}
