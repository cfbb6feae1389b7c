package worker

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

	"github.com/Morty67/kollectiv-api/internal/platform/smtp"
	"github.com/Morty67/kollectiv-api/internal/queue"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// recordingSender captures sent messages and can fail selected sends.
type recordingSender struct {
	mu     sync.Mutex
	sent   []smtp.Message
	failOn func(msg smtp.Message) error
}

func (s *recordingSender) Send(_ context.Context, msg smtp.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failOn != nil {
		if err := s.failOn(msg); err != nil {
			return err
		}
	}
	s.sent = append(s.sent, msg)
	return nil
}

func (s *recordingSender) messages() []smtp.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]smtp.Message(nil), s.sent...)
}

func TestWorkerDeliversOptimizedImage(t *testing.T) {
	t.Parallel()

	q := queue.NewMemory(4, discardLogger())
	sender := &recordingSender{}
	w := New(q, sender, 1, discardLogger())

	require.NoError(t, q.Publish(context.Background(), queue.NewMessage([]byte("jpeg-bytes"), "alice@example.com")))
	require.NoError(t, q.Close())

	err := w.Run(context.Background())
	require.NoError(t, err)

	sent := sender.messages()
	require.Len(t, sent, 1)
	assert.Equal(t, "alice@example.com", sent[0].To)
	assert.Equal(t, "Optimized Image", sent[0].Subject)
	assert.Equal(t, "Optimized image is attached.", sent[0].Body)
	assert.Equal(t, "optimized_image.jpg", sent[0].AttachmentName)
	assert.Equal(t, []byte("jpeg-bytes"), sent[0].Attachment)
}

func TestWorkerSurvivesSendFailure(t *testing.T) {
	t.Parallel()

	q := queue.NewMemory(4, discardLogger())
	sender := &recordingSender{
		failOn: func(msg smtp.Message) error {
			if msg.To == "broken@example.com" {
				return errors.New("relay refused")
			}
			return nil
		},
	}
	w := New(q, sender, 1, discardLogger())

	ctx := context.Background()
	require.NoError(t, q.Publish(ctx, queue.NewMessage([]byte("one"), "broken@example.com")))
	require.NoError(t, q.Publish(ctx, queue.NewMessage([]byte("two"), "alice@example.com")))
	require.NoError(t, q.Close())

	err := w.Run(ctx)
	require.NoError(t, err)

	// The failed message is dropped; the next one still goes out.
	sent := sender.messages()
	require.Len(t, sent, 1)
	assert.Equal(t, "alice@example.com", sent[0].To)
}

func TestWorkerStopsOnContextCancel(t *testing.T) {
	t.Parallel()

	q := queue.NewMemory(4, discardLogger())
	sender := &recordingSender{}
	w := New(q, sender, 2, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop after context cancellation")
	}
}

func TestWorkerMultipleConsumersDrainQueue(t *testing.T) {
	t.Parallel()

	q := queue.NewMemory(16, discardLogger())
	sender := &recordingSender{}
	w := New(q, sender, 4, discardLogger())

	ctx := context.Background()
	for i := 0; i < 10; i++ {
		require.NoError(t, q.Publish(ctx, queue.NewMessage([]byte("artifact"), "alice@example.com")))
	}
	require.NoError(t, q.Close())

	require.NoError(t, w.Run(ctx))
	assert.Len(t, sender.messages(), 10)
}
