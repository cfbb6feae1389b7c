package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Morty67/kollectiv-api/internal/domain"
	"github.com/Morty67/kollectiv-api/internal/queue"
	"github.com/Morty67/kollectiv-api/internal/store"
)

func TestImageServiceOptimize(t *testing.T) {
	t.Parallel()

	images := &mockImageStore{}
	transcoder := &mockTranscoder{out: []byte("jpeg-bytes")}
	publisher := &mockPublisher{}
	svc := NewImageService(images, transcoder, publisher, testLogger())

	result, err := svc.Optimize(context.Background(), OptimizeParams{
		Name:      "photo.jpg",
		Payload:   []byte("raw-bytes"),
		Quality:   80,
		Recipient: "alice@example.com",
	})
	require.NoError(t, err)

	assert.True(t, result.Enqueued)
	assert.Equal(t, []byte("jpeg-bytes"), result.Artifact)
	assert.Equal(t, "photo.jpg", result.Image.Name)
	assert.Equal(t, []string{"photo.jpg"}, images.added)

	require.Len(t, publisher.published, 1)
	msg := publisher.published[0]
	assert.Equal(t, "alice@example.com", msg.Recipient)
	assert.Equal(t, []byte("jpeg-bytes"), msg.Artifact)
	assert.NotEqual(t, msg.ID.String(), "00000000-0000-0000-0000-000000000000")
}

func TestImageServiceOptimizeDecodeFailure(t *testing.T) {
	t.Parallel()

	images := &mockImageStore{}
	transcoder := &mockTranscoder{err: domain.ErrDecode}
	publisher := &mockPublisher{}
	svc := NewImageService(images, transcoder, publisher, testLogger())

	_, err := svc.Optimize(context.Background(), OptimizeParams{
		Name:      "broken.jpg",
		Payload:   []byte("not an image"),
		Recipient: "alice@example.com",
	})
	assert.ErrorIs(t, err, domain.ErrDecode)

	// A payload that never decoded leaves no trace: no record, no
	// message.
	assert.Empty(t, images.added)
	assert.Empty(t, publisher.published)
}

func TestImageServiceOptimizeDuplicateName(t *testing.T) {
	t.Parallel()

	images := &mockImageStore{
		addFn: func(_ context.Context, _ string) (*domain.Image, error) {
			return nil, store.ErrDuplicateName
		},
	}
	transcoder := &mockTranscoder{out: []byte("jpeg-bytes")}
	publisher := &mockPublisher{}
	svc := NewImageService(images, transcoder, publisher, testLogger())

	_, err := svc.Optimize(context.Background(), OptimizeParams{
		Name:      "photo.jpg",
		Payload:   []byte("raw-bytes"),
		Recipient: "alice@example.com",
	})
	assert.ErrorIs(t, err, store.ErrDuplicateName)
	assert.Empty(t, publisher.published)
}

func TestImageServiceOptimizeQueueFull(t *testing.T) {
	t.Parallel()

	images := &mockImageStore{}
	transcoder := &mockTranscoder{out: []byte("jpeg-bytes")}
	publisher := &mockPublisher{err: queue.ErrFull}
	svc := NewImageService(images, transcoder, publisher, testLogger())

	result, err := svc.Optimize(context.Background(), OptimizeParams{
		Name:      "photo.jpg",
		Payload:   []byte("raw-bytes"),
		Recipient: "alice@example.com",
	})
	require.NoError(t, err)

	// The artifact still comes back; only delivery was skipped.
	assert.False(t, result.Enqueued)
	assert.Equal(t, []byte("jpeg-bytes"), result.Artifact)
	assert.Equal(t, []string{"photo.jpg"}, images.added)
}

func TestImageServiceOptimizeDefaultQuality(t *testing.T) {
	t.Parallel()

	images := &mockImageStore{}
	transcoder := &mockTranscoder{out: []byte("jpeg-bytes")}
	publisher := &mockPublisher{}
	svc := NewImageService(images, transcoder, publisher, testLogger())

	result, err := svc.Optimize(context.Background(), OptimizeParams{
		Name:      "photo.jpg",
		Payload:   []byte("raw-bytes"),
		Recipient: "alice@example.com",
	})
	require.NoError(t, err)
	assert.True(t, result.Enqueued)
	assert.Equal(t, 1, transcoder.calls)
}
