package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Morty67/kollectiv-api/internal/domain"
	"github.com/Morty67/kollectiv-api/internal/platform/imaging"
	"github.com/Morty67/kollectiv-api/internal/platform/logger"
	"github.com/Morty67/kollectiv-api/internal/queue"
	"github.com/Morty67/kollectiv-api/internal/store"
)

// DefaultQuality is the JPEG quality used when the caller does not
// specify one.
const DefaultQuality = 75

// OptimizeParams carries one optimize request.
type OptimizeParams struct {
	// Name is the filename recorded for the upload. Must be unique.
	Name string

	// Payload is the raw uploaded image.
	Payload []byte

	// Quality is the JPEG quality (1-100). Zero means DefaultQuality.
	Quality int

	// Recipient is the email address the optimized image is sent to.
	Recipient string
}

// OptimizeResult is the outcome of an optimize request. Artifact is
// always populated on success; Enqueued reports whether delivery was
// handed to the queue, which does not affect the caller's result.
type OptimizeResult struct {
	Image    *domain.Image
	Artifact []byte
	Enqueued bool
}

// ImageService transcodes uploads, records their names and hands the
// optimized artifacts to the delivery queue.
type ImageService struct {
	images         store.ImageStore
	transcoder     imaging.Transcoder
	publisher      queue.Publisher
	defaultQuality int
	logger         *slog.Logger
}

// NewImageService creates a new ImageService.
// If log is nil, a default logger is used.
func NewImageService(
	images store.ImageStore,
	transcoder imaging.Transcoder,
	publisher queue.Publisher,
	log *slog.Logger,
) *ImageService {
	if images == nil {
		panic("images store cannot be nil")
	}
	if transcoder == nil {
		panic("transcoder cannot be nil")
	}
	if publisher == nil {
		panic("publisher cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &ImageService{
		images:         images,
		transcoder:     transcoder,
		publisher:      publisher,
		defaultQuality: DefaultQuality,
		logger:         log.With(slog.String("component", "image_service")),
	}
}

// SetDefaultQuality overrides the quality used for requests that do
// not specify one. Values outside 1-100 are ignored.
func (s *ImageService) SetDefaultQuality(quality int) {
	if quality >= 1 && quality <= 100 {
		s.defaultQuality = quality
	}
}

// List returns all recorded image names ordered by ID.
func (s *ImageService) List(ctx context.Context) ([]domain.Image, error) {
	return s.images.List(ctx)
}

// Get retrieves an image record by ID.
// Returns store.ErrImageNotFound if it does not exist.
func (s *ImageService) Get(ctx context.Context, id int64) (*domain.Image, error) {
	return s.images.GetByID(ctx, id)
}

// Delete removes an image record by ID. A missing record is a normal
// outcome reported through DeleteResult, not an error.
func (s *ImageService) Delete(ctx context.Context, id int64) (*DeleteResult, error) {
	if err := s.images.DeleteByID(ctx, id); err != nil {
		if store.IsNotFoundError(err) {
			return &DeleteResult{
				Deleted: false,
				Message: fmt.Sprintf("image with ID %d not found", id),
			}, nil
		}
		return nil, err
	}
	return &DeleteResult{
		Deleted: true,
		Message: fmt.Sprintf("image with ID %d deleted", id),
	}, nil
}

// Optimize re-encodes the uploaded payload, records its name and
// enqueues the artifact for email delivery.
//
// A payload that does not decode returns domain.ErrDecode and nothing
// is recorded or published. A name collision returns
// store.ErrDuplicateName. A full or closed queue is logged and
// reported through OptimizeResult.Enqueued; it never fails the
// request.
func (s *ImageService) Optimize(ctx context.Context, params OptimizeParams) (*OptimizeResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	quality := params.Quality
	if quality == 0 {
		quality = s.defaultQuality
	}

	artifact, err := s.transcoder.Transcode(params.Payload, quality)
	if err != nil {
		return nil, err
	}

	image, err := s.images.Add(ctx, params.Name)
	if err != nil {
		return nil, err
	}

	result := &OptimizeResult{
		Image:    image,
		Artifact: artifact,
	}

	msg := queue.NewMessage(artifact, params.Recipient)
	if err := s.publisher.Publish(ctx, msg); err != nil {
		if errors.Is(err, queue.ErrFull) || errors.Is(err, queue.ErrClosed) {
			log.Warn("delivery not enqueued",
				slog.String("name", params.Name),
				slog.String("recipient", params.Recipient),
				slog.String("error", err.Error()))
			return result, nil
		}
		log.Error("failed to publish delivery message",
			slog.String("name", params.Name),
			slog.String("error", err.Error()))
		return result, nil
	}

	result.Enqueued = true
	log.Info("image optimized and queued",
		slog.Int64("image_id", image.ID),
		slog.String("message_id", msg.ID.String()),
		slog.Int("artifact_bytes", len(artifact)))
	return result, nil
}
