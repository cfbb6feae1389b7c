// Package imaging wraps libvips behind a small transcoding interface
// so the rest of the application stays free of cgo concerns.
package imaging

import (
	"fmt"
	"log/slog"

	"github.com/cshum/vipsgen/vips"

	"github.com/Morty67/kollectiv-api/internal/domain"
)

// Transcoder re-encodes image payloads.
type Transcoder interface {
	// Transcode decodes data as an image and re-encodes it as a JPEG
	// at the given quality (1-100).
	// Returns domain.ErrDecode if data is not a decodable image.
	Transcode(data []byte, quality int) ([]byte, error)
}

// VipsTranscoder implements Transcoder using libvips.
type VipsTranscoder struct {
	logger *slog.Logger
}

// NewVipsTranscoder creates a libvips-backed transcoder.
// Startup must have been called first.
// If log is nil, a default logger is used.
func NewVipsTranscoder(log *slog.Logger) *VipsTranscoder {
	if log == nil {
		log = slog.Default()
	}
	return &VipsTranscoder{
		logger: log.With(slog.String("component", "vips_transcoder")),
	}
}

// Ensure VipsTranscoder implements Transcoder
var _ Transcoder = (*VipsTranscoder)(nil)

// Transcode implements Transcoder.Transcode
func (t *VipsTranscoder) Transcode(data []byte, quality int) ([]byte, error) {
	img, err := vips.NewImageFromBuffer(data, nil)
	if err != nil {
		t.logger.Warn("failed to decode image payload",
			slog.Int("payload_bytes", len(data)),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %v", domain.ErrDecode, err)
	}
	defer img.Close()

	out, err := img.JpegsaveBuffer(&vips.JpegsaveOptions{Q: quality})
	if err != nil {
		return nil, fmt.Errorf("failed to encode jpeg: %w", err)
	}

	t.logger.Debug("image transcoded",
		slog.Int("input_bytes", len(data)),
		slog.Int("output_bytes", len(out)),
		slog.Int("quality", quality))
	return out, nil
}

// Startup initializes libvips. Worker parallelism lives in the
// application's worker pool, so vips runs with a single internal
// thread.
func Startup() {
	vips.Startup(&vips.Config{
		ConcurrencyLevel: 1,
	})
}

// Shutdown releases libvips resources.
func Shutdown() {
	vips.Shutdown()
}
