package api

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Morty67/kollectiv-api/internal/api/shared"
	"github.com/Morty67/kollectiv-api/internal/service"
)

// maxUploadBytes caps the multipart body of an optimize request.
const maxUploadBytes = 20 << 20 // 20 MiB

// ImageHandler handles image-related HTTP requests.
type ImageHandler struct {
	service *service.ImageService
	logger  *slog.Logger
}

// NewImageHandler creates a new ImageHandler.
// If log is nil, a default logger is used.
func NewImageHandler(svc *service.ImageService, log *slog.Logger) *ImageHandler {
	if svc == nil {
		panic("image service cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &ImageHandler{
		service: svc,
		logger:  log.With(slog.String("component", "image_handler")),
	}
}

// List handles GET /images
func (h *ImageHandler) List(w http.ResponseWriter, r *http.Request) {
	images, err := h.service.List(r.Context())
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, images)
}

// Get handles GET /images/{id}
func (h *ImageHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := getPathID(w, r, "id")
	if !ok {
		return
	}

	image, err := h.service.Get(r.Context(), id)
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, image)
}

// Delete handles DELETE /images/{id}
func (h *ImageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := getPathID(w, r, "id")
	if !ok {
		return
	}

	result, err := h.service.Delete(r.Context(), id)
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, result)
}

// Optimize handles POST /images/optimize
//
// The request is multipart form data with a "file" part, a recipient
// "email" field, and optional "name" and "quality" fields. The name
// defaults to the uploaded filename; the quality to the service default.
// On success the response body is the optimized JPEG itself.
func (h *ImageHandler) Optimize(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Missing file upload")
		return
	}
	defer func() { _ = file.Close() }()

	payload, err := io.ReadAll(file)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Failed to read upload", err)
		return
	}

	email := r.FormValue("email")
	if err := validate.Var(email, "required,email"); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "A valid recipient email is required")
		return
	}

	name := r.FormValue("name")
	if name == "" {
		name = header.Filename
	}

	quality := 0
	if q := r.FormValue("quality"); q != "" {
		quality, err = strconv.Atoi(q)
		if err != nil || quality < 1 || quality > 100 {
			shared.RespondWithError(w, r, http.StatusBadRequest, "quality must be an integer between 1 and 100")
			return
		}
	}

	result, err := h.service.Optimize(r.Context(), service.OptimizeParams{
		Name:      name,
		Payload:   payload,
		Quality:   quality,
		Recipient: email,
	})
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

	// The optimized image is the response body; record metadata rides
	// in headers.
	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Content-Length", strconv.Itoa(len(result.Artifact)))
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", result.Image.Name))
	w.Header().Set("X-Image-ID", strconv.FormatInt(result.Image.ID, 10))
	w.Header().Set("X-Enqueued", strconv.FormatBool(result.Enqueued))
	w.WriteHeader(http.StatusCreated)
	if _, err := w.Write(result.Artifact); err != nil {
		h.logger.Error("failed to write optimized image response",
			slog.String("error", err.Error()))
	}
}
