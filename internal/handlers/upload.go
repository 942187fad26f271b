package handlers

import (
	"net/http"

	"ambulance-tracker-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// UploadHandler handles attachment uploads
type UploadHandler struct {
	uploadService *services.UploadService
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(uploadService *services.UploadService) *UploadHandler {
	return &UploadHandler{uploadService: uploadService}
}

// Upload handles POST /api/upload. Accepts one multipart file under the
// "file" field and returns the URL it will be served from.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, services.MaxUploadSize)
	if err := r.ParseMultipartForm(services.MaxUploadSize); err != nil {
		respondError(w, "File too large or invalid multipart body", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, "No file uploaded", http.StatusBadRequest)
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !services.AllowedContentType(contentType) {
		respondError(w, "Invalid file type. Only JPG, JPEG, PNG, GIF, WEBP, MP4, HEIC, and MOV are allowed.", http.StatusBadRequest)
		return
	}

	imageURL, err := h.uploadService.Store(r.Context(), header.Filename, contentType, file)
	if err != nil {
		log.Error().Err(err).Str("filename", header.Filename).Msg("Failed to store upload")
		respondError(w, "Failed to store file", http.StatusInternalServerError)
		return
	}

	respondJSON(w, map[string]string{"imageUrl": imageURL}, http.StatusOK)
}
