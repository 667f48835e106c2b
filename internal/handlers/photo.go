package handlers

import (
	"context"
	"errors"
	"net/http"

	"member-directory-backend/internal/middleware"
	"member-directory-backend/internal/models"
	"member-directory-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// maxPhotoSize bounds the multipart body of a photo upload
const maxPhotoSize = 10 << 20

type photoService interface {
	AddPhoto(ctx context.Context, username string, upload services.PhotoUpload) (*models.PhotoDTO, error)
	SetMainPhoto(ctx context.Context, username, photoID string) error
	DeletePhoto(ctx context.Context, username, photoID string) error
}

// PhotoHandler handles photo-related HTTP requests
type PhotoHandler struct {
	photoService photoService
}

// NewPhotoHandler creates a new photo handler
func NewPhotoHandler(photoService photoService) *PhotoHandler {
	return &PhotoHandler{
		photoService: photoService,
	}
}

// AddPhoto handles POST /api/v1/users/add-photo
func (h *PhotoHandler) AddPhoto(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	username := middleware.GetUsername(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, maxPhotoSize)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, "file is too large", http.StatusRequestEntityTooLarge)
			return
		}
		respondError(w, "file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	photo, err := h.photoService.AddPhoto(ctx, username, services.PhotoUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Body:        file,
		Size:        header.Size,
	})
	if err != nil {
		respondAppError(w, r, err, "Failed to add photo")
		return
	}

	log.Info().
		Str("username", username).
		Str("photo_id", photo.ID).
		Bool("is_main", photo.IsMain).
		Msg("Photo added")

	respondJSON(w, http.StatusCreated, photo)
}

// SetMainPhoto handles PUT /api/v1/users/set-main-photo/{photoID}
func (h *PhotoHandler) SetMainPhoto(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	username := middleware.GetUsername(ctx)

	if err := h.photoService.SetMainPhoto(ctx, username, chi.URLParam(r, "photoID")); err != nil {
		respondAppError(w, r, err, "Failed to set main photo")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeletePhoto handles DELETE /api/v1/users/delete-photo/{photoID}
func (h *PhotoHandler) DeletePhoto(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	username := middleware.GetUsername(ctx)
	photoID := chi.URLParam(r, "photoID")

	if err := h.photoService.DeletePhoto(ctx, username, photoID); err != nil {
		respondAppError(w, r, err, "Failed to delete photo")
		return
	}

	log.Info().
		Str("username", username).
		Str("photo_id", photoID).
		Msg("Photo deleted")

	w.WriteHeader(http.StatusOK)
}
