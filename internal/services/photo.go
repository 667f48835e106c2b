package services

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"member-directory-backend/internal/apperr"
	"member-directory-backend/internal/models"
	"member-directory-backend/internal/storage"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// PhotoUpload is a photo binary received from a member
type PhotoUpload struct {
	Filename    string
	ContentType string
	Body        io.Reader
	Size        int64
}

// PhotoService keeps every member in one of two states: no photos, or
// exactly one main photo among its photos
type PhotoService struct {
	users   UserStore
	photos  PhotoStore
	tx      TxRunner
	storage storage.PhotoStorage
	now     func() time.Time
}

// NewPhotoService creates a new photo service
func NewPhotoService(users UserStore, photos PhotoStore, tx TxRunner, photoStorage storage.PhotoStorage) *PhotoService {
	return &PhotoService{
		users:   users,
		photos:  photos,
		tx:      tx,
		storage: photoStorage,
		now:     time.Now,
	}
}

// AddPhoto uploads the binary and records the photo. The first photo of a
// member becomes the main photo.
func (s *PhotoService) AddPhoto(ctx context.Context, username string, upload PhotoUpload) (*models.PhotoDTO, error) {
	if !strings.HasPrefix(upload.ContentType, "image/") {
		return nil, apperr.Validation("file must be an image")
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	photoID := uuid.New().String()
	key := fmt.Sprintf("users/%s/%s%s", user.ID, photoID, strings.ToLower(filepath.Ext(upload.Filename)))

	uploaded, err := s.storage.Upload(ctx, key, upload.ContentType, upload.Body, upload.Size)
	if err != nil {
		return nil, apperr.ExternalDependency(err, "failed to upload photo")
	}

	photo := &models.Photo{
		ID:         photoID,
		UserID:     user.ID,
		URL:        uploaded.URL,
		ExternalID: &uploaded.ExternalID,
		CreatedAt:  s.now().UTC(),
	}

	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.photos.LockOwner(ctx, user.ID); err != nil {
			return err
		}
		existing, err := s.photos.ListByUserForUpdate(ctx, user.ID)
		if err != nil {
			return err
		}
		photo.IsMain = len(existing) == 0
		return s.photos.Create(ctx, photo)
	})
	if err != nil {
		if delErr := s.storage.Delete(ctx, uploaded.ExternalID); delErr != nil {
			log.Error().
				Err(delErr).
				Str("user_id", user.ID).
				Str("key", uploaded.ExternalID).
				Msg("Failed to remove orphaned photo object")
		}
		return nil, fmt.Errorf("failed to add photo: %w", err)
	}

	dto := models.ToPhotoDTO(photo)
	return &dto, nil
}

// SetMainPhoto moves the main flag to photoID
func (s *PhotoService) SetMainPhoto(ctx context.Context, username, photoID string) error {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}

	return s.tx.InTx(ctx, func(ctx context.Context) error {
		photos, err := s.photos.ListByUserForUpdate(ctx, user.ID)
		if err != nil {
			return err
		}

		photo := findPhoto(photos, photoID)
		if photo == nil {
			return apperr.NotFound("photo not found")
		}
		if photo.IsMain {
			return apperr.Conflict("this is already your main photo")
		}

		return s.photos.SetMain(ctx, user.ID, photoID)
	})
}

// DeletePhoto removes a photo that is not the main photo. The stored binary
// is deleted first; if that fails nothing is removed locally.
func (s *PhotoService) DeletePhoto(ctx context.Context, username, photoID string) error {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}

	return s.tx.InTx(ctx, func(ctx context.Context) error {
		photos, err := s.photos.ListByUserForUpdate(ctx, user.ID)
		if err != nil {
			return err
		}

		photo := findPhoto(photos, photoID)
		if photo == nil {
			return apperr.NotFound("photo not found")
		}
		if photo.IsMain {
			return apperr.BusinessRule("you cannot delete your main photo")
		}

		if photo.ExternalID != nil {
			if err := s.storage.Delete(ctx, *photo.ExternalID); err != nil {
				return apperr.ExternalDependency(err, "failed to delete photo from storage")
			}
		}

		return s.photos.Delete(ctx, photo.ID)
	})
}

func findPhoto(photos []*models.Photo, id string) *models.Photo {
	for _, p := range photos {
		if p.ID == id {
			return p
		}
	}
	return nil
}
