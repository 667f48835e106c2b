package repository

import (
	"context"
	"fmt"

	"member-directory-backend/internal/apperr"
	"member-directory-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const photoColumns = `id, user_id, url, external_id, is_main, created_at`

// PhotoRepository handles database operations for photos
type PhotoRepository struct {
	db *pgxpool.Pool
}

// NewPhotoRepository creates a new photo repository
func NewPhotoRepository(db *pgxpool.Pool) *PhotoRepository {
	return &PhotoRepository{db: db}
}

// Create creates a new photo
func (r *PhotoRepository) Create(ctx context.Context, photo *models.Photo) error {
	query := `
		INSERT INTO photos (id, user_id, url, external_id, is_main, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := conn(ctx, r.db).Exec(ctx, query,
		photo.ID, photo.UserID, photo.URL, photo.ExternalID, photo.IsMain, photo.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create photo: %w", err)
	}
	return nil
}

// LockOwner takes a row lock on the owning user so concurrent photo
// mutations for the same user serialize. Must be called inside InTx.
func (r *PhotoRepository) LockOwner(ctx context.Context, userID string) error {
	var id string
	err := conn(ctx, r.db).QueryRow(ctx, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, userID).Scan(&id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return apperr.NotFound("user not found")
		}
		return fmt.Errorf("failed to lock user: %w", err)
	}
	return nil
}

// ListByUserForUpdate retrieves all photos of a user, oldest first, locking
// the rows until the surrounding transaction ends
func (r *PhotoRepository) ListByUserForUpdate(ctx context.Context, userID string) ([]*models.Photo, error) {
	query := `SELECT ` + photoColumns + ` FROM photos WHERE user_id = $1 ORDER BY created_at, id FOR UPDATE`
	return r.list(ctx, query, userID)
}

// SetMain makes photoID the only main photo of userID. The old main is
// cleared first because photos_one_main_per_user is checked per row.
// Must be called inside InTx.
func (r *PhotoRepository) SetMain(ctx context.Context, userID, photoID string) error {
	db := conn(ctx, r.db)

	_, err := db.Exec(ctx, `UPDATE photos SET is_main = false WHERE user_id = $1 AND is_main`, userID)
	if err != nil {
		return fmt.Errorf("failed to clear main photo: %w", err)
	}

	result, err := db.Exec(ctx, `UPDATE photos SET is_main = true WHERE id = $1 AND user_id = $2`, photoID, userID)
	if err != nil {
		return fmt.Errorf("failed to set main photo: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound("photo not found")
	}
	return nil
}

// Delete deletes a photo by ID
func (r *PhotoRepository) Delete(ctx context.Context, id string) error {
	result, err := conn(ctx, r.db).Exec(ctx, `DELETE FROM photos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete photo: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound("photo not found")
	}
	return nil
}

func (r *PhotoRepository) list(ctx context.Context, query string, args ...any) ([]*models.Photo, error) {
	return queryPhotos(ctx, conn(ctx, r.db), query, args...)
}

// attachPhotos loads the photos of all given users in one round-trip
func attachPhotos(ctx context.Context, db DBTX, users []*models.User) error {
	if len(users) == 0 {
		return nil
	}
	ids := make([]string, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}

	query := `SELECT ` + photoColumns + ` FROM photos WHERE user_id = ANY($1) ORDER BY created_at, id`
	photos, err := queryPhotos(ctx, db, query, ids)
	if err != nil {
		return err
	}

	byUser := make(map[string][]*models.Photo, len(users))
	for _, p := range photos {
		byUser[p.UserID] = append(byUser[p.UserID], p)
	}
	for _, u := range users {
		u.Photos = byUser[u.ID]
	}
	return nil
}

func queryPhotos(ctx context.Context, db DBTX, query string, args ...any) ([]*models.Photo, error) {
	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get photos: %w", err)
	}
	defer rows.Close()

	var photos []*models.Photo
	for rows.Next() {
		var photo models.Photo
		err := rows.Scan(
			&photo.ID, &photo.UserID, &photo.URL, &photo.ExternalID,
			&photo.IsMain, &photo.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan photo: %w", err)
		}
		photos = append(photos, &photo)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating photos: %w", err)
	}

	return photos, nil
}
