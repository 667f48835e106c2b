package services

import (
	"context"
	"time"

	"member-directory-backend/internal/models"
	"member-directory-backend/internal/pagination"
)

// TxRunner runs a unit of work atomically. Stores called with the context
// passed to fn take part in the same transaction.
type TxRunner interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// UserStore is the persistence boundary for users
type UserStore interface {
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetWithPhotos(ctx context.Context, username string) (*models.User, error)
	GetGender(ctx context.Context, username string) (string, error)
	Update(ctx context.Context, user *models.User) error
	TouchLastActive(ctx context.Context, userID string, at time.Time) error
	UpdatePushToken(ctx context.Context, userID string, pushToken *string) error
	Members(filter models.MemberFilter) pagination.Query[*models.User]
}

// PhotoStore is the persistence boundary for photos
type PhotoStore interface {
	Create(ctx context.Context, photo *models.Photo) error
	LockOwner(ctx context.Context, userID string) error
	ListByUserForUpdate(ctx context.Context, userID string) ([]*models.Photo, error)
	SetMain(ctx context.Context, userID, photoID string) error
	Delete(ctx context.Context, id string) error
}

// LikeStore is the persistence boundary for like edges
type LikeStore interface {
	Get(ctx context.Context, sourceID, likedID string) (*models.Like, error)
	Create(ctx context.Context, like *models.Like) (bool, error)
	Delete(ctx context.Context, sourceID, likedID string) (bool, error)
	Likes(userID, predicate string) pagination.Query[*models.User]
}

// LikeNotifier tells a user that someone liked them
type LikeNotifier interface {
	NotifyLiked(ctx context.Context, liked *models.User, from models.LikeDTO)
}
