package services

import (
	"context"
	"fmt"
	"time"

	"member-directory-backend/internal/apperr"
	"member-directory-backend/internal/models"
	"member-directory-backend/internal/pagination"

	"github.com/rs/zerolog/log"
)

// LikeService handles the directed like graph between members
type LikeService struct {
	users    UserStore
	likes    LikeStore
	tx       TxRunner
	notifier LikeNotifier
	now      func() time.Time
}

// NewLikeService creates a new like service. notifier may be nil.
func NewLikeService(users UserStore, likes LikeStore, tx TxRunner, notifier LikeNotifier) *LikeService {
	return &LikeService{
		users:    users,
		likes:    likes,
		tx:       tx,
		notifier: notifier,
		now:      time.Now,
	}
}

// GetLike returns the edge from sourceID to likedUsername, or nil if there is none
func (s *LikeService) GetLike(ctx context.Context, sourceID, likedUsername string) (*models.Like, error) {
	liked, err := s.users.GetByUsername(ctx, likedUsername)
	if err != nil {
		return nil, fmt.Errorf("failed to get liked user: %w", err)
	}
	return s.likes.Get(ctx, sourceID, liked.ID)
}

// AddLike records that sourceUsername likes likedUsername. Liking the same
// member again is a no-op; the result reports whether a new edge was created.
func (s *LikeService) AddLike(ctx context.Context, sourceUsername, likedUsername string) (bool, error) {
	source, err := s.users.GetWithPhotos(ctx, sourceUsername)
	if err != nil {
		return false, fmt.Errorf("failed to get source user: %w", err)
	}

	liked, err := s.users.GetByUsername(ctx, likedUsername)
	if err != nil {
		return false, fmt.Errorf("failed to get liked user: %w", err)
	}

	if source.ID == liked.ID {
		return false, apperr.Validation("you cannot like yourself")
	}

	var created bool
	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		var err error
		created, err = s.likes.Create(ctx, &models.Like{
			SourceUserID: source.ID,
			LikedUserID:  liked.ID,
			CreatedAt:    s.now().UTC(),
		})
		return err
	})
	if err != nil {
		return false, fmt.Errorf("failed to add like: %w", err)
	}

	if created {
		log.Info().
			Str("source_user_id", source.ID).
			Str("liked_user_id", liked.ID).
			Msg("Like created")

		if s.notifier != nil {
			s.notifier.NotifyLiked(ctx, liked, models.ToLikeDTO(source, s.now().UTC()))
		}
	}

	return created, nil
}

// RemoveLike deletes the edge from sourceUsername to likedUsername
func (s *LikeService) RemoveLike(ctx context.Context, sourceUsername, likedUsername string) error {
	source, err := s.users.GetByUsername(ctx, sourceUsername)
	if err != nil {
		return fmt.Errorf("failed to get source user: %w", err)
	}

	liked, err := s.users.GetByUsername(ctx, likedUsername)
	if err != nil {
		return fmt.Errorf("failed to get liked user: %w", err)
	}

	return s.tx.InTx(ctx, func(ctx context.Context) error {
		deleted, err := s.likes.Delete(ctx, source.ID, liked.ID)
		if err != nil {
			return err
		}
		if !deleted {
			return apperr.NotFound("like not found")
		}
		return nil
	})
}

// ListLikes returns the members userID likes ("liked") or the members who
// like userID ("likedBy"), ordered by username
func (s *LikeService) ListLikes(ctx context.Context, params models.LikesParams) (*pagination.PagedList[models.LikeDTO], error) {
	if params.Predicate != models.PredicateLiked && params.Predicate != models.PredicateLikedBy {
		return nil, apperr.Validation(fmt.Sprintf("predicate must be %q or %q", models.PredicateLiked, models.PredicateLikedBy))
	}

	users, err := pagination.Paginate(ctx, s.likes.Likes(params.UserID, params.Predicate), params.Params)
	if err != nil {
		return nil, fmt.Errorf("failed to list likes: %w", err)
	}

	today := s.now().UTC()
	return pagination.Map(users, func(u *models.User) models.LikeDTO {
		return models.ToLikeDTO(u, today)
	}), nil
}
