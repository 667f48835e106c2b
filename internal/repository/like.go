package repository

import (
	"context"
	"fmt"

	"member-directory-backend/internal/models"
	"member-directory-backend/internal/pagination"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// LikeRepository handles database operations for likes
type LikeRepository struct {
	db *pgxpool.Pool
}

// NewLikeRepository creates a new like repository
func NewLikeRepository(db *pgxpool.Pool) *LikeRepository {
	return &LikeRepository{db: db}
}

// Get retrieves the edge from sourceID to likedID, or nil if there is none
func (r *LikeRepository) Get(ctx context.Context, sourceID, likedID string) (*models.Like, error) {
	query := `
		SELECT source_user_id, liked_user_id, created_at
		FROM likes
		WHERE source_user_id = $1 AND liked_user_id = $2
	`
	var like models.Like
	err := conn(ctx, r.db).QueryRow(ctx, query, sourceID, likedID).Scan(
		&like.SourceUserID, &like.LikedUserID, &like.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get like: %w", err)
	}
	return &like, nil
}

// Create stores the edge unless it already exists and reports whether a
// row was inserted
func (r *LikeRepository) Create(ctx context.Context, like *models.Like) (bool, error) {
	query := `
		INSERT INTO likes (source_user_id, liked_user_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (source_user_id, liked_user_id) DO NOTHING
	`
	result, err := conn(ctx, r.db).Exec(ctx, query, like.SourceUserID, like.LikedUserID, like.CreatedAt)
	if err != nil {
		return false, fmt.Errorf("failed to create like: %w", err)
	}
	return result.RowsAffected() == 1, nil
}

// Delete removes the edge and reports whether it existed
func (r *LikeRepository) Delete(ctx context.Context, sourceID, likedID string) (bool, error) {
	query := `DELETE FROM likes WHERE source_user_id = $1 AND liked_user_id = $2`
	result, err := conn(ctx, r.db).Exec(ctx, query, sourceID, likedID)
	if err != nil {
		return false, fmt.Errorf("failed to delete like: %w", err)
	}
	return result.RowsAffected() == 1, nil
}

// Likes returns the users on the other end of userID's likes in the given
// direction, ordered by username. Only the main photo of each user is loaded.
func (r *LikeRepository) Likes(userID, predicate string) pagination.Query[*models.User] {
	q := &likeQuery{db: r.db, userID: userID, from: "source_user_id", to: "liked_user_id"}
	if predicate == models.PredicateLikedBy {
		q.from, q.to = "liked_user_id", "source_user_id"
	}
	return q
}

type likeQuery struct {
	db     *pgxpool.Pool
	userID string
	// from is the edge column matched against userID, to the column projected
	from, to string
}

func (q *likeQuery) Count(ctx context.Context) (int, error) {
	var total int
	query := fmt.Sprintf(`SELECT COUNT(*) FROM likes WHERE %s = $1`, q.from)
	if err := conn(ctx, q.db).QueryRow(ctx, query, q.userID).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count likes: %w", err)
	}
	return total, nil
}

func (q *likeQuery) Fetch(ctx context.Context, limit, offset int) ([]*models.User, error) {
	query := fmt.Sprintf(`
		SELECT u.id, u.username, u.known_as, u.date_of_birth, u.city, p.id, p.url
		FROM likes l
		JOIN users u ON u.id = l.%s
		LEFT JOIN photos p ON p.user_id = u.id AND p.is_main
		WHERE l.%s = $1
		ORDER BY u.username, u.id
		LIMIT $2 OFFSET $3
	`, q.to, q.from)

	rows, err := conn(ctx, q.db).Query(ctx, query, q.userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get likes: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		var user models.User
		var photoID, photoURL *string
		err := rows.Scan(
			&user.ID, &user.Username, &user.KnownAs, &user.DateOfBirth, &user.City,
			&photoID, &photoURL,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan like: %w", err)
		}
		if photoID != nil && photoURL != nil {
			user.Photos = []*models.Photo{{ID: *photoID, UserID: user.ID, URL: *photoURL, IsMain: true}}
		}
		users = append(users, &user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating likes: %w", err)
	}

	return users, nil
}
