package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"member-directory-backend/internal/apperr"
	"member-directory-backend/internal/models"
	"member-directory-backend/internal/pagination"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id, username, gender, date_of_birth, known_as, introduction, looking_for,
	interests, city, country, push_token, created_at, last_active`

// UserRepository handles database operations for users
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// Create creates a new user. The username is stored lower-case.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, username, gender, date_of_birth, known_as, introduction,
			looking_for, interests, city, country, push_token, created_at, last_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	user.Username = strings.ToLower(user.Username)
	_, err := conn(ctx, r.db).Exec(ctx, query,
		user.ID, user.Username, user.Gender, user.DateOfBirth, user.KnownAs, user.Introduction,
		user.LookingFor, user.Interests, user.City, user.Country, user.PushToken,
		user.CreatedAt, user.LastActive,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByUsername retrieves a user by username, case-insensitively, without photos
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE lower(username) = lower($1)`
	return r.get(ctx, query, username)
}

// GetWithPhotos retrieves a user by username together with all of its photos
func (r *UserRepository) GetWithPhotos(ctx context.Context, username string) (*models.User, error) {
	user, err := r.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	if err := attachPhotos(ctx, conn(ctx, r.db), []*models.User{user}); err != nil {
		return nil, err
	}
	return user, nil
}

// GetGender retrieves only the gender of a user
func (r *UserRepository) GetGender(ctx context.Context, username string) (string, error) {
	var gender string
	err := conn(ctx, r.db).QueryRow(ctx,
		`SELECT gender FROM users WHERE lower(username) = lower($1)`, username,
	).Scan(&gender)
	if err != nil {
		if err == pgx.ErrNoRows {
			return "", apperr.NotFound("user not found")
		}
		return "", fmt.Errorf("failed to get user gender: %w", err)
	}
	return gender, nil
}

// Update writes the editable profile fields of a user
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET introduction = $2, looking_for = $3, interests = $4, city = $5, country = $6
		WHERE id = $1
	`
	result, err := conn(ctx, r.db).Exec(ctx, query,
		user.ID, user.Introduction, user.LookingFor, user.Interests, user.City, user.Country,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound("user not found")
	}
	return nil
}

// TouchLastActive sets the last activity time of a user
func (r *UserRepository) TouchLastActive(ctx context.Context, userID string, at time.Time) error {
	_, err := conn(ctx, r.db).Exec(ctx, `UPDATE users SET last_active = $1 WHERE id = $2`, at, userID)
	if err != nil {
		return fmt.Errorf("failed to update last active: %w", err)
	}
	return nil
}

// UpdatePushToken updates the push token for a user
func (r *UserRepository) UpdatePushToken(ctx context.Context, userID string, pushToken *string) error {
	query := `UPDATE users SET push_token = $1 WHERE id = $2`
	_, err := conn(ctx, r.db).Exec(ctx, query, pushToken, userID)
	if err != nil {
		return fmt.Errorf("failed to update push token: %w", err)
	}
	return nil
}

// Members returns the directory query for a resolved filter. Each fetched
// user carries all of its photos, loaded in one extra query per page.
func (r *UserRepository) Members(filter models.MemberFilter) pagination.Query[*models.User] {
	return &memberQuery{db: r.db, filter: filter}
}

func (r *UserRepository) get(ctx context.Context, query string, arg string) (*models.User, error) {
	user, err := scanUser(conn(ctx, r.db).QueryRow(ctx, query, arg))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperr.NotFound("user not found")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID, &user.Username, &user.Gender, &user.DateOfBirth, &user.KnownAs,
		&user.Introduction, &user.LookingFor, &user.Interests, &user.City, &user.Country,
		&user.PushToken, &user.CreatedAt, &user.LastActive,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

type memberQuery struct {
	db     *pgxpool.Pool
	filter models.MemberFilter
}

// memberWhere renders the directory filter as a WHERE clause
func memberWhere(f models.MemberFilter) (string, []any) {
	where := `lower(username) <> lower($1) AND gender = $2 AND date_of_birth BETWEEN $3 AND $4`
	return where, []any{f.ExcludeUsername, f.Gender, f.MinDateOfBirth, f.MaxDateOfBirth}
}

// memberOrder renders the ordering; id breaks ties so pages are stable
func memberOrder(orderBy string) string {
	if orderBy == models.OrderByCreated {
		return `created_at DESC, id`
	}
	return `last_active DESC, id`
}

func (q *memberQuery) Count(ctx context.Context) (int, error) {
	where, args := memberWhere(q.filter)
	var total int
	err := conn(ctx, q.db).QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE `+where, args...).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to count members: %w", err)
	}
	return total, nil
}

func (q *memberQuery) Fetch(ctx context.Context, limit, offset int) ([]*models.User, error) {
	where, args := memberWhere(q.filter)
	query := fmt.Sprintf(`SELECT %s FROM users WHERE %s ORDER BY %s LIMIT $%d OFFSET $%d`,
		userColumns, where, memberOrder(q.filter.OrderBy), len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	db := conn(ctx, q.db)
	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get members: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating members: %w", err)
	}
	rows.Close()

	if err := attachPhotos(ctx, db, users); err != nil {
		return nil, err
	}
	return users, nil
}
