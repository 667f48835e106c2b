package models

import (
	"time"

	"member-directory-backend/internal/pagination"
)

const (
	DefaultMinAge = 18
	DefaultMaxAge = 150

	OrderByLastActive = "lastActive"
	OrderByCreated    = "created"

	PredicateLiked   = "liked"
	PredicateLikedBy = "likedBy"
)

// UserParams is a member directory request
type UserParams struct {
	pagination.Params
	Gender  string
	MinAge  int
	MaxAge  int
	OrderBy string
}

// NewUserParams returns params carrying the directory defaults
func NewUserParams() UserParams {
	return UserParams{
		Params:  pagination.Params{PageNumber: 1, PageSize: pagination.DefaultPageSize},
		MinAge:  DefaultMinAge,
		MaxAge:  DefaultMaxAge,
		OrderBy: OrderByLastActive,
	}
}

// MemberFilter is a directory request with every derived criterion resolved
type MemberFilter struct {
	ExcludeUsername string
	Gender          string
	MinDateOfBirth  time.Time
	MaxDateOfBirth  time.Time
	OrderBy         string
}

// LikesParams is a likes listing request
type LikesParams struct {
	pagination.Params
	UserID    string
	Predicate string
}
