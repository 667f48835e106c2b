package services

import (
	"context"
	"fmt"
	"time"

	"member-directory-backend/internal/models"
	"member-directory-backend/internal/pagination"
)

// UserService handles the member directory and profile logic
type UserService struct {
	users UserStore
	now   func() time.Time
}

// NewUserService creates a new user service
func NewUserService(users UserStore) *UserService {
	return &UserService{
		users: users,
		now:   time.Now,
	}
}

// ResolveFilter turns a directory request into concrete criteria: the
// gender defaults to the complement of the caller's, and the age range
// becomes a birth date range relative to today.
func (s *UserService) ResolveFilter(ctx context.Context, currentUsername string, params models.UserParams) (models.MemberFilter, error) {
	gender := params.Gender
	if gender == "" {
		callerGender, err := s.users.GetGender(ctx, currentUsername)
		if err != nil {
			return models.MemberFilter{}, err
		}
		gender = models.OppositeGender(callerGender)
	}

	minDOB, maxDOB := models.BirthDateRange(params.MinAge, params.MaxAge, s.now().UTC())

	orderBy := params.OrderBy
	if orderBy != models.OrderByCreated {
		orderBy = models.OrderByLastActive
	}

	return models.MemberFilter{
		ExcludeUsername: currentUsername,
		Gender:          gender,
		MinDateOfBirth:  minDOB,
		MaxDateOfBirth:  maxDOB,
		OrderBy:         orderBy,
	}, nil
}

// ListMembers returns one page of the directory as seen by currentUsername.
// The caller never appears in it.
func (s *UserService) ListMembers(ctx context.Context, currentUsername string, params models.UserParams) (*pagination.PagedList[models.MemberDTO], error) {
	filter, err := s.ResolveFilter(ctx, currentUsername, params)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve member filter: %w", err)
	}

	users, err := pagination.Paginate(ctx, s.users.Members(filter), params.Params)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}

	today := s.now().UTC()
	return pagination.Map(users, func(u *models.User) models.MemberDTO {
		return models.ToMemberDTO(u, today)
	}), nil
}

// GetMember returns a member with all photos
func (s *UserService) GetMember(ctx context.Context, username string) (*models.MemberDTO, error) {
	user, err := s.users.GetWithPhotos(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	dto := models.ToMemberDTO(user, s.now().UTC())
	return &dto, nil
}

// UpdateMember applies a profile edit to the member's own profile
func (s *UserService) UpdateMember(ctx context.Context, username string, update models.MemberUpdate) error {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return fmt.Errorf("failed to get member: %w", err)
	}

	update.Apply(user)

	if err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to update member: %w", err)
	}
	return nil
}

// TouchLastActive records that the user just made a request
func (s *UserService) TouchLastActive(ctx context.Context, userID string) error {
	return s.users.TouchLastActive(ctx, userID, s.now().UTC())
}

// UpdatePushToken registers a device token for push notifications; an
// empty token unregisters it
func (s *UserService) UpdatePushToken(ctx context.Context, userID, pushToken string) error {
	var token *string
	if pushToken != "" {
		token = &pushToken
	}
	return s.users.UpdatePushToken(ctx, userID, token)
}
