package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"member-directory-backend/internal/apperr"
	"member-directory-backend/internal/models"
	"member-directory-backend/internal/pagination"
)

// memStore is an in-memory UserStore, PhotoStore, LikeStore and TxRunner.
// InTx snapshots the state and restores it when fn fails.
type memStore struct {
	users  map[string]*models.User
	photos map[string]*models.Photo
	likes  map[[2]string]*models.Like

	failPhotoCreate bool
	commits         int
}

func newMemStore() *memStore {
	return &memStore{
		users:  map[string]*models.User{},
		photos: map[string]*models.Photo{},
		likes:  map[[2]string]*models.Like{},
	}
}

func (m *memStore) addUser(u models.User) *models.User {
	u.Username = strings.ToLower(u.Username)
	m.users[u.ID] = &u
	return &u
}

func (m *memStore) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	users := make(map[string]*models.User, len(m.users))
	for k, v := range m.users {
		c := *v
		users[k] = &c
	}
	photos := make(map[string]*models.Photo, len(m.photos))
	for k, v := range m.photos {
		c := *v
		photos[k] = &c
	}
	likes := make(map[[2]string]*models.Like, len(m.likes))
	for k, v := range m.likes {
		c := *v
		likes[k] = &c
	}

	if err := fn(ctx); err != nil {
		m.users, m.photos, m.likes = users, photos, likes
		return err
	}
	m.commits++
	return nil
}

// UserStore

func (m *memStore) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	for _, u := range m.users {
		if u.Username == strings.ToLower(username) {
			c := *u
			return &c, nil
		}
	}
	return nil, apperr.NotFound("user not found")
}

func (m *memStore) GetWithPhotos(ctx context.Context, username string) (*models.User, error) {
	u, err := m.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	u.Photos = m.photosOf(u.ID)
	return u, nil
}

func (m *memStore) GetGender(ctx context.Context, username string) (string, error) {
	u, err := m.GetByUsername(ctx, username)
	if err != nil {
		return "", err
	}
	return u.Gender, nil
}

func (m *memStore) Update(ctx context.Context, user *models.User) error {
	u, ok := m.users[user.ID]
	if !ok {
		return apperr.NotFound("user not found")
	}
	u.Introduction, u.LookingFor, u.Interests = user.Introduction, user.LookingFor, user.Interests
	u.City, u.Country = user.City, user.Country
	return nil
}

func (m *memStore) TouchLastActive(ctx context.Context, userID string, at time.Time) error {
	if u, ok := m.users[userID]; ok {
		u.LastActive = at
	}
	return nil
}

func (m *memStore) UpdatePushToken(ctx context.Context, userID string, pushToken *string) error {
	if u, ok := m.users[userID]; ok {
		u.PushToken = pushToken
	}
	return nil
}

func (m *memStore) Members(filter models.MemberFilter) pagination.Query[*models.User] {
	var out []*models.User
	for _, u := range m.users {
		if u.Username == strings.ToLower(filter.ExcludeUsername) || u.Gender != filter.Gender {
			continue
		}
		if u.DateOfBirth.Before(filter.MinDateOfBirth) || u.DateOfBirth.After(filter.MaxDateOfBirth) {
			continue
		}
		c := *u
		c.Photos = m.photosOf(u.ID)
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].LastActive, out[j].LastActive
		if filter.OrderBy == models.OrderByCreated {
			a, b = out[i].CreatedAt, out[j].CreatedAt
		}
		if !a.Equal(b) {
			return a.After(b)
		}
		return out[i].ID < out[j].ID
	})
	return &listQuery{items: out}
}

// PhotoStore

func (m *memStore) photosOf(userID string) []*models.Photo {
	var out []*models.Photo
	for _, p := range m.photos {
		if p.UserID == userID {
			c := *p
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (m *memStore) Create(ctx context.Context, photo *models.Photo) error {
	if m.failPhotoCreate {
		return errors.New("insert failed")
	}
	c := *photo
	m.photos[photo.ID] = &c
	return nil
}

func (m *memStore) LockOwner(ctx context.Context, userID string) error {
	if _, ok := m.users[userID]; !ok {
		return apperr.NotFound("user not found")
	}
	return nil
}

func (m *memStore) ListByUserForUpdate(ctx context.Context, userID string) ([]*models.Photo, error) {
	return m.photosOf(userID), nil
}

func (m *memStore) SetMain(ctx context.Context, userID, photoID string) error {
	target, ok := m.photos[photoID]
	if !ok || target.UserID != userID {
		return apperr.NotFound("photo not found")
	}
	for _, p := range m.photos {
		if p.UserID == userID {
			p.IsMain = p.ID == photoID
		}
	}
	return nil
}

func (m *memStore) Delete(ctx context.Context, id string) error {
	if _, ok := m.photos[id]; !ok {
		return apperr.NotFound("photo not found")
	}
	delete(m.photos, id)
	return nil
}

// likeStore adapts memStore to LikeStore, whose Create and Delete
// signatures differ from PhotoStore's
type likeStore struct {
	*memStore
}

func (l likeStore) Get(ctx context.Context, sourceID, likedID string) (*models.Like, error) {
	like, ok := l.likes[[2]string{sourceID, likedID}]
	if !ok {
		return nil, nil
	}
	c := *like
	return &c, nil
}

func (l likeStore) Create(ctx context.Context, like *models.Like) (bool, error) {
	key := [2]string{like.SourceUserID, like.LikedUserID}
	if _, ok := l.likes[key]; ok {
		return false, nil
	}
	c := *like
	l.likes[key] = &c
	return true, nil
}

func (l likeStore) Delete(ctx context.Context, sourceID, likedID string) (bool, error) {
	key := [2]string{sourceID, likedID}
	if _, ok := l.likes[key]; !ok {
		return false, nil
	}
	delete(l.likes, key)
	return true, nil
}

func (l likeStore) Likes(userID, predicate string) pagination.Query[*models.User] {
	var out []*models.User
	for _, like := range l.likes {
		otherID := ""
		if predicate == models.PredicateLiked && like.SourceUserID == userID {
			otherID = like.LikedUserID
		}
		if predicate == models.PredicateLikedBy && like.LikedUserID == userID {
			otherID = like.SourceUserID
		}
		if otherID == "" {
			continue
		}
		c := *l.users[otherID]
		c.Photos = nil
		for _, p := range l.photosOf(otherID) {
			if p.IsMain {
				c.Photos = []*models.Photo{p}
			}
		}
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return &listQuery{items: out}
}

type listQuery struct {
	items []*models.User
}

func (q *listQuery) Count(ctx context.Context) (int, error) {
	return len(q.items), nil
}

func (q *listQuery) Fetch(ctx context.Context, limit, offset int) ([]*models.User, error) {
	end := offset + limit
	if end > len(q.items) {
		end = len(q.items)
	}
	return q.items[offset:end], nil
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// fixedClock returns a clock that advances one second per call
func fixedClock(start time.Time) func() time.Time {
	t := start
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}
