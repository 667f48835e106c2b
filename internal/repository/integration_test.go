package repository

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"member-directory-backend/internal/apperr"
	"member-directory-backend/internal/models"
	"member-directory-backend/internal/pagination"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testDB connects to the database named by MEMBERS_TEST_DATABASE_URL and
// empties it. Tests using it are skipped when the variable is unset.
func testDB(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("MEMBERS_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("MEMBERS_TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	require.NoError(t, Migrate(ctx, db))
	_, err = db.Exec(ctx, `TRUNCATE likes, photos, users`)
	require.NoError(t, err)
	return db
}

func createUser(t *testing.T, repo *UserRepository, username, gender string, dob time.Time) *models.User {
	t.Helper()
	user := &models.User{
		ID:          uuid.New().String(),
		Username:    username,
		Gender:      gender,
		DateOfBirth: dob,
		KnownAs:     username,
		CreatedAt:   time.Now().UTC(),
		LastActive:  time.Now().UTC(),
	}
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}

func TestMembersQuery(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	users := NewUserRepository(db)

	createUser(t, users, "Caller", models.GenderFemale, time.Date(1995, 1, 1, 0, 0, 0, 0, time.UTC))
	for i := 0; i < 7; i++ {
		createUser(t, users, fmt.Sprintf("m%d", i), models.GenderMale, time.Date(1990+i, 6, 1, 0, 0, 0, 0, time.UTC))
	}

	filter := models.MemberFilter{
		ExcludeUsername: "caller",
		Gender:          models.GenderMale,
		MinDateOfBirth:  time.Date(1991, 1, 1, 0, 0, 0, 0, time.UTC),
		MaxDateOfBirth:  time.Date(1995, 12, 31, 0, 0, 0, 0, time.UTC),
		OrderBy:         models.OrderByCreated,
	}

	page, err := pagination.Paginate(ctx, users.Members(filter), pagination.Params{PageNumber: 2, PageSize: 3})
	require.NoError(t, err)
	assert.Equal(t, 5, page.Page.TotalCount)
	assert.Len(t, page.Items, 2)
}

func TestPhotoMainInvariantIsEnforcedByDatabase(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	users := NewUserRepository(db)
	photos := NewPhotoRepository(db)
	tx := NewTxManager(db)

	owner := createUser(t, users, "owner", models.GenderFemale, time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC))
	first := &models.Photo{ID: uuid.New().String(), UserID: owner.ID, URL: "a", IsMain: true, CreatedAt: time.Now().UTC()}
	second := &models.Photo{ID: uuid.New().String(), UserID: owner.ID, URL: "b", CreatedAt: time.Now().UTC()}
	require.NoError(t, photos.Create(ctx, first))
	require.NoError(t, photos.Create(ctx, second))

	dup := &models.Photo{ID: uuid.New().String(), UserID: owner.ID, URL: "c", IsMain: true, CreatedAt: time.Now().UTC()}
	assert.Error(t, photos.Create(ctx, dup))

	err := tx.InTx(ctx, func(ctx context.Context) error {
		return photos.SetMain(ctx, owner.ID, second.ID)
	})
	require.NoError(t, err)

	loaded, err := users.GetWithPhotos(ctx, "OWNER")
	require.NoError(t, err)
	require.NotNil(t, loaded.MainPhoto())
	assert.Equal(t, second.ID, loaded.MainPhoto().ID)

	err = photos.Delete(ctx, "missing")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestLikeEdges(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	users := NewUserRepository(db)
	likes := NewLikeRepository(db)

	a := createUser(t, users, "a", models.GenderFemale, time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC))
	b := createUser(t, users, "b", models.GenderMale, time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC))

	created, err := likes.Create(ctx, &models.Like{SourceUserID: a.ID, LikedUserID: b.ID, CreatedAt: time.Now().UTC()})
	require.NoError(t, err)
	assert.True(t, created)

	created, err = likes.Create(ctx, &models.Like{SourceUserID: a.ID, LikedUserID: b.ID, CreatedAt: time.Now().UTC()})
	require.NoError(t, err)
	assert.False(t, created)

	_, err = likes.Create(ctx, &models.Like{SourceUserID: a.ID, LikedUserID: a.ID, CreatedAt: time.Now().UTC()})
	assert.Error(t, err)

	page, err := pagination.Paginate(ctx, likes.Likes(b.ID, models.PredicateLikedBy), pagination.Params{PageNumber: 1, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "a", page.Items[0].Username)

	deleted, err := likes.Delete(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	like, err := likes.Get(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.Nil(t, like)
}

func TestMembersQueryUnboundedAgeAndHugePage(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	users := NewUserRepository(db)

	for i := 0; i < 4; i++ {
		createUser(t, users, fmt.Sprintf("m%d", i), models.GenderMale, time.Date(1940+10*i, 3, 1, 0, 0, 0, 0, time.UTC))
	}

	minDOB, maxDOB := models.BirthDateRange(18, 10000, time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC))
	require.Equal(t, models.MinBirthDate, minDOB)

	filter := models.MemberFilter{
		Gender:         models.GenderMale,
		MinDateOfBirth: minDOB,
		MaxDateOfBirth: maxDOB,
		OrderBy:        models.OrderByLastActive,
	}

	page, err := pagination.Paginate(ctx, users.Members(filter), pagination.Params{PageNumber: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 4, page.Page.TotalCount)
	assert.Len(t, page.Items, 4)

	beyond, err := pagination.Paginate(ctx, users.Members(filter), pagination.Params{PageNumber: 1e18, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 4, beyond.Page.TotalCount)
	assert.Empty(t, beyond.Items)
}
