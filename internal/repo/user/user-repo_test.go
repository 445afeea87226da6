package user_repo

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/adrnhkm/nearby-chat/internal/entity"
	"github.com/adrnhkm/nearby-chat/state"
)

func newTestRepo(t *testing.T) UserRepoContract {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entity.User{}))

	return NewUserRepo(&state.AppState{DB: db})
}

func testUser(username string) entity.User {
	return entity.User{
		ID:           uuid.New().String(),
		Username:     username,
		DisplayName:  "Test " + username,
		PasswordHash: "$argon2id$fake",
	}
}

func TestUserRepo_SaveAndFind(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	user := testUser("alice")
	require.Nil(t, repo.SaveUser(ctx, user))

	found, err := repo.FindByUsername(ctx, "alice")
	require.Nil(t, err)
	assert.Equal(t, user.ID, found.ID)
	assert.Equal(t, "Test alice", found.DisplayName)

	byID, err := repo.FindByID(ctx, user.ID)
	require.Nil(t, err)
	assert.Equal(t, "alice", byID.Username)
}

func TestUserRepo_DuplicateUsername(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.Nil(t, repo.SaveUser(ctx, testUser("alice")))

	err := repo.SaveUser(ctx, testUser("alice"))
	require.NotNil(t, err)
	assert.Equal(t, http.StatusConflict, err.Code)

	count, cErr := repo.CountUser(ctx, entity.UserFilter{Username: strPtr("alice")})
	require.Nil(t, cErr)
	assert.Equal(t, int64(1), count)
}

func TestUserRepo_FindMissing(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.FindByUsername(ctx, "nobody")
	require.NotNil(t, err)
	assert.Equal(t, http.StatusNotFound, err.Code)

	_, err = repo.FindByID(ctx, "missing-id")
	require.NotNil(t, err)
	assert.Equal(t, http.StatusNotFound, err.Code)
}

func TestUserRepo_FindByIDs(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	a := testUser("alice")
	b := testUser("bob")
	require.Nil(t, repo.SaveUser(ctx, a))
	require.Nil(t, repo.SaveUser(ctx, b))

	users, err := repo.FindByIDs(ctx, []string{a.ID, b.ID, "missing"})
	require.Nil(t, err)
	assert.Len(t, users, 2)

	empty, err := repo.FindByIDs(ctx, nil)
	require.Nil(t, err)
	assert.Empty(t, empty)
}

func strPtr(s string) *string { return &s }
