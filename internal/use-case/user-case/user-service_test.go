package user_service

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adrnhkm/nearby-chat/internal/dtos/user_dto"
	"github.com/adrnhkm/nearby-chat/internal/entity"
	app_error "github.com/adrnhkm/nearby-chat/internal/errors"
	"github.com/adrnhkm/nearby-chat/internal/presence"
	"github.com/adrnhkm/nearby-chat/internal/utils"
	"github.com/adrnhkm/nearby-chat/state"
)

type fakeUserRepo struct {
	byID       map[string]*entity.User
	byUsername map[string]*entity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byID:       map[string]*entity.User{},
		byUsername: map[string]*entity.User{},
	}
}

func (f *fakeUserRepo) CountUser(_ context.Context, filter entity.UserFilter) (int64, *app_error.AppError) {
	if filter.Username != nil {
		if _, ok := f.byUsername[*filter.Username]; ok {
			return 1, nil
		}
	}
	return 0, nil
}

func (f *fakeUserRepo) SaveUser(_ context.Context, model entity.User) *app_error.AppError {
	if _, ok := f.byUsername[model.Username]; ok {
		return app_error.NewAppError(http.StatusConflict, "username already taken", "username")
	}
	u := model
	f.byID[u.ID] = &u
	f.byUsername[u.Username] = &u
	return nil
}

func (f *fakeUserRepo) FindByUsername(_ context.Context, username string) (*entity.User, *app_error.AppError) {
	if u, ok := f.byUsername[username]; ok {
		return u, nil
	}
	return nil, app_error.NotFound("cannot find user", "username")
}

func (f *fakeUserRepo) FindByID(_ context.Context, id string) (*entity.User, *app_error.AppError) {
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, app_error.NotFound("cannot find user", "user-id")
}

func (f *fakeUserRepo) FindByIDs(_ context.Context, ids []string) ([]*entity.User, *app_error.AppError) {
	var users []*entity.User
	for _, id := range ids {
		if u, ok := f.byID[id]; ok {
			users = append(users, u)
		}
	}
	return users, nil
}

func newTestService(t *testing.T) (*UserService, *rsa.PublicKey) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	svc := &UserService{
		AppState: &state.AppState{JwtSecret: &state.JwtSecret{Private: key, Public: &key.PublicKey}},
		UserRepo: newFakeUserRepo(),
		Tracker:  presence.NewTracker(rdb, 3*time.Minute),
	}
	return svc, &key.PublicKey
}

func TestUserService_Signup(t *testing.T) {
	svc, pubKey := newTestService(t)
	ctx := context.Background()

	resp, err := svc.Signup(ctx, user_dto.SignupRequest{
		Username:    "alice",
		Password:    "secret-pass",
		DisplayName: "Alice A",
	})
	require.Nil(t, err)
	require.NotEmpty(t, resp.Token)
	assert.Equal(t, "alice", resp.User.Username)
	assert.Equal(t, "Alice A", resp.User.DisplayName)

	claims, tokenErr := utils.ParseAndVerifySign(resp.Token, pubKey)
	require.NoError(t, tokenErr)
	assert.Equal(t, resp.User.ID, claims.Sub)
}

func TestUserService_Signup_DefaultDisplayName(t *testing.T) {
	svc, _ := newTestService(t)

	resp, err := svc.Signup(context.Background(), user_dto.SignupRequest{
		Username: "bob",
		Password: "secret-pass",
	})
	require.Nil(t, err)
	assert.Equal(t, "bob", resp.User.DisplayName)
}

func TestUserService_Signup_DuplicateUsername(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, user_dto.SignupRequest{Username: "alice", Password: "secret-pass"})
	require.Nil(t, err)

	resp, err := svc.Signup(ctx, user_dto.SignupRequest{Username: "alice", Password: "other-pass"})
	require.NotNil(t, err)
	assert.Equal(t, http.StatusConflict, err.Code)
	assert.Nil(t, resp, "no token may be issued on a duplicate signup")
}

func TestUserService_Login(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, user_dto.SignupRequest{Username: "alice", Password: "secret-pass"})
	require.Nil(t, err)

	resp, err := svc.Login(ctx, user_dto.LoginRequest{Username: "alice", Password: "secret-pass"})
	require.Nil(t, err)
	assert.NotEmpty(t, resp.Token)

	_, err = svc.Login(ctx, user_dto.LoginRequest{Username: "alice", Password: "wrong"})
	require.NotNil(t, err)
	assert.Equal(t, http.StatusUnauthorized, err.Code)

	_, err = svc.Login(ctx, user_dto.LoginRequest{Username: "nobody", Password: "whatever"})
	require.NotNil(t, err)
	assert.Equal(t, http.StatusUnauthorized, err.Code, "unknown username must not read differently")
}

func TestUserService_LogoutClearsPresence(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	resp, err := svc.Signup(ctx, user_dto.SignupRequest{Username: "alice", Password: "secret-pass"})
	require.Nil(t, err)

	require.Nil(t, svc.Tracker.Report(ctx, resp.User.ID, 0, 0))
	require.Nil(t, svc.Logout(ctx, resp.User.ID))

	p, pErr := svc.Tracker.Get(ctx, resp.User.ID)
	require.Nil(t, pErr)
	assert.Nil(t, p)
}

func TestUserService_Me(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	resp, err := svc.Signup(ctx, user_dto.SignupRequest{Username: "alice", Password: "secret-pass", DisplayName: "Alice"})
	require.Nil(t, err)

	profile, err := svc.Me(ctx, resp.User.ID)
	require.Nil(t, err)
	assert.Equal(t, "alice", profile.Username)
	assert.Nil(t, profile.LastSeen, "no location reported yet")

	require.Nil(t, svc.Tracker.Report(ctx, resp.User.ID, 1, 1))
	profile, err = svc.Me(ctx, resp.User.ID)
	require.Nil(t, err)
	require.NotNil(t, profile.LastSeen)
}
