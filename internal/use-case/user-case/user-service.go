package user_service

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/adrnhkm/nearby-chat/internal/dtos/user_dto"
	"github.com/adrnhkm/nearby-chat/internal/entity"
	app_error "github.com/adrnhkm/nearby-chat/internal/errors"
	"github.com/adrnhkm/nearby-chat/internal/presence"
	user_repo "github.com/adrnhkm/nearby-chat/internal/repo/user"
	"github.com/adrnhkm/nearby-chat/internal/utils"
	"github.com/adrnhkm/nearby-chat/state"
)

type UserService struct {
	AppState *state.AppState
	UserRepo user_repo.UserRepoContract
	Tracker  *presence.Tracker
}

func NewUserService(appState *state.AppState, tracker *presence.Tracker) UserServiceContract {
	return &UserService{
		AppState: appState,
		UserRepo: user_repo.NewUserRepo(appState),
		Tracker:  tracker,
	}
}

func (u *UserService) Signup(ctx context.Context, req user_dto.SignupRequest) (*user_dto.AuthResponse, *app_error.AppError) {
	count, err := u.UserRepo.CountUser(ctx, entity.UserFilter{Username: &req.Username})
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, app_error.NewAppError(http.StatusConflict, "username already taken", "username")
	}

	hashed, hashErr := utils.GenerateHash(req.Password)
	if hashErr != nil {
		return nil, app_error.NewAppError(http.StatusInternalServerError, hashErr.Error(), "password")
	}

	displayName := req.DisplayName
	if displayName == "" {
		displayName = req.Username
	}

	user := entity.User{
		ID:           uuid.New().String(),
		Username:     req.Username,
		DisplayName:  displayName,
		PasswordHash: hashed,
	}

	if err := u.UserRepo.SaveUser(ctx, user); err != nil {
		// Lost a race on the unique index: no token is issued.
		return nil, err
	}

	return u.issueAuth(&user)
}

func (u *UserService) Login(ctx context.Context, req user_dto.LoginRequest) (*user_dto.AuthResponse, *app_error.AppError) {
	user, err := u.UserRepo.FindByUsername(ctx, req.Username)
	if err != nil {
		// An unknown username reads the same as a bad password.
		if err.Code == http.StatusNotFound {
			return nil, app_error.Unauthorized("invalid username or password")
		}
		return nil, err
	}

	ok, verifyErr := utils.VerifyHash(user.PasswordHash, req.Password)
	if verifyErr != nil || !ok {
		return nil, app_error.Unauthorized("invalid username or password")
	}

	return u.issueAuth(user)
}

// Logout clears presence so the user immediately stops being discoverable
// and fails the gate, regardless of how recently they reported.
func (u *UserService) Logout(ctx context.Context, userID string) *app_error.AppError {
	return u.Tracker.Clear(ctx, userID)
}

func (u *UserService) Me(ctx context.Context, userID string) (*user_dto.ProfileResponse, *app_error.AppError) {
	user, err := u.UserRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	var lastSeen *time.Time
	if p, pErr := u.Tracker.Get(ctx, userID); pErr == nil && p != nil {
		t := time.UnixMilli(p.LastSeen)
		lastSeen = &t
	}

	return &user_dto.ProfileResponse{
		ID:          user.ID,
		Username:    user.Username,
		DisplayName: user.DisplayName,
		LastSeen:    lastSeen,
	}, nil
}

func (u *UserService) issueAuth(user *entity.User) (*user_dto.AuthResponse, *app_error.AppError) {
	token, err := utils.IssueToken(user.ID, user.Username, u.AppState.JwtSecret.Private)
	if err != nil {
		return nil, app_error.NewAppError(http.StatusInternalServerError, "failed to issue token", "token")
	}

	return &user_dto.AuthResponse{
		Token: token,
		User:  user.Summary(),
	}, nil
}
