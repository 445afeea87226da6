package user_service

import (
	"context"

	"github.com/adrnhkm/nearby-chat/internal/dtos/user_dto"
	app_error "github.com/adrnhkm/nearby-chat/internal/errors"
)

type UserServiceContract interface {
	Signup(ctx context.Context, req user_dto.SignupRequest) (*user_dto.AuthResponse, *app_error.AppError)
	Login(ctx context.Context, req user_dto.LoginRequest) (*user_dto.AuthResponse, *app_error.AppError)
	Logout(ctx context.Context, userID string) *app_error.AppError
	Me(ctx context.Context, userID string) (*user_dto.ProfileResponse, *app_error.AppError)
}
