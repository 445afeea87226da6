package user_repo

import (
	"context"

	"github.com/adrnhkm/nearby-chat/internal/entity"
	app_error "github.com/adrnhkm/nearby-chat/internal/errors"
)

type UserRepoContract interface {
	CountUser(ctx context.Context, filter entity.UserFilter) (int64, *app_error.AppError)
	SaveUser(ctx context.Context, model entity.User) *app_error.AppError
	FindByUsername(ctx context.Context, username string) (*entity.User, *app_error.AppError)
	FindByID(ctx context.Context, id string) (*entity.User, *app_error.AppError)
	FindByIDs(ctx context.Context, ids []string) ([]*entity.User, *app_error.AppError)
}
