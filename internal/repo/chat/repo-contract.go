package chat_repo

import (
	"context"

	"github.com/adrnhkm/nearby-chat/internal/entity"
	app_error "github.com/adrnhkm/nearby-chat/internal/errors"
)

type ChatRepoContract interface {
	GetOrCreateRoom(ctx context.Context, userA, userB string) (*entity.Room, *app_error.AppError)
	FindRoomByID(ctx context.Context, roomID string) (*entity.Room, *app_error.AppError)
	RoomsForUser(ctx context.Context, userID string) ([]*entity.Room, *app_error.AppError)
	AppendMessage(ctx context.Context, roomID, senderID, text string) (*entity.Message, *app_error.AppError)
	RecentMessages(ctx context.Context, roomID string, limit int) ([]*entity.Message, *app_error.AppError)
}
