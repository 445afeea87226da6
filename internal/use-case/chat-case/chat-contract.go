package chat_service

import (
	"context"

	"github.com/adrnhkm/nearby-chat/internal/dtos/chat_dto"
	"github.com/adrnhkm/nearby-chat/internal/entity"
	app_error "github.com/adrnhkm/nearby-chat/internal/errors"
	"github.com/adrnhkm/nearby-chat/internal/proximity"
)

type ChatServiceContract interface {
	OpenRoom(ctx context.Context, userID, otherID string) (*chat_dto.RoomResponse, *app_error.AppError)
	ListPreviousRooms(ctx context.Context, userID string) (*chat_dto.PreviousRoomsResponse, *app_error.AppError)

	// Relay-facing operations.
	RoomParticipants(ctx context.Context, roomID string) ([]string, *app_error.AppError)
	SendRoomMessage(ctx context.Context, roomID, senderID, text string) (*entity.Message, proximity.Decision, *app_error.AppError)
}
