package websocket

import (
	"context"

	"github.com/adrnhkm/nearby-chat/internal/entity"
	app_error "github.com/adrnhkm/nearby-chat/internal/errors"
	"github.com/adrnhkm/nearby-chat/internal/proximity"
)

// ChatService is what the relay needs from the chat use-case. Membership and
// the proximity gate live behind it; the hub only routes frames.
type ChatService interface {
	RoomParticipants(ctx context.Context, roomID string) ([]string, *app_error.AppError)
	SendRoomMessage(ctx context.Context, roomID, senderID, text string) (*entity.Message, proximity.Decision, *app_error.AppError)
}
