package chat_dto

import (
	"time"

	"github.com/adrnhkm/nearby-chat/internal/entity"
)

type MessageResponse struct {
	ID        string    `json:"id"`
	RoomID    string    `json:"room_id"`
	SenderID  string    `json:"sender_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

func NewMessageResponse(m *entity.Message) MessageResponse {
	return MessageResponse{
		ID:        m.ID.Hex(),
		RoomID:    m.RoomID.Hex(),
		SenderID:  m.SenderID,
		Text:      m.Text,
		CreatedAt: m.CreatedAt,
	}
}

type RoomResponse struct {
	RoomID   string            `json:"room_id"`
	Messages []MessageResponse `json:"messages"`
}

type RoomSummary struct {
	RoomID        string              `json:"room_id"`
	Other         *entity.UserSummary `json:"other,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	LastMessageAt time.Time           `json:"last_message_at"`
}

type PreviousRoomsResponse struct {
	Rooms []RoomSummary `json:"rooms"`
}
