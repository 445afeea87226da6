package websocket

// Incoming event types (client -> server).
const (
	TypeJoinRoom    = "join_room"
	TypeSendMessage = "send_message"
)

// Outgoing event types (server -> client).
const (
	EventMessage    = "message"
	EventChatError  = "chat_error"
	EventUserStatus = "user_status"
)

type IncomingMessage struct {
	Type    string `json:"type"`
	RoomID  string `json:"roomId"`
	Content string `json:"content"`
}

type OutgoingMessage struct {
	Type      string         `json:"type"`
	RoomID    string         `json:"roomId,omitempty"`
	MessageID string         `json:"messageId,omitempty"`
	SenderID  string         `json:"senderId,omitempty"`
	Content   string         `json:"content,omitempty"`
	Error     string         `json:"error,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
	Timestamp int64          `json:"timestamp"`
}
