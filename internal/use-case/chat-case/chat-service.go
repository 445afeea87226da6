package chat_service

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/adrnhkm/nearby-chat/internal/dtos/chat_dto"
	"github.com/adrnhkm/nearby-chat/internal/entity"
	app_error "github.com/adrnhkm/nearby-chat/internal/errors"
	"github.com/adrnhkm/nearby-chat/internal/presence"
	"github.com/adrnhkm/nearby-chat/internal/proximity"
	chat_repo "github.com/adrnhkm/nearby-chat/internal/repo/chat"
	user_repo "github.com/adrnhkm/nearby-chat/internal/repo/user"
	"github.com/adrnhkm/nearby-chat/state"
)

type ChatService struct {
	AppState     *state.AppState
	ChatRepo     chat_repo.ChatRepoContract
	UserRepo     user_repo.UserRepoContract
	Tracker      *presence.Tracker
	Gate         proximity.Gate
	HistoryLimit int
}

func NewChatService(appState *state.AppState, tracker *presence.Tracker, gate proximity.Gate, historyLimit int) ChatServiceContract {
	return &ChatService{
		AppState:     appState,
		ChatRepo:     chat_repo.NewChatRepo(appState),
		UserRepo:     user_repo.NewUserRepo(appState),
		Tracker:      tracker,
		Gate:         gate,
		HistoryLimit: historyLimit,
	}
}

// OpenRoom resolves (or lazily creates) the single room for the pair and
// returns it seeded with the trailing message history.
func (c *ChatService) OpenRoom(ctx context.Context, userID, otherID string) (*chat_dto.RoomResponse, *app_error.AppError) {
	if _, err := c.UserRepo.FindByID(ctx, otherID); err != nil {
		return nil, err
	}

	room, err := c.ChatRepo.GetOrCreateRoom(ctx, userID, otherID)
	if err != nil {
		return nil, err
	}

	history, err := c.ChatRepo.RecentMessages(ctx, room.ID.Hex(), c.HistoryLimit)
	if err != nil {
		return nil, err
	}

	messages := make([]chat_dto.MessageResponse, 0, len(history))
	for _, m := range history {
		messages = append(messages, chat_dto.NewMessageResponse(m))
	}

	return &chat_dto.RoomResponse{
		RoomID:   room.ID.Hex(),
		Messages: messages,
	}, nil
}

func (c *ChatService) ListPreviousRooms(ctx context.Context, userID string) (*chat_dto.PreviousRoomsResponse, *app_error.AppError) {
	rooms, err := c.ChatRepo.RoomsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	otherIDs := make([]string, 0, len(rooms))
	for _, room := range rooms {
		if other := room.OtherParticipant(userID); other != "" {
			otherIDs = append(otherIDs, other)
		}
	}

	others, err := c.UserRepo.FindByIDs(ctx, otherIDs)
	if err != nil {
		return nil, err
	}
	summaries := make(map[string]entity.UserSummary, len(others))
	for _, u := range others {
		summaries[u.ID] = u.Summary()
	}

	resp := &chat_dto.PreviousRoomsResponse{Rooms: []chat_dto.RoomSummary{}}
	for _, room := range rooms {
		summary := chat_dto.RoomSummary{
			RoomID:        room.ID.Hex(),
			CreatedAt:     room.CreatedAt,
			LastMessageAt: room.LastMessageAt,
		}
		if other, ok := summaries[room.OtherParticipant(userID)]; ok {
			summary.Other = &other
		}
		resp.Rooms = append(resp.Rooms, summary)
	}

	return resp, nil
}

func (c *ChatService) RoomParticipants(ctx context.Context, roomID string) ([]string, *app_error.AppError) {
	room, err := c.ChatRepo.FindRoomByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	return room.Participants, nil
}

// SendRoomMessage is the relay's send path. Membership comes from the room
// registry, not from connection-local join state, and the proximity gate is
// re-evaluated on this very call; nothing is mutated on a denial.
func (c *ChatService) SendRoomMessage(ctx context.Context, roomID, senderID, text string) (*entity.Message, proximity.Decision, *app_error.AppError) {
	if strings.TrimSpace(text) == "" {
		return nil, proximity.Denied(proximity.ReasonInvalid), app_error.Validation("message text must not be empty", "text")
	}

	room, err := c.ChatRepo.FindRoomByID(ctx, roomID)
	if err != nil {
		return nil, proximity.Denied(proximity.ReasonInvalid), err
	}

	if !room.HasParticipant(senderID) || len(room.Participants) != 2 {
		return nil, proximity.Denied(proximity.ReasonInvalid), nil
	}

	users, err := c.UserRepo.FindByIDs(ctx, room.Participants)
	if err != nil {
		return nil, proximity.Denied(proximity.ReasonInvalid), err
	}
	if len(users) != 2 {
		return nil, proximity.Denied(proximity.ReasonInvalid), nil
	}

	pa, err := c.Tracker.Get(ctx, room.Participants[0])
	if err != nil {
		return nil, proximity.Denied(proximity.ReasonDisconnected), err
	}
	pb, err := c.Tracker.Get(ctx, room.Participants[1])
	if err != nil {
		return nil, proximity.Denied(proximity.ReasonDisconnected), err
	}

	decision := c.Gate.Check(pa, pb, c.Tracker.Now())
	if !decision.Allowed {
		log.Debug().Str("roomID", roomID).Str("senderID", senderID).Str("reason", string(decision.Reason)).Msg("chat: send denied by gate")
		return nil, decision, nil
	}

	msg, err := c.ChatRepo.AppendMessage(ctx, roomID, senderID, text)
	if err != nil {
		return nil, proximity.Allowed, err
	}

	return msg, proximity.Allowed, nil
}
