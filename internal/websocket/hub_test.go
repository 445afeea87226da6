package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/adrnhkm/nearby-chat/internal/entity"
	app_error "github.com/adrnhkm/nearby-chat/internal/errors"
	"github.com/adrnhkm/nearby-chat/internal/proximity"
)

type fakeChatService struct {
	participants map[string][]string
	decision     proximity.Decision
	appErr       *app_error.AppError
	sentTexts    []string
}

func (f *fakeChatService) RoomParticipants(_ context.Context, roomID string) ([]string, *app_error.AppError) {
	if p, ok := f.participants[roomID]; ok {
		return p, nil
	}
	return nil, app_error.NotFound("cannot find room", "room-id")
}

func (f *fakeChatService) SendRoomMessage(_ context.Context, roomID, senderID, text string) (*entity.Message, proximity.Decision, *app_error.AppError) {
	if f.appErr != nil {
		return nil, proximity.Denied(proximity.ReasonInvalid), f.appErr
	}
	if !f.decision.Allowed {
		return nil, f.decision, nil
	}
	f.sentTexts = append(f.sentTexts, text)
	return &entity.Message{
		ID:        bson.NewObjectID(),
		SenderID:  senderID,
		Text:      text,
		CreatedAt: time.Now(),
	}, proximity.Allowed, nil
}

// newTestClient builds a client without a socket; frames pile up in Send.
func newTestClient(hub *Hub, userID string) *Client {
	ctx, cancel := context.WithCancel(hub.ctx)
	return &Client{
		ID:       uuid.New().String(),
		UserID:   userID,
		Send:     make(chan []byte, 16),
		hub:      hub,
		joined:   make(map[string]struct{}),
		ctx:      ctx,
		cancel:   cancel,
		lastSeen: time.Now(),
	}
}

func drainEvents(t *testing.T, c *Client) []OutgoingMessage {
	t.Helper()
	var events []OutgoingMessage
	for {
		select {
		case data := <-c.Send:
			var msg OutgoingMessage
			require.NoError(t, json.Unmarshal(data, &msg))
			events = append(events, msg)
		default:
			return events
		}
	}
}

func eventsOfType(events []OutgoingMessage, eventType string) []OutgoingMessage {
	var out []OutgoingMessage
	for _, e := range events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

func TestHub_JoinAndBroadcast(t *testing.T) {
	svc := &fakeChatService{
		participants: map[string][]string{"room-1": {"alice", "bob"}},
		decision:     proximity.Allowed,
	}
	hub := NewHub(svc)
	defer hub.cancel()

	alice := newTestClient(hub, "alice")
	bob := newTestClient(hub, "bob")

	alice.handleJoin("room-1")
	bob.handleJoin("room-1")

	assert.True(t, alice.Joined("room-1"))
	assert.True(t, bob.Joined("room-1"))

	bob.handleSend("room-1", "hello alice")

	aliceMsgs := eventsOfType(drainEvents(t, alice), EventMessage)
	require.Len(t, aliceMsgs, 1)
	assert.Equal(t, "hello alice", aliceMsgs[0].Content)
	assert.Equal(t, "bob", aliceMsgs[0].SenderID)
	assert.Equal(t, "room-1", aliceMsgs[0].RoomID)

	// the sender's own connection gets the broadcast too
	bobMsgs := eventsOfType(drainEvents(t, bob), EventMessage)
	require.Len(t, bobMsgs, 1)
	assert.Equal(t, []string{"hello alice"}, svc.sentTexts)
}

func TestHub_JoinByNonParticipantIgnored(t *testing.T) {
	svc := &fakeChatService{
		participants: map[string][]string{"room-1": {"alice", "bob"}},
		decision:     proximity.Allowed,
	}
	hub := NewHub(svc)
	defer hub.cancel()

	carol := newTestClient(hub, "carol")
	carol.handleJoin("room-1")

	assert.False(t, carol.Joined("room-1"), "non-participant join must be dropped silently")
	assert.Empty(t, drainEvents(t, carol), "no reply, not even an error")
}

func TestHub_JoinUnknownRoomIgnored(t *testing.T) {
	svc := &fakeChatService{participants: map[string][]string{}}
	hub := NewHub(svc)
	defer hub.cancel()

	alice := newTestClient(hub, "alice")
	alice.handleJoin("missing")

	assert.False(t, alice.Joined("missing"))
	assert.Empty(t, drainEvents(t, alice))
}

func TestHub_DeniedSendErrorsSenderOnly(t *testing.T) {
	svc := &fakeChatService{
		participants: map[string][]string{"room-1": {"alice", "bob"}},
		decision:     proximity.Denied(proximity.ReasonTooFar),
	}
	hub := NewHub(svc)
	defer hub.cancel()

	alice := newTestClient(hub, "alice")
	bob := newTestClient(hub, "bob")
	alice.handleJoin("room-1")
	bob.handleJoin("room-1")
	drainEvents(t, alice)
	drainEvents(t, bob)

	alice.handleSend("room-1", "hello?")

	aliceEvents := drainEvents(t, alice)
	require.Len(t, aliceEvents, 1)
	assert.Equal(t, EventChatError, aliceEvents[0].Type)
	assert.Equal(t, string(proximity.ReasonTooFar), aliceEvents[0].Error)

	assert.Empty(t, drainEvents(t, bob), "the peer must not see the denial")
	assert.Empty(t, svc.sentTexts)
}

func TestHub_SendWithoutJoinRejected(t *testing.T) {
	svc := &fakeChatService{
		participants: map[string][]string{"room-1": {"alice", "bob"}},
		decision:     proximity.Allowed,
	}
	hub := NewHub(svc)
	defer hub.cancel()

	alice := newTestClient(hub, "alice")
	bob := newTestClient(hub, "bob")
	bob.handleJoin("room-1")
	drainEvents(t, bob)

	// alice never joined on this connection, so the send is stopped before
	// it reaches the service
	alice.handleSend("room-1", "drive-by")

	aliceEvents := drainEvents(t, alice)
	require.Len(t, aliceEvents, 1)
	assert.Equal(t, EventChatError, aliceEvents[0].Type)
	assert.Empty(t, eventsOfType(drainEvents(t, bob), EventMessage))
	assert.Empty(t, svc.sentTexts)
}

func TestHub_MalformedFrame(t *testing.T) {
	svc := &fakeChatService{participants: map[string][]string{}}
	hub := NewHub(svc)
	defer hub.cancel()

	alice := newTestClient(hub, "alice")
	alice.handleIncoming([]byte("{not json"))

	events := drainEvents(t, alice)
	require.Len(t, events, 1)
	assert.Equal(t, EventChatError, events[0].Type)
}

func TestHub_DetachStopsDelivery(t *testing.T) {
	svc := &fakeChatService{
		participants: map[string][]string{"room-1": {"alice", "bob"}},
		decision:     proximity.Allowed,
	}
	hub := NewHub(svc)
	defer hub.cancel()

	alice := newTestClient(hub, "alice")
	bob := newTestClient(hub, "bob")
	alice.handleJoin("room-1")
	bob.handleJoin("room-1")

	hub.Detach(bob)
	drainEvents(t, alice)
	drainEvents(t, bob)

	alice.handleSend("room-1", "anyone there?")

	assert.Empty(t, eventsOfType(drainEvents(t, bob), EventMessage))
	require.Len(t, eventsOfType(drainEvents(t, alice), EventMessage), 1)
}

func TestHub_UserStatusOnJoin(t *testing.T) {
	svc := &fakeChatService{
		participants: map[string][]string{"room-1": {"alice", "bob"}},
	}
	hub := NewHub(svc)
	defer hub.cancel()

	alice := newTestClient(hub, "alice")
	bob := newTestClient(hub, "bob")
	alice.handleJoin("room-1")
	bob.handleJoin("room-1")

	statuses := eventsOfType(drainEvents(t, alice), EventUserStatus)
	require.Len(t, statuses, 1)
	assert.Equal(t, "bob", statuses[0].Data["user_id"])
	assert.Equal(t, "online", statuses[0].Data["status"])

	assert.Empty(t, eventsOfType(drainEvents(t, bob), EventUserStatus), "no status echo to the user themselves")
}

func TestHub_StatsCount(t *testing.T) {
	svc := &fakeChatService{
		participants: map[string][]string{"room-1": {"alice", "bob"}},
		decision:     proximity.Allowed,
	}
	hub := NewHub(svc)
	defer hub.cancel()

	alice := newTestClient(hub, "alice")
	bob := newTestClient(hub, "bob")
	alice.handleJoin("room-1")
	bob.handleJoin("room-1")

	stats := hub.Stats()
	assert.Equal(t, 1, stats.TotalRooms)
	assert.Equal(t, 2, stats.TotalClients)
}
