package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096

	serviceCallTimeout = 10 * time.Second
)

// Client is one socket connection. A connection belongs to exactly one user
// but may join any number of rooms; the joined set only controls which
// broadcasts it receives, it grants nothing on the send path.
type Client struct {
	ID     string
	UserID string
	Conn   *websocket.Conn
	Send   chan []byte

	hub *Hub

	joinedMu sync.RWMutex
	joined   map[string]struct{}

	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once

	lastSeenMu sync.RWMutex
	lastSeen   time.Time
}

func NewClient(hub *Hub, conn *websocket.Conn, userID string) *Client {
	ctx, cancel := context.WithCancel(hub.ctx)
	return &Client{
		ID:       uuid.New().String(),
		UserID:   userID,
		Conn:     conn,
		Send:     make(chan []byte, 256),
		hub:      hub,
		joined:   make(map[string]struct{}),
		ctx:      ctx,
		cancel:   cancel,
		lastSeen: time.Now(),
	}
}

func (c *Client) Start() {
	go c.writePump()
	go c.readPump()
}

// Close is idempotent and safe from any goroutine.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.cancel()
		_ = c.Conn.Close()
	})
}

func (c *Client) IsActive() bool {
	select {
	case <-c.ctx.Done():
		return false
	default:
		return true
	}
}

func (c *Client) Joined(roomID string) bool {
	c.joinedMu.RLock()
	defer c.joinedMu.RUnlock()
	_, ok := c.joined[roomID]
	return ok
}

func (c *Client) markJoined(roomID string) {
	c.joinedMu.Lock()
	c.joined[roomID] = struct{}{}
	c.joinedMu.Unlock()
}

func (c *Client) joinedRooms() []string {
	c.joinedMu.RLock()
	defer c.joinedMu.RUnlock()
	rooms := make([]string, 0, len(c.joined))
	for roomID := range c.joined {
		rooms = append(rooms, roomID)
	}
	return rooms
}

func (c *Client) touch() {
	c.lastSeenMu.Lock()
	c.lastSeen = time.Now()
	c.lastSeenMu.Unlock()
}

func (c *Client) LastSeen() time.Time {
	c.lastSeenMu.RLock()
	defer c.lastSeenMu.RUnlock()
	return c.lastSeen
}

// enqueue hands a frame to the write pump without blocking the caller. A full
// buffer means a consumer that stopped reading, so the connection is dropped.
func (c *Client) enqueue(data []byte) {
	select {
	case c.Send <- data:
	case <-c.ctx.Done():
	default:
		log.Warn().Str("clientID", c.ID).Str("userID", c.UserID).Msg("ws: slow consumer, closing")
		go c.Close()
	}
}

func (c *Client) sendEvent(msg OutgoingMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Error().Err(err).Str("clientID", c.ID).Msg("ws: failed to marshal event")
		return
	}
	c.enqueue(data)
}

// sendChatError goes to this connection only, never to the peer.
func (c *Client) sendChatError(roomID, reason string) {
	c.sendEvent(OutgoingMessage{
		Type:      EventChatError,
		RoomID:    roomID,
		Error:     reason,
		Timestamp: time.Now().UnixMilli(),
	})
}

// writePump drains c.Send onto the socket and keeps the connection alive
// with pings. It is the only goroutine writing to the socket.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case <-c.ctx.Done():
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case msg := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump parses incoming events and dispatches them. It owns the
// connection's lifetime: when the read side dies the client detaches from
// every room it joined.
func (c *Client) readPump() {
	defer func() {
		c.hub.Detach(c)
		c.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.touch()
		_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Str("clientID", c.ID).Msg("ws: unexpected close")
			}
			return
		}
		c.touch()
		c.handleIncoming(data)
	}
}

func (c *Client) handleIncoming(data []byte) {
	var msg IncomingMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		c.sendChatError("", "malformed message")
		return
	}

	switch msg.Type {
	case TypeJoinRoom:
		c.handleJoin(msg.RoomID)
	case TypeSendMessage:
		c.handleSend(msg.RoomID, msg.Content)
	default:
		c.sendChatError(msg.RoomID, "unknown message type")
	}
}

// handleJoin subscribes the connection to a room's broadcasts. A join for a
// room the user is not a participant of is dropped without a reply.
func (c *Client) handleJoin(roomID string) {
	if roomID == "" {
		return
	}

	ctx, cancel := context.WithTimeout(c.ctx, serviceCallTimeout)
	defer cancel()

	participants, err := c.hub.service.RoomParticipants(ctx, roomID)
	if err != nil {
		log.Debug().Str("roomID", roomID).Str("userID", c.UserID).Msg("ws: join for unknown room ignored")
		return
	}

	member := false
	for _, p := range participants {
		if p == c.UserID {
			member = true
			break
		}
	}
	if !member {
		log.Debug().Str("roomID", roomID).Str("userID", c.UserID).Msg("ws: join by non-participant ignored")
		return
	}

	c.hub.Join(roomID, c)
}

// handleSend runs the full send path. The local joined check is only a
// cheap first defense; membership and the proximity gate are re-verified by
// the service on every call.
func (c *Client) handleSend(roomID, content string) {
	if !c.Joined(roomID) {
		c.sendChatError(roomID, "room not joined")
		return
	}

	ctx, cancel := context.WithTimeout(c.ctx, serviceCallTimeout)
	defer cancel()

	msg, decision, appErr := c.hub.service.SendRoomMessage(ctx, roomID, c.UserID, content)
	if appErr != nil {
		c.sendChatError(roomID, appErr.Message)
		return
	}
	if !decision.Allowed {
		c.sendChatError(roomID, string(decision.Reason))
		return
	}

	c.hub.Broadcast(roomID, OutgoingMessage{
		Type:      EventMessage,
		MessageID: msg.ID.Hex(),
		SenderID:  msg.SenderID,
		Content:   msg.Text,
		Timestamp: msg.CreatedAt.UnixMilli(),
	})
}
