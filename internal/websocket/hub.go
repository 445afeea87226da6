package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Hub routes frames between connections grouped by room. It is deliberately
// dumb about chat semantics: membership and the proximity gate belong to the
// service, the hub only fans out what the service already allowed.
type Hub struct {
	service ChatService

	rooms map[string]map[*Client]struct{}
	mu    sync.RWMutex

	ctx    context.Context
	cancel context.CancelFunc

	stats   HubStats
	statsMu sync.RWMutex

	cleanupTicker *time.Ticker
}

type HubStats struct {
	TotalRooms       int       `json:"total_rooms"`
	TotalClients     int       `json:"total_clients"`
	TotalConnections int64     `json:"total_connections"`
	MessagesSent     int64     `json:"messages_sent"`
	StartedAt        time.Time `json:"started_at"`
}

func NewHub(service ChatService) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	hub := &Hub{
		service: service,
		rooms:   make(map[string]map[*Client]struct{}),
		ctx:     ctx,
		cancel:  cancel,
		stats: HubStats{
			StartedAt: time.Now(),
		},
		cleanupTicker: time.NewTicker(1 * time.Minute),
	}

	go hub.cleanupRoutine()

	return hub
}

// Attach registers a freshly upgraded connection and starts its pumps. The
// connection receives nothing until it joins a room.
func (h *Hub) Attach(client *Client) {
	h.updateStats(func(stats *HubStats) {
		stats.TotalConnections++
	})

	client.Start()

	log.Info().Str("clientID", client.ID).Str("userID", client.UserID).Msg("ws: client attached")
}

// Join subscribes a client to a room's broadcasts. Callers have already
// verified participation.
func (h *Hub) Join(roomID string, client *Client) {
	h.mu.Lock()
	if h.rooms[roomID] == nil {
		h.rooms[roomID] = make(map[*Client]struct{})
	}
	h.rooms[roomID][client] = struct{}{}
	roomSize := len(h.rooms[roomID])
	h.mu.Unlock()

	client.markJoined(roomID)

	h.broadcastUserStatus(roomID, client.UserID, true)

	log.Info().Str("roomID", roomID).Str("clientID", client.ID).Str("userID", client.UserID).Int("roomSize", roomSize).Msg("ws: client joined room")
}

// Detach removes a client from every room it joined. Called exactly once,
// from the client's read pump, when the connection dies.
func (h *Hub) Detach(client *Client) {
	for _, roomID := range client.joinedRooms() {
		h.leave(roomID, client)
	}

	log.Info().Str("clientID", client.ID).Str("userID", client.UserID).Msg("ws: client detached")
}

func (h *Hub) leave(roomID string, client *Client) {
	h.mu.Lock()
	if clients, ok := h.rooms[roomID]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.rooms, roomID)
		}
	}
	h.mu.Unlock()

	if !h.IsUserOnlineInRoom(roomID, client.UserID) {
		h.broadcastUserStatus(roomID, client.UserID, false)
	}
}

// Broadcast delivers an event to every connection joined to the room,
// the sender's own connections included.
func (h *Hub) Broadcast(roomID string, message OutgoingMessage) {
	h.broadcastToRoom(roomID, message, "")
}

func (h *Hub) broadcastToRoom(roomID string, message OutgoingMessage, exceptUserID string) {
	message.RoomID = roomID

	data, err := json.Marshal(message)
	if err != nil {
		log.Error().Err(err).Str("roomID", roomID).Msg("ws: failed to marshal broadcast")
		return
	}

	// Snapshot under the read lock, deliver outside it.
	h.mu.RLock()
	var targets []*Client
	if clients, ok := h.rooms[roomID]; ok {
		targets = make([]*Client, 0, len(clients))
		for client := range clients {
			if exceptUserID != "" && client.UserID == exceptUserID {
				continue
			}
			if client.IsActive() {
				targets = append(targets, client)
			}
		}
	}
	h.mu.RUnlock()

	if len(targets) == 0 {
		return
	}

	for _, client := range targets {
		client.enqueue(data)
	}

	h.updateStats(func(stats *HubStats) {
		stats.MessagesSent += int64(len(targets))
	})

	log.Debug().Str("roomID", roomID).Int("targets", len(targets)).Str("eventType", message.Type).Msg("ws: broadcast delivered")
}

func (h *Hub) broadcastUserStatus(roomID, userID string, online bool) {
	status := "offline"
	if online {
		status = "online"
	}

	h.broadcastToRoom(roomID, OutgoingMessage{
		Type: EventUserStatus,
		Data: map[string]any{
			"user_id": userID,
			"status":  status,
		},
		Timestamp: time.Now().UnixMilli(),
	}, userID)
}

// IsUserOnlineInRoom reports whether the user still has an active connection
// joined to the room.
func (h *Hub) IsUserOnlineInRoom(roomID, userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.rooms[roomID] {
		if client.UserID == userID && client.IsActive() {
			return true
		}
	}
	return false
}

// RoomClients returns the active connections joined to a room.
func (h *Hub) RoomClients(roomID string) []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var clients []*Client
	for client := range h.rooms[roomID] {
		if client.IsActive() {
			clients = append(clients, client)
		}
	}
	return clients
}

// Stats returns a snapshot of hub counters with current room and client
// counts filled in.
func (h *Hub) Stats() HubStats {
	h.mu.RLock()
	totalRooms := len(h.rooms)
	totalClients := 0
	for _, clients := range h.rooms {
		for client := range clients {
			if client.IsActive() {
				totalClients++
			}
		}
	}
	h.mu.RUnlock()

	h.statsMu.RLock()
	stats := h.stats
	h.statsMu.RUnlock()

	stats.TotalRooms = totalRooms
	stats.TotalClients = totalClients
	return stats
}

func (h *Hub) updateStats(fn func(*HubStats)) {
	h.statsMu.Lock()
	fn(&h.stats)
	h.statsMu.Unlock()
}

func (h *Hub) cleanupRoutine() {
	defer h.cleanupTicker.Stop()

	for {
		select {
		case <-h.ctx.Done():
			return
		case <-h.cleanupTicker.C:
			h.performCleanup()
		}
	}
}

// performCleanup drops connections whose read side went quiet past the pong
// window; their pumps then detach them from every room.
func (h *Hub) performCleanup() {
	now := time.Now()
	inactiveThreshold := 2 * pongWait

	var toClose []*Client

	h.mu.RLock()
	for _, clients := range h.rooms {
		for client := range clients {
			if !client.IsActive() || now.Sub(client.LastSeen()) > inactiveThreshold {
				toClose = append(toClose, client)
			}
		}
	}
	h.mu.RUnlock()

	for _, client := range toClose {
		log.Info().Str("clientID", client.ID).Str("userID", client.UserID).Msg("ws: closing inactive client")
		client.Close()
	}

	if len(toClose) > 0 {
		log.Debug().Int("closed", len(toClose)).Msg("ws: cleanup pass completed")
	}
}

// Close shuts down the hub and every connection it knows about.
func (h *Hub) Close() {
	log.Info().Msg("ws: shutting down hub")

	h.mu.RLock()
	var allClients []*Client
	for _, clients := range h.rooms {
		for client := range clients {
			allClients = append(allClients, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range allClients {
		client.Close()
	}

	h.cancel()

	log.Info().Int("clients", len(allClients)).Msg("ws: hub shutdown completed")
}
