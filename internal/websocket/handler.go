package websocket

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// TODO: restrict origins once the client host is known
	CheckOrigin: func(r *http.Request) bool { return true },
}

type RateLimitConfig struct {
	Enabled          bool
	ConnectionsPerIP int
}

type WebSocketHandler struct {
	hub           *Hub
	authenticator AuthenticatorFunc

	RateLimit RateLimitConfig

	rateLimiterMu  sync.RWMutex
	connectionsPer map[string]int
}

func NewWebSocketHandler(hub *Hub, authenticator AuthenticatorFunc) *WebSocketHandler {
	return &WebSocketHandler{
		hub:           hub,
		authenticator: authenticator,
		RateLimit: RateLimitConfig{
			Enabled:          true,
			ConnectionsPerIP: 32,
		},
		connectionsPer: make(map[string]int),
	}
}

// ServeHTTP authenticates the handshake, upgrades, and hands the connection
// to the hub. Rooms are joined through socket events, not the URL.
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID, err := h.authenticateConnection(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	clientIP := h.getClientIP(r)
	if !h.allowConnection(clientIP) {
		http.Error(w, "too many connections", http.StatusTooManyRequests)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Str("userID", userID).Msg("ws: upgrade failed")
		h.releaseConnection(clientIP)
		return
	}

	client := NewClient(h.hub, conn, userID)
	go func() {
		<-client.ctx.Done()
		h.releaseConnection(clientIP)
	}()

	h.hub.Attach(client)
}

func (h *WebSocketHandler) authenticateConnection(r *http.Request) (string, error) {
	if h.authenticator == nil {
		return "", &AuthError{Message: "no authenticator configured"}
	}
	return h.authenticator(r)
}

func (h *WebSocketHandler) allowConnection(clientIP string) bool {
	if !h.RateLimit.Enabled {
		return true
	}

	h.rateLimiterMu.Lock()
	defer h.rateLimiterMu.Unlock()

	if h.connectionsPer[clientIP] >= h.RateLimit.ConnectionsPerIP {
		return false
	}
	h.connectionsPer[clientIP]++
	return true
}

func (h *WebSocketHandler) releaseConnection(clientIP string) {
	if !h.RateLimit.Enabled {
		return
	}

	h.rateLimiterMu.Lock()
	defer h.rateLimiterMu.Unlock()

	h.connectionsPer[clientIP]--
	if h.connectionsPer[clientIP] <= 0 {
		delete(h.connectionsPer, clientIP)
	}
}
