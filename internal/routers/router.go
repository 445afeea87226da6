package routers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/adrnhkm/nearby-chat/internal/middleware"
	"github.com/adrnhkm/nearby-chat/internal/presence"
	chat_service "github.com/adrnhkm/nearby-chat/internal/use-case/chat-case"
	"github.com/adrnhkm/nearby-chat/internal/websocket"
	"github.com/adrnhkm/nearby-chat/state"
)

func NewRouter(state *state.AppState, tracker *presence.Tracker, chatService chat_service.ChatServiceContract, hub *websocket.Hub, defaultRadius float64) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.WithRequestId)

	UserRouter(r, state, tracker)
	PresenceRouter(r, state, tracker, defaultRadius)
	ChatRouter(r, state, chatService)
	HubRouter(r, hub)

	wsHandler := websocket.NewWebSocketHandler(hub, websocket.JWTWebSocketAuth(state.JwtSecret.Public))
	r.Get("/ws", wsHandler.ServeHTTP)

	return r
}
