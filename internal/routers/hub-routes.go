package routers

import (
	"github.com/go-chi/chi/v5"

	"github.com/adrnhkm/nearby-chat/internal/handlers"
	hub_handler "github.com/adrnhkm/nearby-chat/internal/handlers/hub-handler"
	"github.com/adrnhkm/nearby-chat/internal/websocket"
)

func HubRouter(r chi.Router, wsHub *websocket.Hub) {
	hubHandler := hub_handler.NewHubHandler(wsHub)

	r.Get("/api/health", hubHandler.HandleHealth)
	r.Get("/api/stats", handlers.WrapHandler(hubHandler.HandleGetStats))
}
