package routers

import (
	"github.com/go-chi/chi/v5"

	"github.com/adrnhkm/nearby-chat/internal/handlers"
	chat_handler "github.com/adrnhkm/nearby-chat/internal/handlers/chat-handler"
	"github.com/adrnhkm/nearby-chat/internal/middleware"
	chat_service "github.com/adrnhkm/nearby-chat/internal/use-case/chat-case"
	"github.com/adrnhkm/nearby-chat/state"
)

func ChatRouter(r chi.Router, state *state.AppState, service chat_service.ChatServiceContract) {
	chatHandler := chat_handler.NewChatHandler(state, service)

	r.Group(func(protected chi.Router) {
		protected.Use(middleware.JWTAuth(state.JwtSecret.Public))
		protected.Post("/api/room", handlers.WrapHandler(chatHandler.OpenRoom))
		protected.Get("/api/previousRooms", handlers.WrapHandler(chatHandler.PreviousRooms))
	})
}
