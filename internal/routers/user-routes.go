package routers

import (
	"github.com/go-chi/chi/v5"

	"github.com/adrnhkm/nearby-chat/internal/handlers"
	user_handler "github.com/adrnhkm/nearby-chat/internal/handlers/user-handler"
	"github.com/adrnhkm/nearby-chat/internal/middleware"
	"github.com/adrnhkm/nearby-chat/internal/presence"
	"github.com/adrnhkm/nearby-chat/state"
)

func UserRouter(r chi.Router, state *state.AppState, tracker *presence.Tracker) {
	userHandler := user_handler.NewUserHandler(state, tracker)

	r.Post("/api/signup", handlers.WrapHandler(userHandler.Signup))
	r.Post("/api/login", handlers.WrapHandler(userHandler.Login))

	r.Group(func(protected chi.Router) {
		protected.Use(middleware.JWTAuth(state.JwtSecret.Public))
		protected.Post("/api/logout", handlers.WrapHandler(userHandler.Logout))
		protected.Get("/api/me", handlers.WrapHandler(userHandler.Me))
	})
}
