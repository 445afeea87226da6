package routers

import (
	"github.com/go-chi/chi/v5"

	"github.com/adrnhkm/nearby-chat/internal/handlers"
	presence_handler "github.com/adrnhkm/nearby-chat/internal/handlers/presence-handler"
	"github.com/adrnhkm/nearby-chat/internal/middleware"
	"github.com/adrnhkm/nearby-chat/internal/presence"
	"github.com/adrnhkm/nearby-chat/state"
)

func PresenceRouter(r chi.Router, state *state.AppState, tracker *presence.Tracker, defaultRadius float64) {
	presenceHandler := presence_handler.NewPresenceHandler(state, tracker, defaultRadius)

	r.Group(func(protected chi.Router) {
		protected.Use(middleware.JWTAuth(state.JwtSecret.Public))
		protected.Post("/api/location", handlers.WrapHandler(presenceHandler.ReportLocation))
		protected.Get("/api/nearby", handlers.WrapHandler(presenceHandler.Nearby))
	})
}
