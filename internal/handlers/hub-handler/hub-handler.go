package hub_handler

import (
	"encoding/json"
	"net/http"
	"time"

	app_error "github.com/adrnhkm/nearby-chat/internal/errors"
	"github.com/adrnhkm/nearby-chat/internal/handlers"
	"github.com/adrnhkm/nearby-chat/internal/middleware"
	"github.com/adrnhkm/nearby-chat/internal/websocket"
)

type HubHandler struct {
	Hub *websocket.Hub
}

func NewHubHandler(hub *websocket.Hub) *HubHandler {
	return &HubHandler{
		Hub: hub,
	}
}

func (h *HubHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().Unix(),
		"service":   "nearby-chat",
	})
}

func (h *HubHandler) HandleGetStats(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	stats := h.Hub.Stats()

	reqID, ok := r.Context().Value(middleware.RequestIdKey).(string)
	if !ok {
		reqID = "unknown"
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(handlers.CreateResponse("websocket stats fetched", stats, reqID))
	return nil
}
