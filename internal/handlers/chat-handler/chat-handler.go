package chat_handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/adrnhkm/nearby-chat/internal/dtos/chat_dto"
	app_error "github.com/adrnhkm/nearby-chat/internal/errors"
	"github.com/adrnhkm/nearby-chat/internal/handlers"
	"github.com/adrnhkm/nearby-chat/internal/middleware"
	chat_service "github.com/adrnhkm/nearby-chat/internal/use-case/chat-case"
	"github.com/adrnhkm/nearby-chat/state"
)

type ChatHandler struct {
	State    *state.AppState
	Validate *validator.Validate
	Service  chat_service.ChatServiceContract
}

func NewChatHandler(state *state.AppState, service chat_service.ChatServiceContract) *ChatHandler {
	return &ChatHandler{
		State:    state,
		Validate: validator.New(),
		Service:  service,
	}
}

// OpenRoom returns the pair's room, creating it on first contact. The same
// room comes back no matter which side asks.
func (h *ChatHandler) OpenRoom(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	claims, ok := middleware.UserClaims(r.Context())
	if !ok {
		return app_error.Unauthorized("missing credentials")
	}

	var req chat_dto.CreateRoomRequest
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return app_error.NewAppError(http.StatusBadRequest, "Invalid JSON", "body")
	}

	if err := h.Validate.Struct(req); err != nil {
		return app_error.NewAppError(http.StatusBadRequest, fmt.Sprintf("Invalid fields: %v", err), "validation")
	}

	if req.OtherID == claims.Sub {
		return app_error.Validation("cannot open a room with yourself", "other_id")
	}

	resp, err := h.Service.OpenRoom(r.Context(), claims.Sub, req.OtherID)
	if err != nil {
		return err
	}

	writeResponse(w, r, http.StatusOK, "room ready", *resp)
	return nil
}

func (h *ChatHandler) PreviousRooms(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	claims, ok := middleware.UserClaims(r.Context())
	if !ok {
		return app_error.Unauthorized("missing credentials")
	}

	resp, err := h.Service.ListPreviousRooms(r.Context(), claims.Sub)
	if err != nil {
		return err
	}

	writeResponse(w, r, http.StatusOK, "rooms fetched", *resp)
	return nil
}

func writeResponse[T any](w http.ResponseWriter, r *http.Request, status int, message string, data T) {
	reqID, ok := r.Context().Value(middleware.RequestIdKey).(string)
	if !ok {
		reqID = "unknown"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(handlers.CreateResponse(message, data, reqID))
}
