package presence_handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/adrnhkm/nearby-chat/internal/dtos/presence_dto"
	app_error "github.com/adrnhkm/nearby-chat/internal/errors"
	"github.com/adrnhkm/nearby-chat/internal/handlers"
	"github.com/adrnhkm/nearby-chat/internal/middleware"
	"github.com/adrnhkm/nearby-chat/internal/presence"
	presence_service "github.com/adrnhkm/nearby-chat/internal/use-case/presence-case"
	"github.com/adrnhkm/nearby-chat/state"
)

type PresenceHandler struct {
	State    *state.AppState
	Validate *validator.Validate
	Service  presence_service.PresenceServiceContract
}

func NewPresenceHandler(state *state.AppState, tracker *presence.Tracker, defaultRadius float64) *PresenceHandler {
	return &PresenceHandler{
		State:    state,
		Validate: validator.New(),
		Service:  presence_service.NewPresenceService(state, tracker, defaultRadius),
	}
}

func (h *PresenceHandler) ReportLocation(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	claims, ok := middleware.UserClaims(r.Context())
	if !ok {
		return app_error.Unauthorized("missing credentials")
	}

	var req presence_dto.ReportLocationRequest
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return app_error.NewAppError(http.StatusBadRequest, "Invalid JSON", "body")
	}

	if err := h.Validate.Struct(req); err != nil {
		return app_error.NewAppError(http.StatusBadRequest, fmt.Sprintf("Invalid fields: %v", err), "validation")
	}

	if err := h.Service.ReportLocation(r.Context(), claims.Sub, req); err != nil {
		return err
	}

	writeResponse(w, r, http.StatusOK, "location updated", map[string]any{"user_id": claims.Sub})
	return nil
}

// Nearby accepts an optional ?radius= in meters; anything unparsable falls
// back to the configured default.
func (h *PresenceHandler) Nearby(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	claims, ok := middleware.UserClaims(r.Context())
	if !ok {
		return app_error.Unauthorized("missing credentials")
	}

	var radius float64
	if raw := r.URL.Query().Get("radius"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed <= 0 {
			return app_error.Validation("radius must be a positive number", "radius")
		}
		radius = parsed
	}

	resp, err := h.Service.FindNearby(r.Context(), claims.Sub, radius)
	if err != nil {
		return err
	}

	writeResponse(w, r, http.StatusOK, "nearby users fetched", *resp)
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
