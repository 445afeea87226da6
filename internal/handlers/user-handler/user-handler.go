package user_handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/adrnhkm/nearby-chat/internal/dtos/user_dto"
	app_error "github.com/adrnhkm/nearby-chat/internal/errors"
	"github.com/adrnhkm/nearby-chat/internal/handlers"
	"github.com/adrnhkm/nearby-chat/internal/middleware"
	"github.com/adrnhkm/nearby-chat/internal/presence"
	user_service "github.com/adrnhkm/nearby-chat/internal/use-case/user-case"
	"github.com/adrnhkm/nearby-chat/state"
)

type UserHandler struct {
	State    *state.AppState
	Validate *validator.Validate
	Service  user_service.UserServiceContract
}

func NewUserHandler(state *state.AppState, tracker *presence.Tracker) *UserHandler {
	return &UserHandler{
		State:    state,
		Validate: validator.New(),
		Service:  user_service.NewUserService(state, tracker),
	}
}

func (h *UserHandler) Signup(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	var req user_dto.SignupRequest
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return app_error.NewAppError(http.StatusBadRequest, "Invalid JSON", "body")
	}

	if err := h.Validate.Struct(req); err != nil {
		return app_error.NewAppError(http.StatusBadRequest, fmt.Sprintf("Invalid fields: %v", err), "validation")
	}

	resp, err := h.Service.Signup(r.Context(), req)
	if err != nil {
		return err
	}

	writeResponse(w, r, http.StatusCreated, "user registered successfully", *resp)
	return nil
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	var req user_dto.LoginRequest
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return app_error.NewAppError(http.StatusBadRequest, "Invalid JSON", "body")
	}

	if err := h.Validate.Struct(req); err != nil {
		return app_error.NewAppError(http.StatusBadRequest, fmt.Sprintf("Invalid fields: %v", err), "validation")
	}

	resp, err := h.Service.Login(r.Context(), req)
	if err != nil {
		return err
	}

	writeResponse(w, r, http.StatusOK, "login successful", *resp)
	return nil
}

// Logout drops the caller's presence; the token itself stays valid until it
// expires.
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	claims, ok := middleware.UserClaims(r.Context())
	if !ok {
		return app_error.Unauthorized("missing credentials")
	}

	if err := h.Service.Logout(r.Context(), claims.Sub); err != nil {
		return err
	}

	writeResponse(w, r, http.StatusOK, "logged out", map[string]any{"user_id": claims.Sub})
	return nil
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	claims, ok := middleware.UserClaims(r.Context())
	if !ok {
		return app_error.Unauthorized("missing credentials")
	}

	resp, err := h.Service.Me(r.Context(), claims.Sub)
	if err != nil {
		return err
	}

	writeResponse(w, r, http.StatusOK, "profile fetched", *resp)
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
