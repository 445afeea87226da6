package handlers

import (
	"net/http"

	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog/log"

	"github.com/adrnhkm/nearby-chat/internal/dtos"
	app_error "github.com/adrnhkm/nearby-chat/internal/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

type HandlerFunc func(w http.ResponseWriter, r *http.Request) *app_error.AppError

// WrapHandler adapts the error-returning handler signature to http.HandlerFunc,
// rendering any AppError as the standard envelope.
func WrapHandler(fn HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			reqID := r.Header.Get("X-Request-ID")
			log.Error().Int("code", err.Code).Str("field", err.Field).Str("requestID", reqID).Msg(err.Message)
			writeJSON(w, err.Code, dtos.Response[any]{
				Message:   "request failed",
				RequestID: reqID,
				Errors: &dtos.ErrorResponse{
					Code:    err.Code,
					Message: err.Message,
					Field:   err.Field,
				},
			})
		}
	}
}

func CreateResponse[T any](message string, data T, requestId string) dtos.Response[T] {
	return dtos.Response[T]{
		Message:   message,
		Data:      data,
		RequestID: requestId,
	}
}
