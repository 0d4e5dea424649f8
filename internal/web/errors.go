package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nconklindev/sweeper/internal/converter"
	"github.com/nconklindev/sweeper/internal/logging"
)

// ErrorResponse is the JSON body of every error reply.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// statusFor picks the HTTP status for a pipeline error.
func statusFor(err error) int {
	switch {
	case errors.Is(err, converter.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, converter.ErrParseFailure):
		return http.StatusUnprocessableEntity
	case errors.Is(err, converter.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, converter.ErrUnknownColumn),
		errors.Is(err, converter.ErrDuplicateColumn),
		errors.Is(err, converter.ErrUnknownOperation):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

// respondError logs the technical error and writes the user-facing one.
func respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	msg := converter.MapError(err)

	logging.FromContext(r.Context()).Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", msg.Code,
	)

	respondJSON(w, statusCode, ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	})
}

func respondJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}
