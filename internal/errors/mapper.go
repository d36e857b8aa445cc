// internal/errors/mapper.go
package errors

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"gorm.io/gorm"
)

// APIError pairs an HTTP status with a user-facing message.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string { return e.Message }

// Map converts repo/infra errors into API errors.
// Keeps service layer clean by centralizing error mapping.
func Map(err error) *APIError {
	if err == nil {
		return nil
	}

	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr):
		return apiErr

	case errors.Is(err, gorm.ErrRecordNotFound):
		return &APIError{http.StatusNotFound, "record not found"}

	case errors.Is(err, context.DeadlineExceeded):
		return &APIError{http.StatusGatewayTimeout, "request timed out"}

	case errors.Is(err, context.Canceled):
		return &APIError{http.StatusServiceUnavailable, "request was canceled"}

	default:
		// fallback → bubble up error message for debugging
		return &APIError{http.StatusInternalServerError, err.Error()}
	}
}

// InvalidArgument creates a 400 error.
// Use this in service layer for bad input validation.
func InvalidArgument(msg string) error {
	return &APIError{http.StatusBadRequest, msg}
}

// NotFound creates a 404 error.
func NotFound(msg string) error {
	return &APIError{http.StatusNotFound, msg}
}

// Conflict creates a 409 error.
func Conflict(msg string) error {
	return &APIError{http.StatusConflict, msg}
}

// Unauthorized creates a 401 error.
func Unauthorized(msg string) error {
	return &APIError{http.StatusUnauthorized, msg}
}

// Forbidden creates a 403 error.
func Forbidden(msg string) error {
	return &APIError{http.StatusForbidden, msg}
}

// Respond maps err and writes it as a JSON error body.
func Respond(w http.ResponseWriter, err error) {
	apiErr := Map(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apiErr.Status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": apiErr.Message})
}
