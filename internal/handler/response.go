package handler

// Every error response has the same shape:
//
//	{"error": "validation_error", "message": "...", "issues": [{"field": "...", "message": "..."}]}
//
// issues is only present for validation errors.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/brenowss/foodiary/internal/apperror"
)

// ErrorResponse is the standard error format returned by all API endpoints.
type ErrorResponse struct {
	Error   string           `json:"error"`   // Machine-readable error type (e.g., "not_found")
	Message string           `json:"message"` // Human-readable description
	Issues  []apperror.Issue `json:"issues,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent; all we can do is log.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// errorStatus maps a domain error kind to its HTTP status and error type.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, apperror.ErrValidation):
		return http.StatusBadRequest, "validation_error"
	case errors.Is(err, apperror.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, apperror.ErrNotFound), errors.Is(err, apperror.ErrMealNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, apperror.ErrConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, apperror.ErrStorageUnavailable):
		return http.StatusServiceUnavailable, "storage_unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// writeError maps a domain error to a status code and sends it. Unknown
// errors get a generic message; their text never reaches the client.
func writeError(w http.ResponseWriter, err error) {
	status, errorType := errorStatus(err)

	var appErr *apperror.AppError
	switch {
	case status == http.StatusServiceUnavailable:
		writeJSON(w, status, ErrorResponse{
			Error:   errorType,
			Message: "storage is temporarily unavailable",
		})
	case status != http.StatusInternalServerError && errors.As(err, &appErr):
		writeJSON(w, status, ErrorResponse{
			Error:   errorType,
			Message: appErr.Message,
			Issues:  appErr.Issues,
		})
	case status != http.StatusInternalServerError:
		writeJSON(w, status, ErrorResponse{
			Error:   errorType,
			Message: http.StatusText(status),
		})
	default:
		slog.Error("unhandled error", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "An internal error occurred",
		})
	}
}
