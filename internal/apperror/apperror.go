package apperror

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("Validation Error")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")

	// Pipeline kinds. These never reach the client directly; the processor
	// converts them into a failed meal.
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrAssetUnreadable    = errors.New("asset unreadable")
	ErrAnalysisEmpty      = errors.New("analysis returned no content")
	ErrAnalysisMalformed  = errors.New("analysis returned malformed content")
	ErrMealNotFound       = errors.New("meal not found for file key")
)

// Issue is one violated field constraint.
type Issue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type AppError struct {
	Err     error   // actual error
	Message string  // Human-readable error message
	Field   string  // Optional: field causing the error
	Issues  []Issue // Optional: every violated constraint for validation errors
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
		Issues:  []Issue{{Field: field, Message: message}},
	}
}

// Invalid builds a single validation error out of every collected issue.
func Invalid(issues ...Issue) *AppError {
	msgs := make([]string, 0, len(issues))
	for _, is := range issues {
		msgs = append(msgs, is.Message)
	}
	e := &AppError{
		Err:     ErrValidation,
		Message: strings.Join(msgs, "; "),
		Issues:  issues,
	}
	if len(issues) == 1 {
		e.Field = issues[0].Field
	}
	return e
}

func Conflict(resource, id string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s conflict with id %s", resource, id),
	}
}

// Unauthorized is returned for missing, expired or malformed credentials and
// for a failed sign-in.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

// MealNotFound reports a queued file key with no matching meal.
func MealNotFound(fileKey string) *AppError {
	return &AppError{
		Err:     ErrMealNotFound,
		Message: fmt.Sprintf("no meal found for file key %s", fileKey),
		Field:   "fileKey",
	}
}

// StorageUnavailable wraps a failed object-store call, keeping the cause
// reachable through errors.Is/As.
func StorageUnavailable(op string, cause error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorageUnavailable, op, cause)
}

func AssetUnreadable(key string) *AppError {
	return &AppError{
		Err:     ErrAssetUnreadable,
		Message: fmt.Sprintf("object %s has no readable body", key),
	}
}

func AnalysisEmpty() *AppError {
	return &AppError{
		Err:     ErrAnalysisEmpty,
		Message: "analysis service returned an empty response",
	}
}

func AnalysisMalformed(reason string) *AppError {
	return &AppError{
		Err:     ErrAnalysisMalformed,
		Message: "analysis service returned malformed content: " + reason,
	}
}
