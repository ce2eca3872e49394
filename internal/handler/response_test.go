package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brenowss/foodiary/internal/apperror"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		status    int
		errorType string
		message   string
	}{
		{"validation", apperror.ValidationFailed("text", "text is required"), http.StatusBadRequest, "validation_error", "text is required"},
		{"unauthorized", apperror.Unauthorized("invalid credentials"), http.StatusUnauthorized, "unauthorized", "invalid credentials"},
		{"not found", fmt.Errorf("service: %w", apperror.NotFound("meal", "abc")), http.StatusNotFound, "not_found", "meal not found with id abc"},
		{"meal not found", apperror.MealNotFound("k.m4a"), http.StatusNotFound, "not_found", "no meal found for file key k.m4a"},
		{"bare sentinel", fmt.Errorf("lookup: %w", apperror.ErrNotFound), http.StatusNotFound, "not_found", "Not Found"},
		{"conflict", apperror.Conflict("user", "a@b.c"), http.StatusConflict, "conflict", "user conflict with id a@b.c"},
		{"storage", apperror.StorageUnavailable("presigning put", errors.New("secret detail")), http.StatusServiceUnavailable, "storage_unavailable", "storage is temporarily unavailable"},
		{"unknown", errors.New("SELECT * FROM users failed"), http.StatusInternalServerError, "internal_error", "An internal error occurred"},
		{"unmapped app error", apperror.AnalysisEmpty(), http.StatusInternalServerError, "internal_error", "An internal error occurred"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			writeError(rr, tt.err)

			assert.Equal(t, tt.status, rr.Code)
			var res ErrorResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
			assert.Equal(t, tt.errorType, res.Error)
			assert.Equal(t, tt.message, res.Message)
		})
	}
}

func TestWriteError_Issues(t *testing.T) {
	rr := httptest.NewRecorder()
	writeError(rr, apperror.Invalid(
		apperror.Issue{Field: "fileType", Message: "fileType must be one of: audio/m4a, image/jpeg, text/plain"},
		apperror.Issue{Field: "text", Message: "text is required"},
	))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	var res ErrorResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
	require.Len(t, res.Issues, 2)
	assert.Equal(t, "fileType", res.Issues[0].Field)
	assert.Equal(t, "text", res.Issues[1].Field)
}

func TestWriteError_NoIssuesField(t *testing.T) {
	rr := httptest.NewRecorder()
	writeError(rr, apperror.NotFound("meal", "x"))
	assert.NotContains(t, rr.Body.String(), "issues")
}
