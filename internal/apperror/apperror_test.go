package apperror

import (
	"errors"
	"testing"
)

// Table-driven: each case checks errors.Is against a sentinel kind.
func TestErrorsIs(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		target    error
		wantMatch bool
	}{
		{
			name:      "NotFound wraps ErrNotFound",
			err:       NotFound("meal", "abc123"),
			target:    ErrNotFound,
			wantMatch: true,
		},
		{
			name:      "ValidationFailed wraps ErrValidation",
			err:       ValidationFailed("fileType", "fileType is required"),
			target:    ErrValidation,
			wantMatch: true,
		},
		{
			name:      "Conflict wraps ErrConflict",
			err:       Conflict("user", "a@b.com"),
			target:    ErrConflict,
			wantMatch: true,
		},
		{
			name:      "Unauthorized wraps ErrUnauthorized",
			err:       Unauthorized("invalid access token"),
			target:    ErrUnauthorized,
			wantMatch: true,
		},
		{
			name:      "MealNotFound is not a plain NotFound",
			err:       MealNotFound("x.m4a"),
			target:    ErrNotFound,
			wantMatch: false,
		},
		{
			name:      "StorageUnavailable wraps kind",
			err:       StorageUnavailable("get object", errors.New("boom")),
			target:    ErrStorageUnavailable,
			wantMatch: true,
		},
		{
			name:      "AnalysisMalformed wraps kind",
			err:       AnalysisMalformed("not json"),
			target:    ErrAnalysisMalformed,
			wantMatch: true,
		},
		{
			name:      "AnalysisEmpty does NOT match AnalysisMalformed",
			err:       AnalysisEmpty(),
			target:    ErrAnalysisMalformed,
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := errors.Is(tt.err, tt.target)
			if got != tt.wantMatch {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tt.err, tt.target, got, tt.wantMatch)
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name        string
		err         *AppError
		wantMessage string
	}{
		{
			name:        "NotFound message includes resource and id",
			err:         NotFound("meal", "abc123"),
			wantMessage: "meal not found with id abc123",
		},
		{
			name:        "ValidationFailed uses custom message",
			err:         ValidationFailed("text", "text is required"),
			wantMessage: "text is required",
		},
		{
			name:        "Invalid joins every issue",
			err:         Invalid(Issue{"a", "a is bad"}, Issue{"b", "b is bad"}),
			wantMessage: "a is bad; b is bad",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMessage {
				t.Errorf("Error() = %q, want %q", got, tt.wantMessage)
			}
		})
	}
}

func TestUnwrap(t *testing.T) {
	err := NotFound("meal", "abc123")
	if err.Unwrap() != ErrNotFound {
		t.Errorf("Unwrap() = %v, want %v", err.Unwrap(), ErrNotFound)
	}
}

func TestInvalid_KeepsAllIssues(t *testing.T) {
	err := Invalid(Issue{"fileType", "bad type"}, Issue{"text", "text is required"})

	if len(err.Issues) != 2 {
		t.Fatalf("Issues = %d, want 2", len(err.Issues))
	}
	if err.Field != "" {
		t.Errorf("Field = %q, want empty for multi-issue errors", err.Field)
	}

	single := Invalid(Issue{"email", "invalid email"})
	if single.Field != "email" {
		t.Errorf("Field = %q, want %q", single.Field, "email")
	}
}

func TestStorageUnavailable_KeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := StorageUnavailable("presign put", cause)

	if !errors.Is(err, cause) {
		t.Error("StorageUnavailable should keep the cause in the chain")
	}
}
