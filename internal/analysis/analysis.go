// Package analysis defines the contract with the external services that
// transcribe voice notes and extract structured nutrition data from a meal
// description or photo.
package analysis

import (
	"context"
	"time"

	"github.com/brenowss/foodiary/internal/model"
)

// Analyzer is implemented by analysis/openai. Extraction results are parsed
// with ParseDetails; an empty reply is apperror.ErrAnalysisEmpty and anything
// that does not match the result shape is apperror.ErrAnalysisMalformed.
type Analyzer interface {
	// Transcribe turns an m4a voice note into plain text.
	Transcribe(ctx context.Context, audio []byte) (string, error)
	FromText(ctx context.Context, in TextInput) (model.MealDetails, error)
	FromImage(ctx context.Context, in ImageInput) (model.MealDetails, error)
}

type TextInput struct {
	Text      string
	CreatedAt time.Time
}

type ImageInput struct {
	// ImageURL is a time-limited read locator, not a public URL.
	ImageURL    string
	CreatedAt   time.Time
	Description string
}
