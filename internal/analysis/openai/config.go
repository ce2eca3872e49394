package openai

import (
	"time"

	cfg "github.com/brenowss/foodiary/internal/config"
)

// Config holds the settings for the OpenAI analyzer.
type Config struct {
	// APIKey authenticates every call.
	APIKey string
	// BaseURL overrides the API root, e.g. for a proxy. Empty uses api.openai.com.
	BaseURL string
	// ChatModel runs the text and image extraction.
	ChatModel string
	// TranscriptionModel turns voice notes into text.
	TranscriptionModel string
	// Language is the transcription language hint (ISO-639-1).
	Language string
	// Location is the zone meal times are rendered in for the model.
	Location *time.Location
	// Timeout bounds each external call.
	Timeout time.Duration
}

// DefaultConfig matches the product's primary locale.
func DefaultConfig() Config {
	return Config{
		ChatModel:          "gpt-4.1-mini",
		TranscriptionModel: "whisper-1",
		Language:           "pt",
		Location:           time.UTC,
		Timeout:            60 * time.Second,
	}
}

// FromAppConfig fills a Config from environment configuration.
func FromAppConfig(c *cfg.Config) Config {
	oc := DefaultConfig()
	oc.APIKey = c.OpenAIAPIKey
	oc.BaseURL = c.OpenAIBaseURL
	if c.OpenAIChatModel != "" {
		oc.ChatModel = c.OpenAIChatModel
	}
	if c.OpenAITranscriptionModel != "" {
		oc.TranscriptionModel = c.OpenAITranscriptionModel
	}
	if c.AnalysisLanguage != "" {
		oc.Language = c.AnalysisLanguage
	}
	if c.AnalysisTimeout > 0 {
		oc.Timeout = c.AnalysisTimeout
	}
	oc.Location = c.Location()
	return oc
}
