// Package openai implements analysis.Analyzer with Whisper transcription and
// JSON-mode chat completions.
package openai

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/brenowss/foodiary/internal/analysis"
	"github.com/brenowss/foodiary/internal/apperror"
	"github.com/brenowss/foodiary/internal/model"
)

// audioFileName tells the API which container the bytes are in.
const audioFileName = "audio.m4a"

var _ analysis.Analyzer = (*Analyzer)(nil)

type Analyzer struct {
	client *goopenai.Client
	config Config
	logger *slog.Logger
}

func New(c Config, logger *slog.Logger) (*Analyzer, error) {
	if c.APIKey == "" {
		return nil, errors.New("openai: API key is required")
	}
	if c.Location == nil {
		c.Location = DefaultConfig().Location
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultConfig().Timeout
	}

	oc := goopenai.DefaultConfig(c.APIKey)
	if c.BaseURL != "" {
		oc.BaseURL = strings.TrimSuffix(c.BaseURL, "/")
	}

	return &Analyzer{
		client: goopenai.NewClientWithConfig(oc),
		config: c,
		logger: logger,
	}, nil
}

func (a *Analyzer) Transcribe(ctx context.Context, audio []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.config.Timeout)
	defer cancel()

	resp, err := a.client.CreateTranscription(ctx, goopenai.AudioRequest{
		Model:    a.config.TranscriptionModel,
		FilePath: audioFileName,
		Reader:   bytes.NewReader(audio),
		Language: a.config.Language,
		Format:   goopenai.AudioResponseFormatText,
	})
	if err != nil {
		return "", fmt.Errorf("openai: transcribing audio: %w", err)
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", apperror.AnalysisEmpty()
	}
	a.logger.Debug("audio transcribed", slog.Int("bytes", len(audio)), slog.Int("chars", len(text)))
	return text, nil
}

func (a *Analyzer) FromText(ctx context.Context, in analysis.TextInput) (model.MealDetails, error) {
	return a.extract(ctx, []goopenai.ChatCompletionMessage{
		{Role: goopenai.ChatMessageRoleSystem, Content: analysis.TextSystemPrompt},
		{Role: goopenai.ChatMessageRoleUser, Content: analysis.TextUserPrompt(in, a.config.Location)},
	})
}

func (a *Analyzer) FromImage(ctx context.Context, in analysis.ImageInput) (model.MealDetails, error) {
	return a.extract(ctx, []goopenai.ChatCompletionMessage{
		{Role: goopenai.ChatMessageRoleSystem, Content: analysis.ImageSystemPrompt},
		{
			Role: goopenai.ChatMessageRoleUser,
			MultiContent: []goopenai.ChatMessagePart{
				{Type: goopenai.ChatMessagePartTypeText, Text: analysis.ImageUserPrompt(in, a.config.Location)},
				{Type: goopenai.ChatMessagePartTypeImageURL, ImageURL: &goopenai.ChatMessageImageURL{
					URL:    in.ImageURL,
					Detail: goopenai.ImageURLDetailAuto,
				}},
			},
		},
	})
}

// extract runs one completion in JSON mode and parses the reply once.
func (a *Analyzer) extract(ctx context.Context, messages []goopenai.ChatCompletionMessage) (model.MealDetails, error) {
	ctx, cancel := context.WithTimeout(ctx, a.config.Timeout)
	defer cancel()

	resp, err := a.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model:    a.config.ChatModel,
		Messages: messages,
		ResponseFormat: &goopenai.ChatCompletionResponseFormat{
			Type: goopenai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return model.MealDetails{}, fmt.Errorf("openai: requesting meal details: %w", err)
	}
	if len(resp.Choices) == 0 {
		return model.MealDetails{}, apperror.AnalysisEmpty()
	}

	details, err := analysis.ParseDetails(resp.Choices[0].Message.Content)
	if err != nil {
		return model.MealDetails{}, err
	}
	a.logger.Debug("meal details extracted",
		slog.String("model", a.config.ChatModel),
		slog.Int("foods", len(details.Foods)),
	)
	return details, nil
}
