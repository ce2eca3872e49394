// Package processor drives a meal from processing to success or failed.
//
// Queued uploads are claimed with a compare-and-set on the meal status, so
// duplicate deliveries of the same file key call the analysis service at most
// once. Failures inside analysis always end in a persisted failed status.
package processor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/brenowss/foodiary/internal/analysis"
	"github.com/brenowss/foodiary/internal/apperror"
	"github.com/brenowss/foodiary/internal/model"
	"github.com/brenowss/foodiary/internal/repository"
)

// Blobs is the object-store access the processor needs.
type Blobs interface {
	PresignGet(ctx context.Context, key string) (string, error)
	Download(ctx context.Context, key string) ([]byte, error)
}

type Processor struct {
	meals    repository.MealRepository
	blobs    Blobs
	analyzer analysis.Analyzer
	logger   *slog.Logger
}

func New(meals repository.MealRepository, blobs Blobs, analyzer analysis.Analyzer, logger *slog.Logger) *Processor {
	return &Processor{
		meals:    meals,
		blobs:    blobs,
		analyzer: analyzer,
		logger:   logger,
	}
}

// ProcessQueuedFile handles one upload notification.
//
// A missing meal is returned so the queue keeps the message. Meals that are
// terminal or already claimed are skipped. Analysis errors mark the meal
// failed and are not returned, so the message is not redelivered.
func (p *Processor) ProcessQueuedFile(ctx context.Context, fileKey string) error {
	logger := p.logger.With(slog.String("file_key", fileKey))

	meal, err := p.meals.GetByFileKey(ctx, fileKey)
	if err != nil {
		if errors.Is(err, apperror.ErrMealNotFound) {
			logger.Error("queued file has no meal", slog.String("error", err.Error()))
		}
		return err
	}
	logger = logger.With(slog.String("meal_id", meal.ID))

	if meal.Status.Terminal() {
		logger.Info("meal already processed, skipping", slog.String("status", string(meal.Status)))
		return nil
	}

	claimed, err := p.meals.ClaimForProcessing(ctx, meal.ID)
	if err != nil {
		return fmt.Errorf("processor: claiming meal %s: %w", meal.ID, err)
	}
	if !claimed {
		logger.Info("meal claimed by another delivery, skipping")
		return nil
	}

	details, err := p.analyze(ctx, meal)
	if err == nil {
		err = p.complete(ctx, meal.ID, details)
	}
	if err != nil {
		p.fail(ctx, logger, meal.ID, err)
		return nil
	}

	logger.Info("meal processed", slog.String("slot", string(details.Slot)), slog.Int("foods", len(details.Foods)))
	return nil
}

// ProcessTextMeal analyzes a text meal created in the processing state. The
// error is returned after the meal is marked failed.
func (p *Processor) ProcessTextMeal(ctx context.Context, mealID, text string) error {
	logger := p.logger.With(slog.String("meal_id", mealID))

	meal, err := p.meals.GetByID(ctx, mealID)
	if err != nil {
		return err
	}
	if meal.Status.Terminal() {
		logger.Info("meal already processed, skipping", slog.String("status", string(meal.Status)))
		return nil
	}
	if meal.InputType != model.InputText {
		return fmt.Errorf("processor: meal %s has input type %s, not text", mealID, meal.InputType)
	}

	details, err := p.guard(func() (model.MealDetails, error) {
		return p.analyzer.FromText(ctx, analysis.TextInput{Text: text, CreatedAt: meal.CreatedAt})
	})
	if err == nil {
		err = p.complete(ctx, meal.ID, details)
	}
	if err != nil {
		p.fail(ctx, logger, meal.ID, err)
		return fmt.Errorf("processor: processing text meal %s: %w", mealID, err)
	}

	logger.Info("meal processed", slog.String("slot", string(details.Slot)), slog.Int("foods", len(details.Foods)))
	return nil
}

// analyze runs the modality-specific path for an uploaded meal.
func (p *Processor) analyze(ctx context.Context, meal *model.Meal) (model.MealDetails, error) {
	return p.guard(func() (model.MealDetails, error) {
		switch meal.InputType {
		case model.InputAudio:
			audio, err := p.blobs.Download(ctx, meal.FileKey())
			if err != nil {
				return model.MealDetails{}, err
			}
			text, err := p.analyzer.Transcribe(ctx, audio)
			if err != nil {
				return model.MealDetails{}, err
			}
			return p.analyzer.FromText(ctx, analysis.TextInput{Text: text, CreatedAt: meal.CreatedAt})

		case model.InputPicture:
			url, err := p.blobs.PresignGet(ctx, meal.FileKey())
			if err != nil {
				return model.MealDetails{}, err
			}
			return p.analyzer.FromImage(ctx, analysis.ImageInput{
				ImageURL:    url,
				CreatedAt:   meal.CreatedAt,
				Description: meal.DescriptionText(),
			})

		default:
			return model.MealDetails{}, fmt.Errorf("processor: queued meal has input type %s", meal.InputType)
		}
	})
}

// guard turns a panic in an adapter into an error so the meal still fails.
func (p *Processor) guard(fn func() (model.MealDetails, error)) (details model.MealDetails, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("processor: analysis panicked: %v", r)
		}
	}()
	return fn()
}

func (p *Processor) complete(ctx context.Context, mealID string, details model.MealDetails) error {
	ok, err := p.meals.CompleteSuccess(ctx, mealID, details)
	if err != nil {
		return err
	}
	if !ok {
		p.logger.Warn("meal left processing before result was saved", slog.String("meal_id", mealID))
	}
	return nil
}

// fail persists the failed status even when ctx is already cancelled.
func (p *Processor) fail(ctx context.Context, logger *slog.Logger, mealID string, cause error) {
	logger.Error("meal processing failed", slog.String("error", cause.Error()))

	ok, err := p.meals.MarkFailed(context.WithoutCancel(ctx), mealID)
	if err != nil {
		logger.Error("failed to mark meal failed", slog.String("error", err.Error()))
		return
	}
	if !ok {
		logger.Warn("meal was not processing when marking failed")
	}
}
