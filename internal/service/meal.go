package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/brenowss/foodiary/internal/model"
	"github.com/brenowss/foodiary/internal/repository"
	"github.com/brenowss/foodiary/internal/storage"
	"github.com/brenowss/foodiary/internal/validation"
)

// Accepted creation file types.
const (
	FileTypeAudio = "audio/m4a"
	FileTypeImage = "image/jpeg"
	FileTypeText  = "text/plain"
)

// fileExtensions maps an upload file type to its storage key extension.
var fileExtensions = map[string]struct {
	input model.InputType
	ext   string
}{
	FileTypeAudio: {model.InputAudio, "m4a"},
	FileTypeImage: {model.InputPicture, "jpeg"},
}

// UploadStager issues write locators for new uploads.
type UploadStager interface {
	PresignPut(ctx context.Context, key string) (string, error)
}

// TextProcessor analyzes a text meal before the creation request returns.
type TextProcessor interface {
	ProcessTextMeal(ctx context.Context, mealID, text string) error
}

type MealService struct {
	meals     repository.MealRepository
	users     repository.UserRepository
	stager    UploadStager
	processor TextProcessor
	newKey    func(ext string) string
	logger    *slog.Logger
}

func NewMealService(
	meals repository.MealRepository,
	users repository.UserRepository,
	stager UploadStager,
	processor TextProcessor,
	logger *slog.Logger,
) *MealService {
	return &MealService{
		meals:     meals,
		users:     users,
		stager:    stager,
		processor: processor,
		newKey:    storage.NewKey,
		logger:    logger,
	}
}

type CreateMealInput struct {
	FileType    string  `json:"fileType"`
	Description *string `json:"description,omitempty"`
	Text        *string `json:"text,omitempty"`
}

// CreateMealResult carries the new meal id. UploadURL is empty for text.
type CreateMealResult struct {
	MealID    string `json:"mealId"`
	UploadURL string `json:"uploadURL"`
}

func (in CreateMealInput) validate() error {
	var v validation.Validator

	v.OneOf("fileType", in.FileType, FileTypeAudio, FileTypeImage, FileTypeText)
	if in.FileType == FileTypeText {
		text := ""
		if in.Text != nil {
			text = *in.Text
		}
		v.Required("text", text)
	}
	return v.Err()
}

// Create stores a new meal for userID.
//
// Text meals start in processing and are analyzed before Create returns. An
// analysis failure leaves the meal failed and is only logged, so text and
// upload meals share one response shape. Uploads start in uploading with a
// freshly generated file key and a write locator for it.
func (s *MealService) Create(ctx context.Context, userID string, in CreateMealInput) (*CreateMealResult, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	if in.FileType == FileTypeText {
		return s.createText(ctx, userID, *in.Text)
	}

	kind := fileExtensions[in.FileType]
	key := s.newKey(kind.ext)

	uploadURL, err := s.stager.PresignPut(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("service/meal: staging upload: %w", err)
	}

	meal := &model.Meal{
		UserID:       userID,
		Status:       model.StatusUploading,
		InputType:    kind.input,
		InputFileKey: &key,
		Description:  in.Description,
	}
	if err := s.meals.Create(ctx, meal); err != nil {
		return nil, err
	}

	s.logger.Info("meal created",
		slog.String("meal_id", meal.ID),
		slog.String("input_type", string(meal.InputType)),
		slog.String("file_key", key),
	)
	return &CreateMealResult{MealID: meal.ID, UploadURL: uploadURL}, nil
}

func (s *MealService) createText(ctx context.Context, userID, text string) (*CreateMealResult, error) {
	meal := &model.Meal{
		UserID:      userID,
		Status:      model.StatusProcessing,
		InputType:   model.InputText,
		Description: &text,
	}
	if err := s.meals.Create(ctx, meal); err != nil {
		return nil, err
	}

	if err := s.processor.ProcessTextMeal(ctx, meal.ID, text); err != nil {
		s.logger.Error("text meal analysis failed",
			slog.String("meal_id", meal.ID),
			slog.String("error", err.Error()),
		)
	}
	return &CreateMealResult{MealID: meal.ID}, nil
}

// Get returns a meal owned by userID.
func (s *MealService) Get(ctx context.Context, userID, mealID string) (*model.Meal, error) {
	return s.meals.GetForUser(ctx, userID, mealID)
}

// parseDay validates a YYYY-MM-DD query value.
func parseDay(date string) (time.Time, error) {
	var v validation.Validator
	if !v.Required("date", date) {
		return time.Time{}, v.Err()
	}
	day, ok := v.Date("date", date)
	if !ok {
		return time.Time{}, v.Err()
	}
	return day, nil
}

// ListByDay returns the user's successfully processed meals on the UTC day.
func (s *MealService) ListByDay(ctx context.Context, userID, date string) ([]model.Meal, error) {
	day, err := parseDay(date)
	if err != nil {
		return nil, err
	}
	return s.meals.ListByDay(ctx, userID, day, model.StatusSuccess)
}

// SlotSummary aggregates the meals of one slot.
type SlotSummary struct {
	Key       model.MealSlot  `json:"key"`
	Meals     int             `json:"meals"`
	Nutrients model.Nutrients `json:"nutrients"`
	Target    int             `json:"caloriesTarget"`
}

type DailySummary struct {
	Date    string          `json:"date"`
	Totals  model.Nutrients `json:"totals"`
	Targets model.Targets   `json:"targets"`
	Slots   []SlotSummary   `json:"slots"`
}

// DailySummary totals a day of successful meals against the user's targets.
// Every slot is listed, in display order, even when nothing was eaten.
func (s *MealService) DailySummary(ctx context.Context, userID, date string) (*DailySummary, error) {
	day, err := parseDay(date)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	meals, err := s.meals.ListByDay(ctx, userID, day, model.StatusSuccess)
	if err != nil {
		return nil, err
	}

	bySlot := make(map[model.MealSlot]*SlotSummary, len(model.Slots))
	for _, slot := range model.Slots {
		bySlot[slot] = &SlotSummary{Key: slot}
	}

	var totals model.Nutrients
	for _, m := range meals {
		slot, ok := bySlot[m.Slot]
		if !ok {
			slot = bySlot[model.SlotExtra]
		}
		slot.Meals++
		eatenInMeal := m.Foods.Totals()
		slot.Nutrients.Merge(eatenInMeal)
		totals.Merge(eatenInMeal)
	}

	eaten := make(map[model.MealSlot]float64)
	for slot, sum := range bySlot {
		if sum.Meals > 0 {
			eaten[slot] = sum.Nutrients.Calories
		}
	}
	targets := model.SlotTargets(user.Calories, user.Goal, eaten)

	summary := &DailySummary{
		Date:    day.Format(validation.DateLayout),
		Totals:  totals,
		Targets: user.Targets,
		Slots:   make([]SlotSummary, 0, len(model.Slots)),
	}
	for _, slot := range model.Slots {
		sum := bySlot[slot]
		sum.Target = targets[slot]
		summary.Slots = append(summary.Slots, *sum)
	}
	return summary, nil
}
