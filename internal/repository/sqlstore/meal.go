package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/xid"

	"github.com/brenowss/foodiary/internal/apperror"
	"github.com/brenowss/foodiary/internal/model"
	"github.com/brenowss/foodiary/internal/repository"
)

var _ repository.MealRepository = (*MealStore)(nil)

const mealColumns = `id, user_id, status, input_type, input_file_key, name, icon, slot,
	description, foods, created_at`

// lastInstantOfDay is the inclusive end offset of a listing window.
const lastInstantOfDay = 24*time.Hour - time.Millisecond

type MealStore struct {
	db *sqlx.DB
}

func NewMealStore(db *sqlx.DB) *MealStore {
	return &MealStore{db: db}
}

func (s *MealStore) Create(ctx context.Context, meal *model.Meal) error {
	meal.ID = xid.New().String()
	if meal.CreatedAt.IsZero() {
		meal.CreatedAt = time.Now()
	}
	meal.CreatedAt = meal.CreatedAt.UTC()
	if meal.Slot == "" {
		meal.Slot = model.SlotExtra
	}
	if meal.Foods == nil {
		meal.Foods = model.FoodList{}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO meals (`+mealColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		meal.ID,
		meal.UserID,
		meal.Status,
		meal.InputType,
		meal.InputFileKey,
		meal.Name,
		meal.Icon,
		meal.Slot,
		meal.Description,
		meal.Foods,
		meal.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("meal file", meal.FileKey())
		}
		return fmt.Errorf("sqlstore: creating meal: %w", err)
	}
	return nil
}

func (s *MealStore) GetByID(ctx context.Context, id string) (*model.Meal, error) {
	return s.getOne(ctx, apperror.NotFound("meal", id),
		`SELECT `+mealColumns+` FROM meals WHERE id = $1`, id)
}

func (s *MealStore) GetForUser(ctx context.Context, userID, id string) (*model.Meal, error) {
	return s.getOne(ctx, apperror.NotFound("meal", id),
		`SELECT `+mealColumns+` FROM meals WHERE id = $1 AND user_id = $2`, id, userID)
}

func (s *MealStore) GetByFileKey(ctx context.Context, fileKey string) (*model.Meal, error) {
	return s.getOne(ctx, apperror.MealNotFound(fileKey),
		`SELECT `+mealColumns+` FROM meals WHERE input_file_key = $1`, fileKey)
}

func (s *MealStore) getOne(ctx context.Context, notFound error, query string, args ...any) (*model.Meal, error) {
	var m model.Meal
	if err := s.db.GetContext(ctx, &m, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound
		}
		return nil, fmt.Errorf("sqlstore: getting meal: %w", err)
	}
	m.CreatedAt = m.CreatedAt.UTC()
	return &m, nil
}

func (s *MealStore) ListByDay(ctx context.Context, userID string, day time.Time, status model.MealStatus) ([]model.Meal, error) {
	day = day.UTC()
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	end := start.Add(lastInstantOfDay)

	meals := []model.Meal{}
	err := s.db.SelectContext(ctx, &meals,
		`SELECT `+mealColumns+` FROM meals
		 WHERE user_id = $1 AND status = $2 AND created_at >= $3 AND created_at <= $4
		 ORDER BY created_at ASC`,
		userID, status, start, end,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: listing meals for %s: %w", start.Format(time.DateOnly), err)
	}
	for i := range meals {
		meals[i].CreatedAt = meals[i].CreatedAt.UTC()
	}
	return meals, nil
}

func (s *MealStore) ClaimForProcessing(ctx context.Context, id string) (bool, error) {
	return s.transition(ctx, "claiming",
		`UPDATE meals SET status = $1 WHERE id = $2 AND status = $3`,
		model.StatusProcessing, id, model.StatusUploading)
}

func (s *MealStore) CompleteSuccess(ctx context.Context, id string, details model.MealDetails) (bool, error) {
	foods := details.Foods
	if foods == nil {
		foods = model.FoodList{}
	}
	return s.transition(ctx, "completing",
		`UPDATE meals SET status = $1, name = $2, icon = $3, slot = $4, foods = $5
		 WHERE id = $6 AND status = $7`,
		model.StatusSuccess, details.Name, details.Icon, details.Slot, foods, id, model.StatusProcessing)
}

func (s *MealStore) MarkFailed(ctx context.Context, id string) (bool, error) {
	return s.transition(ctx, "failing",
		`UPDATE meals SET status = $1 WHERE id = $2 AND status = $3`,
		model.StatusFailed, id, model.StatusProcessing)
}

// transition runs a conditional status update and reports whether it applied.
func (s *MealStore) transition(ctx context.Context, doing, query string, args ...any) (bool, error) {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("sqlstore: %s meal: %w", doing, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlstore: %s meal: %w", doing, err)
	}
	return n == 1, nil
}
