// Package repository declares the persistence contracts used by the services
// and the meal processor. Implementations live in sub-packages.
package repository

import (
	"context"
	"time"

	"github.com/brenowss/foodiary/internal/model"
)

type UserRepository interface {
	// Create assigns ID and CreatedAt. A duplicate email is an apperror.ErrConflict.
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}

type MealRepository interface {
	// Create assigns ID, and CreatedAt when it is zero. Times are stored in UTC.
	Create(ctx context.Context, meal *model.Meal) error
	GetByID(ctx context.Context, id string) (*model.Meal, error)
	// GetForUser returns apperror.ErrNotFound for meals owned by someone else.
	GetForUser(ctx context.Context, userID, id string) (*model.Meal, error)
	// GetByFileKey returns apperror.ErrMealNotFound when no meal has the key.
	GetByFileKey(ctx context.Context, fileKey string) (*model.Meal, error)
	// ListByDay returns the user's meals with the given status created within
	// the UTC calendar day of day, oldest first.
	ListByDay(ctx context.Context, userID string, day time.Time, status model.MealStatus) ([]model.Meal, error)

	// ClaimForProcessing moves an uploading meal to processing. It reports
	// false when the meal was already claimed or is terminal.
	ClaimForProcessing(ctx context.Context, id string) (bool, error)
	// CompleteSuccess writes the analysis result and sets success in one
	// statement. It reports false when the meal was no longer processing.
	CompleteSuccess(ctx context.Context, id string, details model.MealDetails) (bool, error)
	// MarkFailed sets failed on a processing meal, leaving its fields untouched.
	MarkFailed(ctx context.Context, id string) (bool, error)
}
