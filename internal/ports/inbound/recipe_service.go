// Package inbound defines the interfaces for inbound ports (primary/driving adapters)
// These are the interfaces that the application exposes to the outside world
package inbound

import (
	"context"

	"github.com/alchemorsel/recipebox/internal/domain/mealplan"
	"github.com/alchemorsel/recipebox/internal/domain/recipe"
)

// RecipeService defines the use cases for recipe management
type RecipeService interface {
	// Commands - operations that modify state
	Create(ctx context.Context, draft recipe.Draft) (*recipe.Recipe, error)
	Update(ctx context.Context, id string, patch recipe.Patch) (*recipe.Recipe, error)
	Delete(ctx context.Context, id string) error
	ToggleFavorite(ctx context.Context, id string) (bool, error)
	SaveHealthierVariant(ctx context.Context, id string, replace bool) (*recipe.Recipe, error)

	// Queries - operations that read state
	List(ctx context.Context) ([]*recipe.Recipe, error)
	GetByID(ctx context.Context, id string) (*recipe.Recipe, bool, error)
	PreviewHealthierVariant(ctx context.Context, id string) (*recipe.Recipe, error)
}

// MealPlanService defines the use cases for the weekly meal plan. Day and
// meal arrive as raw strings and are validated by the service.
type MealPlanService interface {
	GetPlan(ctx context.Context) (mealplan.Plan, error)
	DinnerOnly(ctx context.Context) ([]mealplan.DaySlot, error)
	Assign(ctx context.Context, day, meal, recipeID string) error
	Remove(ctx context.Context, day, meal string) error
	ClearWeek(ctx context.Context) error
	Suggest(ctx context.Context) (mealplan.Plan, error)
	ApplySuggestion(ctx context.Context, candidate mealplan.Plan) error
}
