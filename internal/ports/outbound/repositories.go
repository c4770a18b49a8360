// Package outbound defines the interfaces for outbound ports (secondary/driven adapters)
// These are the interfaces that the application uses to interact with external systems
package outbound

import (
	"context"
	"errors"
	"time"

	"github.com/alchemorsel/recipebox/internal/domain/mealplan"
	"github.com/alchemorsel/recipebox/internal/domain/recipe"
	"github.com/alchemorsel/recipebox/internal/domain/shared"
)

var (
	// ErrKeyNotFound is returned by KeyValueStore.Get for an absent key
	ErrKeyNotFound = errors.New("key not found")
	// ErrQuotaExceeded is returned by KeyValueStore.Set when the backing
	// store refuses the value for lack of space
	ErrQuotaExceeded = errors.New("storage quota exceeded")
)

// RecipeStore persists recipes. Both the local cache and the remote
// database implement it.
type RecipeStore interface {
	// List returns stored recipes in the backend's natural order
	List(ctx context.Context) ([]*recipe.Recipe, error)
	// Get returns recipe.ErrRecipeNotFound for an absent id
	Get(ctx context.Context, id string) (*recipe.Recipe, error)
	Create(ctx context.Context, r *recipe.Recipe) error
	// Update returns recipe.ErrRecipeNotFound for an absent id
	Update(ctx context.Context, r *recipe.Recipe) error
	// Delete is a no-op for an absent id
	Delete(ctx context.Context, id string) error
	// SetFavorite returns recipe.ErrRecipeNotFound for an absent id
	SetFavorite(ctx context.Context, id string, favorite bool, at time.Time) error
}

// MealPlanStore persists the weekly meal plan
type MealPlanStore interface {
	// Load returns the full plan; unset slots are nil
	Load(ctx context.Context) (mealplan.Plan, error)
	// Put stores ref in a slot, replacing what was there
	Put(ctx context.Context, day mealplan.Day, meal mealplan.Meal, ref mealplan.RecipeRef) error
	// Remove clears a slot; clearing an empty slot succeeds
	Remove(ctx context.Context, day mealplan.Day, meal mealplan.Meal) error
	// Clear empties every slot
	Clear(ctx context.Context) error
	// Replace discards the stored plan and stores plan in its place. An
	// implementation that cannot do this atomically must report a failure
	// after the discard with a PARTIAL_REPLACE error.
	Replace(ctx context.Context, plan mealplan.Plan) error
}

// KeyValueStore is the string-keyed local cache the recipe and meal plan
// documents are kept in
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// EventPublisher fans domain events out to interested listeners
type EventPublisher interface {
	Publish(ctx context.Context, event shared.DomainEvent)
}

// NopPublisher discards every event
type NopPublisher struct{}

// Publish implements EventPublisher
func (NopPublisher) Publish(context.Context, shared.DomainEvent) {}
