package testutils

import (
	"context"
	"sync"
	"time"

	"github.com/alchemorsel/recipebox/internal/domain/mealplan"
	"github.com/alchemorsel/recipebox/internal/domain/recipe"
	"github.com/alchemorsel/recipebox/internal/domain/shared"
	"github.com/alchemorsel/recipebox/internal/ports/outbound"
	"github.com/stretchr/testify/mock"
)

// MockRecipeStore provides a mock implementation of outbound.RecipeStore
type MockRecipeStore struct {
	mock.Mock
}

var _ outbound.RecipeStore = (*MockRecipeStore)(nil)

// List returns the configured recipes
func (m *MockRecipeStore) List(ctx context.Context) ([]*recipe.Recipe, error) {
	args := m.Called(ctx)
	recipes, _ := args.Get(0).([]*recipe.Recipe)
	return recipes, args.Error(1)
}

// Get returns the configured recipe
func (m *MockRecipeStore) Get(ctx context.Context, id string) (*recipe.Recipe, error) {
	args := m.Called(ctx, id)
	r, _ := args.Get(0).(*recipe.Recipe)
	return r, args.Error(1)
}

// Create records the call
func (m *MockRecipeStore) Create(ctx context.Context, r *recipe.Recipe) error {
	return m.Called(ctx, r).Error(0)
}

// Update records the call
func (m *MockRecipeStore) Update(ctx context.Context, r *recipe.Recipe) error {
	return m.Called(ctx, r).Error(0)
}

// Delete records the call
func (m *MockRecipeStore) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

// SetFavorite records the call
func (m *MockRecipeStore) SetFavorite(ctx context.Context, id string, favorite bool, at time.Time) error {
	return m.Called(ctx, id, favorite, at).Error(0)
}

// MockMealPlanStore provides a mock implementation of outbound.MealPlanStore
type MockMealPlanStore struct {
	mock.Mock
}

var _ outbound.MealPlanStore = (*MockMealPlanStore)(nil)

// Load returns the configured plan
func (m *MockMealPlanStore) Load(ctx context.Context) (mealplan.Plan, error) {
	args := m.Called(ctx)
	plan, _ := args.Get(0).(mealplan.Plan)
	return plan, args.Error(1)
}

// Put records the call
func (m *MockMealPlanStore) Put(ctx context.Context, day mealplan.Day, meal mealplan.Meal, ref mealplan.RecipeRef) error {
	return m.Called(ctx, day, meal, ref).Error(0)
}

// Remove records the call
func (m *MockMealPlanStore) Remove(ctx context.Context, day mealplan.Day, meal mealplan.Meal) error {
	return m.Called(ctx, day, meal).Error(0)
}

// Clear records the call
func (m *MockMealPlanStore) Clear(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// Replace records the call
func (m *MockMealPlanStore) Replace(ctx context.Context, plan mealplan.Plan) error {
	return m.Called(ctx, plan).Error(0)
}

// RecordingPublisher keeps every published event in order
type RecordingPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

var _ outbound.EventPublisher = (*RecordingPublisher)(nil)

// Publish implements outbound.EventPublisher
func (p *RecordingPublisher) Publish(_ context.Context, event shared.DomainEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

// Events returns a copy of the recorded events
func (p *RecordingPublisher) Events() []shared.DomainEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]shared.DomainEvent, len(p.events))
	copy(out, p.events)
	return out
}

// Names returns the names of the recorded events
func (p *RecordingPublisher) Names() []string {
	events := p.Events()
	names := make([]string, len(events))
	for i, e := range events {
		names[i] = e.EventName()
	}
	return names
}
