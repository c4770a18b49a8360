package localcache

import (
	"context"

	"github.com/alchemorsel/recipebox/internal/domain/mealplan"
	"github.com/alchemorsel/recipebox/internal/ports/outbound"
	apperrors "github.com/alchemorsel/recipebox/pkg/errors"
)

// MealPlanStore keeps the whole plan as one guarded document, so every
// change, bulk replace included, is a single atomic Set.
type MealPlanStore struct {
	guard *Guard
}

// NewMealPlanStore creates a local meal plan store
func NewMealPlanStore(guard *Guard) *MealPlanStore {
	return &MealPlanStore{guard: guard}
}

var _ outbound.MealPlanStore = (*MealPlanStore)(nil)

// Load returns the stored plan
func (s *MealPlanStore) Load(ctx context.Context) (mealplan.Plan, error) {
	return s.read(ctx)
}

// Put stores ref in a slot
func (s *MealPlanStore) Put(ctx context.Context, day mealplan.Day, meal mealplan.Meal, ref mealplan.RecipeRef) error {
	plan, err := s.read(ctx)
	if err != nil {
		return err
	}
	plan.Set(day, meal, &ref)
	return s.guard.WritePlan(ctx, plan)
}

// Remove clears a slot
func (s *MealPlanStore) Remove(ctx context.Context, day mealplan.Day, meal mealplan.Meal) error {
	plan, err := s.read(ctx)
	if err != nil {
		return err
	}
	if plan.Get(day, meal) == nil {
		return nil
	}
	plan.Set(day, meal, nil)
	return s.guard.WritePlan(ctx, plan)
}

// Clear empties the plan
func (s *MealPlanStore) Clear(ctx context.Context) error {
	return s.guard.WritePlan(ctx, mealplan.NewPlan())
}

// Replace stores plan in place of the current one
func (s *MealPlanStore) Replace(ctx context.Context, plan mealplan.Plan) error {
	normalized, err := plan.Normalize()
	if err != nil {
		return err
	}
	return s.guard.WritePlan(ctx, normalized)
}

func (s *MealPlanStore) read(ctx context.Context) (mealplan.Plan, error) {
	plan, warning, err := s.guard.ReadPlan(ctx)
	apperrors.ReportWarning(ctx, warning)
	return plan, err
}
