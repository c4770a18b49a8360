package gorm

import (
	"context"
	"errors"

	"github.com/alchemorsel/recipebox/internal/domain/mealplan"
	"github.com/alchemorsel/recipebox/internal/ports/outbound"
	apperrors "github.com/alchemorsel/recipebox/pkg/errors"
	"gorm.io/gorm"
)

// MealPlanRepository implements outbound.MealPlanStore with one row per
// filled slot
type MealPlanRepository struct {
	db *gorm.DB
}

// NewMealPlanRepository creates a new meal plan repository
func NewMealPlanRepository(db *gorm.DB) *MealPlanRepository {
	return &MealPlanRepository{db: db}
}

var _ outbound.MealPlanStore = (*MealPlanRepository)(nil)

// Load reads all rows, newest first, and folds them into a plan
func (r *MealPlanRepository) Load(ctx context.Context) (mealplan.Plan, error) {
	var models []MealPlanModel

	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, apperrors.NewDatabaseError("load meal plan", err)
	}
	return ModelsToPlan(models), nil
}

// Put looks the slot up and updates the row if one exists, otherwise
// inserts a new one
func (r *MealPlanRepository) Put(ctx context.Context, day mealplan.Day, meal mealplan.Meal, ref mealplan.RecipeRef) error {
	var existing MealPlanModel

	result := r.db.WithContext(ctx).
		Where("day = ? AND meal = ?", string(day), string(meal)).
		First(&existing)

	switch {
	case result.Error == nil:
		err := r.db.WithContext(ctx).
			Model(&existing).
			Updates(map[string]interface{}{
				"recipe_id":    ref.ID,
				"recipe_title": ref.Title,
			}).Error
		if err != nil {
			return apperrors.NewDatabaseError("update meal plan slot", err)
		}
		return nil
	case errors.Is(result.Error, gorm.ErrRecordNotFound):
		model := EntryToModel(mealplan.Entry{Day: day, Meal: meal, Recipe: ref})
		if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
			return apperrors.NewDatabaseError("insert meal plan slot", err)
		}
		return nil
	default:
		return apperrors.NewDatabaseError("lookup meal plan slot", result.Error)
	}
}

// Remove deletes the row for a slot
func (r *MealPlanRepository) Remove(ctx context.Context, day mealplan.Day, meal mealplan.Meal) error {
	err := r.db.WithContext(ctx).
		Where("day = ? AND meal = ?", string(day), string(meal)).
		Delete(&MealPlanModel{}).Error
	if err != nil {
		return apperrors.NewDatabaseError("remove meal plan slot", err)
	}
	return nil
}

// Clear deletes every row in one statement
func (r *MealPlanRepository) Clear(ctx context.Context) error {
	if err := r.deleteAll(ctx); err != nil {
		return apperrors.NewDatabaseError("clear meal plan", err)
	}
	return nil
}

// Replace deletes every row and then bulk-inserts the filled slots of plan.
// A failed delete leaves the plan unchanged and is a DATABASE_ERROR. A failed
// insert after a successful delete is a PARTIAL_REPLACE error, since the
// stored plan may now be empty.
func (r *MealPlanRepository) Replace(ctx context.Context, plan mealplan.Plan) error {
	normalized, err := plan.Normalize()
	if err != nil {
		return err
	}

	if err := r.deleteAll(ctx); err != nil {
		return apperrors.NewDatabaseError("replace meal plan", err)
	}

	entries := normalized.Entries()
	if len(entries) == 0 {
		return nil
	}

	models := make([]*MealPlanModel, 0, len(entries))
	for _, e := range entries {
		models = append(models, EntryToModel(e))
	}
	if err := r.db.WithContext(ctx).Create(&models).Error; err != nil {
		return apperrors.NewPartialReplaceError("meal_plans", err)
	}
	return nil
}

func (r *MealPlanRepository) deleteAll(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&MealPlanModel{}).Error
}
