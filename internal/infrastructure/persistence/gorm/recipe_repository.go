package gorm

import (
	"context"
	"errors"
	"time"

	"github.com/alchemorsel/recipebox/internal/domain/recipe"
	"github.com/alchemorsel/recipebox/internal/ports/outbound"
	apperrors "github.com/alchemorsel/recipebox/pkg/errors"
	"gorm.io/gorm"
)

// RecipeRepository implements outbound.RecipeStore using GORM
type RecipeRepository struct {
	db *gorm.DB
}

// NewRecipeRepository creates a new recipe repository
func NewRecipeRepository(db *gorm.DB) *RecipeRepository {
	return &RecipeRepository{db: db}
}

var _ outbound.RecipeStore = (*RecipeRepository)(nil)

// List returns every recipe, newest first
func (r *RecipeRepository) List(ctx context.Context) ([]*recipe.Recipe, error) {
	var models []RecipeModel

	result := r.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Find(&models)
	if result.Error != nil {
		return nil, apperrors.NewDatabaseError("list recipes", result.Error)
	}

	recipes := make([]*recipe.Recipe, len(models))
	for i := range models {
		recipes[i] = ModelToRecipe(&models[i])
	}
	return recipes, nil
}

// Get finds a recipe by ID
func (r *RecipeRepository) Get(ctx context.Context, id string) (*recipe.Recipe, error) {
	var model RecipeModel

	result := r.db.WithContext(ctx).First(&model, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, recipe.ErrRecipeNotFound
		}
		return nil, apperrors.NewDatabaseError("get recipe", result.Error)
	}

	return ModelToRecipe(&model), nil
}

// Create inserts a new recipe
func (r *RecipeRepository) Create(ctx context.Context, rec *recipe.Recipe) error {
	model := RecipeToModel(rec)

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return apperrors.NewDatabaseError("create recipe", err)
	}
	return nil
}

// Update overwrites every stored column of an existing recipe except
// created_at. Timestamps are taken from rec as given.
func (r *RecipeRepository) Update(ctx context.Context, rec *recipe.Recipe) error {
	model := RecipeToModel(rec)

	result := r.db.WithContext(ctx).
		Model(&RecipeModel{}).
		Where("id = ?", model.ID).
		UpdateColumns(map[string]interface{}{
			"title":             model.Title,
			"description":       model.Description,
			"prep_time_minutes": model.PrepTime,
			"cook_time_minutes": model.CookTime,
			"servings":          model.Servings,
			"ingredients":       model.Ingredients,
			"instructions":      model.Instructions,
			"tags":              model.Tags,
			"source":            model.Source,
			"source_url":        model.SourceURL,
			"favorite":          model.Favorite,
			"notes":             model.Notes,
			"updated_at":        model.UpdatedAt,
		})
	if result.Error != nil {
		return apperrors.NewDatabaseError("update recipe", result.Error)
	}
	if result.RowsAffected == 0 {
		return recipe.ErrRecipeNotFound
	}
	return nil
}

// Delete removes a recipe by ID. Deleting an absent recipe succeeds.
func (r *RecipeRepository) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Delete(&RecipeModel{}, "id = ?", id).Error; err != nil {
		return apperrors.NewDatabaseError("delete recipe", err)
	}
	return nil
}

// SetFavorite writes the favorite flag together with updated_at
func (r *RecipeRepository) SetFavorite(ctx context.Context, id string, favorite bool, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&RecipeModel{}).
		Where("id = ?", id).
		UpdateColumns(map[string]interface{}{
			"favorite":   favorite,
			"updated_at": at,
		})
	if result.Error != nil {
		return apperrors.NewDatabaseError("set favorite", result.Error)
	}
	if result.RowsAffected == 0 {
		return recipe.ErrRecipeNotFound
	}
	return nil
}
