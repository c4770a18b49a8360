package gorm

import (
	"github.com/alchemorsel/recipebox/internal/domain/mealplan"
	"github.com/alchemorsel/recipebox/internal/domain/recipe"
)

// RecipeToModel converts a domain recipe to a GORM model, dropping embedded
// media
func RecipeToModel(r *recipe.Recipe) *RecipeModel {
	return &RecipeModel{
		ID:           r.ID,
		Title:        r.Title,
		Description:  r.Description,
		PrepTime:     r.PrepTime,
		CookTime:     r.CookTime,
		Servings:     r.Servings,
		Ingredients:  StringSlice(r.Ingredients),
		Instructions: StringSlice(r.Instructions),
		Tags:         StringSlice(r.Tags),
		Source:       r.Source,
		SourceURL:    r.SourceURL,
		Favorite:     r.Favorite,
		Notes:        r.Notes,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

// ModelToRecipe converts a GORM model to a domain recipe
func ModelToRecipe(m *RecipeModel) *recipe.Recipe {
	r := &recipe.Recipe{
		ID:           m.ID,
		Title:        m.Title,
		Description:  m.Description,
		PrepTime:     m.PrepTime,
		CookTime:     m.CookTime,
		Servings:     m.Servings,
		Ingredients:  []string(m.Ingredients),
		Instructions: []string(m.Instructions),
		Source:       m.Source,
		SourceURL:    m.SourceURL,
		Favorite:     m.Favorite,
		Notes:        m.Notes,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
	if len(m.Tags) > 0 {
		r.Tags = []string(m.Tags)
	}
	return r
}

// EntryToModel converts a filled plan slot to a GORM model
func EntryToModel(e mealplan.Entry) *MealPlanModel {
	return &MealPlanModel{
		Day:         string(e.Day),
		Meal:        string(e.Meal),
		RecipeID:    e.Recipe.ID,
		RecipeTitle: e.Recipe.Title,
	}
}

// ModelsToPlan builds a full plan from stored rows. Rows with keys outside
// the weekly grid are skipped.
func ModelsToPlan(models []MealPlanModel) mealplan.Plan {
	entries := make([]mealplan.Entry, 0, len(models))
	for _, m := range models {
		day, meal, err := mealplan.ParseSlot(m.Day, m.Meal)
		if err != nil {
			continue
		}
		entries = append(entries, mealplan.Entry{
			Day:    day,
			Meal:   meal,
			Recipe: mealplan.RecipeRef{ID: m.RecipeID, Title: m.RecipeTitle},
		})
	}
	return mealplan.FromEntries(entries)
}
