package recipe

import "time"

// Domain Events - Events that occur within the recipe domain

// RecipeCreatedEvent is raised when a new recipe is stored
type RecipeCreatedEvent struct {
	RecipeID  string    `json:"recipeId"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
}

func (e RecipeCreatedEvent) EventName() string {
	return "recipe.created"
}

func (e RecipeCreatedEvent) OccurredAt() time.Time {
	return e.CreatedAt
}

// RecipeUpdatedEvent is raised when a recipe is changed, including favorite
// toggles and in-place healthier replacements
type RecipeUpdatedEvent struct {
	RecipeID  string    `json:"recipeId"`
	Title     string    `json:"title"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (e RecipeUpdatedEvent) EventName() string {
	return "recipe.updated"
}

func (e RecipeUpdatedEvent) OccurredAt() time.Time {
	return e.UpdatedAt
}

// RecipeDeletedEvent is raised when a recipe is removed
type RecipeDeletedEvent struct {
	RecipeID  string    `json:"recipeId"`
	DeletedAt time.Time `json:"deletedAt"`
}

func (e RecipeDeletedEvent) EventName() string {
	return "recipe.deleted"
}

func (e RecipeDeletedEvent) OccurredAt() time.Time {
	return e.DeletedAt
}
