package localcache

import (
	"context"
	"time"

	"github.com/alchemorsel/recipebox/internal/domain/recipe"
	"github.com/alchemorsel/recipebox/internal/ports/outbound"
	apperrors "github.com/alchemorsel/recipebox/pkg/errors"
)

// DefaultListLimit caps List results in local mode
const DefaultListLimit = 100

// RecipeStore keeps the recipe collection as one guarded document. Recipes
// are kept in insertion order.
type RecipeStore struct {
	guard     *Guard
	listLimit int
}

// NewRecipeStore creates a local recipe store. A non-positive listLimit uses
// DefaultListLimit.
func NewRecipeStore(guard *Guard, listLimit int) *RecipeStore {
	if listLimit <= 0 {
		listLimit = DefaultListLimit
	}
	return &RecipeStore{guard: guard, listLimit: listLimit}
}

var _ outbound.RecipeStore = (*RecipeStore)(nil)

// List returns at most listLimit recipes in insertion order
func (s *RecipeStore) List(ctx context.Context) ([]*recipe.Recipe, error) {
	recipes, err := s.read(ctx)
	if err != nil {
		return nil, err
	}
	if len(recipes) > s.listLimit {
		recipes = recipes[:s.listLimit]
	}
	return recipes, nil
}

// Get finds a recipe by id
func (s *RecipeStore) Get(ctx context.Context, id string) (*recipe.Recipe, error) {
	recipes, err := s.read(ctx)
	if err != nil {
		return nil, err
	}
	if i := indexOf(recipes, id); i >= 0 {
		return recipes[i], nil
	}
	return nil, recipe.ErrRecipeNotFound
}

// Create appends a recipe and commits the collection
func (s *RecipeStore) Create(ctx context.Context, r *recipe.Recipe) error {
	recipes, err := s.read(ctx)
	if err != nil {
		return err
	}
	return s.guard.WriteRecipes(ctx, append(recipes, r))
}

// Update replaces the recipe with the same id
func (s *RecipeStore) Update(ctx context.Context, r *recipe.Recipe) error {
	recipes, err := s.read(ctx)
	if err != nil {
		return err
	}
	i := indexOf(recipes, r.ID)
	if i < 0 {
		return recipe.ErrRecipeNotFound
	}
	recipes[i] = r
	return s.guard.WriteRecipes(ctx, recipes)
}

// Delete removes a recipe. Nothing is written when the id is absent.
func (s *RecipeStore) Delete(ctx context.Context, id string) error {
	recipes, err := s.read(ctx)
	if err != nil {
		return err
	}
	i := indexOf(recipes, id)
	if i < 0 {
		return nil
	}
	remaining := append(recipes[:i:i], recipes[i+1:]...)
	return s.guard.WriteRecipes(ctx, remaining)
}

// SetFavorite sets the favorite flag
func (s *RecipeStore) SetFavorite(ctx context.Context, id string, favorite bool, at time.Time) error {
	recipes, err := s.read(ctx)
	if err != nil {
		return err
	}
	i := indexOf(recipes, id)
	if i < 0 {
		return recipe.ErrRecipeNotFound
	}
	recipes[i].Favorite = favorite
	recipes[i].UpdatedAt = at
	return s.guard.WriteRecipes(ctx, recipes)
}

// read loads the collection and hands any self-heal warning to the
// collector on ctx
func (s *RecipeStore) read(ctx context.Context) ([]*recipe.Recipe, error) {
	recipes, warning, err := s.guard.ReadRecipes(ctx)
	apperrors.ReportWarning(ctx, warning)
	return recipes, err
}

func indexOf(recipes []*recipe.Recipe, id string) int {
	for i, r := range recipes {
		if r.ID == id {
			return i
		}
	}
	return -1
}
