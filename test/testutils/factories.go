// Package testutils provides test data factories for consistent test data generation
package testutils

import (
	"fmt"
	"time"

	"github.com/alchemorsel/recipebox/internal/domain/mealplan"
	"github.com/alchemorsel/recipebox/internal/domain/recipe"
	"github.com/brianvoe/gofakeit/v6"
)

// DraftBuilder provides a fluent interface for building recipe drafts
type DraftBuilder struct {
	draft recipe.Draft
}

// NewDraftBuilder creates a builder with faker-generated but valid values
func NewDraftBuilder() *DraftBuilder {
	return NewDraftBuilderWithSeed(time.Now().UnixNano())
}

// NewDraftBuilderWithSeed creates a builder whose generated values are
// reproducible
func NewDraftBuilderWithSeed(seed int64) *DraftBuilder {
	faker := gofakeit.New(seed)

	ingredients := make([]string, faker.Number(2, 6))
	for i := range ingredients {
		ingredients[i] = fmt.Sprintf("%d %s %s", faker.Number(1, 4), faker.RandomString([]string{"cup", "tbsp", "tsp", "g"}), faker.Vegetable())
	}
	instructions := make([]string, faker.Number(1, 4))
	for i := range instructions {
		instructions[i] = faker.Sentence(6)
	}

	return &DraftBuilder{draft: recipe.Draft{
		Title:        faker.Dinner(),
		Description:  faker.Sentence(10),
		PrepTime:     faker.Number(0, 30),
		CookTime:     faker.Number(0, 90),
		Servings:     faker.Number(1, 8),
		Ingredients:  ingredients,
		Instructions: instructions,
		Tags:         []string{faker.RandomString([]string{"dinner", "quick", "vegetarian", "family"})},
		Source:       "manual",
	}}
}

// WithTitle sets the recipe title
func (b *DraftBuilder) WithTitle(title string) *DraftBuilder {
	b.draft.Title = title
	return b
}

// WithIngredients replaces the ingredient lines
func (b *DraftBuilder) WithIngredients(lines ...string) *DraftBuilder {
	b.draft.Ingredients = lines
	return b
}

// WithInstructions replaces the instruction lines
func (b *DraftBuilder) WithInstructions(lines ...string) *DraftBuilder {
	b.draft.Instructions = lines
	return b
}

// WithTags replaces the tags
func (b *DraftBuilder) WithTags(tags ...string) *DraftBuilder {
	b.draft.Tags = tags
	return b
}

// WithSource sets the source
func (b *DraftBuilder) WithSource(source string) *DraftBuilder {
	b.draft.Source = source
	return b
}

// WithFavorite sets the favorite flag
func (b *DraftBuilder) WithFavorite(favorite bool) *DraftBuilder {
	b.draft.Favorite = favorite
	return b
}

// WithImage attaches embedded media
func (b *DraftBuilder) WithImage(dataURL string) *DraftBuilder {
	b.draft.Image = dataURL
	b.draft.ThumbnailURL = dataURL
	return b
}

// Build returns the draft
func (b *DraftBuilder) Build() recipe.Draft {
	return b.draft
}

// RecipeFactory creates stored recipes with sequential ids and creation
// times
type RecipeFactory struct {
	faker *gofakeit.Faker
	next  int64
	base  time.Time
}

// NewRecipeFactory creates a new recipe factory with seeded faker
func NewRecipeFactory(seed int64) *RecipeFactory {
	return &RecipeFactory{
		faker: gofakeit.New(seed),
		next:  1_700_000_000_000,
		base:  time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

// Recipe returns a valid recipe with the given title. Each call gets a
// larger id and a later creation time than the previous one.
func (f *RecipeFactory) Recipe(title string) *recipe.Recipe {
	f.next++
	created := f.base.Add(time.Duration(f.next-1_700_000_000_000) * time.Minute)
	return &recipe.Recipe{
		ID:           fmt.Sprint(f.next),
		Title:        title,
		Description:  f.faker.Sentence(8),
		Servings:     f.faker.Number(1, 6),
		Ingredients:  []string{f.faker.Vegetable(), f.faker.Fruit()},
		Instructions: []string{f.faker.Sentence(5)},
		Source:       recipe.DefaultSource,
		CreatedAt:    created,
		UpdatedAt:    created,
	}
}

// Recipes returns n recipes with faker titles
func (f *RecipeFactory) Recipes(n int) []*recipe.Recipe {
	out := make([]*recipe.Recipe, n)
	for i := range out {
		out[i] = f.Recipe(f.faker.Dinner())
	}
	return out
}

// Ref returns the plan reference for r
func Ref(r *recipe.Recipe) *mealplan.RecipeRef {
	return &mealplan.RecipeRef{ID: r.ID, Title: r.Title}
}

// FullPlan fills all 21 slots with ref
func FullPlan(ref mealplan.RecipeRef) mealplan.Plan {
	plan := mealplan.NewPlan()
	for _, day := range mealplan.Days {
		for _, meal := range mealplan.Meals {
			r := ref
			plan.Set(day, meal, &r)
		}
	}
	return plan
}
