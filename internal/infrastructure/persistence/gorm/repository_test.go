package gorm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alchemorsel/recipebox/internal/domain/mealplan"
	"github.com/alchemorsel/recipebox/internal/domain/recipe"
	apperrors "github.com/alchemorsel/recipebox/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type RepositoryTestSuite struct {
	suite.Suite
	ctx     context.Context
	db      *gorm.DB
	recipes *RecipeRepository
	plans   *MealPlanRepository

	failInserts bool
	failDeletes bool
}

func (suite *RepositoryTestSuite) SetupTest() {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(suite.T(), err)
	sqlDB, err := db.DB()
	require.NoError(suite.T(), err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(suite.T(), db.AutoMigrate(Models()...))

	suite.failInserts = false
	suite.failDeletes = false
	require.NoError(suite.T(), db.Callback().Create().Before("gorm:create").Register("test:fail_insert", func(tx *gorm.DB) {
		if suite.failInserts && tx.Statement.Table == "meal_plans" {
			_ = tx.AddError(errors.New("disk I/O error"))
		}
	}))
	require.NoError(suite.T(), db.Callback().Delete().Before("gorm:delete").Register("test:fail_delete", func(tx *gorm.DB) {
		if suite.failDeletes && tx.Statement.Table == "meal_plans" {
			_ = tx.AddError(errors.New("database is locked"))
		}
	}))

	suite.ctx = context.Background()
	suite.db = db
	suite.recipes = NewRecipeRepository(db)
	suite.plans = NewMealPlanRepository(db)
}

func (suite *RepositoryTestSuite) TearDownTest() {
	if sqlDB, err := suite.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func testRecipe(id, title string, createdAt time.Time) *recipe.Recipe {
	return &recipe.Recipe{
		ID:           id,
		Title:        title,
		Servings:     2,
		Ingredients:  []string{"1 cup rice", "2 tbsp butter"},
		Instructions: []string{"fry the onions"},
		Tags:         []string{"dinner"},
		Source:       recipe.DefaultSource,
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
		Image:        "data:image/png;base64,AAAA",
	}
}

func (suite *RepositoryTestSuite) TestRecipe_CreateGetRoundTrip() {
	// Arrange
	created := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	r := testRecipe("1709283600000", "Risotto", created)

	// Act
	require.NoError(suite.T(), suite.recipes.Create(suite.ctx, r))
	got, err := suite.recipes.Get(suite.ctx, r.ID)

	// Assert
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Risotto", got.Title)
	assert.Equal(suite.T(), []string{"1 cup rice", "2 tbsp butter"}, got.Ingredients)
	assert.Equal(suite.T(), []string{"dinner"}, got.Tags)
	assert.Equal(suite.T(), 2, got.Servings)
	assert.True(suite.T(), created.Equal(got.CreatedAt))
	assert.Empty(suite.T(), got.Image)
}

func (suite *RepositoryTestSuite) TestRecipe_ListNewestFirst() {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(suite.T(), suite.recipes.Create(suite.ctx, testRecipe("1", "Old", base)))
	require.NoError(suite.T(), suite.recipes.Create(suite.ctx, testRecipe("3", "Newest", base.Add(2*time.Hour))))
	require.NoError(suite.T(), suite.recipes.Create(suite.ctx, testRecipe("2", "Middle", base.Add(time.Hour))))

	recipes, err := suite.recipes.List(suite.ctx)

	require.NoError(suite.T(), err)
	require.Len(suite.T(), recipes, 3)
	assert.Equal(suite.T(), "Newest", recipes[0].Title)
	assert.Equal(suite.T(), "Middle", recipes[1].Title)
	assert.Equal(suite.T(), "Old", recipes[2].Title)
}

func (suite *RepositoryTestSuite) TestRecipe_UpdateAndMissing() {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r := testRecipe("1", "Soup", created)
	require.NoError(suite.T(), suite.recipes.Create(suite.ctx, r))

	r.Title = "Tomato Soup"
	r.UpdatedAt = created.Add(time.Hour)
	require.NoError(suite.T(), suite.recipes.Update(suite.ctx, r))

	got, err := suite.recipes.Get(suite.ctx, "1")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Tomato Soup", got.Title)
	assert.True(suite.T(), created.Equal(got.CreatedAt))
	assert.True(suite.T(), created.Add(time.Hour).Equal(got.UpdatedAt))

	err = suite.recipes.Update(suite.ctx, testRecipe("2", "Ghost", created))
	assert.ErrorIs(suite.T(), err, recipe.ErrRecipeNotFound)
	_, err = suite.recipes.Get(suite.ctx, "2")
	assert.ErrorIs(suite.T(), err, recipe.ErrRecipeNotFound)
}

func (suite *RepositoryTestSuite) TestRecipe_DeleteIsIdempotent() {
	require.NoError(suite.T(), suite.recipes.Create(suite.ctx, testRecipe("1", "Soup", time.Now())))

	require.NoError(suite.T(), suite.recipes.Delete(suite.ctx, "1"))
	require.NoError(suite.T(), suite.recipes.Delete(suite.ctx, "1"))

	_, err := suite.recipes.Get(suite.ctx, "1")
	assert.ErrorIs(suite.T(), err, recipe.ErrRecipeNotFound)
}

func (suite *RepositoryTestSuite) TestRecipe_SetFavoriteWritesUpdatedAt() {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(suite.T(), suite.recipes.Create(suite.ctx, testRecipe("1", "Soup", created)))
	at := created.Add(48 * time.Hour)

	require.NoError(suite.T(), suite.recipes.SetFavorite(suite.ctx, "1", true, at))

	got, err := suite.recipes.Get(suite.ctx, "1")
	require.NoError(suite.T(), err)
	assert.True(suite.T(), got.Favorite)
	assert.True(suite.T(), at.Equal(got.UpdatedAt))
	assert.ErrorIs(suite.T(), suite.recipes.SetFavorite(suite.ctx, "9", true, at), recipe.ErrRecipeNotFound)
}

func (suite *RepositoryTestSuite) TestMealPlan_PutIsUpsertBySlot() {
	// Act
	require.NoError(suite.T(), suite.plans.Put(suite.ctx, mealplan.Monday, mealplan.Dinner, mealplan.RecipeRef{ID: "1", Title: "Soup"}))
	require.NoError(suite.T(), suite.plans.Put(suite.ctx, mealplan.Monday, mealplan.Dinner, mealplan.RecipeRef{ID: "2", Title: "Stew"}))
	plan, err := suite.plans.Load(suite.ctx)

	// Assert
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 1, plan.Filled())
	assert.Equal(suite.T(), &mealplan.RecipeRef{ID: "2", Title: "Stew"}, plan.Get(mealplan.Monday, mealplan.Dinner))

	var rows int64
	require.NoError(suite.T(), suite.db.Model(&MealPlanModel{}).Count(&rows).Error)
	assert.Equal(suite.T(), int64(1), rows)
}

func (suite *RepositoryTestSuite) TestMealPlan_RemoveAndClear() {
	require.NoError(suite.T(), suite.plans.Put(suite.ctx, mealplan.Monday, mealplan.Dinner, mealplan.RecipeRef{ID: "1"}))
	require.NoError(suite.T(), suite.plans.Put(suite.ctx, mealplan.Tuesday, mealplan.Lunch, mealplan.RecipeRef{ID: "2"}))

	require.NoError(suite.T(), suite.plans.Remove(suite.ctx, mealplan.Monday, mealplan.Dinner))
	require.NoError(suite.T(), suite.plans.Remove(suite.ctx, mealplan.Monday, mealplan.Dinner))
	plan, err := suite.plans.Load(suite.ctx)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 1, plan.Filled())

	require.NoError(suite.T(), suite.plans.Clear(suite.ctx))
	plan, err = suite.plans.Load(suite.ctx)
	require.NoError(suite.T(), err)
	assert.Zero(suite.T(), plan.Filled())
	assert.Len(suite.T(), plan, len(mealplan.Days))
}

func (suite *RepositoryTestSuite) TestMealPlan_Replace() {
	require.NoError(suite.T(), suite.plans.Put(suite.ctx, mealplan.Sunday, mealplan.Breakfast, mealplan.RecipeRef{ID: "old"}))
	candidate := mealplan.NewPlan()
	candidate.Set(mealplan.Monday, mealplan.Dinner, &mealplan.RecipeRef{ID: "1", Title: "Soup"})
	candidate.Set(mealplan.Friday, mealplan.Lunch, &mealplan.RecipeRef{ID: "2", Title: "Salad"})

	require.NoError(suite.T(), suite.plans.Replace(suite.ctx, candidate))

	plan, err := suite.plans.Load(suite.ctx)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 2, plan.Filled())
	assert.Nil(suite.T(), plan.Get(mealplan.Sunday, mealplan.Breakfast))
	assert.Equal(suite.T(), "Salad", plan.Get(mealplan.Friday, mealplan.Lunch).Title)
}

func (suite *RepositoryTestSuite) TestMealPlan_ReplaceInsertFailureIsPartial() {
	// Arrange
	require.NoError(suite.T(), suite.plans.Put(suite.ctx, mealplan.Sunday, mealplan.Breakfast, mealplan.RecipeRef{ID: "old"}))
	candidate := mealplan.NewPlan()
	candidate.Set(mealplan.Monday, mealplan.Dinner, &mealplan.RecipeRef{ID: "1"})
	suite.failInserts = true

	// Act
	err := suite.plans.Replace(suite.ctx, candidate)

	// Assert
	require.Error(suite.T(), err)
	assert.True(suite.T(), apperrors.Is(err, apperrors.CodePartialReplace))
	suite.failInserts = false
	plan, loadErr := suite.plans.Load(suite.ctx)
	require.NoError(suite.T(), loadErr)
	assert.Zero(suite.T(), plan.Filled(), "delete phase already ran")
}

func (suite *RepositoryTestSuite) TestMealPlan_ReplaceDeleteFailureLeavesPlan() {
	require.NoError(suite.T(), suite.plans.Put(suite.ctx, mealplan.Sunday, mealplan.Breakfast, mealplan.RecipeRef{ID: "old"}))
	candidate := mealplan.NewPlan()
	candidate.Set(mealplan.Monday, mealplan.Dinner, &mealplan.RecipeRef{ID: "1"})
	suite.failDeletes = true

	err := suite.plans.Replace(suite.ctx, candidate)

	require.Error(suite.T(), err)
	assert.True(suite.T(), apperrors.Is(err, apperrors.CodeDatabaseError))
	assert.False(suite.T(), apperrors.Is(err, apperrors.CodePartialReplace))
	suite.failDeletes = false
	plan, loadErr := suite.plans.Load(suite.ctx)
	require.NoError(suite.T(), loadErr)
	assert.Equal(suite.T(), "old", plan.Get(mealplan.Sunday, mealplan.Breakfast).ID)
}

func TestRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(RepositoryTestSuite))
}

func TestLogLevel(t *testing.T) {
	assert.Equal(t, logger.Silent, LogLevel("silent"))
	assert.Equal(t, logger.Info, LogLevel("DEBUG"))
	assert.Equal(t, logger.Warn, LogLevel("verbose"))
}
