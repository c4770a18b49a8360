package mealplan

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	recipeapp "github.com/alchemorsel/recipebox/internal/application/recipe"
	"github.com/alchemorsel/recipebox/internal/application/suggestion"
	"github.com/alchemorsel/recipebox/internal/domain/mealplan"
	"github.com/alchemorsel/recipebox/internal/domain/recipe"
	"github.com/alchemorsel/recipebox/internal/infrastructure/persistence/localcache"
	"github.com/alchemorsel/recipebox/internal/infrastructure/persistence/memory"
	apperrors "github.com/alchemorsel/recipebox/pkg/errors"
	"github.com/alchemorsel/recipebox/test/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

var fixedNow = time.Date(2024, 5, 6, 9, 0, 0, 0, time.UTC)

type MealPlanServiceTestSuite struct {
	suite.Suite
	ctx     context.Context
	events  *testutils.RecordingPublisher
	plans   *localcache.MealPlanStore
	recipes *recipeapp.RecipeService
	service *MealPlanService
}

func (suite *MealPlanServiceTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.events = &testutils.RecordingPublisher{}

	guard := localcache.NewGuard(memory.NewKVStore(0), localcache.Options{}, zap.NewNop(), nil)
	recipeStore := localcache.NewRecipeStore(guard, 0)
	suite.plans = localcache.NewMealPlanStore(guard)
	suite.recipes = recipeapp.NewRecipeService(recipeStore, nil, nil, zap.NewNop())
	suite.service = NewMealPlanService(
		suite.plans,
		recipeStore,
		suite.events,
		nil,
		zap.NewNop(),
		WithClock(func() time.Time { return fixedNow }),
		WithGenerator(suggestion.NewGeneratorWithRand(rand.New(rand.NewSource(3)))),
	)
}

func (suite *MealPlanServiceTestSuite) createRecipe(title string) string {
	r, err := suite.recipes.Create(suite.ctx, testutils.NewDraftBuilderWithSeed(11).WithTitle(title).Build())
	require.NoError(suite.T(), err)
	return r.ID
}

func (suite *MealPlanServiceTestSuite) TestDeletedRecipeLeavesEmptySlot() {
	// Arrange
	id := suite.createRecipe("Soup")

	// Act
	require.NoError(suite.T(), suite.service.Assign(suite.ctx, "monday", "DINNER", id))
	before, err := suite.service.GetPlan(suite.ctx)
	require.NoError(suite.T(), err)
	require.NoError(suite.T(), suite.recipes.Delete(suite.ctx, id))
	after, err := suite.service.GetPlan(suite.ctx)
	require.NoError(suite.T(), err)

	// Assert
	ref := before.Get(mealplan.Monday, mealplan.Dinner)
	require.NotNil(suite.T(), ref)
	assert.Equal(suite.T(), "Soup", ref.Title)
	assert.Nil(suite.T(), after.Get(mealplan.Monday, mealplan.Dinner))
	assert.Len(suite.T(), after, len(mealplan.Days))

	// The dangling reference is tolerated in storage
	stored, err := suite.plans.Load(suite.ctx)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), id, stored.Get(mealplan.Monday, mealplan.Dinner).ID)
}

func (suite *MealPlanServiceTestSuite) TestGetPlan_RefreshesTitles() {
	id := suite.createRecipe("Soup")
	require.NoError(suite.T(), suite.service.Assign(suite.ctx, "Tuesday", "lunch", id))
	title := "Tomato Soup"
	_, err := suite.recipes.Update(suite.ctx, id, recipePatchTitle(title))
	require.NoError(suite.T(), err)

	plan, err := suite.service.GetPlan(suite.ctx)

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), title, plan.Get(mealplan.Tuesday, mealplan.Lunch).Title)
}

func (suite *MealPlanServiceTestSuite) TestAssign_LastWriteWins() {
	first := suite.createRecipe("Soup")
	second := suite.createRecipe("Stew")

	require.NoError(suite.T(), suite.service.Assign(suite.ctx, "Friday", "dinner", first))
	require.NoError(suite.T(), suite.service.Assign(suite.ctx, "Friday", "dinner", second))

	plan, err := suite.service.GetPlan(suite.ctx)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), second, plan.Get(mealplan.Friday, mealplan.Dinner).ID)
	assert.Equal(suite.T(), 1, plan.Filled())
	assert.Equal(suite.T(), []string{"mealplan.slot.changed", "mealplan.slot.changed"}, suite.events.Names())
}

func (suite *MealPlanServiceTestSuite) TestAssign_RejectsBadSlotAndUnknownRecipe() {
	id := suite.createRecipe("Soup")

	err := suite.service.Assign(suite.ctx, "Funday", "dinner", id)
	assert.True(suite.T(), apperrors.Is(err, apperrors.CodeValidationFailed))

	err = suite.service.Assign(suite.ctx, "Monday", "brunch", id)
	assert.True(suite.T(), apperrors.Is(err, apperrors.CodeValidationFailed))

	err = suite.service.Assign(suite.ctx, "Monday", "dinner", "missing")
	assert.True(suite.T(), apperrors.Is(err, apperrors.CodeRecipeNotFound))

	assert.Empty(suite.T(), suite.events.Names())
}

func (suite *MealPlanServiceTestSuite) TestRemove_IsIdempotent() {
	id := suite.createRecipe("Soup")
	require.NoError(suite.T(), suite.service.Assign(suite.ctx, "Sunday", "breakfast", id))

	require.NoError(suite.T(), suite.service.Remove(suite.ctx, "sunday", "breakfast"))
	require.NoError(suite.T(), suite.service.Remove(suite.ctx, "sunday", "breakfast"))

	plan, err := suite.service.GetPlan(suite.ctx)
	require.NoError(suite.T(), err)
	assert.Zero(suite.T(), plan.Filled())

	err = suite.service.Remove(suite.ctx, "sunday", "supper")
	assert.True(suite.T(), apperrors.Is(err, apperrors.CodeValidationFailed))
}

func (suite *MealPlanServiceTestSuite) TestClearWeek() {
	id := suite.createRecipe("Soup")
	require.NoError(suite.T(), suite.service.ApplySuggestion(suite.ctx, testutils.FullPlan(mealplan.RecipeRef{ID: id})))

	require.NoError(suite.T(), suite.service.ClearWeek(suite.ctx))

	plan, err := suite.service.GetPlan(suite.ctx)
	require.NoError(suite.T(), err)
	assert.Zero(suite.T(), plan.Filled())
}

func (suite *MealPlanServiceTestSuite) TestDinnerOnly() {
	id := suite.createRecipe("Soup")
	require.NoError(suite.T(), suite.service.Assign(suite.ctx, "Wednesday", "dinner", id))
	require.NoError(suite.T(), suite.service.Assign(suite.ctx, "Wednesday", "lunch", id))

	column, err := suite.service.DinnerOnly(suite.ctx)

	require.NoError(suite.T(), err)
	require.Len(suite.T(), column, 7)
	assert.Equal(suite.T(), mealplan.Monday, column[0].Day)
	assert.Nil(suite.T(), column[0].Recipe)
	require.NotNil(suite.T(), column[2].Recipe)
	assert.Equal(suite.T(), "Soup", column[2].Recipe.Title)
}

func (suite *MealPlanServiceTestSuite) TestSuggest_DoesNotStoreAnything() {
	suite.createRecipe("Soup")
	suite.createRecipe("Stew")

	candidate, err := suite.service.Suggest(suite.ctx)
	require.NoError(suite.T(), err)

	assert.Equal(suite.T(), mealplan.SlotCount, candidate.Filled())
	stored, err := suite.plans.Load(suite.ctx)
	require.NoError(suite.T(), err)
	assert.Zero(suite.T(), stored.Filled())
}

func (suite *MealPlanServiceTestSuite) TestSuggest_NoRecipesGivesEmptyPlan() {
	candidate, err := suite.service.Suggest(suite.ctx)

	require.NoError(suite.T(), err)
	assert.Zero(suite.T(), candidate.Filled())
}

func (suite *MealPlanServiceTestSuite) TestApplySuggestion_ReplacesWholePlan() {
	// Arrange
	soup := suite.createRecipe("Soup")
	stew := suite.createRecipe("Stew")
	require.NoError(suite.T(), suite.service.Assign(suite.ctx, "Monday", "breakfast", soup))

	candidate := mealplan.Plan{
		"saturday": {"DINNER": {ID: stew}},
	}

	// Act
	err := suite.service.ApplySuggestion(suite.ctx, candidate)

	// Assert
	require.NoError(suite.T(), err)
	plan, err := suite.service.GetPlan(suite.ctx)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 1, plan.Filled())
	assert.Equal(suite.T(), "Stew", plan.Get(mealplan.Saturday, mealplan.Dinner).Title)
	assert.Contains(suite.T(), suite.events.Names(), "mealplan.replaced")
}

func (suite *MealPlanServiceTestSuite) TestApplySuggestion_BadKeyLeavesPlanUntouched() {
	soup := suite.createRecipe("Soup")
	require.NoError(suite.T(), suite.service.Assign(suite.ctx, "Monday", "breakfast", soup))

	err := suite.service.ApplySuggestion(suite.ctx, mealplan.Plan{"Someday": {"dinner": {ID: soup}}})

	assert.True(suite.T(), apperrors.Is(err, apperrors.CodeValidationFailed))
	plan, err := suite.service.GetPlan(suite.ctx)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), soup, plan.Get(mealplan.Monday, mealplan.Breakfast).ID)
}

func TestMealPlanServiceTestSuite(t *testing.T) {
	suite.Run(t, new(MealPlanServiceTestSuite))
}

func TestApplySuggestion_PartialReplaceIsReported(t *testing.T) {
	// Arrange
	plans := &testutils.MockMealPlanStore{}
	plans.On("Replace", mock.Anything, mock.Anything).
		Return(apperrors.NewPartialReplaceError("meal_plans", errors.New("insert failed")))
	events := &testutils.RecordingPublisher{}
	service := NewMealPlanService(plans, &testutils.MockRecipeStore{}, events, nil, zap.NewNop())

	// Act
	err := service.ApplySuggestion(context.Background(), testutils.FullPlan(mealplan.RecipeRef{ID: "1"}))

	// Assert
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.CodePartialReplace))
	assert.Empty(t, events.Names())
	plans.AssertExpectations(t)
}

func TestGetPlan_StoreFailureIsAnError(t *testing.T) {
	plans := &testutils.MockMealPlanStore{}
	plans.On("Load", mock.Anything).Return(nil, apperrors.NewDatabaseError("load meal plan", errors.New("connection reset")))
	service := NewMealPlanService(plans, &testutils.MockRecipeStore{}, nil, nil, zap.NewNop())

	_, err := service.GetPlan(context.Background())

	assert.True(t, apperrors.Is(err, apperrors.CodeDatabaseError))
}

func TestGetPlan_ResolvesFromOneListing(t *testing.T) {
	// Arrange
	stored := mealplan.NewPlan()
	stored.Set(mealplan.Monday, mealplan.Dinner, &mealplan.RecipeRef{ID: "1", Title: "Old"})
	stored.Set(mealplan.Tuesday, mealplan.Dinner, &mealplan.RecipeRef{ID: "1", Title: "Old"})
	stored.Set(mealplan.Friday, mealplan.Lunch, &mealplan.RecipeRef{ID: "2"})
	stored.Set(mealplan.Saturday, mealplan.Lunch, &mealplan.RecipeRef{ID: "gone"})
	stored.Set(mealplan.Sunday, mealplan.Lunch, &mealplan.RecipeRef{ID: "gone"})

	plans := &testutils.MockMealPlanStore{}
	plans.On("Load", mock.Anything).Return(stored, nil)
	recipes := &testutils.MockRecipeStore{}
	recipes.On("List", mock.Anything).Return([]*recipe.Recipe{
		{ID: "1", Title: "Soup"},
		{ID: "2", Title: "Salad"},
	}, nil).Once()
	recipes.On("Get", mock.Anything, "gone").Return(nil, recipe.ErrRecipeNotFound).Once()
	service := NewMealPlanService(plans, recipes, nil, nil, zap.NewNop())

	// Act
	plan, err := service.GetPlan(context.Background())

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 3, plan.Filled())
	assert.Equal(t, "Soup", plan.Get(mealplan.Monday, mealplan.Dinner).Title)
	assert.Equal(t, "Soup", plan.Get(mealplan.Tuesday, mealplan.Dinner).Title)
	assert.Equal(t, "Salad", plan.Get(mealplan.Friday, mealplan.Lunch).Title)
	assert.Nil(t, plan.Get(mealplan.Saturday, mealplan.Lunch))
	recipes.AssertNumberOfCalls(t, "List", 1)
	recipes.AssertNumberOfCalls(t, "Get", 1)
	recipes.AssertExpectations(t)
}

func TestGetPlan_FindsRecipesPastTheListingCap(t *testing.T) {
	// Arrange
	guard := localcache.NewGuard(memory.NewKVStore(0), localcache.Options{}, zap.NewNop(), nil)
	recipeStore := localcache.NewRecipeStore(guard, 1)
	plans := localcache.NewMealPlanStore(guard)
	recipes := recipeapp.NewRecipeService(recipeStore, nil, nil, zap.NewNop())
	service := NewMealPlanService(plans, recipeStore, nil, nil, zap.NewNop())
	ctx := context.Background()

	first, err := recipes.Create(ctx, testutils.NewDraftBuilderWithSeed(1).WithTitle("First").Build())
	require.NoError(t, err)
	second, err := recipes.Create(ctx, testutils.NewDraftBuilderWithSeed(2).WithTitle("Second").Build())
	require.NoError(t, err)
	require.NoError(t, service.Assign(ctx, "Monday", "dinner", first.ID))
	require.NoError(t, service.Assign(ctx, "Tuesday", "dinner", second.ID))

	// Act
	plan, err := service.GetPlan(ctx)

	// Assert
	require.NoError(t, err)
	require.NotNil(t, plan.Get(mealplan.Tuesday, mealplan.Dinner))
	assert.Equal(t, "Second", plan.Get(mealplan.Tuesday, mealplan.Dinner).Title)
}

func recipePatchTitle(title string) recipe.Patch {
	return recipe.Patch{Title: &title}
}
