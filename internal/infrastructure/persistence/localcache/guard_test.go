package localcache

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alchemorsel/recipebox/internal/domain/mealplan"
	"github.com/alchemorsel/recipebox/internal/domain/recipe"
	"github.com/alchemorsel/recipebox/internal/infrastructure/persistence/memory"
	"github.com/alchemorsel/recipebox/internal/ports/outbound"
	apperrors "github.com/alchemorsel/recipebox/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type GuardTestSuite struct {
	suite.Suite
	ctx   context.Context
	kv    *memory.KVStore
	guard *Guard
	core  zapcore.Core
	logs  *observer.ObservedLogs
}

func (suite *GuardTestSuite) SetupTest() {
	core, logs := observer.New(zap.WarnLevel)
	suite.ctx = context.Background()
	suite.kv = memory.NewKVStore(0)
	suite.core = core
	suite.logs = logs
	suite.guard = NewGuard(suite.kv, Options{}, zap.New(core), nil)
}

func sampleRecipe(id, title string) *recipe.Recipe {
	return &recipe.Recipe{
		ID:           id,
		Title:        title,
		Servings:     1,
		Ingredients:  []string{"water", "salt"},
		Instructions: []string{"boil"},
		Source:       recipe.DefaultSource,
		CreatedAt:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (suite *GuardTestSuite) TestReadRecipes_AbsentKeyIsEmpty() {
	recipes, warning, err := suite.guard.ReadRecipes(suite.ctx)

	require.NoError(suite.T(), err)
	assert.Nil(suite.T(), warning)
	assert.Empty(suite.T(), recipes)
}

func (suite *GuardTestSuite) TestWriteThenRead_RoundTripsAndStripsMedia() {
	// Arrange
	r := sampleRecipe("1", "Soup")
	r.ThumbnailURL = "data:image/jpeg;base64,/9j/4AAQ"
	r.Image = "data:image/png;base64,iVBOR"

	// Act
	err := suite.guard.WriteRecipes(suite.ctx, []*recipe.Recipe{r})
	require.NoError(suite.T(), err)
	recipes, warning, err := suite.guard.ReadRecipes(suite.ctx)

	// Assert
	require.NoError(suite.T(), err)
	assert.Nil(suite.T(), warning)
	require.Len(suite.T(), recipes, 1)
	assert.Equal(suite.T(), "Soup", recipes[0].Title)
	assert.Empty(suite.T(), recipes[0].ThumbnailURL)
	assert.NotEmpty(suite.T(), r.ThumbnailURL, "caller's value must not be modified")

	raw, err := suite.kv.Get(suite.ctx, RecipesKey)
	require.NoError(suite.T(), err)
	assert.NotContains(suite.T(), string(raw), "thumbnailUrl")
	assert.NotContains(suite.T(), string(raw), "base64")
}

func (suite *GuardTestSuite) TestReadRecipes_StripsMediaLeftInStorage() {
	require.NoError(suite.T(), suite.kv.Set(suite.ctx, RecipesKey,
		[]byte(`[{"id":"1","title":"Soup","ingredients":["a"],"instructions":["b"],"thumbnailUrl":"data:x"}]`)))

	recipes, warning, err := suite.guard.ReadRecipes(suite.ctx)

	require.NoError(suite.T(), err)
	assert.Nil(suite.T(), warning)
	require.Len(suite.T(), recipes, 1)
	assert.Empty(suite.T(), recipes[0].ThumbnailURL)

	raw, err := suite.kv.Get(suite.ctx, RecipesKey)
	require.NoError(suite.T(), err)
	assert.NotContains(suite.T(), string(raw), "thumbnailUrl")
}

func (suite *GuardTestSuite) TestWriteRecipes_OverBudgetLeavesPreviousStateByteIdentical() {
	// Arrange
	require.NoError(suite.T(), suite.guard.WriteRecipes(suite.ctx, []*recipe.Recipe{sampleRecipe("1", "Soup")}))
	before, err := suite.kv.Get(suite.ctx, RecipesKey)
	require.NoError(suite.T(), err)

	huge := sampleRecipe("2", "Huge")
	huge.Notes = strings.Repeat("x", DefaultMaxBytes)

	// Act
	err = suite.guard.WriteRecipes(suite.ctx, []*recipe.Recipe{sampleRecipe("1", "Soup"), huge})

	// Assert
	require.Error(suite.T(), err)
	assert.True(suite.T(), apperrors.Is(err, apperrors.CodeStorageFull))

	after, err := suite.kv.Get(suite.ctx, RecipesKey)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), before, after)
}

func (suite *GuardTestSuite) TestWriteRecipes_StrippedMediaDoesNotCountAgainstBudget() {
	guard := NewGuard(suite.kv, Options{MaxBytes: 1_000}, zap.NewNop(), nil)
	r := sampleRecipe("1", "Soup")
	r.Image = strings.Repeat("A", 5_000)

	err := guard.WriteRecipes(suite.ctx, []*recipe.Recipe{r})

	assert.NoError(suite.T(), err)
}

func (suite *GuardTestSuite) TestReadRecipes_OversizeDataIsClearedWithWarning() {
	guard := NewGuard(suite.kv, Options{MaxBytes: 64}, zap.New(suite.core), nil)
	require.NoError(suite.T(), suite.kv.Set(suite.ctx, RecipesKey, []byte(`[`+strings.Repeat(" ", 100)+`]`)))

	recipes, warning, err := guard.ReadRecipes(suite.ctx)

	require.NoError(suite.T(), err)
	assert.Empty(suite.T(), recipes)
	require.NotNil(suite.T(), warning)
	assert.Equal(suite.T(), apperrors.WarnStorageTooLarge, warning.Code)

	_, err = suite.kv.Get(suite.ctx, RecipesKey)
	assert.ErrorIs(suite.T(), err, outbound.ErrKeyNotFound)
	assert.Equal(suite.T(), 1, suite.logs.FilterMessage("Local cache reset").Len())
}

func (suite *GuardTestSuite) TestReadRecipes_MalformedDataIsClearedWithWarning() {
	require.NoError(suite.T(), suite.kv.Set(suite.ctx, RecipesKey, []byte(`{not json`)))

	recipes, warning, err := suite.guard.ReadRecipes(suite.ctx)

	require.NoError(suite.T(), err)
	assert.Empty(suite.T(), recipes)
	require.NotNil(suite.T(), warning)
	assert.Equal(suite.T(), apperrors.WarnStorageCorrupt, warning.Code)
	assert.Equal(suite.T(), RecipesKey, warning.Key)

	_, err = suite.kv.Get(suite.ctx, RecipesKey)
	assert.ErrorIs(suite.T(), err, outbound.ErrKeyNotFound)
	assert.Equal(suite.T(), 1, suite.logs.FilterMessage("Local cache reset").Len())
}

func (suite *GuardTestSuite) TestWriteRecipes_QuotaRefusalIsStorageFull() {
	guard := NewGuard(memory.NewKVStore(50), Options{}, zap.NewNop(), nil)

	err := guard.WriteRecipes(suite.ctx, []*recipe.Recipe{sampleRecipe("1", "Soup")})

	assert.True(suite.T(), apperrors.Is(err, apperrors.CodeStorageFull))
}

func (suite *GuardTestSuite) TestReadRecipes_BackendFailureIsAnError() {
	guard := NewGuard(failingKV{}, Options{}, zap.NewNop(), nil)

	recipes, warning, err := guard.ReadRecipes(suite.ctx)

	assert.Error(suite.T(), err)
	assert.Nil(suite.T(), warning)
	assert.Empty(suite.T(), recipes)
}

func (suite *GuardTestSuite) TestPlan_RoundTrip() {
	plan := mealplan.NewPlan()
	plan.Set(mealplan.Monday, mealplan.Dinner, &mealplan.RecipeRef{ID: "1", Title: "Soup"})

	require.NoError(suite.T(), suite.guard.WritePlan(suite.ctx, plan))
	loaded, warning, err := suite.guard.ReadPlan(suite.ctx)

	require.NoError(suite.T(), err)
	assert.Nil(suite.T(), warning)
	assert.Equal(suite.T(), "Soup", loaded.Get(mealplan.Monday, mealplan.Dinner).Title)
	assert.Equal(suite.T(), 1, loaded.Filled())
}

func (suite *GuardTestSuite) TestReadPlan_UnknownSlotKeysAreCorrupt() {
	require.NoError(suite.T(), suite.kv.Set(suite.ctx, MealPlanKey, []byte(`{"Caturday":{"dinner":{"id":"1"}}}`)))

	plan, warning, err := suite.guard.ReadPlan(suite.ctx)

	require.NoError(suite.T(), err)
	require.NotNil(suite.T(), warning)
	assert.Equal(suite.T(), apperrors.WarnStorageCorrupt, warning.Code)
	assert.Zero(suite.T(), plan.Filled())
	assert.Len(suite.T(), plan, 7)
}

func (suite *GuardTestSuite) TestKeyPrefix() {
	guard := NewGuard(suite.kv, Options{KeyPrefix: "user42:"}, zap.NewNop(), nil)

	require.NoError(suite.T(), guard.WritePlan(suite.ctx, mealplan.NewPlan()))

	_, err := suite.kv.Get(suite.ctx, "user42:"+MealPlanKey)
	assert.NoError(suite.T(), err)
}

func TestGuardTestSuite(t *testing.T) {
	suite.Run(t, new(GuardTestSuite))
}

type failingKV struct{}

func (failingKV) Get(context.Context, string) ([]byte, error) { return nil, errors.New("connection refused") }
func (failingKV) Set(context.Context, string, []byte) error { return errors.New("connection refused") }
func (failingKV) Delete(context.Context, string) error { return errors.New("connection refused") }
