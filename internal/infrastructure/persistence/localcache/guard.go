// Package localcache keeps recipes and the meal plan as JSON documents in a
// capacity-bounded key-value store. Every access goes through Guard, which
// enforces the size budget and resets unreadable documents.
package localcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/alchemorsel/recipebox/internal/domain/mealplan"
	"github.com/alchemorsel/recipebox/internal/domain/recipe"
	"github.com/alchemorsel/recipebox/internal/infrastructure/monitoring"
	"github.com/alchemorsel/recipebox/internal/ports/outbound"
	apperrors "github.com/alchemorsel/recipebox/pkg/errors"
	"go.uber.org/zap"
)

const (
	// DefaultMaxBytes is the serialized size budget per document
	DefaultMaxBytes = 4_000_000

	RecipesKey  = "recipes"
	MealPlanKey = "mealPlan"
)

// Options configures a Guard
type Options struct {
	MaxBytes  int
	KeyPrefix string
}

// Guard mediates every read and write of the cached documents
type Guard struct {
	kv          outbound.KeyValueStore
	maxBytes    int
	recipesKey  string
	mealPlanKey string
	logger      *zap.Logger
	metrics     *monitoring.MetricsCollector
}

// NewGuard creates a guard over kv. metrics may be nil.
func NewGuard(kv outbound.KeyValueStore, opts Options, logger *zap.Logger, metrics *monitoring.MetricsCollector) *Guard {
	maxBytes := opts.MaxBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Guard{
		kv:          kv,
		maxBytes:    maxBytes,
		recipesKey:  opts.KeyPrefix + RecipesKey,
		mealPlanKey: opts.KeyPrefix + MealPlanKey,
		logger:      logger.Named("local-cache-guard"),
		metrics:     metrics,
	}
}

// MaxBytes returns the size budget
func (g *Guard) MaxBytes() int {
	return g.maxBytes
}

// ReadRecipes loads the recipe collection. Missing data yields an empty
// collection. Oversize or undecodable data is deleted and reported as a
// warning together with an empty collection. The error is non-nil only when
// the store itself could not be reached.
func (g *Guard) ReadRecipes(ctx context.Context) ([]*recipe.Recipe, *apperrors.Warning, error) {
	raw, warning, err := g.load(ctx, g.recipesKey)
	if err != nil || warning != nil || raw == nil {
		return []*recipe.Recipe{}, warning, err
	}

	var recipes []*recipe.Recipe
	if err := json.Unmarshal(raw, &recipes); err != nil {
		return []*recipe.Recipe{}, g.reset(ctx, apperrors.NewStorageCorruptWarning(g.recipesKey, err)), nil
	}

	stripped := false
	cleaned := make([]*recipe.Recipe, 0, len(recipes))
	for _, r := range recipes {
		if r == nil {
			continue
		}
		if r.StripMedia() {
			stripped = true
		}
		cleaned = append(cleaned, r)
	}

	if stripped {
		if err := g.WriteRecipes(ctx, cleaned); err != nil {
			g.logger.Warn("Failed to write back recipes after stripping media", zap.Error(err))
		}
	}

	return cleaned, nil, nil
}

// WriteRecipes strips embedded media from every entry, serializes the
// collection and commits it in a single Set. A document over budget is
// refused with a STORAGE_FULL error and the stored value is left as it was.
// The passed recipes are not modified.
func (g *Guard) WriteRecipes(ctx context.Context, recipes []*recipe.Recipe) error {
	clean := make([]*recipe.Recipe, 0, len(recipes))
	for _, r := range recipes {
		c := r.Clone()
		c.StripMedia()
		clean = append(clean, c)
	}

	data, err := json.Marshal(clean)
	if err != nil {
		return apperrors.NewInternalError("failed to encode recipes").WithCause(err)
	}
	return g.commit(ctx, g.recipesKey, data)
}

// ReadPlan loads the meal plan with the same self-healing rules as
// ReadRecipes. A document with keys outside the weekly grid counts as
// corrupt.
func (g *Guard) ReadPlan(ctx context.Context) (mealplan.Plan, *apperrors.Warning, error) {
	raw, warning, err := g.load(ctx, g.mealPlanKey)
	if err != nil || warning != nil || raw == nil {
		return mealplan.NewPlan(), warning, err
	}

	var stored mealplan.Plan
	if err := json.Unmarshal(raw, &stored); err != nil {
		return mealplan.NewPlan(), g.reset(ctx, apperrors.NewStorageCorruptWarning(g.mealPlanKey, err)), nil
	}

	plan, err := stored.Normalize()
	if err != nil {
		return mealplan.NewPlan(), g.reset(ctx, apperrors.NewStorageCorruptWarning(g.mealPlanKey, err)), nil
	}
	return plan, nil, nil
}

// WritePlan serializes and commits the plan document
func (g *Guard) WritePlan(ctx context.Context, plan mealplan.Plan) error {
	data, err := json.Marshal(plan)
	if err != nil {
		return apperrors.NewInternalError("failed to encode meal plan").WithCause(err)
	}
	return g.commit(ctx, g.mealPlanKey, data)
}

// load fetches a document and applies the size budget. A nil slice with nil
// warning and error means the key is absent.
func (g *Guard) load(ctx context.Context, key string) ([]byte, *apperrors.Warning, error) {
	raw, err := g.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, outbound.ErrKeyNotFound) {
			return nil, nil, nil
		}
		g.logger.Error("Failed to read local cache", zap.String("key", key), zap.Error(err))
		return nil, nil, apperrors.NewInternalError("failed to read local cache").WithCause(err)
	}

	if len(raw) > g.maxBytes {
		return nil, g.reset(ctx, apperrors.NewStorageTooLargeWarning(key, len(raw), g.maxBytes)), nil
	}
	if len(raw) == 0 {
		return nil, nil, nil
	}
	return raw, nil, nil
}

// reset deletes the key behind warning, then logs and counts the warning
func (g *Guard) reset(ctx context.Context, warning *apperrors.Warning) *apperrors.Warning {
	if err := g.kv.Delete(ctx, warning.Key); err != nil {
		g.logger.Error("Failed to clear local cache key", zap.String("key", warning.Key), zap.Error(err))
	}
	g.logger.Warn("Local cache reset",
		zap.String("code", string(warning.Code)),
		zap.String("key", warning.Key),
		zap.String("detail", warning.Detail),
	)
	g.metrics.StorageWarning(string(warning.Code), warning.Key)
	return warning
}

func (g *Guard) commit(ctx context.Context, key string, data []byte) error {
	if len(data) > g.maxBytes {
		g.metrics.StorageRejected(key)
		g.logger.Warn("Local cache write rejected",
			zap.String("key", key),
			zap.Int("size", len(data)),
			zap.Int("limit", g.maxBytes),
		)
		return apperrors.NewStorageFullError(len(data), g.maxBytes)
	}

	if err := g.kv.Set(ctx, key, data); err != nil {
		if errors.Is(err, outbound.ErrQuotaExceeded) {
			g.metrics.StorageRejected(key)
			return apperrors.NewStorageFullError(len(data), g.maxBytes).WithCause(err)
		}
		return apperrors.NewInternalError(fmt.Sprintf("failed to write %s", key)).WithCause(err)
	}

	g.metrics.StoredBytes(key, len(data))
	return nil
}
