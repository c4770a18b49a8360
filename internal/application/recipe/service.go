// Package recipe provides the application layer for recipe management
// This implements the use cases defined in the inbound ports
package recipe

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/alchemorsel/recipebox/internal/domain/recipe"
	"github.com/alchemorsel/recipebox/internal/infrastructure/monitoring"
	"github.com/alchemorsel/recipebox/internal/ports/inbound"
	"github.com/alchemorsel/recipebox/internal/ports/outbound"
	apperrors "github.com/alchemorsel/recipebox/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// RecipeService implements the recipe use cases. Every operation holds the
// service mutex, so operations run one at a time in the order they arrive.
type RecipeService struct {
	mu      sync.Mutex
	store   outbound.RecipeStore
	events  outbound.EventPublisher
	metrics *monitoring.MetricsCollector
	ids     *recipe.IDGenerator
	clock   func() time.Time
	tracer  trace.Tracer
	logger  *zap.Logger
}

// Option customizes a RecipeService
type Option func(*RecipeService)

// WithClock replaces the wall clock used for timestamps and ids
func WithClock(clock func() time.Time) Option {
	return func(s *RecipeService) {
		s.clock = clock
		s.ids = recipe.NewIDGeneratorWithClock(clock)
	}
}

// NewRecipeService creates a new recipe service. events and metrics may be
// nil.
func NewRecipeService(
	store outbound.RecipeStore,
	events outbound.EventPublisher,
	metrics *monitoring.MetricsCollector,
	logger *zap.Logger,
	opts ...Option,
) *RecipeService {
	if events == nil {
		events = outbound.NopPublisher{}
	}
	s := &RecipeService{
		store:   store,
		events:  events,
		metrics: metrics,
		ids:     recipe.NewIDGenerator(),
		clock:   time.Now,
		tracer:  otel.Tracer("recipebox/recipe-service"),
		logger:  logger.Named("recipe-service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ inbound.RecipeService = (*RecipeService)(nil)

// Create validates the draft, assigns an id and creation time and stores it
func (s *RecipeService) Create(ctx context.Context, draft recipe.Draft) (r *recipe.Recipe, err error) {
	ctx, span := s.tracer.Start(ctx, "RecipeService.Create")
	defer func() { endSpan(span, err) }()
	ctx, logWarnings := s.collectWarnings(ctx)
	defer logWarnings()

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock().UTC()
	r, err = recipe.NewRecipe(s.ids.Next(), draft, now)
	if err != nil {
		s.logger.Debug("Rejected recipe draft", zap.String("title", draft.Title), zap.Error(err))
		return nil, translate(err, "")
	}

	if err := s.store.Create(ctx, r); err != nil {
		s.logger.Error("Failed to store recipe", zap.String("recipe_id", r.ID), zap.Error(err))
		return nil, translate(err, r.ID)
	}

	s.metrics.RecipeCreated()
	s.events.Publish(ctx, recipe.RecipeCreatedEvent{RecipeID: r.ID, Title: r.Title, CreatedAt: now})
	s.logger.Info("Recipe created", zap.String("recipe_id", r.ID), zap.String("title", r.Title))

	// Media never survives storage; return what was stored
	r.StripMedia()
	return r, nil
}

// Update merges patch into the stored recipe
func (s *RecipeService) Update(ctx context.Context, id string, patch recipe.Patch) (r *recipe.Recipe, err error) {
	ctx, span := s.tracer.Start(ctx, "RecipeService.Update", trace.WithAttributes(attribute.String("recipe.id", id)))
	defer func() { endSpan(span, err) }()
	ctx, logWarnings := s.collectWarnings(ctx)
	defer logWarnings()

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, translate(err, id)
	}

	now := s.clock().UTC()
	r, err = existing.Apply(patch, now)
	if err != nil {
		return nil, translate(err, id)
	}

	if err := s.store.Update(ctx, r); err != nil {
		s.logger.Error("Failed to update recipe", zap.String("recipe_id", id), zap.Error(err))
		return nil, translate(err, id)
	}

	s.events.Publish(ctx, recipe.RecipeUpdatedEvent{RecipeID: r.ID, Title: r.Title, UpdatedAt: now})
	s.logger.Info("Recipe updated", zap.String("recipe_id", id))
	return r, nil
}

// Delete removes a recipe. Deleting an unknown id succeeds and changes
// nothing.
func (s *RecipeService) Delete(ctx context.Context, id string) (err error) {
	ctx, span := s.tracer.Start(ctx, "RecipeService.Delete", trace.WithAttributes(attribute.String("recipe.id", id)))
	defer func() { endSpan(span, err) }()
	ctx, logWarnings := s.collectWarnings(ctx)
	defer logWarnings()

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.store.Get(ctx, id); err != nil {
		if errors.Is(err, recipe.ErrRecipeNotFound) {
			return nil
		}
		return translate(err, id)
	}

	if err := s.store.Delete(ctx, id); err != nil {
		s.logger.Error("Failed to delete recipe", zap.String("recipe_id", id), zap.Error(err))
		return translate(err, id)
	}

	s.metrics.RecipeDeleted()
	s.events.Publish(ctx, recipe.RecipeDeletedEvent{RecipeID: id, DeletedAt: s.clock().UTC()})
	s.logger.Info("Recipe deleted", zap.String("recipe_id", id))
	return nil
}

// ToggleFavorite flips the favorite flag and returns the new value
func (s *RecipeService) ToggleFavorite(ctx context.Context, id string) (favorite bool, err error) {
	ctx, span := s.tracer.Start(ctx, "RecipeService.ToggleFavorite", trace.WithAttributes(attribute.String("recipe.id", id)))
	defer func() { endSpan(span, err) }()
	ctx, logWarnings := s.collectWarnings(ctx)
	defer logWarnings()

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.store.Get(ctx, id)
	if err != nil {
		return false, translate(err, id)
	}

	favorite = !existing.Favorite
	now := s.clock().UTC()
	if err := s.store.SetFavorite(ctx, id, favorite, now); err != nil {
		return false, translate(err, id)
	}

	s.events.Publish(ctx, recipe.RecipeUpdatedEvent{RecipeID: id, Title: existing.Title, UpdatedAt: now})
	return favorite, nil
}

// PreviewHealthierVariant derives the healthier variant of a stored recipe
// without saving it
func (s *RecipeService) PreviewHealthierVariant(ctx context.Context, id string) (r *recipe.Recipe, err error) {
	ctx, span := s.tracer.Start(ctx, "RecipeService.PreviewHealthierVariant", trace.WithAttributes(attribute.String("recipe.id", id)))
	defer func() { endSpan(span, err) }()
	ctx, logWarnings := s.collectWarnings(ctx)
	defer logWarnings()

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, translate(err, id)
	}

	variant := recipe.DeriveHealthierVariant(*existing, s.ids.Next())
	return &variant, nil
}

// SaveHealthierVariant derives the healthier variant of a stored recipe and
// saves it, either as a new recipe or in place of the original. An in-place
// save keeps the original id and creation time.
func (s *RecipeService) SaveHealthierVariant(ctx context.Context, id string, replace bool) (r *recipe.Recipe, err error) {
	ctx, span := s.tracer.Start(ctx, "RecipeService.SaveHealthierVariant",
		trace.WithAttributes(attribute.String("recipe.id", id), attribute.Bool("replace", replace)))
	defer func() { endSpan(span, err) }()
	ctx, logWarnings := s.collectWarnings(ctx)
	defer logWarnings()

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, translate(err, id)
	}

	now := s.clock().UTC()
	if replace {
		variant := recipe.DeriveHealthierVariant(*existing, existing.ID)
		variant.UpdatedAt = now
		if err := s.store.Update(ctx, &variant); err != nil {
			return nil, translate(err, id)
		}
		s.events.Publish(ctx, recipe.RecipeUpdatedEvent{RecipeID: variant.ID, Title: variant.Title, UpdatedAt: now})
		s.logger.Info("Recipe replaced by healthier variant", zap.String("recipe_id", id))
		return &variant, nil
	}

	variant := recipe.DeriveHealthierVariant(*existing, s.ids.Next())
	variant.Favorite = false
	variant.CreatedAt = now
	variant.UpdatedAt = now
	if err := s.store.Create(ctx, &variant); err != nil {
		return nil, translate(err, variant.ID)
	}
	s.metrics.RecipeCreated()
	s.events.Publish(ctx, recipe.RecipeCreatedEvent{RecipeID: variant.ID, Title: variant.Title, CreatedAt: now})
	s.logger.Info("Healthier variant saved",
		zap.String("recipe_id", variant.ID),
		zap.String("derived_from", id),
	)
	return &variant, nil
}

// List returns the stored recipes in the backend's natural order
func (s *RecipeService) List(ctx context.Context) (recipes []*recipe.Recipe, err error) {
	ctx, span := s.tracer.Start(ctx, "RecipeService.List")
	defer func() { endSpan(span, err) }()
	ctx, logWarnings := s.collectWarnings(ctx)
	defer logWarnings()

	s.mu.Lock()
	defer s.mu.Unlock()

	recipes, err = s.store.List(ctx)
	if err != nil {
		return nil, translate(err, "")
	}
	span.SetAttributes(attribute.Int("recipes.count", len(recipes)))
	return recipes, nil
}

// GetByID looks a recipe up. A missing recipe is reported through the bool,
// not as an error.
func (s *RecipeService) GetByID(ctx context.Context, id string) (r *recipe.Recipe, found bool, err error) {
	ctx, span := s.tracer.Start(ctx, "RecipeService.GetByID", trace.WithAttributes(attribute.String("recipe.id", id)))
	defer func() { endSpan(span, err) }()
	ctx, logWarnings := s.collectWarnings(ctx)
	defer logWarnings()

	s.mu.Lock()
	defer s.mu.Unlock()

	r, err = s.store.Get(ctx, id)
	if errors.Is(err, recipe.ErrRecipeNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, translate(err, id)
	}
	return r, true, nil
}

// translate maps domain and storage errors onto application errors
func translate(err error, id string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, recipe.ErrRecipeNotFound):
		return apperrors.NewRecipeNotFoundError(id)
	case recipe.IsValidationError(err):
		return apperrors.NewValidationError(err.Error()).WithCause(err)
	default:
		return apperrors.Wrap(err, "recipe operation failed")
	}
}

// collectWarnings attaches a warning collector to ctx. The returned func logs
// the storage resets raised since, which callers further up can still read
// from the same collector.
func (s *RecipeService) collectWarnings(ctx context.Context) (context.Context, func()) {
	ctx, collector := apperrors.WithWarnings(ctx)
	mark := collector.Len()
	return ctx, func() {
		for _, w := range collector.Since(mark) {
			s.logger.Warn("Recipe storage was reset",
				zap.String("code", string(w.Code)),
				zap.String("key", w.Key),
				zap.String("detail", w.Detail),
			)
		}
	}
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
