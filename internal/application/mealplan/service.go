// Package mealplan provides the application layer for the weekly meal plan
package mealplan

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/alchemorsel/recipebox/internal/application/suggestion"
	"github.com/alchemorsel/recipebox/internal/domain/mealplan"
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

// MealPlanService implements the meal plan use cases. Operations are
// serialized by the service mutex, so a bulk replace never interleaves with a
// single-slot change.
type MealPlanService struct {
	mu        sync.Mutex
	plans     outbound.MealPlanStore
	recipes   outbound.RecipeStore
	generator *suggestion.Generator
	events    outbound.EventPublisher
	metrics   *monitoring.MetricsCollector
	clock     func() time.Time
	tracer    trace.Tracer
	logger    *zap.Logger
}

// Option customizes a MealPlanService
type Option func(*MealPlanService)

// WithGenerator replaces the suggestion generator
func WithGenerator(g *suggestion.Generator) Option {
	return func(s *MealPlanService) { s.generator = g }
}

// WithClock replaces the wall clock used for event timestamps
func WithClock(clock func() time.Time) Option {
	return func(s *MealPlanService) { s.clock = clock }
}

// NewMealPlanService creates a new meal plan service. events and metrics
// may be nil.
func NewMealPlanService(
	plans outbound.MealPlanStore,
	recipes outbound.RecipeStore,
	events outbound.EventPublisher,
	metrics *monitoring.MetricsCollector,
	logger *zap.Logger,
	opts ...Option,
) *MealPlanService {
	if events == nil {
		events = outbound.NopPublisher{}
	}
	s := &MealPlanService{
		plans:     plans,
		recipes:   recipes,
		generator: suggestion.NewGenerator(),
		events:    events,
		metrics:   metrics,
		clock:     time.Now,
		tracer:    otel.Tracer("recipebox/mealplan-service"),
		logger:    logger.Named("mealplan-service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ inbound.MealPlanService = (*MealPlanService)(nil)

// GetPlan returns the full week with every reference resolved against the
// recipe store. A slot pointing at a deleted recipe reads as empty; the
// stored reference itself is left alone.
func (s *MealPlanService) GetPlan(ctx context.Context) (plan mealplan.Plan, err error) {
	ctx, span := s.tracer.Start(ctx, "MealPlanService.GetPlan")
	defer func() { endSpan(span, err) }()
	ctx, logWarnings := s.collectWarnings(ctx)
	defer logWarnings()

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.resolved(ctx)
}

// DinnerOnly returns the dinner of every day, resolved like GetPlan
func (s *MealPlanService) DinnerOnly(ctx context.Context) (column []mealplan.DaySlot, err error) {
	ctx, span := s.tracer.Start(ctx, "MealPlanService.DinnerOnly")
	defer func() { endSpan(span, err) }()
	ctx, logWarnings := s.collectWarnings(ctx)
	defer logWarnings()

	s.mu.Lock()
	defer s.mu.Unlock()

	plan, err := s.resolved(ctx)
	if err != nil {
		return nil, err
	}
	return plan.Column(mealplan.Dinner), nil
}

// resolved loads the stored plan and refreshes every reference from the
// recipe collection. References to recipes that no longer exist are dropped.
func (s *MealPlanService) resolved(ctx context.Context) (mealplan.Plan, error) {
	stored, err := s.plans.Load(ctx)
	if err != nil {
		return nil, translate(err)
	}

	plan := mealplan.NewPlan()
	entries := stored.Entries()
	if len(entries) == 0 {
		return plan, nil
	}

	recipes, err := s.recipes.List(ctx)
	if err != nil {
		return nil, translate(err)
	}
	byID := make(map[string]*recipe.Recipe, len(recipes))
	for _, r := range recipes {
		byID[r.ID] = r
	}

	dangling := 0
	for _, entry := range entries {
		r, seen := byID[entry.Recipe.ID]
		if !seen {
			// List is capped, so a miss is confirmed with a direct lookup
			r, err = s.recipes.Get(ctx, entry.Recipe.ID)
			if err != nil && !errors.Is(err, recipe.ErrRecipeNotFound) {
				return nil, translate(err)
			}
			byID[entry.Recipe.ID] = r
		}
		if r == nil {
			dangling++
			continue
		}
		plan.Set(entry.Day, entry.Meal, &mealplan.RecipeRef{ID: r.ID, Title: r.Title})
	}

	if dangling > 0 {
		s.logger.Debug("Meal plan references missing recipes", zap.Int("count", dangling))
	}
	return plan, nil
}

// Assign puts a recipe in a slot, replacing whatever was there
func (s *MealPlanService) Assign(ctx context.Context, day, meal, recipeID string) (err error) {
	ctx, span := s.tracer.Start(ctx, "MealPlanService.Assign", trace.WithAttributes(
		attribute.String("slot.day", day),
		attribute.String("slot.meal", meal),
		attribute.String("recipe.id", recipeID),
	))
	defer func() { endSpan(span, err) }()
	ctx, logWarnings := s.collectWarnings(ctx)
	defer logWarnings()

	d, m, err := mealplan.ParseSlot(day, meal)
	if err != nil {
		return translate(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := s.recipes.Get(ctx, recipeID)
	if errors.Is(err, recipe.ErrRecipeNotFound) {
		return apperrors.NewRecipeNotFoundError(recipeID)
	}
	if err != nil {
		return translate(err)
	}

	ref := mealplan.RecipeRef{ID: r.ID, Title: r.Title}
	if err := s.plans.Put(ctx, d, m, ref); err != nil {
		s.logger.Error("Failed to assign meal",
			zap.String("day", string(d)),
			zap.String("meal", string(m)),
			zap.String("recipe_id", recipeID),
			zap.Error(err),
		)
		return translate(err)
	}

	s.events.Publish(ctx, mealplan.SlotChangedEvent{Day: d, Meal: m, Recipe: &ref, ChangedAt: s.clock().UTC()})
	s.logger.Info("Meal assigned",
		zap.String("day", string(d)),
		zap.String("meal", string(m)),
		zap.String("recipe_id", recipeID),
	)
	return nil
}

// Remove clears a slot. Clearing an empty slot succeeds.
func (s *MealPlanService) Remove(ctx context.Context, day, meal string) (err error) {
	ctx, span := s.tracer.Start(ctx, "MealPlanService.Remove", trace.WithAttributes(
		attribute.String("slot.day", day),
		attribute.String("slot.meal", meal),
	))
	defer func() { endSpan(span, err) }()
	ctx, logWarnings := s.collectWarnings(ctx)
	defer logWarnings()

	d, m, err := mealplan.ParseSlot(day, meal)
	if err != nil {
		return translate(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.plans.Remove(ctx, d, m); err != nil {
		return translate(err)
	}

	s.events.Publish(ctx, mealplan.SlotChangedEvent{Day: d, Meal: m, ChangedAt: s.clock().UTC()})
	return nil
}

// ClearWeek empties all 21 slots
func (s *MealPlanService) ClearWeek(ctx context.Context) (err error) {
	ctx, span := s.tracer.Start(ctx, "MealPlanService.ClearWeek")
	defer func() { endSpan(span, err) }()
	ctx, logWarnings := s.collectWarnings(ctx)
	defer logWarnings()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.plans.Clear(ctx); err != nil {
		s.logger.Error("Failed to clear meal plan", zap.Error(err))
		return translate(err)
	}

	s.events.Publish(ctx, mealplan.PlanReplacedEvent{Filled: 0, ReplacedAt: s.clock().UTC()})
	s.logger.Info("Meal plan cleared")
	return nil
}

// Suggest draws a candidate week from the saved recipes. Nothing is stored.
func (s *MealPlanService) Suggest(ctx context.Context) (plan mealplan.Plan, err error) {
	ctx, span := s.tracer.Start(ctx, "MealPlanService.Suggest")
	defer func() { endSpan(span, err) }()
	ctx, logWarnings := s.collectWarnings(ctx)
	defer logWarnings()

	s.mu.Lock()
	defer s.mu.Unlock()

	pool, err := s.recipes.List(ctx)
	if err != nil {
		return nil, translate(err)
	}

	plan = s.generator.Generate(pool)
	span.SetAttributes(attribute.Int("recipes.pool", len(pool)), attribute.Int("slots.filled", plan.Filled()))
	return plan, nil
}

// ApplySuggestion replaces the whole plan with candidate. Every key must
// name a real slot; slots with an empty recipe id are left empty.
func (s *MealPlanService) ApplySuggestion(ctx context.Context, candidate mealplan.Plan) (err error) {
	ctx, span := s.tracer.Start(ctx, "MealPlanService.ApplySuggestion")
	defer func() { endSpan(span, err) }()
	ctx, logWarnings := s.collectWarnings(ctx)
	defer logWarnings()

	plan, err := candidate.Normalize()
	if err != nil {
		return translate(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.plans.Replace(ctx, plan); err != nil {
		outcome := "failed"
		if apperrors.Is(err, apperrors.CodePartialReplace) {
			outcome = "partial"
		}
		s.metrics.PlanReplaced(outcome)
		s.logger.Error("Failed to apply meal plan suggestion", zap.String("outcome", outcome), zap.Error(err))
		return translate(err)
	}

	s.metrics.PlanReplaced("ok")
	s.events.Publish(ctx, mealplan.PlanReplacedEvent{Filled: plan.Filled(), ReplacedAt: s.clock().UTC()})
	s.logger.Info("Meal plan replaced", zap.Int("filled", plan.Filled()))
	return nil
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mealplan.ErrInvalidDay), errors.Is(err, mealplan.ErrInvalidMeal),
		errors.Is(err, mealplan.ErrDuplicateSlot):
		return apperrors.NewValidationError(err.Error()).WithCause(err)
	default:
		return apperrors.Wrap(err, "meal plan operation failed")
	}
}

// collectWarnings attaches a warning collector to ctx. The returned func logs
// the storage resets raised since, which callers further up can still read
// from the same collector.
func (s *MealPlanService) collectWarnings(ctx context.Context) (context.Context, func()) {
	ctx, collector := apperrors.WithWarnings(ctx)
	mark := collector.Len()
	return ctx, func() {
		for _, w := range collector.Since(mark) {
			s.logger.Warn("Meal plan storage was reset",
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
