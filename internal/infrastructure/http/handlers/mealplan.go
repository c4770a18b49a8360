package handlers

import (
	"net/http"

	"github.com/alchemorsel/recipebox/internal/domain/mealplan"
	"github.com/alchemorsel/recipebox/internal/infrastructure/http/response"
	"github.com/alchemorsel/recipebox/internal/ports/inbound"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// MealPlanHandlers handles the meal plan endpoints
type MealPlanHandlers struct {
	service   inbound.MealPlanService
	validator *RequestValidator
	logger    *zap.Logger
}

// NewMealPlanHandlers creates a new meal plan handlers instance
func NewMealPlanHandlers(service inbound.MealPlanService, validator *RequestValidator, logger *zap.Logger) *MealPlanHandlers {
	return &MealPlanHandlers{
		service:   service,
		validator: validator,
		logger:    logger.Named("mealplan-handlers"),
	}
}

// Routes mounts the meal plan endpoints on r
func (h *MealPlanHandlers) Routes(r chi.Router) {
	r.Get("/", h.GetPlan)
	r.Delete("/", h.ClearWeek)
	r.Get("/dinners", h.Dinners)
	r.Post("/suggestions", h.Suggest)
	r.Post("/suggestions/apply", h.ApplySuggestion)
	r.Put("/{day}/{meal}", h.Assign)
	r.Delete("/{day}/{meal}", h.Remove)
}

type assignRequest struct {
	RecipeID string `json:"recipeId" validate:"required,max=64"`
}

// GetPlan handles GET /api/v1/mealplan
func (h *MealPlanHandlers) GetPlan(w http.ResponseWriter, r *http.Request) {
	plan, err := h.service.GetPlan(r.Context())
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	response.OK(w, r, h.logger, http.StatusOK, plan, "")
}

// Dinners handles GET /api/v1/mealplan/dinners
func (h *MealPlanHandlers) Dinners(w http.ResponseWriter, r *http.Request) {
	column, err := h.service.DinnerOnly(r.Context())
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	response.OK(w, r, h.logger, http.StatusOK, column, "")
}

// Assign handles PUT /api/v1/mealplan/{day}/{meal}
func (h *MealPlanHandlers) Assign(w http.ResponseWriter, r *http.Request) {
	var req assignRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	if err := h.service.Assign(r.Context(), chi.URLParam(r, "day"), chi.URLParam(r, "meal"), req.RecipeID); err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	response.OK(w, r, h.logger, http.StatusOK, nil, "Meal assigned")
}

// Remove handles DELETE /api/v1/mealplan/{day}/{meal}
func (h *MealPlanHandlers) Remove(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Remove(r.Context(), chi.URLParam(r, "day"), chi.URLParam(r, "meal")); err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	response.OK(w, r, h.logger, http.StatusOK, nil, "Meal removed")
}

// ClearWeek handles DELETE /api/v1/mealplan
func (h *MealPlanHandlers) ClearWeek(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ClearWeek(r.Context()); err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	response.OK(w, r, h.logger, http.StatusOK, nil, "Meal plan cleared")
}

// Suggest handles POST /api/v1/mealplan/suggestions
func (h *MealPlanHandlers) Suggest(w http.ResponseWriter, r *http.Request) {
	candidate, err := h.service.Suggest(r.Context())
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	message := ""
	if candidate.Filled() == 0 {
		message = "No recipes to suggest from"
	}
	response.OK(w, r, h.logger, http.StatusOK, candidate, message)
}

// ApplySuggestion handles POST /api/v1/mealplan/suggestions/apply
func (h *MealPlanHandlers) ApplySuggestion(w http.ResponseWriter, r *http.Request) {
	var candidate mealplan.Plan
	if err := decodeJSON(w, r, &candidate); err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	if err := h.service.ApplySuggestion(r.Context(), candidate); err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	response.OK(w, r, h.logger, http.StatusOK, nil, "Meal plan updated")
}
