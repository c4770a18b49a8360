// Package handlers provides HTTP handlers for the REST API
package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/alchemorsel/recipebox/internal/application/listview"
	"github.com/alchemorsel/recipebox/internal/domain/recipe"
	"github.com/alchemorsel/recipebox/internal/infrastructure/http/response"
	"github.com/alchemorsel/recipebox/internal/ports/inbound"
	apperrors "github.com/alchemorsel/recipebox/pkg/errors"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// RecipeHandlers handles the recipe endpoints
type RecipeHandlers struct {
	service   inbound.RecipeService
	validator *RequestValidator
	logger    *zap.Logger
}

// NewRecipeHandlers creates a new recipe handlers instance
func NewRecipeHandlers(service inbound.RecipeService, validator *RequestValidator, logger *zap.Logger) *RecipeHandlers {
	return &RecipeHandlers{
		service:   service,
		validator: validator,
		logger:    logger.Named("recipe-handlers"),
	}
}

// Routes mounts the recipe endpoints on r
func (h *RecipeHandlers) Routes(r chi.Router) {
	r.Get("/", h.ListRecipes)
	r.Post("/", h.CreateRecipe)
	r.Get("/{id}", h.GetRecipe)
	r.Patch("/{id}", h.UpdateRecipe)
	r.Delete("/{id}", h.DeleteRecipe)
	r.Post("/{id}/favorite", h.ToggleFavorite)
	r.Get("/{id}/healthier", h.PreviewHealthier)
	r.Post("/{id}/healthier", h.SaveHealthier)
}

type recipeRequest struct {
	Title        string   `json:"title" validate:"max=200"`
	Description  string   `json:"description" validate:"max=2000"`
	PrepTime     int      `json:"prepTime"`
	CookTime     int      `json:"cookTime"`
	Servings     int      `json:"servings"`
	Ingredients  []string `json:"ingredients" validate:"max=200,dive,max=500"`
	Instructions []string `json:"instructions" validate:"max=200,dive,max=2000"`
	Tags         []string `json:"tags" validate:"max=50,dive,max=50"`
	Source       string   `json:"source" validate:"max=100"`
	SourceURL    string   `json:"sourceUrl" validate:"omitempty,url"`
	Notes        string   `json:"notes" validate:"max=5000"`
	Favorite     bool     `json:"favorite"`
	ThumbnailURL string   `json:"thumbnailUrl"`
	Image        string   `json:"image"`
}

func (req recipeRequest) draft() recipe.Draft {
	return recipe.Draft{
		Title:        req.Title,
		Description:  req.Description,
		PrepTime:     req.PrepTime,
		CookTime:     req.CookTime,
		Servings:     req.Servings,
		Ingredients:  req.Ingredients,
		Instructions: req.Instructions,
		Tags:         req.Tags,
		Source:       req.Source,
		SourceURL:    req.SourceURL,
		Notes:        req.Notes,
		Favorite:     req.Favorite,
		ThumbnailURL: req.ThumbnailURL,
		Image:        req.Image,
	}
}

type patchRequest struct {
	Title        *string  `json:"title" validate:"omitempty,max=200"`
	Description  *string  `json:"description" validate:"omitempty,max=2000"`
	PrepTime     *int     `json:"prepTime"`
	CookTime     *int     `json:"cookTime"`
	Servings     *int     `json:"servings"`
	Ingredients  []string `json:"ingredients" validate:"omitempty,max=200,dive,max=500"`
	Instructions []string `json:"instructions" validate:"omitempty,max=200,dive,max=2000"`
	Tags         []string `json:"tags" validate:"omitempty,max=50,dive,max=50"`
	Source       *string  `json:"source" validate:"omitempty,max=100"`
	SourceURL    *string  `json:"sourceUrl" validate:"omitempty,url"`
	Notes        *string  `json:"notes" validate:"omitempty,max=5000"`
	Favorite     *bool    `json:"favorite"`
}

func (req patchRequest) patch() recipe.Patch {
	return recipe.Patch{
		Title:        req.Title,
		Description:  req.Description,
		PrepTime:     req.PrepTime,
		CookTime:     req.CookTime,
		Servings:     req.Servings,
		Ingredients:  req.Ingredients,
		Instructions: req.Instructions,
		Tags:         req.Tags,
		Source:       req.Source,
		SourceURL:    req.SourceURL,
		Notes:        req.Notes,
		Favorite:     req.Favorite,
	}
}

type listQuery struct {
	Search   string `json:"search" validate:"max=200"`
	Source   string `json:"source" validate:"max=100"`
	Favorite bool   `json:"favorite"`
	Sort     string `json:"sort" validate:"omitempty,oneof=newest oldest name-asc name-desc"`
}

// ListRecipes handles GET /api/v1/recipes
func (h *RecipeHandlers) ListRecipes(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	q := listQuery{
		Search: values.Get("search"),
		Source: values.Get("source"),
		Sort:   values.Get("sort"),
	}
	if raw := values.Get("favorite"); raw != "" {
		favorite, err := strconv.ParseBool(raw)
		if err != nil {
			response.Error(w, r, h.logger, apperrors.NewValidationError("favorite must be true or false"))
			return
		}
		q.Favorite = favorite
	}
	if err := h.validator.Struct(q); err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	recipes, err := h.service.List(r.Context())
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	view := listview.Apply(recipes, listview.Query{
		Search:        q.Search,
		Source:        q.Source,
		FavoritesOnly: q.Favorite,
		Sort:          listview.SortKey(q.Sort),
	})
	if view == nil {
		view = []*recipe.Recipe{}
	}
	response.OK(w, r, h.logger, http.StatusOK, view, "")
}

// CreateRecipe handles POST /api/v1/recipes
func (h *RecipeHandlers) CreateRecipe(w http.ResponseWriter, r *http.Request) {
	var req recipeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	created, err := h.service.Create(r.Context(), req.draft())
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	response.OK(w, r, h.logger, http.StatusCreated, created, "Recipe created successfully")
}

// GetRecipe handles GET /api/v1/recipes/{id}
func (h *RecipeHandlers) GetRecipe(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	found, ok, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	if !ok {
		response.Error(w, r, h.logger, apperrors.NewRecipeNotFoundError(id))
		return
	}
	response.OK(w, r, h.logger, http.StatusOK, found, "")
}

// UpdateRecipe handles PATCH /api/v1/recipes/{id}
func (h *RecipeHandlers) UpdateRecipe(w http.ResponseWriter, r *http.Request) {
	var req patchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	updated, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), req.patch())
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	response.OK(w, r, h.logger, http.StatusOK, updated, "Recipe updated successfully")
}

// DeleteRecipe handles DELETE /api/v1/recipes/{id}
func (h *RecipeHandlers) DeleteRecipe(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	response.OK(w, r, h.logger, http.StatusOK, nil, "Recipe deleted successfully")
}

// ToggleFavorite handles POST /api/v1/recipes/{id}/favorite
func (h *RecipeHandlers) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	favorite, err := h.service.ToggleFavorite(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	response.OK(w, r, h.logger, http.StatusOK, map[string]bool{"favorite": favorite}, "")
}

// PreviewHealthier handles GET /api/v1/recipes/{id}/healthier
func (h *RecipeHandlers) PreviewHealthier(w http.ResponseWriter, r *http.Request) {
	variant, err := h.service.PreviewHealthierVariant(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	response.OK(w, r, h.logger, http.StatusOK, variant, "")
}

// SaveHealthier handles POST /api/v1/recipes/{id}/healthier?replace=
func (h *RecipeHandlers) SaveHealthier(w http.ResponseWriter, r *http.Request) {
	replace := false
	if raw := strings.TrimSpace(r.URL.Query().Get("replace")); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			response.Error(w, r, h.logger, apperrors.NewValidationError("replace must be true or false"))
			return
		}
		replace = parsed
	}

	saved, err := h.service.SaveHealthierVariant(r.Context(), chi.URLParam(r, "id"), replace)
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	if replace {
		response.OK(w, r, h.logger, http.StatusOK, saved, "Recipe replaced with healthier version")
		return
	}
	response.OK(w, r, h.logger, http.StatusCreated, saved, "Healthier version saved as a new recipe")
}
