// Package recipe contains the Recipe entity, its validation rules and the
// healthier-variant transform.
package recipe

import (
	"strings"
	"time"
)

// DefaultSource is assigned to recipes created without a source
const DefaultSource = "manual"

// Recipe is a stored recipe. ThumbnailURL and Image are accepted from
// imports but are never persisted; see StripMedia.
type Recipe struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	PrepTime     int       `json:"prepTime"`
	CookTime     int       `json:"cookTime"`
	Servings     int       `json:"servings"`
	Ingredients  []string  `json:"ingredients"`
	Instructions []string  `json:"instructions"`
	Tags         []string  `json:"tags,omitempty"`
	Source       string    `json:"source,omitempty"`
	SourceURL    string    `json:"sourceUrl,omitempty"`
	Favorite     bool      `json:"favorite"`
	Notes        string    `json:"notes,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`

	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
	Image        string `json:"image,omitempty"`
}

// Draft is the user input a Recipe is created from
type Draft struct {
	Title        string
	Description  string
	PrepTime     int
	CookTime     int
	Servings     int
	Ingredients  []string
	Instructions []string
	Tags         []string
	Source       string
	SourceURL    string
	Notes        string
	Favorite     bool
	ThumbnailURL string
	Image        string
}

// Patch holds the fields to merge into an existing recipe. Nil fields are
// left unchanged.
type Patch struct {
	Title        *string
	Description  *string
	PrepTime     *int
	CookTime     *int
	Servings     *int
	Ingredients  []string
	Instructions []string
	Tags         []string
	Source       *string
	SourceURL    *string
	Notes        *string
	Favorite     *bool
}

// NewRecipe validates draft and builds a recipe with the given id and
// creation time. Blank ingredient and instruction lines are dropped before
// validation.
func NewRecipe(id string, draft Draft, now time.Time) (*Recipe, error) {
	servings := draft.Servings
	if servings == 0 {
		servings = 1
	}
	r := &Recipe{
		ID:           id,
		Title:        strings.TrimSpace(draft.Title),
		Description:  strings.TrimSpace(draft.Description),
		PrepTime:     draft.PrepTime,
		CookTime:     draft.CookTime,
		Servings:     servings,
		Ingredients:  CompactLines(draft.Ingredients),
		Instructions: CompactLines(draft.Instructions),
		Tags:         compactTags(draft.Tags),
		Source:       sourceOrDefault(draft.Source),
		SourceURL:    strings.TrimSpace(draft.SourceURL),
		Favorite:     draft.Favorite,
		Notes:        strings.TrimSpace(draft.Notes),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// Validate checks the entity invariants and returns the first one violated
func (r *Recipe) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return ErrTitleRequired
	}
	if len(CompactLines(r.Ingredients)) == 0 {
		return ErrNoIngredients
	}
	if len(CompactLines(r.Instructions)) == 0 {
		return ErrNoInstructions
	}
	if r.PrepTime < 0 || r.CookTime < 0 {
		return ErrNegativeTime
	}
	if r.Servings <= 0 {
		return ErrInvalidServings
	}
	return nil
}

// Apply returns a copy of r with patch merged in and UpdatedAt set to now.
// The result is validated; r is never modified.
func (r *Recipe) Apply(patch Patch, now time.Time) (*Recipe, error) {
	merged := r.Clone()

	if patch.Title != nil {
		merged.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Description != nil {
		merged.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.PrepTime != nil {
		merged.PrepTime = *patch.PrepTime
	}
	if patch.CookTime != nil {
		merged.CookTime = *patch.CookTime
	}
	if patch.Servings != nil {
		merged.Servings = *patch.Servings
	}
	if patch.Ingredients != nil {
		merged.Ingredients = CompactLines(patch.Ingredients)
	}
	if patch.Instructions != nil {
		merged.Instructions = CompactLines(patch.Instructions)
	}
	if patch.Tags != nil {
		merged.Tags = compactTags(patch.Tags)
	}
	if patch.Source != nil {
		merged.Source = sourceOrDefault(*patch.Source)
	}
	if patch.SourceURL != nil {
		merged.SourceURL = strings.TrimSpace(*patch.SourceURL)
	}
	if patch.Notes != nil {
		merged.Notes = strings.TrimSpace(*patch.Notes)
	}
	if patch.Favorite != nil {
		merged.Favorite = *patch.Favorite
	}
	merged.UpdatedAt = now

	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return merged, nil
}

// Clone returns a deep copy
func (r *Recipe) Clone() *Recipe {
	c := *r
	c.Ingredients = cloneStrings(r.Ingredients)
	c.Instructions = cloneStrings(r.Instructions)
	c.Tags = cloneStrings(r.Tags)
	return &c
}

// StripMedia removes embedded image payloads. Returns true if anything was
// removed.
func (r *Recipe) StripMedia() bool {
	stripped := r.ThumbnailURL != "" || r.Image != ""
	r.ThumbnailURL = ""
	r.Image = ""
	return stripped
}

// CompactLines trims every entry and drops the blank ones
func CompactLines(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// compactTags is CompactLines for the optional tag list: no tags is nil, the
// same value a stored recipe without tags decodes to
func compactTags(tags []string) []string {
	out := CompactLines(tags)
	if len(out) == 0 {
		return nil
	}
	return out
}

func sourceOrDefault(source string) string {
	if trimmed := strings.TrimSpace(source); trimmed != "" {
		return trimmed
	}
	return DefaultSource
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
