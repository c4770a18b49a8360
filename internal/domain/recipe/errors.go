package recipe

import "errors"

// Domain errors for recipe operations

var (
	// Entity validation errors, checked in this order
	ErrTitleRequired   = errors.New("recipe title is required")
	ErrNoIngredients   = errors.New("recipe must have at least one ingredient")
	ErrNoInstructions  = errors.New("recipe must have at least one instruction")
	ErrNegativeTime    = errors.New("prep and cook times must not be negative")
	ErrInvalidServings = errors.New("servings must be greater than 0")

	ErrRecipeNotFound = errors.New("recipe not found")
)

// IsValidationError reports whether err is one of the entity validation errors
func IsValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrTitleRequired),
		errors.Is(err, ErrNoIngredients),
		errors.Is(err, ErrNoInstructions),
		errors.Is(err, ErrNegativeTime),
		errors.Is(err, ErrInvalidServings):
		return true
	}
	return false
}
