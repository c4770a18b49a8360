package mealplan

import "errors"

var (
	ErrInvalidDay  = errors.New("day must be a weekday name from Monday to Sunday")
	ErrInvalidMeal = errors.New("meal must be breakfast, lunch or dinner")

	ErrDuplicateSlot = errors.New("slot is named more than once")
)
