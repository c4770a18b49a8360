package mealplan

import "time"

// SlotChangedEvent is raised when a single slot is assigned or cleared. A nil
// Recipe means the slot was cleared.
type SlotChangedEvent struct {
	Day       Day        `json:"day"`
	Meal      Meal       `json:"meal"`
	Recipe    *RecipeRef `json:"recipe"`
	ChangedAt time.Time  `json:"changedAt"`
}

func (e SlotChangedEvent) EventName() string {
	return "mealplan.slot.changed"
}

func (e SlotChangedEvent) OccurredAt() time.Time {
	return e.ChangedAt
}

// PlanReplacedEvent is raised when the whole plan is cleared or replaced
type PlanReplacedEvent struct {
	Filled     int       `json:"filled"`
	ReplacedAt time.Time `json:"replacedAt"`
}

func (e PlanReplacedEvent) EventName() string {
	return "mealplan.replaced"
}

func (e PlanReplacedEvent) OccurredAt() time.Time {
	return e.ReplacedAt
}
