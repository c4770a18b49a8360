// Package mealplan models the weekly meal plan: seven days by three meals,
// each slot holding at most one recipe reference.
package mealplan

import (
	"fmt"
	"strings"
)

// Day is a weekday name
type Day string

const (
	Monday    Day = "Monday"
	Tuesday   Day = "Tuesday"
	Wednesday Day = "Wednesday"
	Thursday  Day = "Thursday"
	Friday    Day = "Friday"
	Saturday  Day = "Saturday"
	Sunday    Day = "Sunday"
)

// Days lists the days of the plan in display order
var Days = []Day{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// Meal is a meal of the day
type Meal string

const (
	Breakfast Meal = "breakfast"
	Lunch     Meal = "lunch"
	Dinner    Meal = "dinner"
)

// Meals lists the meals of a day in display order
var Meals = []Meal{Breakfast, Lunch, Dinner}

// SlotCount is the number of slots in a full plan
const SlotCount = 21

// ParseDay accepts a day name in any letter case
func ParseDay(s string) (Day, error) {
	for _, d := range Days {
		if strings.EqualFold(string(d), strings.TrimSpace(s)) {
			return d, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDay, s)
}

// ParseMeal accepts a meal name in any letter case
func ParseMeal(s string) (Meal, error) {
	for _, m := range Meals {
		if strings.EqualFold(string(m), strings.TrimSpace(s)) {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidMeal, s)
}

// ParseSlot parses both halves of a slot key
func ParseSlot(day, meal string) (Day, Meal, error) {
	d, err := ParseDay(day)
	if err != nil {
		return "", "", err
	}
	m, err := ParseMeal(meal)
	if err != nil {
		return "", "", err
	}
	return d, m, nil
}

// RecipeRef points at a recipe. Title is a display cache and may be stale.
type RecipeRef struct {
	ID    string `json:"id"`
	Title string `json:"title,omitempty"`
}

// Entry is one filled slot
type Entry struct {
	Day    Day       `json:"day"`
	Meal   Meal      `json:"meal"`
	Recipe RecipeRef `json:"recipe"`
}

// DaySlot is one day of a single-meal view
type DaySlot struct {
	Day    Day        `json:"day"`
	Recipe *RecipeRef `json:"recipe"`
}

// Plan maps every slot to an optional recipe reference. It is also the
// stored document format of the local cache.
type Plan map[Day]map[Meal]*RecipeRef

// NewPlan returns a plan with all 21 slots present and empty
func NewPlan() Plan {
	p := make(Plan, len(Days))
	for _, d := range Days {
		p[d] = make(map[Meal]*RecipeRef, len(Meals))
		for _, m := range Meals {
			p[d][m] = nil
		}
	}
	return p
}

// FromEntries builds a full plan from filled entries. Later entries for the
// same slot win.
func FromEntries(entries []Entry) Plan {
	p := NewPlan()
	for _, e := range entries {
		ref := e.Recipe
		p.Set(e.Day, e.Meal, &ref)
	}
	return p
}

// Get returns the reference stored in a slot, or nil
func (p Plan) Get(day Day, meal Meal) *RecipeRef {
	meals, ok := p[day]
	if !ok {
		return nil
	}
	return meals[meal]
}

// Set stores ref in a slot; a nil ref clears it
func (p Plan) Set(day Day, meal Meal, ref *RecipeRef) {
	meals, ok := p[day]
	if !ok {
		meals = make(map[Meal]*RecipeRef, len(Meals))
		p[day] = meals
	}
	meals[meal] = ref
}

// Entries lists the filled slots in day then meal order
func (p Plan) Entries() []Entry {
	var entries []Entry
	for _, d := range Days {
		for _, m := range Meals {
			if ref := p.Get(d, m); ref != nil {
				entries = append(entries, Entry{Day: d, Meal: m, Recipe: *ref})
			}
		}
	}
	return entries
}

// Filled counts the filled slots
func (p Plan) Filled() int {
	return len(p.Entries())
}

// Column returns one meal across the whole week
func (p Plan) Column(meal Meal) []DaySlot {
	column := make([]DaySlot, 0, len(Days))
	for _, d := range Days {
		column = append(column, DaySlot{Day: d, Recipe: p.Get(d, meal)})
	}
	return column
}

// Normalize validates every key of p, accepting any letter case, and
// returns a full plan with canonical keys. A slot with an empty recipe id is
// treated as empty. Two keys naming the same slot, such as "Monday" and
// "monday", are rejected because either could win.
func (p Plan) Normalize() (Plan, error) {
	type slot struct {
		day  Day
		meal Meal
	}

	out := NewPlan()
	seen := make(map[slot]string, SlotCount)
	for rawDay, meals := range p {
		day, err := ParseDay(string(rawDay))
		if err != nil {
			return nil, err
		}
		for rawMeal, ref := range meals {
			meal, err := ParseMeal(string(rawMeal))
			if err != nil {
				return nil, err
			}
			key := string(rawDay) + "." + string(rawMeal)
			if prev, dup := seen[slot{day, meal}]; dup {
				return nil, fmt.Errorf("%w: %q and %q", ErrDuplicateSlot, prev, key)
			}
			seen[slot{day, meal}] = key

			if ref == nil || strings.TrimSpace(ref.ID) == "" {
				continue
			}
			copied := *ref
			out.Set(day, meal, &copied)
		}
	}
	return out, nil
}
