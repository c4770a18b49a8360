// Package suggestion proposes a full weekly meal plan from the saved recipes
package suggestion

import (
	"math/rand"
	"sync"
	"time"

	"github.com/alchemorsel/recipebox/internal/domain/mealplan"
	"github.com/alchemorsel/recipebox/internal/domain/recipe"
)

// Generator picks recipes at random without replacement, refilling the pool
// from the full collection whenever it runs dry, so every slot is filled
// as long as there is at least one recipe
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewGenerator creates a generator seeded from the clock
func NewGenerator() *Generator {
	return NewGeneratorWithRand(rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewGeneratorWithRand creates a generator drawing from rng
func NewGeneratorWithRand(rng *rand.Rand) *Generator {
	return &Generator{rng: rng}
}

// Generate fills the week in day then meal order. Nil entries are skipped;
// a pool without any recipe yields an empty plan.
func (g *Generator) Generate(pool []*recipe.Recipe) mealplan.Plan {
	g.mu.Lock()
	defer g.mu.Unlock()

	plan := mealplan.NewPlan()
	working := refill(nil, pool)
	if len(working) == 0 {
		return plan
	}

	for _, day := range mealplan.Days {
		for _, meal := range mealplan.Meals {
			i := g.rng.Intn(len(working))
			picked := working[i]
			working = append(working[:i], working[i+1:]...)
			plan.Set(day, meal, &mealplan.RecipeRef{ID: picked.ID, Title: picked.Title})

			if len(working) == 0 {
				working = refill(working, pool)
			}
		}
	}
	return plan
}

func refill(working, pool []*recipe.Recipe) []*recipe.Recipe {
	for _, r := range pool {
		if r != nil {
			working = append(working, r)
		}
	}
	return working
}
