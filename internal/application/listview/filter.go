// Package listview filters and sorts a recipe collection that is already in
// memory. Every function is pure: inputs are never modified and nothing
// touches storage.
package listview

import (
	"sort"
	"strings"

	"github.com/alchemorsel/recipebox/internal/domain/recipe"
)

// AllSources is the source filter value that matches every recipe
const AllSources = "all"

// SortKey names an ordering of the list
type SortKey string

const (
	SortNewest   SortKey = "newest"
	SortOldest   SortKey = "oldest"
	SortNameAsc  SortKey = "name-asc"
	SortNameDesc SortKey = "name-desc"
)

// Query combines the list controls. Zero values disable a control.
type Query struct {
	Search        string
	Source        string
	FavoritesOnly bool
	Sort          SortKey
}

// FilterBySearch keeps recipes whose title, any ingredient or any tag
// contains term, ignoring case. A blank term returns the input.
func FilterBySearch(recipes []*recipe.Recipe, term string) []*recipe.Recipe {
	needle := strings.ToLower(strings.TrimSpace(term))
	if needle == "" {
		return recipes
	}
	return filter(recipes, func(r *recipe.Recipe) bool {
		if strings.Contains(strings.ToLower(r.Title), needle) {
			return true
		}
		return anyContains(r.Ingredients, needle) || anyContains(r.Tags, needle)
	})
}

// FilterBySource keeps recipes whose source equals source exactly. The empty
// string and AllSources return the input.
func FilterBySource(recipes []*recipe.Recipe, source string) []*recipe.Recipe {
	if source == "" || source == AllSources {
		return recipes
	}
	return filter(recipes, func(r *recipe.Recipe) bool {
		return r.Source == source
	})
}

// FilterByFavorite keeps favorite recipes
func FilterByFavorite(recipes []*recipe.Recipe) []*recipe.Recipe {
	return filter(recipes, func(r *recipe.Recipe) bool {
		return r.Favorite
	})
}

// Sort returns a new slice ordered by key. The sort is stable. An unknown key
// returns a copy in input order.
func Sort(recipes []*recipe.Recipe, key SortKey) []*recipe.Recipe {
	out := make([]*recipe.Recipe, len(recipes))
	copy(out, recipes)

	var less func(a, b *recipe.Recipe) bool
	switch key {
	case SortNewest:
		less = func(a, b *recipe.Recipe) bool { return compareCreation(a, b) > 0 }
	case SortOldest:
		less = func(a, b *recipe.Recipe) bool { return compareCreation(a, b) < 0 }
	case SortNameAsc:
		less = func(a, b *recipe.Recipe) bool { return a.Title < b.Title }
	case SortNameDesc:
		less = func(a, b *recipe.Recipe) bool { return a.Title > b.Title }
	default:
		return out
	}

	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

// Apply runs search, source and favorite filters, then sorts the result
func Apply(recipes []*recipe.Recipe, q Query) []*recipe.Recipe {
	result := FilterBySearch(recipes, q.Search)
	result = FilterBySource(result, q.Source)
	if q.FavoritesOnly {
		result = FilterByFavorite(result)
	}
	return Sort(result, q.Sort)
}

// compareCreation orders by creation time, then by id
func compareCreation(a, b *recipe.Recipe) int {
	switch {
	case a.CreatedAt.Before(b.CreatedAt):
		return -1
	case a.CreatedAt.After(b.CreatedAt):
		return 1
	}
	return recipe.CompareIDs(a.ID, b.ID)
}

func filter(recipes []*recipe.Recipe, keep func(*recipe.Recipe) bool) []*recipe.Recipe {
	out := make([]*recipe.Recipe, 0, len(recipes))
	for _, r := range recipes {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

func anyContains(values []string, needle string) bool {
	for _, v := range values {
		if strings.Contains(strings.ToLower(v), needle) {
			return true
		}
	}
	return false
}
