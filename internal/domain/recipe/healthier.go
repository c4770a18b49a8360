package recipe

import (
	"regexp"
	"strings"
)

const (
	healthyTitleSuffix = " (Healthy Version)"
	healthyDescription = "Healthier version with smart ingredient swaps"
)

type swap struct {
	match       string
	pattern     *regexp.Regexp
	replacement string
}

func newSwap(match, replacement string) swap {
	return swap{
		match:       match,
		pattern:     regexp.MustCompile("(?i)" + regexp.QuoteMeta(match)),
		replacement: replacement,
	}
}

// Only the first matching ingredient swap is applied to a line.
var ingredientSwaps = []swap{
	newSwap("pasta", "zucchini noodles"),
	newSwap("rice", "cauliflower rice"),
	newSwap("burger bun", "lettuce wrap"),
	newSwap("fried", "baked"),
	newSwap("butter", "olive oil"),
	newSwap("sugar", "honey (reduced amount)"),
}

var instructionSwaps = []swap{
	newSwap("fry", "bake or grill"),
}

// DeriveHealthierVariant returns a copy of r with ingredient and instruction
// swaps applied, a new id, a decorated title and a replaced description. r
// is not modified and nothing is persisted.
func DeriveHealthierVariant(r Recipe, newID string) Recipe {
	variant := *r.Clone()
	variant.ID = newID
	variant.Title = r.Title + healthyTitleSuffix
	variant.Description = healthyDescription
	variant.Ingredients = applySwaps(r.Ingredients, ingredientSwaps)
	variant.Instructions = applySwaps(r.Instructions, instructionSwaps)
	return variant
}

func applySwaps(lines []string, swaps []swap) []string {
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = line
		lower := strings.ToLower(line)
		for _, s := range swaps {
			if strings.Contains(lower, s.match) {
				out[i] = s.pattern.ReplaceAllLiteralString(line, s.replacement)
				break
			}
		}
	}
	return out
}
