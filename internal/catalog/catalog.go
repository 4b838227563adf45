// Package catalog holds the recipe browsing rules: title search, category
// filtering and the category list offered to clients.
package catalog

import (
	"strings"

	"recipe_app_echo/internal/models"
)

const (
	// AllCategory disables category filtering
	AllCategory = "All"
	// ExploreCategory is the category listed by the explore endpoint
	ExploreCategory = "Miscellaneous"
)

// DefaultCategories are offered even when no recipe uses them yet
var DefaultCategories = []string{
	"Starter",
	"Dessert",
	"Vegetarian",
	"Seafood",
	"Chicken",
	"Lamb",
	"Vegan",
	"Miscellaneous",
}

// Filter returns the recipes whose title contains query (case-insensitive,
// surrounding whitespace ignored) and whose category equals category
// (case-insensitive). An empty query matches every title; an empty category
// or "All" matches every category. Input order is preserved.
func Filter(recipes []models.Recipe, query, category string) []models.Recipe {
	q := strings.ToLower(strings.TrimSpace(query))
	cat := strings.ToLower(strings.TrimSpace(category))
	anyCategory := cat == "" || cat == strings.ToLower(AllCategory)

	out := make([]models.Recipe, 0, len(recipes))
	for _, r := range recipes {
		if q != "" && !strings.Contains(strings.ToLower(r.Title), q) {
			continue
		}
		if !anyCategory && strings.ToLower(r.Category) != cat {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Categories returns "All", the defaults, then every other non-empty category
// found in recipes in first-seen order, without duplicates
func Categories(recipes []models.Recipe) []string {
	seen := make(map[string]struct{}, len(DefaultCategories)+1)
	out := make([]string, 0, len(DefaultCategories)+1)

	add := func(c string) {
		if c == "" {
			return
		}
		if _, ok := seen[c]; ok {
			return
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}

	add(AllCategory)
	for _, c := range DefaultCategories {
		add(c)
	}
	for _, r := range recipes {
		add(r.Category)
	}
	return out
}

// Explore returns the recipes shown on the explore tab
func Explore(recipes []models.Recipe) []models.Recipe {
	return Filter(recipes, "", ExploreCategory)
}
