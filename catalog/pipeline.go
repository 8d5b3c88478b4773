// Package catalog derives the displayed product list from the full
// backend catalog and the user's current selectors.
package catalog

import (
	"math"
	"sort"
	"strings"

	"github.com/abirabdullahs/smart-canteen-client/models"
	"github.com/abirabdullahs/smart-canteen-client/utils"
)

// Sort keys. Popular and rating both order by rating descending.
const (
	SortPopular   = "popular"
	SortRating    = "rating"
	SortPriceLow  = "price-low"
	SortPriceHigh = "price-high"
)

// Price bracket ids, matched against normalized whole-unit prices.
const (
	PriceAll     = "all"
	PriceBudget  = "budget"  // 0-50
	PriceMedium  = "medium"  // 51-150
	PricePremium = "premium" // 151+
)

// CategoryAll disables category filtering.
const CategoryAll = "all"

type priceBracket struct {
	min int64
	max int64
}

var priceBrackets = map[string]priceBracket{
	PriceAll:     {0, math.MaxInt64},
	PriceBudget:  {0, 50},
	PriceMedium:  {51, 150},
	PricePremium: {151, math.MaxInt64},
}

// Filter holds the four independent selectors of the catalog page.
// Zero values mean "no restriction".
type Filter struct {
	Category   string
	Search     string
	PriceRange string
	SortBy     string
}

// Apply produces the filtered-then-sorted view of products. The input
// slice is never mutated; ties under the sort key keep their prior
// relative order. An empty result is a valid display state.
func (f Filter) Apply(products []models.Product) []models.Product {
	result := make([]models.Product, 0, len(products))

	search := strings.ToLower(strings.TrimSpace(f.Search))
	bracket, hasBracket := priceBrackets[f.PriceRange]

	for _, p := range products {
		if f.Category != "" && f.Category != CategoryAll && p.Category != f.Category {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.Description), search) {
			continue
		}
		if hasBracket {
			price := utils.NormalizePrice(p.Price)
			if price < bracket.min || price > bracket.max {
				continue
			}
		}
		result = append(result, p)
	}

	switch f.SortBy {
	case SortPopular, SortRating:
		sort.SliceStable(result, func(i, j int) bool {
			return result[i].Rating > result[j].Rating
		})
	case SortPriceLow:
		sort.SliceStable(result, func(i, j int) bool {
			return utils.NormalizePrice(result[i].Price) < utils.NormalizePrice(result[j].Price)
		})
	case SortPriceHigh:
		sort.SliceStable(result, func(i, j int) bool {
			return utils.NormalizePrice(result[i].Price) > utils.NormalizePrice(result[j].Price)
		})
	}

	return result
}
