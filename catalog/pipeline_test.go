package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abirabdullahs/smart-canteen-client/models"
	"github.com/abirabdullahs/smart-canteen-client/utils"
)

func sampleCatalog() []models.Product {
	return []models.Product{
		{Name: "Paratha", Description: "Flaky flatbread", Category: "breakfast", Price: "৳20", Rating: 4.2},
		{Name: "Beef Tehari", Description: "Spiced rice with beef", Category: "lunch", Price: 160.0, Rating: 4.8},
		{Name: "Singara", Description: "Potato filled pastry", Category: "snacks", Price: "৳15", Rating: 4.0},
		{Name: "Mango Lassi", Description: "Yogurt drink", Category: "drinks", Price: "৳80", Rating: 4.5},
		{Name: "Borhani", Description: "Spiced yogurt drink", Category: "drinks", Price: 60.0, Rating: 4.5},
		{Name: "Chicken Khichuri", Description: "Comfort rice", Category: "lunch", Price: "৳120", Rating: 4.8},
	}
}

func TestFilterByCategory(t *testing.T) {
	got := Filter{Category: "drinks"}.Apply(sampleCatalog())
	require.NotEmpty(t, got)
	for _, p := range got {
		assert.Equal(t, "drinks", p.Category)
	}
	assert.Len(t, got, 2)
}

func TestCategoryAllKeepsEverything(t *testing.T) {
	src := sampleCatalog()
	assert.Len(t, Filter{Category: CategoryAll}.Apply(src), len(src))
	assert.Len(t, Filter{}.Apply(src), len(src))
}

func TestSearchMatchesNameAndDescription(t *testing.T) {
	src := sampleCatalog()

	byName := Filter{Search: "lassi"}.Apply(src)
	require.Len(t, byName, 1)
	assert.Equal(t, "Mango Lassi", byName[0].Name)

	byDescription := Filter{Search: "yogurt"}.Apply(src)
	assert.Len(t, byDescription, 2)
}

func TestSearchWithNoMatchesYieldsEmptyList(t *testing.T) {
	got := Filter{Search: "pizza"}.Apply(sampleCatalog())
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestPriceBrackets(t *testing.T) {
	src := sampleCatalog()

	budget := Filter{PriceRange: PriceBudget}.Apply(src)
	require.NotEmpty(t, budget)
	for _, p := range budget {
		assert.LessOrEqual(t, utils.NormalizePrice(p.Price), int64(50))
	}

	medium := Filter{PriceRange: PriceMedium}.Apply(src)
	require.NotEmpty(t, medium)
	for _, p := range medium {
		price := utils.NormalizePrice(p.Price)
		assert.GreaterOrEqual(t, price, int64(51))
		assert.LessOrEqual(t, price, int64(150))
	}
	premium := Filter{PriceRange: PricePremium}.Apply(src)
	require.Len(t, premium, 1)
	assert.Equal(t, "Beef Tehari", premium[0].Name)
}

func TestSortPriceLowIsNonDecreasing(t *testing.T) {
	got := Filter{SortBy: SortPriceLow}.Apply(sampleCatalog())
	for i := 1; i < len(got); i++ {
		assert.LessOrEqual(t,
			utils.NormalizePrice(got[i-1].Price),
			utils.NormalizePrice(got[i].Price))
	}
}

func TestSortPriceHighIsNonIncreasing(t *testing.T) {
	got := Filter{SortBy: SortPriceHigh}.Apply(sampleCatalog())
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t,
			utils.NormalizePrice(got[i-1].Price),
			utils.NormalizePrice(got[i].Price))
	}
}

func TestRatingSortIsStableOnTies(t *testing.T) {
	got := Filter{SortBy: SortRating}.Apply(sampleCatalog())
	require.Len(t, got, 6)
	// Beef Tehari and Chicken Khichuri tie at 4.8 and keep source order,
	// as do the two 4.5-rated drinks.
	assert.Equal(t, "Beef Tehari", got[0].Name)
	assert.Equal(t, "Chicken Khichuri", got[1].Name)
	assert.Equal(t, "Mango Lassi", got[2].Name)
	assert.Equal(t, "Borhani", got[3].Name)
}

func TestCombinedSelectors(t *testing.T) {
	got := Filter{
		Category:   "lunch",
		PriceRange: PriceMedium,
		SortBy:     SortPriceLow,
	}.Apply(sampleCatalog())
	require.Len(t, got, 1)
	assert.Equal(t, "Chicken Khichuri", got[0].Name)
}

func TestApplyDoesNotMutateSource(t *testing.T) {
	src := sampleCatalog()
	first := src[0].Name
	Filter{SortBy: SortPriceHigh}.Apply(src)
	assert.Equal(t, first, src[0].Name)
}
