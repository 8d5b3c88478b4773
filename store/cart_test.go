package store

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abirabdullahs/smart-canteen-client/models"
)

func openTestCart(t *testing.T) (*Cart, *MemoryStorage) {
	t.Helper()
	storage := NewMemoryStorage()
	cart, err := Open(context.Background(), storage, "user-1")
	require.NoError(t, err)
	return cart, storage
}

func TestAddToCartMergesByID(t *testing.T) {
	cart, _ := openTestCart(t)
	ctx := context.Background()

	item := models.CartItem{ProductID: "a", Name: "Chicken Khichuri", Price: "৳100"}
	require.NoError(t, cart.AddToCart(ctx, item))
	require.NoError(t, cart.AddToCart(ctx, item))

	items := cart.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, 2, cart.GetCartCount())
}

func TestRemoveFromCartMissingIDIsNoop(t *testing.T) {
	cart, _ := openTestCart(t)
	ctx := context.Background()

	require.NoError(t, cart.AddToCart(ctx, models.CartItem{ProductID: "a", Price: 50}))
	require.NoError(t, cart.RemoveFromCart(ctx, "does-not-exist"))

	assert.Len(t, cart.Items(), 1)

	require.NoError(t, cart.RemoveFromCart(ctx, "a"))
	assert.Empty(t, cart.Items())
}

func TestUpdateQuantityClampsToOne(t *testing.T) {
	cart, _ := openTestCart(t)
	ctx := context.Background()

	require.NoError(t, cart.AddToCart(ctx, models.CartItem{ProductID: "a", Price: 50}))

	require.NoError(t, cart.UpdateQuantity(ctx, "a", 0))
	items := cart.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].Quantity)

	require.NoError(t, cart.UpdateQuantity(ctx, "a", -3))
	assert.Equal(t, 1, cart.Items()[0].Quantity)

	require.NoError(t, cart.UpdateQuantity(ctx, "a", 4))
	assert.Equal(t, 4, cart.Items()[0].Quantity)

	// Unknown id leaves the cart untouched.
	require.NoError(t, cart.UpdateQuantity(ctx, "b", 7))
	assert.Len(t, cart.Items(), 1)
}

func TestClearCartZeroesTotal(t *testing.T) {
	cart, _ := openTestCart(t)
	ctx := context.Background()

	require.NoError(t, cart.AddToCart(ctx, models.CartItem{ProductID: "a", Price: "৳100"}))
	require.NoError(t, cart.ClearCart(ctx))

	assert.Empty(t, cart.Items())
	assert.EqualValues(t, 0, cart.GetTotal())
	assert.Equal(t, 0, cart.GetCartCount())
}

func TestTotalsWithMixedPriceRepresentations(t *testing.T) {
	cart, _ := openTestCart(t)
	ctx := context.Background()

	require.NoError(t, cart.AddToCart(ctx, models.CartItem{ProductID: "a", Price: "৳100"}))
	require.NoError(t, cart.UpdateQuantity(ctx, "a", 2))
	require.NoError(t, cart.AddToCart(ctx, models.CartItem{ProductID: "b", Price: 50}))

	assert.EqualValues(t, 250, cart.GetTotal())
	assert.Equal(t, 3, cart.GetCartCount())
}

func TestCartSurvivesReload(t *testing.T) {
	cart, storage := openTestCart(t)
	ctx := context.Background()

	require.NoError(t, cart.AddToCart(ctx, models.CartItem{ProductID: "a", Name: "Singara", Price: "৳15"}))
	require.NoError(t, cart.AddToCart(ctx, models.CartItem{ProductID: "a", Price: "৳15"}))
	require.NoError(t, cart.AddToCart(ctx, models.CartItem{ProductID: "b", Name: "Mango Lassi", Price: 80}))

	reloaded, err := Open(ctx, storage, "user-1")
	require.NoError(t, err)
	assert.Equal(t, cart.GetTotal(), reloaded.GetTotal())
	assert.Equal(t, cart.GetCartCount(), reloaded.GetCartCount())

	items := reloaded.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "a", items[0].ProductID)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, "b", items[1].ProductID)

	// Carts are namespaced per user.
	other, err := Open(ctx, storage, "user-2")
	require.NoError(t, err)
	assert.Empty(t, other.Items())
}

func TestConcurrentRequestsDoNotLoseAdds(t *testing.T) {
	storage := NewMemoryStorage()
	ctx := context.Background()

	// Each iteration opens a fresh cart the way one HTTP request does;
	// the adds from both goroutines must all land.
	const addsPerWorker = 25
	var wg sync.WaitGroup
	for w := 0; w < 2; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < addsPerWorker; i++ {
				cart, err := Open(ctx, storage, "user-3")
				if !assert.NoError(t, err) {
					return
				}
				assert.NoError(t, cart.AddToCart(ctx, models.CartItem{ProductID: "a", Price: "৳100"}))
			}
		}()
	}
	wg.Wait()

	final, err := Open(ctx, storage, "user-3")
	require.NoError(t, err)
	items := final.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 2*addsPerWorker, items[0].Quantity)
}
