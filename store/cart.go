// Package store holds the per-user shopping cart. The cart is owned by
// the storefront session: every mutation synchronously persists the
// current item list to durable storage under a fixed namespace key, and
// opening a cart rehydrates whatever was last persisted.
package store

import (
	"context"
	"sync"

	"github.com/abirabdullahs/smart-canteen-client/models"
	"github.com/abirabdullahs/smart-canteen-client/utils"
)

const keyPrefix = "cart-storage:"

// Storage persists cart snapshots. Load must return an empty list, not
// an error, when nothing has been stored under the key yet.
type Storage interface {
	Load(ctx context.Context, key string) ([]models.CartItem, error)
	Save(ctx context.Context, key string, items []models.CartItem) error
}

// cartLocks serializes read-modify-write cycles per storage key. Every
// request opens its own Cart, so the lock has to be shared by key or
// two concurrent requests for the same user could each load, mutate,
// and save, losing one of the updates.
var cartLocks sync.Map

func lockFor(key string) *sync.Mutex {
	lock, _ := cartLocks.LoadOrStore(key, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

// Cart is the single-writer state container for one user's selection.
// Mutations go through the fixed entry points below, which reload the
// persisted snapshot under the user's lock before applying; readers get
// defensive copies.
type Cart struct {
	mu      *sync.Mutex
	storage Storage
	key     string
	items   []models.CartItem
}

// Open rehydrates the cart for userID from storage, starting empty if
// nothing was persisted.
func Open(ctx context.Context, storage Storage, userID string) (*Cart, error) {
	key := keyPrefix + userID
	items, err := storage.Load(ctx, key)
	if err != nil {
		return nil, err
	}
	return &Cart{mu: lockFor(key), storage: storage, key: key, items: items}, nil
}

// AddToCart merges item into the cart by product id: an existing entry
// gets its quantity incremented by one, otherwise the snapshot is
// appended with quantity 1. The incoming quantity field is ignored.
func (c *Cart) AddToCart(ctx context.Context, item models.CartItem) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.reload(ctx); err != nil {
		return err
	}
	for i := range c.items {
		if c.items[i].ProductID == item.ProductID {
			c.items[i].Quantity++
			return c.persist(ctx)
		}
	}
	item.Quantity = 1
	c.items = append(c.items, item)
	return c.persist(ctx)
}

// RemoveFromCart deletes the item with the given product id. Removing
// an id that is not present leaves the cart unchanged.
func (c *Cart) RemoveFromCart(ctx context.Context, productID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.reload(ctx); err != nil {
		return err
	}
	for i := range c.items {
		if c.items[i].ProductID == productID {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return c.persist(ctx)
		}
	}
	return nil
}

// UpdateQuantity sets the quantity for the matching item, clamping to a
// minimum of 1. Zero or negative input never removes the item. No-op
// when the id is absent.
func (c *Cart) UpdateQuantity(ctx context.Context, productID string, quantity int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.reload(ctx); err != nil {
		return err
	}
	for i := range c.items {
		if c.items[i].ProductID == productID {
			if quantity < 1 {
				quantity = 1
			}
			c.items[i].Quantity = quantity
			return c.persist(ctx)
		}
	}
	return nil
}

// ClearCart empties the cart.
func (c *Cart) ClearCart(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
	return c.persist(ctx)
}

// Items returns a copy of the current cart contents in insertion order.
func (c *Cart) Items() []models.CartItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.CartItem, len(c.items))
	copy(out, c.items)
	return out
}

// GetTotal sums normalized price times quantity over all items.
func (c *Cart) GetTotal() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	var total int64
	for _, item := range c.items {
		qty := item.Quantity
		if qty < 1 {
			qty = 1
		}
		total += utils.NormalizePrice(item.Price) * int64(qty)
	}
	return total
}

// GetCartCount sums quantities over all items; the navbar badge reads it.
func (c *Cart) GetCartCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	count := 0
	for _, item := range c.items {
		if item.Quantity < 1 {
			count++
			continue
		}
		count += item.Quantity
	}
	return count
}

// reload refreshes the in-memory snapshot from storage so a mutation
// applies on top of whatever a concurrent request persisted last.
// Callers must hold c.mu.
func (c *Cart) reload(ctx context.Context) error {
	items, err := c.storage.Load(ctx, c.key)
	if err != nil {
		return err
	}
	c.items = items
	return nil
}

// persist writes the current snapshot through to storage. Callers must
// hold c.mu.
func (c *Cart) persist(ctx context.Context) error {
	snapshot := make([]models.CartItem, len(c.items))
	copy(snapshot, c.items)
	return c.storage.Save(ctx, c.key, snapshot)
}
