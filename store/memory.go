package store

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/abirabdullahs/smart-canteen-client/models"
)

// MemoryStorage is an in-process Storage used by tests and by local
// runs without Redis. It round-trips snapshots through JSON so price
// values decode exactly the way the Redis implementation would return
// them.
type MemoryStorage struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{entries: make(map[string][]byte)}
}

func (s *MemoryStorage) Load(ctx context.Context, key string) ([]models.CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.entries[key]
	if !ok {
		return nil, nil
	}
	var items []models.CartItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *MemoryStorage) Save(ctx context.Context, key string, items []models.CartItem) error {
	data, err := json.Marshal(items)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = data
	return nil
}
