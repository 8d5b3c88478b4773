package store

import (
	"context"
	"encoding/json"

	"github.com/go-redis/redis/v8"

	"github.com/abirabdullahs/smart-canteen-client/models"
)

// RedisStorage keeps cart snapshots as JSON values in Redis so a cart
// survives restarts of both the storefront and this service. Entries
// carry no TTL; a cart lives until the order that consumes it.
type RedisStorage struct {
	client *redis.Client
}

func NewRedisStorage(client *redis.Client) *RedisStorage {
	return &RedisStorage{client: client}
}

func (s *RedisStorage) Load(ctx context.Context, key string) ([]models.CartItem, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var items []models.CartItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *RedisStorage) Save(ctx context.Context, key string, items []models.CartItem) error {
	data, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, data, 0).Err()
}
