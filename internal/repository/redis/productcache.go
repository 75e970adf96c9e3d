package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tushank99/mern-ecommerce/internal/domain"
)

// Cache keys for hot product lists.
const (
	KeyTopRated = "products:top-rated"
	KeyNewest   = "products:newest"
)

// ProductCache implements repository.ProductCache on top of Redis. Entries
// are JSON-encoded product slices with a TTL; a miss is not an error.
type ProductCache struct {
	client *redis.Client
}

// NewProductCache creates a Redis-backed product list cache.
func NewProductCache(client *redis.Client) *ProductCache {
	return &ProductCache{client: client}
}

// GetProducts returns the cached product list for key, or (nil, nil) on a miss.
func (c *ProductCache) GetProducts(ctx context.Context, key string) ([]domain.Product, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("cache get %s: %w", key, err)
	}

	var products []domain.Product
	if err := json.Unmarshal(data, &products); err != nil {
		// A corrupt entry is treated as a miss so the caller falls back
		// to the database and overwrites it.
		return nil, nil
	}

	return products, nil
}

// SetProducts stores a product list under key with the given TTL.
func (c *ProductCache) SetProducts(ctx context.Context, key string, products []domain.Product, ttl time.Duration) error {
	data, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("cache marshal %s: %w", key, err)
	}

	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}

	return nil
}

// Invalidate removes the given cache keys.
func (c *ProductCache) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("cache invalidate: %w", err)
	}
	return nil
}
