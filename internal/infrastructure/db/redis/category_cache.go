package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/indumine/catalog-auth/internal/core/domain"
)

const (
	categoriesKey      = "catalog:categories"
	defaultCategoryTTL = time.Hour
)

// CategoryCache stores the catalog's full category list as JSON under a
// single key.
type CategoryCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCategoryCache wraps client. A non-positive ttl falls back to one hour.
func NewCategoryCache(client *redis.Client, ttl time.Duration) *CategoryCache {
	if ttl <= 0 {
		ttl = defaultCategoryTTL
	}
	return &CategoryCache{client: client, ttl: ttl}
}

// Get returns the cached list. A missing key is a miss, not an error.
func (c *CategoryCache) Get(ctx context.Context) ([]domain.CatalogCategory, bool, error) {
	raw, err := c.client.Get(ctx, categoriesKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("category cache get: %w", err)
	}

	var categories []domain.CatalogCategory
	if err := json.Unmarshal(raw, &categories); err != nil {
		return nil, false, fmt.Errorf("category cache decode: %w", err)
	}
	return categories, true, nil
}

func (c *CategoryCache) Set(ctx context.Context, categories []domain.CatalogCategory) error {
	raw, err := json.Marshal(categories)
	if err != nil {
		return fmt.Errorf("category cache encode: %w", err)
	}
	if err := c.client.Set(ctx, categoriesKey, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("category cache set: %w", err)
	}
	return nil
}
