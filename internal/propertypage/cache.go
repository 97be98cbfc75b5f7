package propertypage

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/property-lead-bridge/internal/leads"
)

// DefaultCacheTTL keeps a page classification for a week.
const DefaultCacheTTL = 7 * 24 * time.Hour

const categoryPrefix = "propertypage:category:v1:"

// Cache stores page classifications by URL.
type Cache interface {
	Get(ctx context.Context, pageURL string) (leads.Category, bool, error)
	Set(ctx context.Context, pageURL string, category leads.Category) error
}

// RedisCache is a Cache backed by Redis.
type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisCache wraps an existing Redis client. A non-positive ttl uses
// DefaultCacheTTL.
func NewRedisCache(rdb *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &RedisCache{rdb: rdb, ttl: ttl}
}

// CategoryKey returns the cache key for a page URL.
func CategoryKey(pageURL string) string {
	return categoryPrefix + fmt.Sprintf("%x", sha256.Sum256([]byte(pageURL)))
}

func (c *RedisCache) Get(ctx context.Context, pageURL string) (leads.Category, bool, error) {
	val, err := c.rdb.Get(ctx, CategoryKey(pageURL)).Result()
	if errors.Is(err, redis.Nil) {
		return leads.CategoryNone, false, nil
	}
	if err != nil {
		return leads.CategoryNone, false, fmt.Errorf("propertypage: cache get: %w", err)
	}
	return leads.Category(val), true, nil
}

func (c *RedisCache) Set(ctx context.Context, pageURL string, category leads.Category) error {
	if err := c.rdb.Set(ctx, CategoryKey(pageURL), string(category), c.ttl).Err(); err != nil {
		return fmt.Errorf("propertypage: cache set: %w", err)
	}
	return nil
}
