package cache

import (
	"context"
	"time"

	"github.com/foodscan/backend/internal/domain"
	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache is a TTL cache backed by go-cache, used to memoize product
// database search terms within a process lifetime.
type MemoryCache struct {
	cache      *gocache.Cache
	defaultTTL time.Duration
}

// NewMemoryCache creates a new in-memory cache with the given default TTL
func NewMemoryCache(defaultTTL time.Duration) *MemoryCache {
	if defaultTTL <= 0 {
		defaultTTL = time.Hour
	}

	return &MemoryCache{
		cache:      gocache.New(defaultTTL, 10*time.Minute),
		defaultTTL: defaultTTL,
	}
}

// Get retrieves a value from the cache
func (c *MemoryCache) Get(ctx context.Context, key string) (interface{}, error) {
	value, found := c.cache.Get(key)
	if !found {
		return nil, domain.ErrCacheMiss
	}
	return value, nil
}

// Set stores a value in the cache with TTL
func (c *MemoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	c.cache.Set(key, value, ttl)
	return nil
}

// Delete removes a value from the cache
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.cache.Delete(key)
	return nil
}

// Exists checks if a key exists in the cache and is not expired
func (c *MemoryCache) Exists(ctx context.Context, key string) (bool, error) {
	_, found := c.cache.Get(key)
	return found, nil
}

// Size returns the current number of items in the cache (for debugging/monitoring)
func (c *MemoryCache) Size() int {
	return c.cache.ItemCount()
}

// Clear removes all items from the cache
func (c *MemoryCache) Clear() {
	c.cache.Flush()
}
