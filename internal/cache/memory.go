package cache

import (
	"bytes"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache keeps documents in process memory
type MemoryCache struct {
	store *gocache.Cache
}

// NewMemoryCache creates a memory cache; expired items are purged every cleanupInterval
func NewMemoryCache(defaultTTL time.Duration, cleanupInterval time.Duration) *MemoryCache {
	return &MemoryCache{
		store: gocache.New(defaultTTL, cleanupInterval),
	}
}

func (c *MemoryCache) Get(key string) ([]byte, bool) {
	val, found := c.store.Get(key)
	if !found {
		return nil, false
	}
	data, ok := val.([]byte)
	if !ok {
		return nil, false
	}
	return bytes.Clone(data), true
}

// Set stores a copy of value. A zero ttl uses the cache default.
func (c *MemoryCache) Set(key string, value []byte, ttl time.Duration) error {
	if ttl == 0 {
		ttl = gocache.DefaultExpiration
	}
	c.store.Set(key, bytes.Clone(value), ttl)
	return nil
}

func (c *MemoryCache) Delete(key string) error {
	c.store.Delete(key)
	return nil
}

func (c *MemoryCache) Clear() error {
	c.store.Flush()
	return nil
}
