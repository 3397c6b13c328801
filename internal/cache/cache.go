// Package cache keeps recently fetched datasets in memory.
package cache

import (
	"strings"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Dataset is a fetched CSV body and the response metadata it came with.
type Dataset struct {
	Body        []byte
	ContentType string
	ETag        string
	FetchedAt   time.Time
}

// DatasetCache caches fetched datasets by source key. Entries expire after
// the TTL and the cache never holds more than maxEntries items.
type DatasetCache struct {
	mu         sync.Mutex
	items      *gocache.Cache
	maxEntries int
}

// New creates a DatasetCache with the given TTL and max entry count.
func New(ttl time.Duration, maxEntries int) *DatasetCache {
	if maxEntries <= 0 {
		maxEntries = 1
	}
	return &DatasetCache{
		items:      gocache.New(ttl, 2*ttl),
		maxEntries: maxEntries,
	}
}

// MakeKey builds a cache key from an HTTP method and URL.
func MakeKey(method, url string) string {
	return method + ":" + url
}

// Get returns a cached dataset if found and not expired.
func (c *DatasetCache) Get(key string) (*Dataset, bool) {
	v, ok := c.items.Get(key)
	if !ok {
		return nil, false
	}
	ds, ok := v.(*Dataset)
	return ds, ok
}

// Set stores a dataset. The entry closest to expiry is evicted when the
// cache is full.
func (c *DatasetCache) Set(key string, ds *Dataset) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.items.Get(key); !exists && c.items.ItemCount() >= c.maxEntries {
		c.evictOldest()
	}
	c.items.SetDefault(key, ds)
}

// InvalidatePrefix removes all entries whose key starts with prefix.
func (c *DatasetCache) InvalidatePrefix(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.items.Items() {
		if strings.HasPrefix(key, prefix) {
			c.items.Delete(key)
		}
	}
}

// Len returns the number of unexpired entries.
func (c *DatasetCache) Len() int {
	return len(c.items.Items())
}

// evictOldest must be called with mu held.
func (c *DatasetCache) evictOldest() {
	var oldestKey string
	var oldest int64 = -1
	for key, item := range c.items.Items() {
		if oldest == -1 || item.Expiration < oldest {
			oldest = item.Expiration
			oldestKey = key
		}
	}
	if oldestKey != "" {
		c.items.Delete(oldestKey)
	}
}
