// Package cache is an in-process cache for encoded read projections
// (dashboard, reminders). Entries are invalidated wholesale on every write.
package cache

import (
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

// Cache wraps a ristretto cache keyed by projection name and date.
type Cache struct {
	c   *ristretto.Cache[string, []byte]
	ttl time.Duration
}

// New creates a ristretto-backed cache. maxCostBytes is the maximum total
// size of cached values in bytes; ttl bounds the age of an entry.
func New(maxCostBytes int64, ttl time.Duration) (*Cache, error) {
	c, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters: max(maxCostBytes/100*10, 1000), // ~10x expected items
		MaxCost:     maxCostBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &Cache{c: c, ttl: ttl}, nil
}

// Get retrieves a value. A nil Cache never hits.
func (c *Cache) Get(key string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	return c.c.Get(key)
}

// Set stores a value and waits until it is visible to Get. Ristretto may
// still reject it under cost pressure.
func (c *Cache) Set(key string, value []byte) {
	if c == nil {
		return
	}
	c.c.SetWithTTL(key, value, int64(len(value)), c.ttl)
	c.c.Wait()
}

// Clear drops every entry.
func (c *Cache) Clear() {
	if c == nil {
		return
	}
	c.c.Clear()
}

// Close shuts down the cache and releases resources.
func (c *Cache) Close() {
	if c == nil {
		return
	}
	c.c.Close()
}
