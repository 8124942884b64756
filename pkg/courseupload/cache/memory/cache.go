// Package memory provides an in-process SessionCache with per-entry TTLs.
package memory

import (
	"sync"
	"time"
)

type entry struct {
	value    string
	deadline time.Time
}

// Cache implements courseupload.SessionCache using an in-memory map.
// Expired entries are treated as absent on read and dropped lazily.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry

	// now is replaceable in tests
	now func() time.Time
}

// New creates a new in-memory session cache
func New() *Cache {
	return &Cache{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// NewWithClock creates a cache whose notion of time comes from now
func NewWithClock(now func() time.Time) *Cache {
	c := New()
	c.now = now
	return c
}

func (c *Cache) Get(key string) (string, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return "", false
	}
	if c.now().After(e.deadline) {
		c.mu.Lock()
		// Re-check under the write lock; another writer may have refreshed
		if cur, ok := c.entries[key]; ok && c.now().After(cur.deadline) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return "", false
	}
	return e.value, true
}

func (c *Cache) Set(key, value string, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry{
		value:    value,
		deadline: c.now().Add(ttl),
	}
}

// Delete removes a key regardless of expiry
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
}
