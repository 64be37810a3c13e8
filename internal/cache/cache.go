// Package cache provides a bounded, TTL-expiring reply cache. Concurrent
// fills for the same key are deduplicated with singleflight so a burst of
// identical queries renders the reply once.
package cache

import (
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/metrics"
)

type entry struct {
	value    string
	storedAt time.Time
}

// Cache is a keyed text cache with a fixed per-entry wall-clock expiry and
// oldest-entry eviction on overflow. Both bounds prevent unbounded memory
// growth in a long-lived process.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*entry
	ttl     time.Duration
	max     int
	name    string
	met     *metrics.Metrics
	group   singleflight.Group

	now func() time.Time // swappable for tests
}

// New creates a cache. name labels its metrics; met may be nil.
func New(name string, ttl time.Duration, max int, met *metrics.Metrics) *Cache {
	return &Cache{
		entries: make(map[string]*entry),
		ttl:     ttl,
		max:     max,
		name:    name,
		met:     met,
		now:     time.Now,
	}
}

// Get returns the cached value for key if present and unexpired.
func (c *Cache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.getLocked(key)
}

func (c *Cache) getLocked(key string) (string, bool) {
	e, ok := c.entries[key]
	if !ok {
		c.recordMiss()
		return "", false
	}
	if c.ttl > 0 && c.now().Sub(e.storedAt) > c.ttl {
		delete(c.entries, key)
		c.recordMiss()
		return "", false
	}
	c.recordHit()
	return e.value, true
}

// Set stores a value, evicting the oldest entry when the cache is full.
func (c *Cache) Set(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && c.max > 0 && len(c.entries) >= c.max {
		c.evictOldestLocked()
	}
	c.entries[key] = &entry{value: value, storedAt: c.now()}
}

// GetOrFill returns the cached value for key, computing and storing it with
// fill on a miss. Concurrent callers for the same key share one fill.
func (c *Cache) GetOrFill(key string, fill func() (string, error)) (string, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}

	v, err, shared := c.group.Do(key, func() (any, error) {
		// Re-check under singleflight: an earlier caller may have
		// filled the entry while we waited.
		c.mu.Lock()
		if cached, ok := c.getLocked(key); ok {
			c.mu.Unlock()
			return cached, nil
		}
		c.mu.Unlock()

		value, err := fill()
		if err != nil {
			return "", err
		}
		c.Set(key, value)
		return value, nil
	})
	if err != nil {
		return "", err
	}
	if shared && c.met != nil {
		c.met.RecordSingleflightDedup(c.name)
	}
	return v.(string), nil
}

// Sweep drops all expired entries and returns how many were removed.
func (c *Cache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ttl <= 0 {
		return 0
	}
	cutoff := c.now().Add(-c.ttl)
	removed := 0
	for key, e := range c.entries {
		if e.storedAt.Before(cutoff) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Clear drops every entry. Called after a catalog reload so rendered
// replies cannot outlive the records they were built from.
func (c *Cache) Clear() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	removed := len(c.entries)
	c.entries = make(map[string]*entry)
	return removed
}

// Len returns the number of stored entries, including not-yet-swept expired
// ones.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) evictOldestLocked() {
	var oldestKey string
	var oldest time.Time
	first := true
	for key, e := range c.entries {
		if first || e.storedAt.Before(oldest) {
			oldestKey = key
			oldest = e.storedAt
			first = false
		}
	}
	if oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}

func (c *Cache) recordHit() {
	if c.met != nil {
		c.met.RecordCacheHit(c.name)
	}
}

func (c *Cache) recordMiss() {
	if c.met != nil {
		c.met.RecordCacheMiss(c.name)
	}
}
