package cache

import (
	"sync"
	"time"
)

type entry struct {
	value     any
	expiresAt time.Time
}

// TTLCache is an in-memory cache where every entry expires a fixed
// duration after it was written. Expiry is lazy: an expired entry is
// removed by the read that finds it.
// ⭐ SSOT: upstream response caching goes through this type only
type TTLCache struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
	stats   Stats
}

// Stats holds cache counters
type Stats struct {
	Hits    int `json:"hits"`
	Misses  int `json:"misses"`
	Writes  int `json:"writes"`
	Expired int `json:"expired"`
	Size    int `json:"size"`
}

// New creates an empty cache using the wall clock
func New() *TTLCache {
	return NewWithClock(time.Now)
}

// NewWithClock creates an empty cache with an injected time source
func NewWithClock(now func() time.Time) *TTLCache {
	return &TTLCache{
		entries: make(map[string]entry),
		now:     now,
	}
}

// Get returns the value for key if present and not past its expiry
func (c *TTLCache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		c.stats.Misses++
		return nil, false
	}

	if !c.now().Before(e.expiresAt) {
		delete(c.entries, key)
		c.stats.Expired++
		c.stats.Misses++
		return nil, false
	}

	c.stats.Hits++
	return e.value, true
}

// Set stores value under key until now+ttl, replacing any prior entry
func (c *TTLCache) Set(key string, value any, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry{value: value, expiresAt: c.now().Add(ttl)}
	c.stats.Writes++
}

// Delete removes key
func (c *TTLCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
}

// Clear drops every entry
func (c *TTLCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]entry)
}

// Len returns the number of stored entries, expired or not
func (c *TTLCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

// Stats returns a snapshot of the counters
func (c *TTLCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.stats
	s.Size = len(c.entries)
	return s
}
