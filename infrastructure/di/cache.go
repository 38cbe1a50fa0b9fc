package di

import (
	"context"
	"sync"
	"time"
)

// InMemoryCache backs the query-bus caching middleware with a
// process-local TTL map. Analytics results are small and per-user, so a
// plain map under an RWMutex is enough; a cold container just starts empty.
type InMemoryCache struct {
	mu      sync.RWMutex
	entries map[string]cachedResult
}

type cachedResult struct {
	value     interface{}
	expiresAt time.Time
}

// NewInMemoryCache creates the cache and starts its expiry sweeper.
func NewInMemoryCache() *InMemoryCache {
	c := &InMemoryCache{entries: make(map[string]cachedResult)}
	go c.sweep(time.Minute)
	return c
}

// Get returns the cached result for key if it has not expired.
func (c *InMemoryCache) Get(ctx context.Context, key string) (interface{}, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || time.Now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.value, true
}

// Set stores value under key for ttl seconds. A non-positive ttl is a
// no-op so callers can disable caching per entry without branching.
func (c *InMemoryCache) Set(ctx context.Context, key string, value interface{}, ttl int) error {
	if ttl <= 0 {
		return nil
	}

	c.mu.Lock()
	c.entries[key] = cachedResult{
		value:     value,
		expiresAt: time.Now().Add(time.Duration(ttl) * time.Second),
	}
	c.mu.Unlock()
	return nil
}

// Delete removes a single cached result.
func (c *InMemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}

// Clear drops every cached result.
func (c *InMemoryCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	c.entries = make(map[string]cachedResult)
	c.mu.Unlock()
	return nil
}

func (c *InMemoryCache) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()
		c.mu.Lock()
		for key, entry := range c.entries {
			if now.After(entry.expiresAt) {
				delete(c.entries, key)
			}
		}
		c.mu.Unlock()
	}
}
