package sanctions

import (
	"context"
	"slices"
	"sync"
	"time"
)

type cachedScreening struct {
	matches  []Match
	storedAt time.Time
}

// MemoryCache keeps screenings in process with TTL expiry.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]cachedScreening
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryCache creates an in-memory cache with the given TTL.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]cachedScreening),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]Match, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cached, ok := c.entries[key]
	if !ok || c.now().Sub(cached.storedAt) >= c.ttl {
		return nil, ErrCacheMiss
	}
	return slices.Clone(cached.matches), nil
}

func (c *MemoryCache) Set(_ context.Context, key string, matches []Match) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cachedScreening{matches: slices.Clone(matches), storedAt: c.now()}
	return nil
}

// Sweep drops expired entries and returns how many remain.
func (c *MemoryCache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	for key, cached := range c.entries {
		if now.Sub(cached.storedAt) >= c.ttl {
			delete(c.entries, key)
		}
	}
	return len(c.entries)
}
