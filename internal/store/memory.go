package store

import (
	"context"
	"sync"
	"time"

	"github.com/i474232898/district-weather-advisor/internal/weather"
)

// RankingKey is the single logical key under which the ranking is cached.
const RankingKey = "top10_districts"

// MemoryCache is a concurrency-safe single-slot cache for the ranking snapshot.
type MemoryCache struct {
	mu sync.RWMutex

	value      weather.RankedResult
	insertedAt time.Time
	ttl        time.Duration
	present    bool

	now func() time.Time
}

// NewMemoryCache creates an empty MemoryCache.
// If now is nil, time.Now is used.
func NewMemoryCache(now func() time.Time) *MemoryCache {
	if now == nil {
		now = time.Now
	}
	return &MemoryCache{now: now}
}

// Get returns a copy of the cached ranking while it is live.
func (c *MemoryCache) Get(_ context.Context) (weather.RankedResult, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.present || !c.now().Before(c.insertedAt.Add(c.ttl)) {
		return weather.RankedResult{}, false
	}
	return c.value.Clone(), true
}

// Put replaces the cached ranking and resets its expiry.
func (c *MemoryCache) Put(_ context.Context, result weather.RankedResult, ttl time.Duration) error {
	snapshot := result.Clone()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.value = snapshot
	c.insertedAt = c.now()
	c.ttl = ttl
	c.present = true
	return nil
}
