package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/i474232898/district-weather-advisor/internal/weather"
)

// rankingEntry is the JSON envelope stored in Redis.
type rankingEntry struct {
	Result    weather.RankedResult `json:"result"`
	CachedAt  time.Time            `json:"cached_at"`
	ExpiresAt time.Time            `json:"expires_at"`
}

// RedisCache stores the ranking snapshot in Redis so several instances can share it.
type RedisCache struct {
	redis  *redis.Client
	key    string
	logger logrus.FieldLogger
	now    func() time.Time
}

// NewRedisCache creates a Redis-backed ranking cache.
func NewRedisCache(client *redis.Client, logger logrus.FieldLogger) *RedisCache {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &RedisCache{
		redis:  client,
		key:    "ranking_cache:" + RankingKey,
		logger: logger,
		now:    time.Now,
	}
}

// Get returns the cached ranking. Redis errors are logged and treated as a miss.
func (c *RedisCache) Get(ctx context.Context) (weather.RankedResult, bool) {
	data, err := c.redis.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return weather.RankedResult{}, false
	}
	if err != nil {
		c.logger.WithError(err).Warn("redis error reading ranking cache")
		return weather.RankedResult{}, false
	}

	var entry rankingEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		c.logger.WithError(err).Warn("discarding undecodable ranking cache entry")
		return weather.RankedResult{}, false
	}

	// Redis TTL granularity is coarse; never serve past the recorded expiry.
	if !c.now().Before(entry.ExpiresAt) {
		return weather.RankedResult{}, false
	}
	return entry.Result, true
}

// Put overwrites the cached ranking with the given TTL.
func (c *RedisCache) Put(ctx context.Context, result weather.RankedResult, ttl time.Duration) error {
	now := c.now()
	data, err := json.Marshal(rankingEntry{
		Result:    result,
		CachedAt:  now,
		ExpiresAt: now.Add(ttl),
	})
	if err != nil {
		return fmt.Errorf("encode ranking: %w", err)
	}

	if err := c.redis.Set(ctx, c.key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", c.key, err)
	}
	return nil
}
