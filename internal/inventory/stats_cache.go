package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const statsCacheKey = "inventory:stats"

// StatsCache keeps the latest snapshot in Redis so dashboards do not rescan
// the catalog on every request. Invalidated on every mutation.
type StatsCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStatsCache constructs a StatsCache.
func NewStatsCache(client *redis.Client, ttl time.Duration) *StatsCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &StatsCache{client: client, ttl: ttl}
}

// Get returns the cached snapshot if present.
func (c *StatsCache) Get(ctx context.Context) (Stats, bool) {
	if c == nil || c.client == nil {
		return Stats{}, false
	}
	payload, err := c.client.Get(ctx, statsCacheKey).Bytes()
	if err != nil {
		return Stats{}, false
	}
	var stats Stats
	if err := json.Unmarshal(payload, &stats); err != nil {
		return Stats{}, false
	}
	return stats, true
}

// Set stores the snapshot with the configured TTL.
func (c *StatsCache) Set(ctx context.Context, stats Stats) error {
	if c == nil || c.client == nil {
		return nil
	}
	payload, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, statsCacheKey, payload, c.ttl).Err()
}

// Invalidate drops the cached snapshot.
func (c *StatsCache) Invalidate(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	err := c.client.Del(ctx, statsCacheKey).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	return nil
}
