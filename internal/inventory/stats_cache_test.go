package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *StatsCache {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewStatsCache(client, time.Minute)
}

func TestStatsCacheRoundTrip(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	_, ok := cache.Get(ctx)
	require.False(t, ok)

	stats := Stats{TotalProducts: 3, TotalUnits: 21, OutOfStock: 1, LowStock: 1, InStock: 1}
	require.NoError(t, cache.Set(ctx, stats))

	cached, ok := cache.Get(ctx)
	require.True(t, ok)
	require.Equal(t, stats.TotalProducts, cached.TotalProducts)
	require.Equal(t, stats.TotalUnits, cached.TotalUnits)

	require.NoError(t, cache.Invalidate(ctx))
	_, ok = cache.Get(ctx)
	require.False(t, ok)
}

func TestStatsCacheNilSafe(t *testing.T) {
	var cache *StatsCache
	ctx := context.Background()
	_, ok := cache.Get(ctx)
	require.False(t, ok)
	require.NoError(t, cache.Set(ctx, Stats{}))
	require.NoError(t, cache.Invalidate(ctx))
}
