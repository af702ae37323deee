package identity

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestNameCacheStaysBounded(t *testing.T) {
	cache := NewNameCache(4)
	for i := 0; i < 20; i++ {
		cache.Add(uuid.New(), fmt.Sprintf("user %d", i))
	}
	require.LessOrEqual(t, cache.Len(), 4)
}

func TestNameCacheOverwriteDoesNotEvict(t *testing.T) {
	cache := NewNameCache(2)
	a, b := uuid.New(), uuid.New()
	cache.Add(a, "first")
	cache.Add(b, "second")
	cache.Add(a, "renamed")

	name, ok := cache.Get(a)
	require.True(t, ok)
	require.Equal(t, "renamed", name)
	name, ok = cache.Get(b)
	require.True(t, ok)
	require.Equal(t, "second", name)
}

func TestNilNameCacheIsInert(t *testing.T) {
	var cache *NameCache
	cache.Add(uuid.New(), "ignored")
	_, ok := cache.Get(uuid.New())
	require.False(t, ok)
	require.Zero(t, cache.Len())
}
