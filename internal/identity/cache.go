package identity

import (
	"sync"

	"github.com/google/uuid"
)

// NameCache memoizes display names for process lifetime. Capacity is injected
// by the owner; when full, an arbitrary entry is evicted to stay bounded.
type NameCache struct {
	mu    sync.RWMutex
	max   int
	names map[uuid.UUID]string
}

// NewNameCache constructs a NameCache holding at most capacity entries.
func NewNameCache(capacity int) *NameCache {
	if capacity <= 0 {
		capacity = 1024
	}
	return &NameCache{max: capacity, names: make(map[uuid.UUID]string, capacity)}
}

// Get returns the cached name for id, if present.
func (c *NameCache) Get(id uuid.UUID) (string, bool) {
	if c == nil {
		return "", false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	name, ok := c.names[id]
	return name, ok
}

// Add stores a name, evicting one entry when at capacity.
func (c *NameCache) Add(id uuid.UUID, name string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.names[id]; !ok && len(c.names) >= c.max {
		for victim := range c.names {
			delete(c.names, victim)
			break
		}
	}
	c.names[id] = name
}

// Len reports the number of cached names.
func (c *NameCache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.names)
}
