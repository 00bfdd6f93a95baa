package cache

import (
	"fmt"
	"log/slog"

	lru "github.com/hashicorp/golang-lru/v2"
)

const DefaultSize = 1024

var _ CacheInterface = (*LRU)(nil)

// LRU is an in-process object cache. Keys are namespaced by group so the
// same key can live in several groups without colliding.
type LRU struct {
	entries *lru.Cache[string, any]
}

// NewLRU creates a cache holding at most size entries
func NewLRU(size int) (*LRU, error) {
	if size <= 0 {
		size = DefaultSize
	}

	entries, err := lru.New[string, any](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create lru cache: %w", err)
	}

	return &LRU{entries: entries}, nil
}

// Get retrieves a value, reporting whether it was present
func (c *LRU) Get(key, group string) (any, bool) {
	value, ok := c.entries.Get(groupKey(key, group))
	if !ok {
		slog.Debug("Cache miss", "group", group, "key", key)
	}
	return value, ok
}

// Set stores a value, replacing any previous one
func (c *LRU) Set(key string, value any, group string) {
	c.entries.Add(groupKey(key, group), value)
}

// Delete removes a key from cache
func (c *LRU) Delete(key, group string) {
	c.entries.Remove(groupKey(key, group))
}

// Len returns the number of cached entries across all groups
func (c *LRU) Len() int {
	return c.entries.Len()
}

func groupKey(key, group string) string {
	return group + ":" + key
}
