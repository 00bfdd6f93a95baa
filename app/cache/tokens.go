package cache

import (
	"strconv"
	"sync"
	"time"
)

const (
	GroupPosts     = "posts"
	LastChangedKey = "last_changed"
)

// Tokens hands out the "last changed" token for the posts group. The token
// lives in the cache itself, so losing it (eviction, restart) simply starts
// a new epoch.
type Tokens struct {
	cache CacheInterface
	now   func() time.Time
	mu    sync.Mutex
	last  int64
}

// NewTokens creates a change-token provider backed by cache
func NewTokens(cache CacheInterface) *Tokens {
	return &Tokens{cache: cache, now: time.Now}
}

// LastChanged returns the current token, creating one on first use
func (t *Tokens) LastChanged() string {
	if value, ok := t.cache.Get(LastChangedKey, GroupPosts); ok {
		if token, ok := value.(string); ok && token != "" {
			return token
		}
	}

	token := t.next()
	t.cache.Set(LastChangedKey, token, GroupPosts)
	return token
}

// Bump starts a new epoch; keys derived from earlier tokens no longer match
func (t *Tokens) Bump() {
	t.cache.Set(LastChangedKey, t.next(), GroupPosts)
}

// next returns a strictly increasing token even when the clock does not move
func (t *Tokens) next() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := t.now().UnixNano()
	if n <= t.last {
		n = t.last + 1
	}
	t.last = n
	return strconv.FormatInt(n, 10)
}
