package interceptor

import (
	"sync"
	"time"
)

// Cache is the named ephemeral cache the heartbeat loop refreshes. Entries
// hold nothing but their last refresh time; the cache exists purely as a
// liveness signal and resets on process restart.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]time.Time
	nowTime func() time.Time
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{
		entries: make(map[string]time.Time),
		nowTime: time.Now,
	}
}

// Refresh touches the named entry.
func (c *Cache) Refresh(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[name] = c.nowTime()
}

// LastRefreshed returns when the named entry was last touched.
func (c *Cache) LastRefreshed(name string) (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.entries[name]
	return t, ok
}
