// internal/analytics/cache.go
package analytics

import (
	"sync"
	"time"
)

// SnapshotCache holds computed ClassAnalytics snapshots for a bounded
// time-to-live. Writes are last-writer-wins and a stale read inside the TTL
// is accepted behavior: recommendations are advisory, not real-time-critical.
type SnapshotCache struct {
	mu         sync.RWMutex
	entries    map[string]snapshotEntry
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
}

type snapshotEntry struct {
	snapshot  ClassAnalytics
	expiresAt time.Time
}

// DefaultSnapshotTTL bounds how long a cached snapshot may serve reads.
const DefaultSnapshotTTL = 5 * time.Minute

// NewSnapshotCache creates a cache with the given TTL; ttl <= 0 falls back
// to DefaultSnapshotTTL.
func NewSnapshotCache(ttl time.Duration) *SnapshotCache {
	if ttl <= 0 {
		ttl = DefaultSnapshotTTL
	}
	return &SnapshotCache{
		entries:    make(map[string]snapshotEntry),
		ttl:        ttl,
		maxEntries: 1024,
		now:        time.Now,
	}
}

// Get returns the cached snapshot for key if it has not expired.
func (c *SnapshotCache) Get(key string) (ClassAnalytics, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok || c.now().After(entry.expiresAt) {
		return ClassAnalytics{}, false
	}
	return entry.snapshot, true
}

// Set stores a snapshot under key, replacing whatever was there. Expired
// entries are swept opportunistically once the cache fills up.
func (c *SnapshotCache) Set(key string, snapshot ClassAnalytics) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if len(c.entries) >= c.maxEntries {
		for k, e := range c.entries {
			if now.After(e.expiresAt) {
				delete(c.entries, k)
			}
		}
	}

	c.entries[key] = snapshotEntry{snapshot: snapshot, expiresAt: now.Add(c.ttl)}
}

// Invalidate drops a single key, forcing the next read to recompute.
func (c *SnapshotCache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Len reports the number of entries currently held, expired or not.
func (c *SnapshotCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
