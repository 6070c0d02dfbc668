// Package fragment provides loading, caching, and prefetching of page
// fragments.
//
// A fragment is the raw markup for one page, fetched from a Source and cached
// for the lifetime of the session. The cache is deliberately never evicted or
// invalidated: the site trades freshness for speed, and a full restart is the
// only refresh path.
package fragment

import (
	"sync"
	"sync/atomic"
)

// Cache maps a page id to previously fetched raw markup. Entries are never
// evicted or invalidated once stored.
type Cache struct {
	entries map[string]string
	mutex   sync.RWMutex

	hits   int64
	misses int64
}

// NewCache creates an empty fragment cache.
func NewCache() *Cache {
	return &Cache{
		entries: make(map[string]string),
	}
}

// Get returns the cached markup for a page id.
func (c *Cache) Get(pageID string) (string, bool) {
	c.mutex.RLock()
	markup, exists := c.entries[pageID]
	c.mutex.RUnlock()

	if exists {
		atomic.AddInt64(&c.hits, 1)
	} else {
		atomic.AddInt64(&c.misses, 1)
	}

	return markup, exists
}

// Set stores markup for a page id. The first stored value wins: the cache
// holds what the session first saw, and later writes for the same page are
// ignored.
func (c *Cache) Set(pageID, markup string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if _, exists := c.entries[pageID]; exists {
		return
	}
	c.entries[pageID] = markup
}

// Contains reports whether the cache holds markup for a page id without
// touching the hit/miss counters.
func (c *Cache) Contains(pageID string) bool {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	_, exists := c.entries[pageID]
	return exists
}

// Len returns the number of cached fragments.
func (c *Cache) Len() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return len(c.entries)
}

// PageIDs returns the cached page ids in no particular order.
func (c *Cache) PageIDs() []string {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	ids := make([]string, 0, len(c.entries))
	for id := range c.entries {
		ids = append(ids, id)
	}
	return ids
}

// Stats returns the hit and miss counts.
func (c *Cache) Stats() (hits, misses int64) {
	return atomic.LoadInt64(&c.hits), atomic.LoadInt64(&c.misses)
}
