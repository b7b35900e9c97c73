package categorize

import (
	"hash/fnv"
	"strings"
	"sync"
	"time"

	"github.com/timearc/timearc/internal/models"
)

// ActivityCache deduplicates identical categorization requests within a short
// window. The key deliberately excludes content: on-screen text changes
// continuously (scrolling) but the decision for the same app/url/title should
// not.
type ActivityCache struct {
	mu      sync.RWMutex
	entries map[uint64]activityCacheEntry
	ttl     time.Duration
	now     func() time.Time
}

type activityCacheEntry struct {
	choice    models.CategoryChoice
	ownerName string
	url       string
	cachedAt  time.Time
}

// NewActivityCache creates a cache with the given TTL.
func NewActivityCache(ttl time.Duration) *ActivityCache {
	return &ActivityCache{
		entries: make(map[uint64]activityCacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the cached choice for an activity if present and fresh. A stale
// entry is evicted and reported as a miss.
func (c *ActivityCache) Get(details models.ActivityDetails) (models.CategoryChoice, bool) {
	key := activityHash(details)

	c.mu.RLock()
	entry, exists := c.entries[key]
	c.mu.RUnlock()

	if !exists {
		return models.CategoryChoice{}, false
	}

	if c.now().Sub(entry.cachedAt) > c.ttl {
		c.mu.Lock()
		// Re-check under the write lock: a concurrent Put may have refreshed it.
		if current, ok := c.entries[key]; ok && c.now().Sub(current.cachedAt) > c.ttl {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return models.CategoryChoice{}, false
	}

	return entry.choice, true
}

// Put stores a decision for an activity, overwriting any existing entry.
func (c *ActivityCache) Put(details models.ActivityDetails, choice models.CategoryChoice) {
	key := activityHash(details)

	c.mu.Lock()
	c.entries[key] = activityCacheEntry{
		choice:    choice,
		ownerName: details.OwnerName,
		url:       details.URL,
		cachedAt:  c.now(),
	}
	c.mu.Unlock()
}

// Invalidate removes all entries derived from the given app name or URL and
// returns the count removed. Called after bulk recategorization so future
// events are not served the pre-correction decision.
func (c *ActivityCache) Invalidate(identifier string, itemType models.RecategorizeItemType) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, entry := range c.entries {
		var match bool
		switch itemType {
		case models.ItemTypeApp:
			match = strings.EqualFold(entry.ownerName, identifier)
		case models.ItemTypeWebsite:
			match = entry.url != "" && strings.Contains(strings.ToLower(entry.url), strings.ToLower(identifier))
		}
		if match {
			delete(c.entries, key)
			removed++
		}
	}

	return removed
}

// Len returns the number of live entries, stale ones included.
func (c *ActivityCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// activityHash computes a stable key over (owner name, url, title).
func activityHash(details models.ActivityDetails) uint64 {
	h := fnv.New64a()
	h.Write([]byte(details.OwnerName))
	h.Write([]byte{0})
	h.Write([]byte(details.URL))
	h.Write([]byte{0})
	h.Write([]byte(details.Title))
	return h.Sum64()
}
