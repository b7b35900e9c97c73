package provider

import (
	"context"
	"sync"
	"time"
)

// AvailabilityCache wraps a Provider and memoizes its reachability probe so
// the pipeline does not hit the backend's health endpoint on every single
// categorization call.
type AvailabilityCache struct {
	Provider

	mu        sync.Mutex
	ttl       time.Duration
	available bool
	checkedAt time.Time
	now       func() time.Time
}

// NewAvailabilityCache wraps the provider with a probe cache of the given TTL.
func NewAvailabilityCache(p Provider, ttl time.Duration) *AvailabilityCache {
	return &AvailabilityCache{
		Provider: p,
		ttl:      ttl,
		now:      time.Now,
	}
}

// IsAvailable returns the cached probe result while fresh, re-probing the
// wrapped provider once the TTL has elapsed.
func (c *AvailabilityCache) IsAvailable(ctx context.Context) bool {
	c.mu.Lock()
	if !c.checkedAt.IsZero() && c.now().Sub(c.checkedAt) < c.ttl {
		available := c.available
		c.mu.Unlock()
		return available
	}
	c.mu.Unlock()

	available := c.Provider.IsAvailable(ctx)

	c.mu.Lock()
	c.available = available
	c.checkedAt = c.now()
	c.mu.Unlock()

	return available
}
