package access

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// CachedLookup wraps a ProfileLookup with a TTL-bounded LRU so the decider
// does not hit the database on every request. Missing profiles are not
// cached, so a profile created late is seen on the next request.
type CachedLookup struct {
	inner ProfileLookup
	cache *expirable.LRU[uuid.UUID, Profile] // nil when caching is disabled
}

// NewCachedLookup wraps inner. size bounds the number of cached profiles and
// ttl is how long an entry stays valid. A non-positive size or ttl disables
// the cache and every read goes to inner.
func NewCachedLookup(inner ProfileLookup, size int, ttl time.Duration) *CachedLookup {
	c := &CachedLookup{inner: inner}
	if size > 0 && ttl > 0 {
		c.cache = expirable.NewLRU[uuid.UUID, Profile](size, nil, ttl)
	}
	return c
}

// Enabled reports whether profiles are cached at all.
func (c *CachedLookup) Enabled() bool { return c.cache != nil }

// GetProfile returns the cached profile for id or fetches it from the inner lookup.
func (c *CachedLookup) GetProfile(ctx context.Context, id uuid.UUID) (*Profile, error) {
	if c.cache == nil {
		return c.inner.GetProfile(ctx, id)
	}
	if p, ok := c.cache.Get(id); ok {
		return &p, nil
	}
	p, err := c.inner.GetProfile(ctx, id)
	if err != nil || p == nil {
		return p, err
	}
	c.cache.Add(id, *p)
	cp := *p
	return &cp, nil
}

// Invalidate drops id from the cache. Call it when a profile's status or role changes.
func (c *CachedLookup) Invalidate(id uuid.UUID) {
	if c.cache == nil {
		return
	}
	c.cache.Remove(id)
}

// InvalidateAll clears the cache.
func (c *CachedLookup) InvalidateAll() {
	if c.cache == nil {
		return
	}
	c.cache.Purge()
}

// Len returns the number of cached profiles.
func (c *CachedLookup) Len() int {
	if c.cache == nil {
		return 0
	}
	return c.cache.Len()
}
