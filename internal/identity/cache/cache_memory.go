package cache

import (
	"context"
	"sync"
	"time"

	"grantgate/internal/identity/models"
	"grantgate/pkg/domain"
	"grantgate/pkg/platform/sentinel"
)

// InMemoryCache is a bounded identity cache. When full it evicts the entry
// closest to expiry; entries past their TTL are treated as misses.
type InMemoryCache struct {
	mu         sync.RWMutex
	entries    map[domain.UserID]cachedIdentity
	maxEntries int
}

type cachedIdentity struct {
	identity  models.Identity
	expiresAt time.Time
}

func NewInMemory(maxEntries int) *InMemoryCache {
	if maxEntries <= 0 {
		maxEntries = 1024
	}
	return &InMemoryCache{
		entries:    make(map[domain.UserID]cachedIdentity),
		maxEntries: maxEntries,
	}
}

func (c *InMemoryCache) Get(_ context.Context, id domain.UserID) (models.Identity, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if cached, ok := c.entries[id]; ok && time.Now().Before(cached.expiresAt) {
		return cached.identity, nil
	}
	return models.Identity{}, sentinel.ErrNotFound
}

func (c *InMemoryCache) Set(_ context.Context, identity models.Identity, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.entries) >= c.maxEntries {
		c.evictLocked()
	}
	c.entries[identity.ID] = cachedIdentity{
		identity:  identity,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

func (c *InMemoryCache) Invalidate(_ context.Context, id domain.UserID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, id)
	return nil
}

// evictLocked removes the entry closest to expiry. Callers hold the lock.
func (c *InMemoryCache) evictLocked() {
	var (
		victim domain.UserID
		oldest time.Time
		found  bool
	)
	for id, cached := range c.entries {
		if !found || cached.expiresAt.Before(oldest) {
			victim = id
			oldest = cached.expiresAt
			found = true
		}
	}
	if found {
		delete(c.entries, victim)
	}
}
