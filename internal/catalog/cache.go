package catalog

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/rankpulse/internal/domain"
	"github.com/pscheid92/rankpulse/internal/metrics"
	"golang.org/x/sync/singleflight"
)

// Cache fronts a Catalog with TTL-based caching of existence and category
// lookups. Vote bursts hit the same products over and over; the cache keeps
// those lookups off the backing store. Concurrent misses for the same
// product collapse into one backend call via singleflight. Negative
// results are cached too, so repeated votes on a bogus id stay cheap.
type Cache struct {
	backend domain.Catalog
	mu      sync.RWMutex
	entries map[string]*cacheEntry
	ttl     time.Duration
	clock   clockwork.Clock
	group   singleflight.Group
}

type cacheEntry struct {
	exists    bool
	category  string
	expiresAt time.Time
}

func NewCache(backend domain.Catalog, ttl time.Duration, clock clockwork.Clock) *Cache {
	return &Cache{
		backend: backend,
		entries: make(map[string]*cacheEntry),
		ttl:     ttl,
		clock:   clock,
	}
}

func (c *Cache) ProductExists(ctx context.Context, productID string) (bool, error) {
	entry, err := c.lookup(ctx, productID)
	if err != nil {
		return false, err
	}
	return entry.exists, nil
}

func (c *Cache) CategoryOf(ctx context.Context, productID string) (string, error) {
	entry, err := c.lookup(ctx, productID)
	if err != nil {
		return "", err
	}
	if !entry.exists {
		return "", domain.ErrUnknownProduct
	}
	return entry.category, nil
}

// List always goes to the backend; it runs once at startup.
func (c *Cache) List(ctx context.Context) ([]domain.Product, error) {
	return c.backend.List(ctx)
}

func (c *Cache) lookup(ctx context.Context, productID string) (*cacheEntry, error) {
	c.mu.RLock()
	entry, ok := c.entries[productID]
	c.mu.RUnlock()

	if ok && c.clock.Now().Before(entry.expiresAt) {
		metrics.CatalogCacheHits.Inc()
		return entry, nil
	}
	metrics.CatalogCacheMisses.Inc()

	result, err, _ := c.group.Do(productID, func() (any, error) {
		category, err := c.backend.CategoryOf(ctx, productID)
		fresh := &cacheEntry{expiresAt: c.clock.Now().Add(c.ttl)}
		switch {
		case err == nil:
			fresh.exists = true
			fresh.category = category
		case errors.Is(err, domain.ErrUnknownProduct):
			// Negative entry, exists stays false.
		default:
			return nil, err
		}

		c.mu.Lock()
		c.entries[productID] = fresh
		c.mu.Unlock()
		return fresh, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*cacheEntry), nil
}

// Invalidate removes a product from the cache.
func (c *Cache) Invalidate(productID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, productID)
}

// EvictExpired removes expired entries and returns the count evicted.
func (c *Cache) EvictExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	evicted := 0
	for id, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, id)
			evicted++
		}
	}
	return evicted
}

// Size returns the number of cached entries, including expired ones.
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// StartEvictionTimer periodically evicts expired entries. Returns a stop
// function.
func (c *Cache) StartEvictionTimer(interval time.Duration) func() {
	ticker := c.clock.NewTicker(interval)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-ticker.Chan():
				evicted := c.EvictExpired()
				if evicted > 0 {
					slog.Debug("Evicted expired catalog cache entries", "count", evicted, "remaining", c.Size())
					metrics.CatalogCacheEvictions.Add(float64(evicted))
				}
				metrics.CatalogCacheSize.Set(float64(c.Size()))
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()

	return func() {
		close(done)
	}
}
