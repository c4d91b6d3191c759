package csc

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/location-picker/internal/domain"
	"github.com/couchcryptid/location-picker/internal/observability"
)

// CachedDirectory wraps a Directory with an in-memory LRU cache whose entries
// expire after a fixed TTL.
type CachedDirectory struct {
	inner   domain.Directory
	cache   *lruCache
	ttl     time.Duration
	clock   clockwork.Clock
	metrics *observability.Metrics
}

// NewCachedDirectory creates a cache decorator around a directory.
func NewCachedDirectory(inner domain.Directory, maxEntries int, ttl time.Duration, clock clockwork.Clock, metrics *observability.Metrics) *CachedDirectory {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &CachedDirectory{
		inner:   inner,
		cache:   newLRUCache(maxEntries),
		ttl:     ttl,
		clock:   clock,
		metrics: metrics,
	}
}

func (c *CachedDirectory) ListCountries(ctx context.Context) ([]domain.Country, error) {
	return cached(ctx, c, endpointCountries, "countries", c.inner.ListCountries)
}

func (c *CachedDirectory) ListStates(ctx context.Context, country string) ([]domain.State, error) {
	return cached(ctx, c, endpointStates, "states:"+country, func(ctx context.Context) ([]domain.State, error) {
		return c.inner.ListStates(ctx, country)
	})
}

func (c *CachedDirectory) ListCities(ctx context.Context, country, state string) ([]domain.City, error) {
	key := fmt.Sprintf("cities:%s|%s", country, state)
	return cached(ctx, c, endpointCities, key, func(ctx context.Context) ([]domain.City, error) {
		return c.inner.ListCities(ctx, country, state)
	})
}

// CheckReadiness reports ready once the country list can be served.
func (c *CachedDirectory) CheckReadiness(ctx context.Context) error {
	countries, err := c.ListCountries(ctx)
	if err != nil {
		return err
	}
	if len(countries) == 0 {
		return errors.New("directory returned no countries")
	}
	return nil
}

func cached[T any](ctx context.Context, c *CachedDirectory, endpoint, key string, load func(context.Context) ([]T, error)) ([]T, error) {
	if v, ok := c.cache.get(key, c.clock.Now()); ok {
		c.metrics.APICache.WithLabelValues(endpoint, "hit").Inc()
		return slices.Clone(v.([]T)), nil
	}
	c.metrics.APICache.WithLabelValues(endpoint, "miss").Inc()

	rows, err := load(ctx)
	if err != nil {
		return nil, err
	}
	// Empty lists are never cached.
	if len(rows) > 0 {
		c.cache.put(key, slices.Clone(rows), c.clock.Now().Add(c.ttl))
	}
	return rows, nil
}

// lruCache is a simple thread-safe LRU cache with per-entry expiry.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key       string
	value     any
	expiresAt time.Time
	prev      *entry
	next      *entry
}

func newLRUCache(maxEntries int) *lruCache {
	return &lruCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
	}
}

func (c *lruCache) get(key string, now time.Time) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if !now.Before(e.expiresAt) {
		delete(c.entries, key)
		c.remove(e)
		return nil, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache) put(key string, value any, expiresAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		e.expiresAt = expiresAt
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value, expiresAt: expiresAt}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache) addToFront(e *entry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
	e.prev, e.next = nil, nil
}

func (c *lruCache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
