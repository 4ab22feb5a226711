package dataflows

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Fetcher performs the upstream retrieval on a cache miss.
type Fetcher interface {
	Fetch(ctx context.Context, symbol string, period Period) (*DataBundle, error)
}

// Key identifies one cache entry. Fetches for the same symbol under
// different periods are independent entries.
type Key struct {
	Symbol string
	Period Period
}

func (k Key) String() string {
	return k.Symbol + "|" + string(k.Period)
}

type cacheEntry struct {
	bundle    *DataBundle
	fetchedAt time.Time
}

// Cache is an in-memory, process-lifetime TTL cache over a Fetcher.
// Entries older than the TTL are not served; they are replaced on the
// next access. Failed fetches are never cached, so a failing symbol is
// retried on every call until a fetch succeeds.
//
// Concurrent misses on the same key are collapsed into a single
// upstream fetch with all callers sharing the result, so a burst of
// passes cannot amplify into a thundering herd against the provider.
type Cache struct {
	fetcher Fetcher
	ttl     time.Duration

	mu      sync.RWMutex
	entries map[Key]cacheEntry
	flight  singleflight.Group

	now func() time.Time // injectable for expiry tests
}

// NewCache creates a cache with the given TTL in front of fetcher.
func NewCache(fetcher Fetcher, ttl time.Duration) *Cache {
	return &Cache{
		fetcher: fetcher,
		ttl:     ttl,
		entries: make(map[Key]cacheEntry),
		now:     time.Now,
	}
}

// Get returns the bundle for (symbol, period), fetching it upstream if
// no fresh entry exists.
func (c *Cache) Get(ctx context.Context, symbol string, period Period) (*DataBundle, error) {
	key := Key{Symbol: NormalizeSymbol(symbol), Period: period}

	if bundle, ok := c.lookup(key); ok {
		return bundle, nil
	}

	v, err, _ := c.flight.Do(key.String(), func() (interface{}, error) {
		// A concurrent miss may have filled the entry while this caller
		// waited on the flight lock.
		if bundle, ok := c.lookup(key); ok {
			return bundle, nil
		}

		bundle, err := c.fetcher.Fetch(ctx, key.Symbol, key.Period)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.entries[key] = cacheEntry{bundle: bundle, fetchedAt: c.now()}
		c.mu.Unlock()

		return bundle, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*DataBundle), nil
}

func (c *Cache) lookup(key Key) (*DataBundle, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().Sub(entry.fetchedAt) >= c.ttl {
		return nil, false
	}
	return entry.bundle, true
}

// Len returns the number of entries currently held, fresh or stale.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}
