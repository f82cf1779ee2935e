// Package cache provides an in-process TTL cache for generation API
// responses, keyed by request fingerprint.
package cache

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/protoforge-ai/protoforge/pkg/models"
)

// DefaultSweepInterval is how often the background sweep removes expired
// entries that are never looked up again.
const DefaultSweepInterval = 5 * time.Minute

type entry[V any] struct {
	value    V
	storedAt time.Time
	ttl      time.Duration
}

// Cache is a mutex-guarded in-memory cache with per-entry TTLs.
//
// Lookups and stores are safe for concurrent use. There is no per-key
// build coalescing: two concurrent misses on the same fingerprint will
// both call upstream and the second store wins.
type Cache[V any] struct {
	mu      sync.Mutex
	entries map[string]entry[V]

	hits   atomic.Int64
	misses atomic.Int64

	sweepInterval time.Duration
	done          chan struct{}
	wg            sync.WaitGroup
	stopOnce      sync.Once

	now func() time.Time
}

// New creates a Cache. The background sweep does not run until Start is
// called.
func New[V any](sweepInterval time.Duration) *Cache[V] {
	if sweepInterval <= 0 {
		sweepInterval = DefaultSweepInterval
	}
	return &Cache[V]{
		entries:       make(map[string]entry[V]),
		sweepInterval: sweepInterval,
		done:          make(chan struct{}),
		now:           time.Now,
	}
}

// Lookup returns the cached value for key if present and not expired.
// Expired entries are deleted as a side effect.
func (c *Cache[V]) Lookup(key string) (V, bool) {
	var zero V
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		c.misses.Add(1)
		return zero, false
	}
	if c.expired(e) {
		delete(c.entries, key)
		c.misses.Add(1)
		return zero, false
	}
	c.hits.Add(1)
	return e.value, true
}

// Store inserts or overwrites the entry for key, resetting its age to zero.
// A non-positive TTL means the value is not cached.
func (c *Cache[V]) Store(key string, value V, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	c.mu.Lock()
	c.entries[key] = entry[V]{value: value, storedAt: c.now(), ttl: ttl}
	c.mu.Unlock()
}

// Sweep removes all expired entries.
func (c *Cache[V]) Sweep() {
	c.mu.Lock()
	for key, e := range c.entries {
		if c.expired(e) {
			delete(c.entries, key)
		}
	}
	c.mu.Unlock()
}

// Clear drops all entries.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]entry[V])
	c.mu.Unlock()
}

// Len returns the number of entries currently held, expired or not.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns cache performance metrics.
func (c *Cache[V]) Stats() models.CacheStats {
	c.mu.Lock()
	entries := int64(len(c.entries))
	c.mu.Unlock()
	return models.CacheStats{
		Entries: entries,
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
	}
}

// Start launches the periodic background sweep. Call Stop to terminate it.
func (c *Cache[V]) Start() {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ticker := time.NewTicker(c.sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.Sweep()
			case <-c.done:
				return
			}
		}
	}()
}

// Stop terminates the background sweep and waits for it to exit. Safe to
// call more than once, and without a prior Start.
func (c *Cache[V]) Stop() {
	c.stopOnce.Do(func() { close(c.done) })
	c.wg.Wait()
}

// expired reports whether e is past its TTL. An entry is valid through
// exactly storedAt+ttl. Caller must hold c.mu.
func (c *Cache[V]) expired(e entry[V]) bool {
	return c.now().Sub(e.storedAt) > e.ttl
}
