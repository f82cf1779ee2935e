package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

// fakeClock lets tests advance cache time without sleeping.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func newTestCache(t *testing.T) (*Cache[string], *fakeClock) {
	t.Helper()
	clk := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	c := New[string](time.Minute)
	c.now = clk.Now
	t.Cleanup(c.Stop)
	return c, clk
}

func TestLookupMiss(t *testing.T) {
	c, _ := newTestCache(t)
	if _, ok := c.Lookup("absent"); ok {
		t.Error("expected miss for absent key")
	}
}

func TestStoreAndLookup(t *testing.T) {
	c, _ := newTestCache(t)
	c.Store("k", "v", time.Minute)

	got, ok := c.Lookup("k")
	if !ok {
		t.Fatal("expected hit")
	}
	if got != "v" {
		t.Errorf("expected v, got %s", got)
	}
}

func TestExpiryBoundary(t *testing.T) {
	c, clk := newTestCache(t)
	c.Store("k", "v", time.Minute)

	// Just inside the TTL.
	clk.Advance(time.Minute - time.Millisecond)
	if _, ok := c.Lookup("k"); !ok {
		t.Error("expected hit at T-ε")
	}

	// Just past it.
	clk.Advance(2 * time.Millisecond)
	if _, ok := c.Lookup("k"); ok {
		t.Error("expected miss at T+ε")
	}
}

func TestLazyEviction(t *testing.T) {
	c, clk := newTestCache(t)
	c.Store("k", "v", time.Second)
	clk.Advance(2 * time.Second)

	if _, ok := c.Lookup("k"); ok {
		t.Fatal("expected miss after expiry")
	}
	if c.Len() != 0 {
		t.Errorf("expected lookup to evict expired entry, %d entries remain", c.Len())
	}
}

func TestStoreResetsAge(t *testing.T) {
	c, clk := newTestCache(t)
	c.Store("k", "old", time.Minute)
	clk.Advance(50 * time.Second)
	c.Store("k", "new", time.Minute)
	clk.Advance(30 * time.Second)

	got, ok := c.Lookup("k")
	if !ok {
		t.Fatal("expected hit: overwrite should reset entry age")
	}
	if got != "new" {
		t.Errorf("expected new value, got %s", got)
	}
}

func TestSweep(t *testing.T) {
	c, clk := newTestCache(t)
	c.Store("stale", "v", time.Second)
	c.Store("fresh", "v", time.Hour)
	clk.Advance(2 * time.Second)

	c.Sweep()
	if c.Len() != 1 {
		t.Errorf("expected 1 entry after sweep, got %d", c.Len())
	}
	if _, ok := c.Lookup("fresh"); !ok {
		t.Error("sweep removed a fresh entry")
	}

	// A sweep over only-fresh entries is a no-op.
	c.Sweep()
	if c.Len() != 1 {
		t.Errorf("expected sweep no-op on fresh entries, got %d entries", c.Len())
	}
}

func TestClear(t *testing.T) {
	c, _ := newTestCache(t)
	c.Store("a", "v", time.Hour)
	c.Store("b", "v", time.Hour)

	c.Clear()
	if c.Len() != 0 {
		t.Errorf("expected 0 entries after clear, got %d", c.Len())
	}
}

func TestZeroTTLNotCached(t *testing.T) {
	c, _ := newTestCache(t)
	c.Store("k", "v", 0)
	if _, ok := c.Lookup("k"); ok {
		t.Error("ttl=0 should not cache")
	}
}

func TestStats(t *testing.T) {
	c, _ := newTestCache(t)
	c.Store("k", "v", time.Hour)
	c.Lookup("k") // hit
	c.Lookup("x") // miss

	stats := c.Stats()
	if stats.Entries != 1 {
		t.Errorf("expected 1 entry, got %d", stats.Entries)
	}
	if stats.Hits != 1 {
		t.Errorf("expected 1 hit, got %d", stats.Hits)
	}
	if stats.Misses != 1 {
		t.Errorf("expected 1 miss, got %d", stats.Misses)
	}
}

func TestBackgroundSweep(t *testing.T) {
	c := New[string](10 * time.Millisecond)
	c.Store("k", "v", time.Millisecond)
	c.Start()
	defer c.Stop()

	deadline := time.Now().Add(time.Second)
	for c.Len() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("background sweep did not remove expired entry")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestConcurrentAccess(t *testing.T) {
	c := New[string](time.Minute)
	defer c.Stop()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				key := fmt.Sprintf("key-%d", j%10)
				c.Store(key, "v", time.Minute)
				c.Lookup(key)
				if j%50 == 0 {
					c.Sweep()
				}
			}
		}(i)
	}
	wg.Wait()
}
