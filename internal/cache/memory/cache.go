// Package memory provides an in-memory cache for single-node deployments
// where Redis is not configured.
package memory

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/prn-tf/vidfeed/internal/repository"
)

// DefaultCleanupInterval is how often expired entries are swept.
const DefaultCleanupInterval = time.Minute

// Cache implements repository.Cache in process memory.
// Counters are stored as decimal strings so Get behaves as it does on Redis.
type Cache struct {
	mu      sync.RWMutex
	items   map[string]entry
	now     func() time.Time
	stopCh  chan struct{}
	stopped bool
}

type entry struct {
	value     []byte
	expiresAt time.Time // zero means no expiry
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// NewCache creates a cache and starts its sweeper. Call Stop to release it.
func NewCache(cleanupInterval time.Duration) *Cache {
	if cleanupInterval <= 0 {
		cleanupInterval = DefaultCleanupInterval
	}

	c := &Cache{
		items:  make(map[string]entry),
		now:    time.Now,
		stopCh: make(chan struct{}),
	}
	go c.sweepLoop(cleanupInterval)
	return c
}

func (c *Cache) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.sweep()
		}
	}
}

func (c *Cache) sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, e := range c.items {
		if e.expired(now) {
			delete(c.items, key)
		}
	}
}

// Stop stops the sweeper.
func (c *Cache) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.stopped {
		close(c.stopCh)
		c.stopped = true
	}
}

// lookup returns a live entry; callers hold the lock.
func (c *Cache) lookup(key string) (entry, bool) {
	e, ok := c.items[key]
	if !ok || e.expired(c.now()) {
		return entry{}, false
	}
	return e, true
}

func (c *Cache) store(key string, value []byte, ttl time.Duration) {
	e := entry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expiresAt = c.now().Add(ttl)
	}
	c.items[key] = e
}

// Get retrieves a copy of the value stored at key.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.lookup(key)
	if !ok {
		return nil, repository.ErrCacheMiss
	}
	return append([]byte(nil), e.value...), nil
}

// Set stores a value with an optional TTL.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.store(key, value, ttl)
	return nil
}

// SetNX sets a value only if the key doesn't exist.
func (c *Cache) SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.lookup(key); ok {
		return false, nil
	}
	c.store(key, value, ttl)
	return true, nil
}

// Delete removes values by key.
func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, key := range keys {
		delete(c.items, key)
	}
	return nil
}

// Exists checks if a key exists.
func (c *Cache) Exists(ctx context.Context, key string) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	_, ok := c.lookup(key)
	return ok, nil
}

// Increment atomically adds delta to the counter at key. A missing or
// non-numeric value counts as zero. The existing TTL is kept.
func (c *Cache) Increment(ctx context.Context, key string, delta int64) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var current int64
	e, ok := c.lookup(key)
	if ok {
		current, _ = strconv.ParseInt(string(e.value), 10, 64)
	}

	next := current + delta
	e.value = []byte(strconv.FormatInt(next, 10))
	c.items[key] = e
	return next, nil
}

var _ repository.Cache = (*Cache)(nil)
