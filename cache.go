package golive

import (
	"log/slog"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// CacheConfig configures the instance cache.
type CacheConfig struct {
	// TTL is the access-based expiry: an instance untouched for this long
	// becomes invisible to lookups. Default 1 hour.
	TTL time.Duration

	// MaxEntries is the hard size ceiling. Once exceeded, oldest-accessed
	// entries are shrunk away regardless of TTL. Default 10,000.
	MaxEntries int

	// SweepInterval is how often the background sweeper removes expired
	// entries. Zero disables the sweeper; expiry is still enforced lazily
	// on lookup.
	SweepInterval time.Duration
}

// DefaultCacheConfig returns the default cache configuration.
func DefaultCacheConfig() *CacheConfig {
	return &CacheConfig{
		TTL:           time.Hour,
		MaxEntries:    10_000,
		SweepInterval: time.Minute,
	}
}

// cacheEntry holds one live component instance. The embedded mutex is the
// instance's exclusive execution lock: handleAction holds it across
// hydrate -> dispatch -> capture -> render. lastAccess is guarded by the
// cache's own lock, not the entry lock.
type cacheEntry struct {
	component  Component
	mu         sync.Mutex
	lastAccess time.Time
}

// InstanceCache is a concurrency-safe store of live component instances
// keyed by "sessionID:componentID", with access-based expiry and a
// maximum-size bound.
//
// Eviction is lazy and never blocks ordinary reads and writes: lookups
// skip expired entries, inserts shrink oldest-accessed entries past the
// ceiling, and an optional background sweeper reclaims expired entries
// between requests. Removal is safe to race with an in-flight action
// because access follows "if found, then locked, then used" - a lookup
// that finds nothing is a soft miss, not a crash.
type InstanceCache struct {
	mu      sync.RWMutex
	entries map[string]*cacheEntry
	config  *CacheConfig
	logger  *slog.Logger

	evictedExpired atomic.Uint64
	evictedSize    atomic.Uint64

	done      chan struct{}
	sweepDone chan struct{}
}

// NewInstanceCache creates an instance cache. A nil config means defaults;
// a nil logger means slog.Default(). The background sweeper starts here
// when the config enables it.
func NewInstanceCache(config *CacheConfig, logger *slog.Logger) *InstanceCache {
	if config == nil {
		config = DefaultCacheConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	c := &InstanceCache{
		entries:   make(map[string]*cacheEntry),
		config:    config,
		logger:    logger.With("component", "instance_cache"),
		done:      make(chan struct{}),
		sweepDone: make(chan struct{}),
	}

	if config.SweepInterval > 0 {
		go c.sweepLoop()
	} else {
		close(c.sweepDone)
	}

	return c
}

// Put stores an instance under key, then shrinks the cache if the ceiling
// was crossed.
func (c *InstanceCache) Put(key string, comp Component) {
	c.mu.Lock()
	c.entries[key] = &cacheEntry{component: comp, lastAccess: time.Now()}
	evicted := c.shrinkLocked()
	c.mu.Unlock()

	if evicted > 0 {
		c.evictedSize.Add(uint64(evicted))
		c.logger.Info("evicted oldest instances over size ceiling",
			"count", evicted,
			"ceiling", c.config.MaxEntries)
	}
}

// Checkout looks up the instance for key and, if present and unexpired,
// acquires its exclusive execution lock. The returned release func must be
// called when the action sequence completes. ok is false when the entry is
// missing or expired - the soft "please refresh" case.
//
// The lock handle lives inside the cache entry, so removal of the entry
// (eviction, clearSession) can race freely with a checked-out instance:
// the in-flight action finishes on its own reference, and later lookups
// simply miss.
func (c *InstanceCache) Checkout(key string) (comp Component, release func(), ok bool) {
	now := time.Now()

	c.mu.Lock()
	entry, found := c.entries[key]
	if !found {
		c.mu.Unlock()
		return nil, nil, false
	}
	if now.Sub(entry.lastAccess) > c.config.TTL {
		delete(c.entries, key)
		c.mu.Unlock()
		c.evictedExpired.Add(1)
		return nil, nil, false
	}
	entry.lastAccess = now
	c.mu.Unlock()

	entry.mu.Lock()
	return entry.component, entry.mu.Unlock, true
}

// Touch bumps the access time without checking out, used on mount renders.
func (c *InstanceCache) Touch(key string) {
	c.mu.Lock()
	if entry, ok := c.entries[key]; ok {
		entry.lastAccess = time.Now()
	}
	c.mu.Unlock()
}

// RemovePrefix removes every entry whose key starts with prefix and
// returns how many were removed. Safe to call with no matching entries.
func (c *InstanceCache) RemovePrefix(prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Len returns the cache's estimated live size. Eviction is lazy, so
// expired-but-unswept entries are included.
func (c *InstanceCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Evicted returns the running eviction counts (expired, over-ceiling).
func (c *InstanceCache) Evicted() (expired, size uint64) {
	return c.evictedExpired.Load(), c.evictedSize.Load()
}

// Close stops the background sweeper. The cache remains usable.
func (c *InstanceCache) Close() {
	select {
	case <-c.done:
	default:
		close(c.done)
	}
	<-c.sweepDone
}

// shrinkLocked evicts oldest-accessed entries until the ceiling holds.
// Caller holds the write lock.
func (c *InstanceCache) shrinkLocked() int {
	over := len(c.entries) - c.config.MaxEntries
	if c.config.MaxEntries <= 0 || over <= 0 {
		return 0
	}

	type aged struct {
		key  string
		last time.Time
	}
	all := make([]aged, 0, len(c.entries))
	for key, entry := range c.entries {
		all = append(all, aged{key: key, last: entry.lastAccess})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].last.Before(all[j].last) })

	for i := 0; i < over; i++ {
		delete(c.entries, all[i].key)
	}
	return over
}

// sweepLoop periodically removes expired entries.
func (c *InstanceCache) sweepLoop() {
	defer close(c.sweepDone)

	ticker := time.NewTicker(c.config.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := c.sweepExpired(); n > 0 {
				c.logger.Info("swept expired instances", "count", n, "remaining", c.Len())
			}
		case <-c.done:
			return
		}
	}
}

func (c *InstanceCache) sweepExpired() int {
	now := time.Now()

	c.mu.Lock()
	removed := 0
	for key, entry := range c.entries {
		if now.Sub(entry.lastAccess) > c.config.TTL {
			delete(c.entries, key)
			removed++
		}
	}
	c.mu.Unlock()

	if removed > 0 {
		c.evictedExpired.Add(uint64(removed))
	}
	return removed
}
