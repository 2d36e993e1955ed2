package convert

import (
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// SchemaCacheKey identifies an inferred matrix-list schema by its
// sorted field names, so that repeated array shapes in a large JSON
// or YAML document reuse one inference instead of re-sorting keys
// every time.
type SchemaCacheKey struct {
	fields string // sorted field names, joined by \x00
}

// NewSchemaCacheKey builds a key from a set of field names, sorting a
// copy so key equality is order-independent.
func NewSchemaCacheKey(fields []string) SchemaCacheKey {
	cp := append([]string(nil), fields...)
	sortStringsStable(cp)
	return SchemaCacheKey{fields: strings.Join(cp, "\x00")}
}

func sortStringsStable(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

type cacheEntry struct {
	schema      []string
	accessCount uint64
	lastAccess  time.Time
}

// CacheStatistics is a point-in-time snapshot of SchemaCache
// performance counters.
type CacheStatistics struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
	Size      int
	Capacity  int
}

// HitRate returns the fraction of lookups that were cache hits, or 0
// when no lookups have occurred yet.
func (s CacheStatistics) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// MissRate returns 1 - HitRate.
func (s CacheStatistics) MissRate() float64 { return 1 - s.HitRate() }

// SchemaCache is a thread-safe, bounded LRU cache mapping a set of
// observed object field names to the column ordering inferred for
// them, used by FromJSON/FromYAML to skip redundant schema inference
// over arrays of uniformly-shaped objects.
type SchemaCache struct {
	mu       sync.RWMutex
	cache    map[SchemaCacheKey]*cacheEntry
	capacity int

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

// NewSchemaCache returns an empty cache holding at most capacity
// entries.
func NewSchemaCache(capacity int) *SchemaCache {
	return &SchemaCache{
		cache:    make(map[SchemaCacheKey]*cacheEntry, capacity),
		capacity: capacity,
	}
}

// Get returns the cached schema for key, or (nil, false) on a miss.
func (c *SchemaCache) Get(key SchemaCacheKey) ([]string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.cache[key]
	if !ok {
		c.misses.Add(1)
		return nil, false
	}
	entry.accessCount++
	entry.lastAccess = time.Now()
	c.hits.Add(1)
	return entry.schema, true
}

// Insert records schema under key, evicting the least recently used
// entry first if the cache is already at capacity.
func (c *SchemaCache) Insert(key SchemaCacheKey, schema []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.cache[key]; !exists && len(c.cache) >= c.capacity && c.capacity > 0 {
		c.evictLRU()
	}
	c.cache[key] = &cacheEntry{schema: schema, accessCount: 1, lastAccess: time.Now()}
}

func (c *SchemaCache) evictLRU() {
	var lruKey SchemaCacheKey
	var lru *cacheEntry
	for k, e := range c.cache {
		if lru == nil || e.lastAccess.Before(lru.lastAccess) ||
			(e.lastAccess.Equal(lru.lastAccess) && e.accessCount < lru.accessCount) {
			lruKey, lru = k, e
		}
	}
	if lru != nil {
		delete(c.cache, lruKey)
		c.evictions.Add(1)
	}
}

// Statistics returns a snapshot of the cache's hit/miss/eviction
// counters and current size.
func (c *SchemaCache) Statistics() CacheStatistics {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return CacheStatistics{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
		Size:      len(c.cache),
		Capacity:  c.capacity,
	}
}

// Clear empties the cache and resets its statistics.
func (c *SchemaCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = make(map[SchemaCacheKey]*cacheEntry, c.capacity)
	c.hits.Store(0)
	c.misses.Store(0)
	c.evictions.Store(0)
}

// Len returns the number of schemas currently cached.
func (c *SchemaCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}
