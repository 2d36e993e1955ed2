package convert

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaCacheKeyOrderIndependent(t *testing.T) {
	a := NewSchemaCacheKey([]string{"id", "name", "age"})
	b := NewSchemaCacheKey([]string{"age", "id", "name"})
	assert.Equal(t, a, b, "keys built from the same field set in different orders must be equal")
}

func TestSchemaCacheGetMissThenHit(t *testing.T) {
	c := NewSchemaCache(2)
	key := NewSchemaCacheKey([]string{"id", "name"})

	_, ok := c.Get(key)
	assert.False(t, ok, "expected a miss before any insert")

	c.Insert(key, []string{"id", "name"})
	schema, ok := c.Get(key)
	require.True(t, ok, "expected a hit after insert")
	assert.Equal(t, []string{"id", "name"}, schema)

	stats := c.Statistics()
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)
	assert.Equal(t, 1, stats.Size)
}

func TestSchemaCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewSchemaCache(2)
	keyA := NewSchemaCacheKey([]string{"a"})
	keyB := NewSchemaCacheKey([]string{"b"})
	keyC := NewSchemaCacheKey([]string{"c"})

	c.Insert(keyA, []string{"a"})
	c.Insert(keyB, []string{"b"})

	// Access A again so B becomes the least-recently-used entry.
	_, _ = c.Get(keyA)

	c.Insert(keyC, []string{"c"})

	_, aStillPresent := c.Get(keyA)
	_, bStillPresent := c.Get(keyB)
	_, cPresent := c.Get(keyC)

	assert.True(t, aStillPresent, "A was recently accessed and should survive eviction")
	assert.False(t, bStillPresent, "B was least recently used and should have been evicted")
	assert.True(t, cPresent, "C was just inserted and should be present")

	stats := c.Statistics()
	assert.Equal(t, uint64(1), stats.Evictions)
	assert.Equal(t, 2, stats.Capacity)
}

func TestSchemaCacheClearResetsCountersAndEntries(t *testing.T) {
	c := NewSchemaCache(4)
	key := NewSchemaCacheKey([]string{"id"})
	c.Insert(key, []string{"id"})
	c.Get(key)
	c.Get(NewSchemaCacheKey([]string{"missing"}))

	c.Clear()

	assert.Equal(t, 0, c.Len())
	stats := c.Statistics()
	assert.Equal(t, uint64(0), stats.Hits)
	assert.Equal(t, uint64(0), stats.Misses)
	assert.Equal(t, uint64(0), stats.Evictions)
}

func TestCacheStatisticsHitRate(t *testing.T) {
	stats := CacheStatistics{Hits: 3, Misses: 1}
	assert.InDelta(t, 0.75, stats.HitRate(), 0.0001)
	assert.InDelta(t, 0.25, stats.MissRate(), 0.0001)

	empty := CacheStatistics{}
	assert.Equal(t, 0.0, empty.HitRate())
}
