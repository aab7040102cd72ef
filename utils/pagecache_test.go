package utils

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryPageCachePutGet(t *testing.T) {
	c := NewMemoryPageCache()

	_, ok := c.Get(IndexCacheKey(1))
	assert.False(t, ok)

	c.Put(IndexCacheKey(1), []byte("snapshot"), time.Minute)
	got, ok := c.Get(IndexCacheKey(1))
	require.True(t, ok)
	assert.Equal(t, []byte("snapshot"), got)
}

func TestMemoryPageCacheExpiry(t *testing.T) {
	c := NewMemoryPageCache()
	c.Put("k", []byte("v"), 10*time.Millisecond)

	_, ok := c.Get("k")
	require.True(t, ok)

	time.Sleep(20 * time.Millisecond)
	_, ok = c.Get("k")
	assert.False(t, ok)
}

func TestMemoryPageCacheInvalidateByPrefix(t *testing.T) {
	c := NewMemoryPageCache()
	c.Put(IndexCacheKey(1), []byte("p1"), time.Minute)
	c.Put(IndexCacheKey(2), []byte("p2"), time.Minute)
	c.Put("cache:other:page=1", []byte("other"), time.Minute)

	c.Invalidate(IndexCachePrefix)

	_, ok := c.Get(IndexCacheKey(1))
	assert.False(t, ok)
	_, ok = c.Get(IndexCacheKey(2))
	assert.False(t, ok)
	_, ok = c.Get("cache:other:page=1")
	assert.True(t, ok, "other prefixes must survive an index clear")
}

func TestMemoryPageCacheSnapshotIsStable(t *testing.T) {
	c := NewMemoryPageCache()
	val := []byte("original")
	c.Put("k", val, time.Minute)
	val[0] = 'X'

	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, []byte("original"), got)
}

func TestMemoryPageCacheGetReturnsCopy(t *testing.T) {
	c := NewMemoryPageCache()
	c.Put("k", []byte("original"), time.Minute)

	got, ok := c.Get("k")
	require.True(t, ok)
	got[0] = 'X'

	again, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, []byte("original"), again, "mutating a returned value must not corrupt the snapshot")
}

func TestMemoryPageCacheZeroTTLStoresNothing(t *testing.T) {
	c := NewMemoryPageCache()
	c.Put("k", []byte("v"), 0)
	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestMemoryPageCacheConcurrentAccess(t *testing.T) {
	c := NewMemoryPageCache()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				c.Put(IndexCacheKey(j%5), []byte("v"), time.Minute)
				c.Get(IndexCacheKey(j % 5))
				if j%50 == 0 {
					c.Invalidate(IndexCachePrefix)
				}
			}
		}()
	}
	wg.Wait()
}

func TestIndexCacheKey(t *testing.T) {
	assert.Equal(t, "cache:index:page=3", IndexCacheKey(3))
}
