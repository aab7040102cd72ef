package utils

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// IndexCachePrefix scopes every cached rendering of the global index.
const IndexCachePrefix = "cache:index:"

// IndexCacheKey returns the cache key for one page of the global index.
func IndexCacheKey(page int) string {
	return IndexCachePrefix + "page=" + strconv.Itoa(page)
}

// PageCache holds pre-rendered response snapshots for the global index
// page. Entries live until their TTL expires or an operator clears them;
// writes elsewhere in the system never touch the cache, so a snapshot
// stays byte-stable for its whole lifetime. Instances are injected into
// the controllers that need them.
type PageCache interface {
	// Get returns the snapshot stored under key, if present and unexpired.
	Get(key string) ([]byte, bool)
	// Put stores a snapshot under key for the given lifetime.
	Put(key string, val []byte, ttl time.Duration)
	// Invalidate drops every snapshot whose key starts with prefix.
	Invalidate(prefix string)
}

// NewPageCache returns a Redis-backed cache when a client is available,
// falling back to a process-local cache otherwise.
func NewPageCache(rc *redis.Client) PageCache {
	if rc == nil {
		return NewMemoryPageCache()
	}
	return &redisPageCache{rc: rc}
}

type redisPageCache struct {
	rc *redis.Client
}

func (c *redisPageCache) Get(key string) ([]byte, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	b, err := c.rc.Get(ctx, key).Bytes()
	if err != nil {
		if Sugar != nil {
			Sugar.Debugf("cache get miss key=%s err=%v", key, err)
		}
		return nil, false
	}
	return b, true
}

func (c *redisPageCache) Put(key string, val []byte, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := c.rc.Set(ctx, key, val, ttl).Err(); err != nil {
		if Sugar != nil {
			Sugar.Warnf("cache set failed key=%s err=%v", key, err)
		}
	}
}

func (c *redisPageCache) Invalidate(prefix string) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	var cursor uint64
	for i := 0; i < 10; i++ { // bound SCAN rounds
		keys, cur, err := c.rc.Scan(ctx, cursor, prefix+"*", 1000).Result()
		if err != nil {
			break
		}
		cursor = cur
		if len(keys) > 0 {
			pipe := c.rc.Pipeline()
			for _, k := range keys {
				pipe.Del(ctx, k)
			}
			_, _ = pipe.Exec(ctx)
		}
		if cursor == 0 {
			break
		}
	}
}

type memoryCacheEntry struct {
	val       []byte
	expiresAt time.Time
}

type memoryPageCache struct {
	mu      sync.RWMutex
	entries map[string]memoryCacheEntry
}

// NewMemoryPageCache returns a cache backed by a process-local map.
// Single-instance deployments and tests only.
func NewMemoryPageCache() PageCache {
	return &memoryPageCache{entries: map[string]memoryCacheEntry{}}
}

func (c *memoryPageCache) Get(key string) ([]byte, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if time.Now().After(entry.expiresAt) {
		c.mu.Lock()
		// Re-check under the write lock; a Put may have raced the expiry.
		if cur, ok := c.entries[key]; ok && time.Now().After(cur.expiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, false
	}
	// Hand out a copy so callers cannot mutate the stored snapshot.
	out := make([]byte, len(entry.val))
	copy(out, entry.val)
	return out, true
}

func (c *memoryPageCache) Put(key string, val []byte, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	snapshot := make([]byte, len(val))
	copy(snapshot, val)
	c.mu.Lock()
	c.entries[key] = memoryCacheEntry{val: snapshot, expiresAt: time.Now().Add(ttl)}
	c.mu.Unlock()
}

func (c *memoryPageCache) Invalidate(prefix string) {
	c.mu.Lock()
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
		}
	}
	c.mu.Unlock()
}
