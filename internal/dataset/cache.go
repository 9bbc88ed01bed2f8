package dataset

import (
	"context"
	"path/filepath"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"labordash/internal/infrastructure"
	"labordash/pkg/contracts/domain"
)

// CacheStats is a snapshot of cache activity
type CacheStats struct {
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
	Loads   int64 `json:"loads"`
	Entries int   `json:"entries"`
}

// Cache memoizes loaded tables by path. Entries are replaced only through
// Invalidate or Reload; concurrent misses for one path share a single load.
// Failed loads are never stored.
type Cache struct {
	loader  *Loader
	metrics *infrastructure.DashboardMetrics

	mu      sync.RWMutex
	entries map[string]*domain.Table
	group   singleflight.Group

	hits   atomic.Int64
	misses atomic.Int64
	loads  atomic.Int64
}

// NewCache creates an empty cache backed by loader
func NewCache(loader *Loader) *Cache {
	return &Cache{
		loader:  loader,
		metrics: loader.metrics,
		entries: make(map[string]*domain.Table),
	}
}

func cacheKey(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

// Get returns the memoized table for path, loading it on a miss
func (c *Cache) Get(ctx context.Context, path string) (*domain.Table, error) {
	key := cacheKey(path)

	if table, ok := c.Peek(key); ok {
		c.hits.Add(1)
		infrastructure.RecordCacheLookup(ctx, c.metrics, true)
		return table, nil
	}
	c.misses.Add(1)
	infrastructure.RecordCacheLookup(ctx, c.metrics, false)

	return c.load(ctx, key)
}

func (c *Cache) load(ctx context.Context, key string) (*domain.Table, error) {
	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		c.loads.Add(1)
		table, err := c.loader.Load(ctx, key)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.entries[key] = table
		c.mu.Unlock()
		return table, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Table), nil
}

// Peek returns the memoized table without loading
func (c *Cache) Peek(path string) (*domain.Table, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	table, ok := c.entries[cacheKey(path)]
	return table, ok
}

// Invalidate drops the entry for path
func (c *Cache) Invalidate(path string) {
	key := cacheKey(path)
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	c.group.Forget(key)
}

// Reload drops the entry for path and loads it again. On failure the
// entry stays empty.
func (c *Cache) Reload(ctx context.Context, path string) (*domain.Table, error) {
	c.Invalidate(path)
	return c.load(ctx, cacheKey(path))
}

// Stats returns a snapshot of cache counters
func (c *Cache) Stats() CacheStats {
	c.mu.RLock()
	entries := len(c.entries)
	c.mu.RUnlock()

	return CacheStats{
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
		Loads:   c.loads.Load(),
		Entries: entries,
	}
}
