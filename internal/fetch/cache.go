package fetch

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Store keeps fetched bytes keyed by URL.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte) error
}

// MemoryCache is an in-process Store.
//
// Entries stay until Evict or Clear is called, or until the cache holds
// maxEntries items, in which case an arbitrary entry is dropped to make
// room.
type MemoryCache struct {
	mu         sync.RWMutex
	entries    map[string][]byte
	maxEntries int
}

// NewMemoryCache creates a cache holding at most maxEntries items. Zero or
// less means unbounded.
func NewMemoryCache(maxEntries int) *MemoryCache {
	return &MemoryCache{
		entries:    make(map[string][]byte),
		maxEntries: maxEntries,
	}
}

// Get returns the cached bytes for key.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	data, ok := c.entries[key]
	c.mu.RUnlock()
	return data, ok, nil
}

// Set stores data under key.
func (c *MemoryCache) Set(_ context.Context, key string, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; !ok && c.maxEntries > 0 && len(c.entries) >= c.maxEntries {
		for k := range c.entries {
			delete(c.entries, k)
			break
		}
	}
	c.entries[key] = data
	return nil
}

// Len returns the number of cached entries.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Evict removes key from the cache.
func (c *MemoryCache) Evict(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Clear removes every entry.
func (c *MemoryCache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string][]byte)
	c.mu.Unlock()
}

// CachingFetcher serves repeated URLs from a Store.
type CachingFetcher struct {
	next   Fetcher
	store  Store
	logger *zap.Logger
}

// NewCachingFetcher puts store in front of next.
func NewCachingFetcher(next Fetcher, store Store, logger *zap.Logger) *CachingFetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachingFetcher{next: next, store: store, logger: logger}
}

// Fetch returns the cached bytes for url or fetches and caches them. Store
// failures are logged and otherwise ignored.
func (f *CachingFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	data, ok, err := f.store.Get(ctx, url)
	if err != nil {
		f.logger.Warn("cache lookup failed", zap.String("url", url), zap.Error(err))
	}
	if ok {
		f.logger.Debug("cache hit", zap.String("url", url))
		return data, nil
	}

	data, err = f.next.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	if err := f.store.Set(ctx, url, data); err != nil {
		f.logger.Warn("cache store failed", zap.String("url", url), zap.Error(err))
	}
	return data, nil
}
