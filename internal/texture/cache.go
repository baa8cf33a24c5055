package texture

import (
	"path/filepath"
	"sync"
)

// Cache is a concurrency-safe set of per-directory indexes.
// Each scan directory is walked at most once.
type Cache struct {
	mu    sync.RWMutex
	items map[string]*cacheEntry
	root  string
	exts  []string
}

type cacheEntry struct {
	index *Index
	err   error
}

// NewCache creates a cache whose asset paths are relative to materialsRoot.
func NewCache(materialsRoot string, exts []string) *Cache {
	return &Cache{
		items: make(map[string]*cacheEntry),
		root:  materialsRoot,
		exts:  exts,
	}
}

// Index returns the index for scanDir, building it on first use.
func (c *Cache) Index(scanDir string) (*Index, error) {
	key := filepath.Clean(scanDir)

	// Fast path: read lock
	c.mu.RLock()
	if entry, exists := c.items[key]; exists {
		c.mu.RUnlock()
		return entry.index, entry.err
	}
	c.mu.RUnlock()

	// Slow path: walk the directory
	assets, err := Collect(key, c.root, c.exts)
	entry := &cacheEntry{index: NewIndex(assets), err: err}

	// Write lock with double-check
	c.mu.Lock()
	if existing, exists := c.items[key]; exists {
		c.mu.Unlock()
		return existing.index, existing.err
	}
	c.items[key] = entry
	c.mu.Unlock()

	return entry.index, entry.err
}

// Len returns the number of directories indexed so far.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
