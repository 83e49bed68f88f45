package build

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/conduit-lang/parcelgen/internal/compiler/schema"
)

// CacheEntry is a parsed schema together with the hash of the bytes it was
// parsed from.
type CacheEntry struct {
	Path     string
	Hash     uint64
	Schema   *schema.Schema
	CachedAt time.Time
}

// Cache keeps parsed schemas between builds. A file is parsed again only when
// its content changes. Failed parses are not cached.
type Cache struct {
	entries map[string]*CacheEntry
	hits    int
	misses  int
	mu      sync.Mutex
}

// CacheStats contains cache statistics
type CacheStats struct {
	Entries int
	Hits    int
	Misses  int
}

// NewCache creates an empty schema cache
func NewCache() *Cache {
	return &Cache{entries: make(map[string]*CacheEntry)}
}

// Load returns the schema at path, parsing it only if the file changed since
// it was last loaded.
func (c *Cache) Load(path string) (*schema.Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		c.Invalidate(path)
		return nil, fmt.Errorf("failed to read schema: %w", err)
	}
	hash := xxhash.Sum64(data)

	c.mu.Lock()
	if entry, ok := c.entries[path]; ok && entry.Hash == hash {
		c.hits++
		c.mu.Unlock()
		return entry.Schema, nil
	}
	c.misses++
	c.mu.Unlock()

	s, err := schema.Parse(path, data)
	if err != nil {
		c.Invalidate(path)
		return nil, err
	}

	c.mu.Lock()
	c.entries[path] = &CacheEntry{Path: path, Hash: hash, Schema: s, CachedAt: time.Now()}
	c.mu.Unlock()
	return s, nil
}

// Invalidate removes a file from the cache
func (c *Cache) Invalidate(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, path)
}

// Stats returns cache statistics
func (c *Cache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CacheStats{Entries: len(c.entries), Hits: c.hits, Misses: c.misses}
}
