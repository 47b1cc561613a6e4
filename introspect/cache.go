package introspect

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/tabulagen/tabula/schema"
)

// A Cache persists one introspection snapshot so repeated generator
// runs skip the catalog round trips. Entries expire after the TTL.
type Cache struct {
	path string
	ttl  time.Duration
	now  func() time.Time
}

type cacheEntry struct {
	Tables   []*schema.Table
	CachedAt time.Time
}

var _ MetadataCache = (*Cache)(nil)

// NewCache returns a Cache at path with the given TTL. A TTL of zero
// never expires.
func NewCache(path string, ttl time.Duration) *Cache {
	return &Cache{path: path, ttl: ttl, now: time.Now}
}

// Load returns the cached snapshot, or ok=false when the cache is
// absent, expired or unreadable. Cache misses are never errors.
func (c *Cache) Load() ([]*schema.Table, bool) {
	buf, err := os.ReadFile(c.path)
	if err != nil {
		return nil, false
	}
	var entry cacheEntry
	if err := msgpack.Unmarshal(buf, &entry); err != nil {
		return nil, false
	}
	if c.ttl > 0 && c.now().Sub(entry.CachedAt) > c.ttl {
		return nil, false
	}
	return entry.Tables, true
}

// Store writes a snapshot, replacing any previous one.
func (c *Cache) Store(tables []*schema.Table) error {
	buf, err := msgpack.Marshal(cacheEntry{Tables: tables, CachedAt: c.now()})
	if err != nil {
		return fmt.Errorf("introspect: encode cache: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("introspect: write cache: %w", err)
	}
	if err := os.WriteFile(c.path, buf, 0o644); err != nil {
		return fmt.Errorf("introspect: write cache: %w", err)
	}
	return nil
}

// Invalidate removes the snapshot. A missing file is not an error.
func (c *Cache) Invalidate() error {
	err := os.Remove(c.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("introspect: invalidate cache: %w", err)
	}
	return nil
}
