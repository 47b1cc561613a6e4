package introspect

import (
	"context"
	"fmt"
	"strings"

	"github.com/tabulagen/tabula/schema"
)

// A MetadataCache holds a snapshot of introspected metadata. Load
// reports a miss rather than an error so a broken cache degrades to a
// live catalog read.
type MetadataCache interface {
	Load() ([]*schema.Table, bool)
	Store([]*schema.Table) error
}

// A Source adapts a Client into the generator's metadata source,
// optionally fronted by a snapshot cache.
type Source struct {
	client *Client
	schema string
	cache  MetadataCache
}

// SourceOption configures a Source.
type SourceOption func(*Source)

// WithCache fronts the source with a snapshot cache, typically the
// file-backed Cache.
func WithCache(c MetadataCache) SourceOption {
	return func(s *Source) { s.cache = c }
}

// NewSource returns a Source reading schemaName through client.
func NewSource(client *Client, schemaName string, opts ...SourceOption) *Source {
	s := &Source{client: client, schema: schemaName}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Table resolves one table. The name may be a bare table name or a
// qualified "schema.table" key.
func (s *Source) Table(ctx context.Context, name string) (*schema.Table, error) {
	schemaName, tableName := s.schema, name
	if i := strings.IndexByte(name, '.'); i >= 0 {
		schemaName, tableName = name[:i], name[i+1:]
	}
	if cached, ok := s.cachedTables(); ok {
		for _, t := range cached {
			if t.Schema == schemaName && t.Name == tableName {
				return t, nil
			}
		}
	}
	return s.client.Table(ctx, schemaName, tableName)
}

// Tables resolves every base table of the source schema, refreshing
// the cache on a miss.
func (s *Source) Tables(ctx context.Context) ([]*schema.Table, error) {
	if cached, ok := s.cachedTables(); ok {
		return cached, nil
	}
	names, err := s.client.TableNames(ctx, s.schema)
	if err != nil {
		return nil, err
	}
	tables := make([]*schema.Table, 0, len(names))
	for _, name := range names {
		t, err := s.client.Table(ctx, s.schema, name)
		if err != nil {
			return nil, fmt.Errorf("introspect: table %s: %w", name, err)
		}
		tables = append(tables, t)
	}
	if s.cache != nil {
		if err := s.cache.Store(tables); err != nil {
			return nil, err
		}
	}
	return tables, nil
}

func (s *Source) cachedTables() ([]*schema.Table, bool) {
	if s.cache == nil {
		return nil, false
	}
	return s.cache.Load()
}
