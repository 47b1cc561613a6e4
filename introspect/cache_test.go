package introspect

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tabulagen/tabula/schema"
)

func cacheFixture() []*schema.Table {
	return []*schema.Table{
		schema.New("public", "orders",
			schema.UUID("id").PrimaryKey().Column(),
			schema.String("name").MaxLen(64).Filterable().Column(),
		),
	}
}

func TestCacheRoundTrip(t *testing.T) {
	t.Parallel()
	c := NewCache(filepath.Join(t.TempDir(), "cache", "snapshot.msgpack"), 0)
	_, ok := c.Load()
	assert.False(t, ok, "empty cache must miss")

	require.NoError(t, c.Store(cacheFixture()))
	tables, ok := c.Load()
	require.True(t, ok)
	require.Len(t, tables, 1)
	assert.Equal(t, "public.orders", tables[0].Key())
	assert.Equal(t, "id", tables[0].PrimaryKey)
	name := tables[0].Column("name")
	require.NotNil(t, name)
	require.NotNil(t, name.MaxLen)
	assert.Equal(t, 64, *name.MaxLen)
}

func TestCacheTTL(t *testing.T) {
	t.Parallel()
	c := NewCache(filepath.Join(t.TempDir(), "snapshot.msgpack"), time.Minute)
	require.NoError(t, c.Store(cacheFixture()))

	_, ok := c.Load()
	assert.True(t, ok, "fresh snapshot must hit")

	c.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, ok = c.Load()
	assert.False(t, ok, "snapshot older than the TTL must miss")
}

func TestCacheInvalidate(t *testing.T) {
	t.Parallel()
	c := NewCache(filepath.Join(t.TempDir(), "snapshot.msgpack"), 0)
	require.NoError(t, c.Invalidate(), "missing cache file is fine")

	require.NoError(t, c.Store(cacheFixture()))
	require.NoError(t, c.Invalidate())
	_, ok := c.Load()
	assert.False(t, ok)
}

func TestCacheIgnoresCorruptFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "snapshot.msgpack")
	c := NewCache(path, 0)
	require.NoError(t, c.Store(cacheFixture()))

	// scribble over the snapshot
	require.NoError(t, os.WriteFile(path, []byte("not msgpack"), 0o644))
	_, ok := c.Load()
	assert.False(t, ok)
}
