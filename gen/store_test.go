package gen_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tabulagen/tabula/gen"
)

func TestLoadStoreMissingFile(t *testing.T) {
	t.Parallel()
	s, err := gen.LoadStore(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)
	assert.Empty(t, s.Keys())
}

func TestLoadStoreCorruptFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "checksums.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	_, err := gen.LoadStore(path)
	require.Error(t, err)
}

func TestStoreRoundTrip(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "nested", "checksums.json")
	table := ordersTable()
	sum, err := gen.Checksum(table)
	require.NoError(t, err)

	s, err := gen.LoadStore(path)
	require.NoError(t, err)
	s.Put(table.Key(), sum, table)
	require.NoError(t, s.Save())

	reloaded, err := gen.LoadStore(path)
	require.NoError(t, err)
	rec, ok := reloaded.Get("public.orders")
	require.True(t, ok)
	assert.Equal(t, sum, rec.Checksum)
	require.NotNil(t, rec.Metadata)
	assert.Equal(t, "orders", rec.Metadata.Name)
	assert.False(t, rec.GeneratedAt.IsZero())
	assert.Equal(t, rec.GeneratedAt, rec.UpdatedAt)
}

func TestStorePreservesGeneratedAt(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "checksums.json")
	table := ordersTable()

	s, err := gen.LoadStore(path)
	require.NoError(t, err)
	s.Put(table.Key(), "aaa", table)
	first, _ := s.Get(table.Key())
	require.NoError(t, s.Save())

	s, err = gen.LoadStore(path)
	require.NoError(t, err)
	s.Put(table.Key(), "bbb", table)
	rec, ok := s.Get(table.Key())
	require.True(t, ok)
	assert.Equal(t, "bbb", rec.Checksum)
	assert.Equal(t, first.GeneratedAt.UTC(), rec.GeneratedAt.UTC(),
		"first generation time must survive regeneration")
	assert.True(t, rec.UpdatedAt.After(rec.GeneratedAt) || rec.UpdatedAt.Equal(rec.GeneratedAt))
}

func TestStoreSaveLeavesNoTempFiles(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "checksums.json")
	s, err := gen.LoadStore(path)
	require.NoError(t, err)
	s.Put("public.orders", "abc", ordersTable())
	require.NoError(t, s.Save())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "checksums.json", entries[0].Name())
}
