package gen

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/tabulagen/tabula/schema"
)

// A Record is one checksum-store entry for a generation target.
// GeneratedAt is fixed at first creation; Checksum, Metadata and
// UpdatedAt are overwritten on each accepted regeneration.
type Record struct {
	Checksum    string        `json:"checksum"`
	Metadata    *schema.Table `json:"metadata"`
	GeneratedAt time.Time     `json:"generatedAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// A Store is the durable map from "schema.table" keys to generation
// records. Record access is safe for concurrent use across distinct
// keys; callers that regenerate the same table concurrently must
// serialize externally.
type Store struct {
	path    string
	mu      sync.Mutex
	records map[string]Record
	now     func() time.Time
}

// LoadStore reads the store file at path. A missing file yields an empty
// store; any other read or decode failure is an error.
func LoadStore(path string) (*Store, error) {
	s := &Store{path: path, records: make(map[string]Record), now: time.Now}
	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("gen: read checksum store %s: %w", path, err)
	}
	if err := json.Unmarshal(b, &s.records); err != nil {
		return nil, fmt.Errorf("gen: decode checksum store %s: %w", path, err)
	}
	return s, nil
}

// Get returns the record for key.
func (s *Store) Get(key string) (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.records[key]
	return r, ok
}

// Keys returns all store keys, sorted.
func (s *Store) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.records))
	for k := range s.records {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Put records an accepted generation for key. The first write fixes
// GeneratedAt; later writes keep it and refresh UpdatedAt.
func (s *Store) Put(key, checksum string, t *schema.Table) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	rec := Record{Checksum: checksum, Metadata: t, GeneratedAt: now, UpdatedAt: now}
	if prev, ok := s.records[key]; ok {
		rec.GeneratedAt = prev.GeneratedAt
	}
	s.records[key] = rec
}

// Save writes the store atomically: the serialized map goes to a
// temporary file in the same directory, then renames over the target.
func (s *Store) Save() error {
	s.mu.Lock()
	b, err := json.MarshalIndent(s.records, "", "  ")
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("gen: encode checksum store: %w", err)
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("gen: create store directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".store-*")
	if err != nil {
		return fmt.Errorf("gen: write checksum store: %w", err)
	}
	if _, err := tmp.Write(append(b, '\n')); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("gen: write checksum store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("gen: write checksum store: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("gen: write checksum store: %w", err)
	}
	return nil
}
