// Package filter compiles an open-ended key/value filter map into a
// parameterized, dialect-correct SQL fragment. Filter keys follow the
// "<column>_<operator>" wire format (or a bare "<column>" for implicit
// equality); every resolved column name is validated against the table's
// filterable-column whitelist before it is embedded in SQL text, and every
// scalar value goes into the positional parameter list, never into the
// text.
package filter

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Reserved control keys. They never name filter columns; the compiler
// consumes them for sorting and pagination after condition building.
const (
	KeyPage   = "page"
	KeyLimit  = "limit"
	KeySort   = "sort"
	KeyOrder  = "order"
	KeyOffset = "offset"
)

// reservedKeys is the set of control keys skipped during condition
// building.
var reservedKeys = map[string]struct{}{
	KeyPage:   {},
	KeyLimit:  {},
	KeySort:   {},
	KeyOrder:  {},
	KeyOffset: {},
}

// IsReservedKey reports whether key is a pagination/sort control key.
func IsReservedKey(key string) bool {
	_, ok := reservedKeys[key]
	return ok
}

// A Query is an ordered filter map. Go maps do not preserve insertion
// order, but compilation is order-dependent (placeholder numbering follows
// the order conditions were supplied), so Query keeps its own key order.
// The zero value is ready to use.
type Query struct {
	keys   []string
	values map[string]any
}

// NewQuery returns an empty query.
func NewQuery() *Query {
	return &Query{values: make(map[string]any)}
}

// Set stores a value under key, appending the key on first use and
// overwriting in place on repeats.
func (q *Query) Set(key string, value any) *Query {
	if q.values == nil {
		q.values = make(map[string]any)
	}
	if _, ok := q.values[key]; !ok {
		q.keys = append(q.keys, key)
	}
	q.values[key] = value
	return q
}

// Get returns the value stored under key.
func (q *Query) Get(key string) (any, bool) {
	v, ok := q.values[key]
	return v, ok
}

// Keys returns the keys in insertion order. The returned slice is shared;
// callers must not mutate it.
func (q *Query) Keys() []string { return q.keys }

// Len returns the number of entries.
func (q *Query) Len() int { return len(q.keys) }

// UnmarshalJSON decodes a flat JSON object preserving its document order,
// which becomes the compilation order.
func (q *Query) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("filter: query must be a JSON object")
	}
	q.keys = nil
	q.values = make(map[string]any)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key := keyTok.(string)
		var v any
		if err := dec.Decode(&v); err != nil {
			return err
		}
		q.Set(key, v)
	}
	_, err = dec.Token() // closing brace
	return err
}

// MarshalJSON encodes the query as a flat JSON object in insertion order.
func (q *Query) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range q.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(q.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
