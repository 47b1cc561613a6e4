package schema

import (
	"encoding/json"
	"slices"

	"github.com/tabulagen/tabula"
	"github.com/tabulagen/tabula/ident"
)

// A Table is the identity of a generation target. It is immutable per
// generation run: introspection or the caller builds one, the generator
// consumes it, and regeneration re-fetches it.
type Table struct {
	Schema        string   `json:"schema"`
	Name          string   `json:"name"`
	Columns       []Column `json:"columns"`
	PrimaryKey    string   `json:"primary_key,omitempty"`
	UniqueColumns []string `json:"unique_columns,omitempty"`
	HasTimestamps bool     `json:"has_timestamps,omitempty"`
	HasSoftDelete bool     `json:"has_soft_delete,omitempty"`
}

// New builds a Table from column declarations. The primary key and unique
// column set are derived from the column flags.
func New(schemaName, tableName string, cols ...Column) *Table {
	t := &Table{Schema: schemaName, Name: tableName, Columns: cols}
	for _, c := range cols {
		if c.PrimaryKey && t.PrimaryKey == "" {
			t.PrimaryKey = c.Name
		}
		if c.Unique {
			t.UniqueColumns = append(t.UniqueColumns, c.Name)
		}
	}
	return t
}

// WithTimestamps marks the table as carrying created/updated columns.
func (t *Table) WithTimestamps() *Table {
	t.HasTimestamps = true
	return t
}

// WithSoftDelete marks the table as using a deletion flag column.
func (t *Table) WithSoftDelete() *Table {
	t.HasSoftDelete = true
	return t
}

// Key returns the "schema.table" key used by the checksum store.
func (t *Table) Key() string { return t.Schema + "." + t.Name }

// Column returns the column with the given name, or nil.
func (t *Table) Column(name string) *Column {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i]
		}
	}
	return nil
}

// FilterableColumns returns the names of all filterable columns in
// declaration order. This is the whitelist handed to the query compiler.
func (t *Table) FilterableColumns() []string {
	var names []string
	for _, c := range t.Columns {
		if c.Filterable {
			names = append(names, c.Name)
		}
	}
	return names
}

// Validate checks that the table, schema and every column name is a safe
// SQL identifier and that every column type is declared.
func (t *Table) Validate() error {
	if _, err := ident.Validate(t.Schema, nil, "schema"); err != nil {
		return err
	}
	if _, err := ident.Validate(t.Name, nil, "table"); err != nil {
		return err
	}
	if len(t.Columns) == 0 {
		return tabula.NewInvalidIdentifierError(t.Key(), "table", "no columns")
	}
	seen := make(map[string]struct{}, len(t.Columns))
	for _, c := range t.Columns {
		name, err := ident.Validate(c.Name, nil, "column")
		if err != nil {
			return err
		}
		if _, dup := seen[name]; dup {
			return tabula.NewInvalidIdentifierError(name, "column", "duplicate column")
		}
		seen[name] = struct{}{}
		if !c.Type.Valid() {
			return tabula.NewInvalidIdentifierError(name, "column", "invalid column type")
		}
	}
	return nil
}

// Canonical returns a stable serialization of the table used for checksum
// computation: struct field order is fixed and the unique column set is
// sorted, so two semantically identical tables always serialize
// identically.
func (t *Table) Canonical() ([]byte, error) {
	c := *t
	c.UniqueColumns = slices.Clone(t.UniqueColumns)
	slices.Sort(c.UniqueColumns)
	return json.Marshal(&c)
}
