// Package introspect builds table metadata from a live database
// catalog: information_schema on Postgres and MySQL, table_info
// pragmas on SQLite. The result feeds the generator exactly like
// hand-written metadata would.
package introspect

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/tabulagen/tabula/dialect"
	"github.com/tabulagen/tabula/ident"
	"github.com/tabulagen/tabula/schema"
)

// A Client reads catalog metadata from one database connection.
type Client struct {
	db *sql.DB
	d  dialect.Dialect
}

// NewClient returns a Client for db speaking the given dialect.
func NewClient(db *sql.DB, d dialect.Dialect) (*Client, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("introspect: unknown dialect %q", d)
	}
	return &Client{db: db, d: d}, nil
}

// Table introspects one table. On SQLite an empty schema name means
// the main database.
func (c *Client) Table(ctx context.Context, schemaName, tableName string) (*schema.Table, error) {
	if c.d == dialect.SQLite && schemaName == "" {
		schemaName = "main"
	}
	schemaName, err := ident.Validate(schemaName, nil, "schema")
	if err != nil {
		return nil, err
	}
	tableName, err = ident.Validate(tableName, nil, "table")
	if err != nil {
		return nil, err
	}
	var cols []schema.Column
	switch c.d {
	case dialect.SQLite:
		cols, err = c.sqliteColumns(ctx, tableName)
	default:
		cols, err = c.catalogColumns(ctx, schemaName, tableName)
	}
	if err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("introspect: table %s.%s not found", schemaName, tableName)
	}
	return schema.New(schemaName, tableName, cols...), nil
}

// TableNames lists the base tables of a schema.
func (c *Client) TableNames(ctx context.Context, schemaName string) ([]string, error) {
	var query string
	var args []any
	switch c.d {
	case dialect.SQLite:
		query = "SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name"
	default:
		query = c.d.Rebind("SELECT table_name FROM information_schema.tables WHERE table_schema = $1 AND table_type = 'BASE TABLE' ORDER BY table_name")
		args = append(args, schemaName)
	}
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("introspect: list tables: %w", err)
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("introspect: list tables: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// catalogColumns reads information_schema.columns plus the key-usage
// view, which covers both Postgres and MySQL.
func (c *Client) catalogColumns(ctx context.Context, schemaName, tableName string) ([]schema.Column, error) {
	const colQuery = `SELECT column_name, data_type, is_nullable, character_maximum_length
FROM information_schema.columns
WHERE table_schema = $1 AND table_name = $2
ORDER BY ordinal_position`
	rows, err := c.db.QueryContext(ctx, c.d.Rebind(colQuery), schemaName, tableName)
	if err != nil {
		return nil, fmt.Errorf("introspect: read columns: %w", err)
	}
	defer rows.Close()

	var cols []schema.Column
	for rows.Next() {
		var (
			name, dataType, nullable string
			maxLen                   sql.NullInt64
		)
		if err := rows.Scan(&name, &dataType, &nullable, &maxLen); err != nil {
			return nil, fmt.Errorf("introspect: read columns: %w", err)
		}
		col := schema.Column{
			Name:       name,
			Type:       mapType(c.d, dataType),
			Nullable:   strings.EqualFold(nullable, "YES"),
			Filterable: true,
		}
		if maxLen.Valid && col.Type == schema.TypeString {
			n := int(maxLen.Int64)
			col.MaxLen = &n
		}
		cols = append(cols, col)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// No columns means the table does not exist; the caller reports that
	// without a pointless key-usage round trip.
	if len(cols) == 0 {
		return nil, nil
	}
	if err := c.markKeys(ctx, schemaName, tableName, cols); err != nil {
		return nil, err
	}
	return cols, nil
}

// markKeys flags primary-key and unique columns from the key-usage
// catalog views.
func (c *Client) markKeys(ctx context.Context, schemaName, tableName string, cols []schema.Column) error {
	const keyQuery = `SELECT kcu.column_name, tc.constraint_type
FROM information_schema.table_constraints tc
JOIN information_schema.key_column_usage kcu
  ON tc.constraint_name = kcu.constraint_name AND tc.table_schema = kcu.table_schema
WHERE tc.table_schema = $1 AND tc.table_name = $2
  AND tc.constraint_type IN ('PRIMARY KEY', 'UNIQUE')`
	rows, err := c.db.QueryContext(ctx, c.d.Rebind(keyQuery), schemaName, tableName)
	if err != nil {
		return fmt.Errorf("introspect: read constraints: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var column, kind string
		if err := rows.Scan(&column, &kind); err != nil {
			return fmt.Errorf("introspect: read constraints: %w", err)
		}
		for i := range cols {
			if cols[i].Name != column {
				continue
			}
			if kind == "PRIMARY KEY" {
				cols[i].PrimaryKey = true
			} else {
				cols[i].Unique = true
			}
		}
	}
	return rows.Err()
}

// sqliteColumns reads the table_info pragma.
func (c *Client) sqliteColumns(ctx context.Context, tableName string) ([]schema.Column, error) {
	rows, err := c.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", c.d.Quote(tableName)))
	if err != nil {
		return nil, fmt.Errorf("introspect: read columns: %w", err)
	}
	defer rows.Close()
	var cols []schema.Column
	for rows.Next() {
		var (
			cid, notNull, pk int
			name, dataType   string
			dflt             sql.NullString
		)
		if err := rows.Scan(&cid, &name, &dataType, &notNull, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("introspect: read columns: %w", err)
		}
		cols = append(cols, schema.Column{
			Name:       name,
			Type:       mapType(c.d, dataType),
			Nullable:   notNull == 0 && pk == 0,
			PrimaryKey: pk > 0,
			Filterable: true,
		})
	}
	return cols, rows.Err()
}

// mapType lowers a catalog type name onto the portable type set.
// Unknown names come back as TypeString so generation still works.
func mapType(d dialect.Dialect, dataType string) schema.Type {
	t := strings.ToLower(dataType)
	if i := strings.IndexByte(t, '('); i >= 0 {
		t = t[:i]
	}
	t = strings.TrimSpace(t)
	switch t {
	case "smallint", "integer", "int", "int2", "int4", "int8", "bigint",
		"tinyint", "mediumint", "serial", "bigserial":
		return schema.TypeInt
	case "real", "double precision", "double", "float", "float4", "float8",
		"numeric", "decimal":
		return schema.TypeFloat
	case "boolean", "bool":
		return schema.TypeBool
	case "timestamp", "timestamptz", "timestamp with time zone",
		"timestamp without time zone", "date", "time", "datetime":
		return schema.TypeTime
	case "uuid":
		return schema.TypeUUID
	case "json", "jsonb":
		return schema.TypeJSON
	case "enum":
		return schema.TypeEnum
	default:
		if d == dialect.SQLite {
			// SQLite type affinity: anything mentioning INT is integral.
			if strings.Contains(t, "int") {
				return schema.TypeInt
			}
		}
		return schema.TypeString
	}
}
