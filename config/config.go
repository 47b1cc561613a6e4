// Package config loads generator settings from a YAML file, with
// environment overrides on top. Tables may be declared inline or left
// to live-database introspection.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/tabulagen/tabula/dialect"
	"github.com/tabulagen/tabula/schema"
)

// Config is the full generator configuration.
type Config struct {
	Dialect  string        `yaml:"dialect"`
	DSN      string        `yaml:"dsn"`
	Schema   string        `yaml:"schema"`
	Out      string        `yaml:"out"`
	Package  string        `yaml:"package"`
	Store    string        `yaml:"store"`
	Force    bool          `yaml:"force"`
	Workers  int           `yaml:"workers"`
	Cache    string        `yaml:"cache"`
	CacheTTL time.Duration `yaml:"cacheTTL"`

	Tables []TableConfig `yaml:"tables"`
}

// TableConfig declares one table inline.
type TableConfig struct {
	Schema     string         `yaml:"schema"`
	Name       string         `yaml:"name"`
	Timestamps bool           `yaml:"timestamps"`
	SoftDelete bool           `yaml:"softDelete"`
	Columns    []ColumnConfig `yaml:"columns"`
}

// ColumnConfig declares one column inline.
type ColumnConfig struct {
	Name       string   `yaml:"name"`
	Type       string   `yaml:"type"`
	Nullable   bool     `yaml:"nullable"`
	PrimaryKey bool     `yaml:"primaryKey"`
	Unique     bool     `yaml:"unique"`
	Filterable bool     `yaml:"filterable"`
	MaxLen     *int     `yaml:"maxLen"`
	Min        *float64 `yaml:"min"`
	Max        *float64 `yaml:"max"`
	Enums      []string `yaml:"enums"`
}

// Load reads the config file at path, layers a .env file (if present)
// and TABULA_* environment overrides on top, and validates the result.
func Load(path string) (*Config, error) {
	// a missing .env is fine; explicit config errors are not
	_ = godotenv.Load()

	cfg := &Config{}
	buf, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// env-only configuration
	case err != nil:
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(buf, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("TABULA_DIALECT"); v != "" {
		c.Dialect = v
	}
	if v := os.Getenv("TABULA_DSN"); v != "" {
		c.DSN = v
	}
	if v := os.Getenv("TABULA_SCHEMA"); v != "" {
		c.Schema = v
	}
	if v := os.Getenv("TABULA_OUT"); v != "" {
		c.Out = v
	}
	if v := os.Getenv("TABULA_PACKAGE"); v != "" {
		c.Package = v
	}
	if v := os.Getenv("TABULA_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Workers = n
		}
	}
}

func (c *Config) applyDefaults() {
	if c.Dialect == "" {
		c.Dialect = string(dialect.Postgres)
	}
	if c.Schema == "" {
		c.Schema = "public"
	}
	if c.Out == "" {
		c.Out = "./store"
	}
	if c.Package == "" {
		c.Package = "store"
	}
	if c.Workers <= 0 {
		c.Workers = 4
	}
}

func (c *Config) validate() error {
	if !dialect.Dialect(c.Dialect).Valid() {
		return fmt.Errorf("config: unknown dialect %q", c.Dialect)
	}
	for _, t := range c.Tables {
		if t.Name == "" {
			return fmt.Errorf("config: table with no name")
		}
		if len(t.Columns) == 0 {
			return fmt.Errorf("config: table %s has no columns", t.Name)
		}
	}
	return nil
}

// SQLDialect returns the configured dialect.
func (c *Config) SQLDialect() dialect.Dialect {
	return dialect.Dialect(c.Dialect)
}

// SchemaTables builds validated table metadata from the inline table
// declarations.
func (c *Config) SchemaTables() ([]*schema.Table, error) {
	tables := make([]*schema.Table, 0, len(c.Tables))
	for _, tc := range c.Tables {
		t, err := tc.build(c.Schema)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, nil
}

func (tc TableConfig) build(defaultSchema string) (*schema.Table, error) {
	schemaName := tc.Schema
	if schemaName == "" {
		schemaName = defaultSchema
	}
	cols := make([]schema.Column, 0, len(tc.Columns))
	for _, cc := range tc.Columns {
		var typ schema.Type
		if err := typ.UnmarshalText([]byte(cc.Type)); err != nil || !typ.Valid() {
			return nil, fmt.Errorf("config: table %s column %s: unknown type %q", tc.Name, cc.Name, cc.Type)
		}
		cols = append(cols, schema.Column{
			Name:       cc.Name,
			Type:       typ,
			Nullable:   cc.Nullable,
			PrimaryKey: cc.PrimaryKey,
			Unique:     cc.Unique,
			Filterable: cc.Filterable,
			MaxLen:     cc.MaxLen,
			Min:        cc.Min,
			Max:        cc.Max,
			Enums:      cc.Enums,
		})
	}
	t := schema.New(schemaName, tc.Name, cols...)
	if tc.Timestamps {
		t.WithTimestamps()
	}
	if tc.SoftDelete {
		t.WithSoftDelete()
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}
