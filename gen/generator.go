package gen

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/tabulagen/tabula"
	"github.com/tabulagen/tabula/dialect"
	"github.com/tabulagen/tabula/schema"
)

// A MetadataSource resolves table metadata by name, typically from a
// config file or live database introspection.
type MetadataSource interface {
	// Table returns the metadata for one "schema.table" key or bare
	// table name.
	Table(ctx context.Context, name string) (*schema.Table, error)
	// Tables returns metadata for every known table.
	Tables(ctx context.Context) ([]*schema.Table, error)
}

// A Generator drives the full pipeline for a table: validate metadata,
// detect drift against the checksum store, render artifacts, merge
// preserved blocks and land the results on disk.
type Generator struct {
	writer    *Writer
	builder   *Builder
	storePath string
	dialect   dialect.Dialect
	force     bool
	workers   int
	log       logrus.FieldLogger
}

// Option configures a Generator.
type Option func(*Generator)

// WithDialect sets the SQL dialect of the generated artifacts.
// Defaults to Postgres.
func WithDialect(d dialect.Dialect) Option {
	return func(g *Generator) { g.dialect = d }
}

// WithStorePath sets the checksum-store location. Defaults to
// ".tabula/checksums.json" under the output directory.
func WithStorePath(path string) Option {
	return func(g *Generator) { g.storePath = path }
}

// WithForce makes drifted tables regenerate instead of failing.
func WithForce(force bool) Option {
	return func(g *Generator) { g.force = force }
}

// WithWorkers bounds the number of tables generated concurrently by
// GenerateAll. Defaults to 4.
func WithWorkers(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.workers = n
		}
	}
}

// WithLogger sets the logger. Defaults to the standard logrus logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(g *Generator) { g.log = log }
}

// NewGenerator returns a Generator writing package pkg into dir.
func NewGenerator(dir, pkg string, opts ...Option) *Generator {
	g := &Generator{
		writer:  NewWriter(dir),
		dialect: dialect.Postgres,
		workers: 4,
		log:     logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.storePath == "" {
		g.storePath = g.writer.Path(".tabula/checksums.json")
	}
	g.builder = NewBuilder(pkg, g.dialect)
	return g
}

// Generate runs the pipeline for one table and persists the updated
// checksum store.
func (g *Generator) Generate(ctx context.Context, t *schema.Table) error {
	store, err := LoadStore(g.storePath)
	if err != nil {
		return err
	}
	if err := g.generate(ctx, store, t); err != nil {
		return err
	}
	return store.Save()
}

// GenerateAll runs the pipeline for every table, bounded by the worker
// limit, then persists the store once. The first failure cancels the
// remaining tables.
func (g *Generator) GenerateAll(ctx context.Context, tables []*schema.Table) error {
	if err := uniqueKeys(tables); err != nil {
		return err
	}
	store, err := LoadStore(g.storePath)
	if err != nil {
		return err
	}
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.workers)
	for _, t := range tables {
		t := t
		eg.Go(func() error {
			return g.generate(ctx, store, t)
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}
	return store.Save()
}

// GenerateNamed resolves a table through the metadata source and
// generates it. An empty name generates every table the source knows.
func (g *Generator) GenerateNamed(ctx context.Context, src MetadataSource, name string) error {
	if name == "" {
		tables, err := src.Tables(ctx)
		if err != nil {
			return err
		}
		return g.GenerateAll(ctx, tables)
	}
	t, err := src.Table(ctx, name)
	if err != nil {
		return err
	}
	return g.Generate(ctx, t)
}

func (g *Generator) generate(ctx context.Context, store *Store, t *schema.Table) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := t.Validate(); err != nil {
		return err
	}
	key := t.Key()
	log := g.log.WithField("table", key)

	sum, err := Checksum(t)
	if err != nil {
		return err
	}
	if rec, ok := store.Get(key); ok && rec.Checksum != sum {
		if !g.force {
			return tabula.NewSchemaDriftError(key, rec.Checksum, sum)
		}
		log.WithFields(logrus.Fields{
			"stored":   tabula.ShortChecksum(rec.Checksum),
			"computed": tabula.ShortChecksum(sum),
		}).Warn("schema drift acknowledged, regenerating")
	}

	arts, err := g.builder.Build(t)
	if err != nil {
		return err
	}
	written := 0
	for _, a := range arts {
		changed, err := g.render(log, a)
		if err != nil {
			return err
		}
		if changed {
			written++
		}
	}
	store.Put(key, sum, t)
	log.WithFields(logrus.Fields{
		"artifacts": len(arts),
		"written":   written,
	}).Info("generated")
	return nil
}

// render merges one artifact with its on-disk predecessor, formats it
// and writes it back when the result differs.
func (g *Generator) render(log logrus.FieldLogger, a Artifact) (bool, error) {
	existing, err := g.writer.ReadExisting(a.Name)
	if err != nil {
		return false, err
	}
	merged, orphaned := MergeBlocks(a.Content, existing)
	for _, id := range orphaned {
		log.WithFields(logrus.Fields{"file": a.Name, "block": id}).
			Warn("preserved block has no slot in the regenerated file, dropping it")
	}
	out, err := g.writer.Format(a, []byte(merged))
	if err != nil {
		return false, err
	}
	return g.writer.Write(a.Name, out, existing)
}

// DriftStatus classifies one table against the checksum store.
type DriftStatus string

const (
	StatusNew     DriftStatus = "new"     // no store record yet
	StatusInSync  DriftStatus = "in-sync" // stored checksum matches
	StatusDrifted DriftStatus = "drifted" // stored checksum differs
)

// A DriftReport is the result of comparing one table against the
// store without generating anything.
type DriftReport struct {
	Key      string
	Status   DriftStatus
	Stored   string
	Computed string
}

// Diff compares tables against the checksum store and reports drift
// without touching any output file.
func (g *Generator) Diff(ctx context.Context, tables []*schema.Table) ([]DriftReport, error) {
	store, err := LoadStore(g.storePath)
	if err != nil {
		return nil, err
	}
	reports := make([]DriftReport, 0, len(tables))
	for _, t := range tables {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := t.Validate(); err != nil {
			return nil, err
		}
		sum, err := Checksum(t)
		if err != nil {
			return nil, err
		}
		r := DriftReport{Key: t.Key(), Computed: sum, Status: StatusNew}
		if rec, ok := store.Get(t.Key()); ok {
			r.Stored = rec.Checksum
			if rec.Checksum == sum {
				r.Status = StatusInSync
			} else {
				r.Status = StatusDrifted
			}
		}
		reports = append(reports, r)
	}
	return reports, nil
}

func uniqueKeys(tables []*schema.Table) error {
	seen := make(map[string]struct{}, len(tables))
	for _, t := range tables {
		key := t.Key()
		if _, ok := seen[key]; ok {
			return fmt.Errorf("gen: duplicate table %s in generation set", key)
		}
		seen[key] = struct{}{}
	}
	return nil
}
