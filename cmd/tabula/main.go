// Command tabula generates table-backed data-access code from
// declared or introspected metadata.
//
//	tabula generate [-config tabula.yaml] [-table public.orders] [-force]
//	tabula diff     [-config tabula.yaml]
//	tabula watch    [-config tabula.yaml]
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	// database drivers for live introspection
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/tabulagen/tabula"
	"github.com/tabulagen/tabula/config"
	"github.com/tabulagen/tabula/dialect"
	"github.com/tabulagen/tabula/gen"
	"github.com/tabulagen/tabula/introspect"
	"github.com/tabulagen/tabula/schema"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	cmd, args := os.Args[1], os.Args[2:]

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch cmd {
	case "generate":
		err = runGenerate(ctx, log, args)
	case "diff":
		err = runDiff(ctx, log, args)
	case "watch":
		err = runWatch(ctx, log, args)
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatal(err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: tabula <generate|diff|watch> [flags]")
}

type flags struct {
	configPath string
	table      string
	force      bool
}

func parseFlags(name string, args []string) (*flags, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	f := &flags{}
	fs.StringVar(&f.configPath, "config", "tabula.yaml", "config file")
	fs.StringVar(&f.table, "table", "", "generate a single table (schema.table or bare name)")
	fs.BoolVar(&f.force, "force", false, "accept schema drift and regenerate")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return f, nil
}

func runGenerate(ctx context.Context, log *logrus.Logger, args []string) error {
	f, err := parseFlags("generate", args)
	if err != nil {
		return err
	}
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return err
	}
	g := newGenerator(cfg, log, f.force)

	if len(cfg.Tables) > 0 {
		tables, err := cfg.SchemaTables()
		if err != nil {
			return err
		}
		if f.table != "" {
			t := findTable(tables, f.table)
			if t == nil {
				return fmt.Errorf("table %s not declared in %s", f.table, f.configPath)
			}
			return g.Generate(ctx, t)
		}
		return g.GenerateAll(ctx, tables)
	}

	src, cleanup, err := openSource(cfg)
	if err != nil {
		return err
	}
	defer cleanup()
	return g.GenerateNamed(ctx, src, f.table)
}

func runDiff(ctx context.Context, log *logrus.Logger, args []string) error {
	f, err := parseFlags("diff", args)
	if err != nil {
		return err
	}
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return err
	}
	tables, err := loadTables(ctx, cfg)
	if err != nil {
		return err
	}
	reports, err := newGenerator(cfg, log, false).Diff(ctx, tables)
	if err != nil {
		return err
	}
	drifted := 0
	for _, r := range reports {
		switch r.Status {
		case gen.StatusDrifted:
			drifted++
			log.WithFields(logrus.Fields{
				"table":    r.Key,
				"stored":   tabula.ShortChecksum(r.Stored),
				"computed": tabula.ShortChecksum(r.Computed),
			}).Warn("drifted")
		default:
			log.WithField("table", r.Key).Info(string(r.Status))
		}
	}
	if drifted > 0 {
		return fmt.Errorf("%d table(s) drifted; rerun generate with -force to accept", drifted)
	}
	return nil
}

// runWatch regenerates whenever the config file changes, debounced so
// editor save bursts trigger one run.
func runWatch(ctx context.Context, log *logrus.Logger, args []string) error {
	f, err := parseFlags("watch", args)
	if err != nil {
		return err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	if err := watcher.Add(f.configPath); err != nil {
		return err
	}

	regen := func() {
		if err := runGenerate(ctx, log, args); err != nil {
			log.WithError(err).Error("generation failed")
		}
	}
	regen()
	log.WithField("config", f.configPath).Info("watching")

	var timer *time.Timer
	const debounce = 250 * time.Millisecond
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			// editors replace files on save; re-add the path
			_ = watcher.Add(f.configPath)
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, regen)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.WithError(err).Warn("watch error")
		}
	}
}

func newGenerator(cfg *config.Config, log *logrus.Logger, force bool) *gen.Generator {
	opts := []gen.Option{
		gen.WithDialect(cfg.SQLDialect()),
		gen.WithForce(force || cfg.Force),
		gen.WithWorkers(cfg.Workers),
		gen.WithLogger(log),
	}
	if cfg.Store != "" {
		opts = append(opts, gen.WithStorePath(cfg.Store))
	}
	return gen.NewGenerator(cfg.Out, cfg.Package, opts...)
}

// loadTables prefers inline declarations and falls back to live
// introspection.
func loadTables(ctx context.Context, cfg *config.Config) ([]*schema.Table, error) {
	if len(cfg.Tables) > 0 {
		return cfg.SchemaTables()
	}
	src, cleanup, err := openSource(cfg)
	if err != nil {
		return nil, err
	}
	defer cleanup()
	return src.Tables(ctx)
}

// openSource connects to the configured database and wraps it in an
// introspection source, cache included when configured.
func openSource(cfg *config.Config) (*introspect.Source, func(), error) {
	if cfg.DSN == "" {
		return nil, nil, fmt.Errorf("no tables declared and no dsn configured")
	}
	db, err := sql.Open(driverName(cfg.SQLDialect()), cfg.DSN)
	if err != nil {
		return nil, nil, err
	}
	client, err := introspect.NewClient(db, cfg.SQLDialect())
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	var opts []introspect.SourceOption
	if cfg.Cache != "" {
		opts = append(opts, introspect.WithCache(introspect.NewCache(cfg.Cache, cfg.CacheTTL)))
	}
	return introspect.NewSource(client, cfg.Schema, opts...), func() { db.Close() }, nil
}

func driverName(d dialect.Dialect) string {
	switch d {
	case dialect.MySQL:
		return "mysql"
	case dialect.SQLite:
		return "sqlite"
	default:
		return "postgres"
	}
}

func findTable(tables []*schema.Table, name string) *schema.Table {
	for _, t := range tables {
		if t.Key() == name || t.Name == name {
			return t
		}
	}
	return nil
}
