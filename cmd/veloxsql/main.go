// Command veloxsql describes the tables of a live database the way the
// dialect layer sees them, and validates dialect configuration documents.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/alecthomas/kong"
	"github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
	_ "modernc.org/sqlite"

	"github.com/syssam/veloxsql"
	"github.com/syssam/veloxsql/dialect"
	vsql "github.com/syssam/veloxsql/dialect/sql"
	"github.com/syssam/veloxsql/dialect/sql/schema"
)

// CLI defines the command-line interface of veloxsql.
var CLI struct {
	Verbose bool `short:"v" help:"Log executed statements to stderr"`

	Describe DescribeCmd `cmd:"" help:"Describe tables of a live database"`
	Config   ConfigCmd   `cmd:"" help:"Validate a dialect configuration document"`
}

// engines maps the --driver flag to the database/sql driver name and dialect.
var engines = map[string]struct {
	driver  string
	dialect string
}{
	"mysql":    {"mysql", dialect.MySQL},
	"postgres": {"postgres", dialect.Postgres},
	"sqlite":   {"sqlite", dialect.SQLite},
}

// DescribeCmd prints the normalized descriptors of one or more tables.
type DescribeCmd struct {
	Driver   string        `required:"" enum:"mysql,postgres,sqlite" help:"Database engine (mysql, postgres, sqlite)"`
	DSN      string        `required:"" name:"dsn" help:"Data source name"`
	Config   string        `type:"existingfile" help:"Dialect configuration document applied before describing"`
	Parallel int           `default:"4" help:"Maximum number of tables described concurrently"`
	Slow     time.Duration `default:"1s" help:"Warn about introspection queries slower than this"`
	Tables   []string      `arg:"" help:"Tables to describe, optionally schema-qualified"`
}

// verbose is bound to commands as the value of the -v flag.
type verbose bool

func (c *DescribeCmd) Run(log *slog.Logger, v verbose) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	engine := engines[c.Driver]
	if engine.dialect == dialect.MySQL {
		cfg, err := mysql.ParseDSN(c.DSN)
		if err != nil {
			return fmt.Errorf("invalid mysql dsn: %w", err)
		}
		if cfg.DBName == "" {
			return fmt.Errorf("mysql dsn names no database")
		}
		log.Debug("connecting", "driver", c.Driver, "addr", cfg.Addr, "database", cfg.DBName)
	}
	db, err := sql.Open(engine.driver, c.DSN)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}

	drv, stats := openDriver(engine.dialect, db, log, v, c.Slow)
	d, err := newDialect(engine.dialect, &catalog{drv: drv}, log)
	if err != nil {
		return err
	}
	if stats != nil {
		defer func() { log.Info("statements executed", "stats", stats.Snapshot().String()) }()
	}
	if c.Config != "" {
		cfg, err := readConfig(c.Config)
		if err != nil {
			return err
		}
		if err := d.Apply(cfg); err != nil {
			return err
		}
	}

	tables, err := describeAll(ctx, d, c.Tables, c.Parallel)
	if err != nil {
		return err
	}
	return writeTables(os.Stdout, tables)
}

// openDriver wraps db with statement tracing when v is set, and with
// statement statistics and slow statement warnings otherwise.
func openDriver(name string, db *sql.DB, log *slog.Logger, v verbose, slow time.Duration) (dialect.Driver, *vsql.StatementStats) {
	drv := vsql.OpenDB(name, db)
	if v {
		return vsql.NewDebugDriver(drv, log), nil
	}
	sd := vsql.NewStatsDriver(drv, vsql.WithSlowThreshold(slow), vsql.WithStatsLogger(log))
	return sd, sd.Stats()
}

// describeAll describes tables concurrently, at most parallel at a time.
// The result is in the order of names.
func describeAll(ctx context.Context, d *vsql.Dialect, names []string, parallel int) ([]*schema.Table, error) {
	tables := make([]*schema.Table, len(names))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(parallel, 1))
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			t, err := d.Describe(ctx, name)
			if err != nil {
				return err
			}
			tables[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return tables, nil
}

// ConfigCmd parses a configuration document and prints the effective options
// of the dialect it applies to.
type ConfigCmd struct {
	File    string `arg:"" type:"existingfile" help:"Dialect configuration document"`
	Dialect string `help:"Dialect to apply the document to (mysql, postgres, sqlite3) if the document names none"`
}

func (c *ConfigCmd) Run(log *slog.Logger) error {
	cfg, err := readConfig(c.File)
	if err != nil {
		return err
	}
	name := cfg.Dialect
	if name == "" {
		name = c.Dialect
	}
	d, err := newDialect(name, nil, log)
	if err != nil {
		return err
	}
	if err := d.Apply(cfg); err != nil {
		return err
	}
	out := vsql.Config{Dialect: d.Name(), Types: cfg.Types}
	out.Quote, _ = d.Option(vsql.OptionQuote)
	out.Divider, _ = d.Option(vsql.OptionDivider)
	out.True, _ = d.Option(vsql.OptionTrue)
	out.False, _ = d.Option(vsql.OptionFalse)
	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(out)
}

func newDialect(name string, m veloxsql.Manager, log *slog.Logger) (*vsql.Dialect, error) {
	switch name {
	case dialect.MySQL:
		return vsql.MySQL(m, vsql.WithLogger(log)), nil
	case dialect.Postgres:
		return vsql.Postgres(m, vsql.WithLogger(log)), nil
	case dialect.SQLite:
		return vsql.SQLite(m, vsql.WithLogger(log)), nil
	case "":
		return vsql.New(m, vsql.WithLogger(log)), nil
	default:
		return nil, fmt.Errorf("unknown dialect %q", name)
	}
}

func readConfig(path string) (*vsql.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return vsql.ParseConfig(data)
}

type tableDoc struct {
	Table   string          `yaml:"table"`
	Columns []schema.Column `yaml:"columns"`
}

func writeTables(w io.Writer, tables []*schema.Table) error {
	docs := make([]tableDoc, len(tables))
	for i, t := range tables {
		docs[i] = tableDoc{Table: t.Name(), Columns: t.Columns()}
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(docs); err != nil {
		return err
	}
	return enc.Close()
}

// catalog is a read-only manager: describing tables never synchronizes entities.
type catalog struct {
	drv dialect.Driver
}

func (c *catalog) Driver() dialect.Driver { return c.drv }

func (*catalog) Sync(veloxsql.Entity, veloxsql.Record, bool) bool { return false }

func (*catalog) Map(veloxsql.Entity, bool) {}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("veloxsql"),
		kong.Description("Inspect databases through the veloxsql dialect layer"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	level := slog.LevelWarn
	if CLI.Verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	err := ctx.Run(log, verbose(CLI.Verbose))
	ctx.FatalIfErrorf(err)
}
