package sql

import (
	"context"
	"log/slog"
	"reflect"
	"sync"

	"github.com/syssam/veloxsql"
	"github.com/syssam/veloxsql/dialect"
	"github.com/syssam/veloxsql/dialect/sql/schema"
)

// Option names recognized by SetOption.
type Option string

// Recognized options.
const (
	OptionQuote   Option = "quote"   // Identifier quote character.
	OptionDivider Option = "divider" // Identifier divider, e.g. "." in db.table.
	OptionTrue    Option = "true"    // Boolean true literal.
	OptionFalse   Option = "false"   // Boolean false literal.
)

// settings holds the escaping configuration of a dialect.
// Statements are always built from one copy of it.
type settings struct {
	quote    string
	divider  string
	trueLit  string
	falseLit string
}

// Dialect translates entity operations into SQL text of one engine family
// and reconciles database state back into entities.
//
// A Dialect is a composition of its escaping settings, a type-mapping table,
// an auto-increment strategy and an introspector. Engine variants are
// built by New, MySQL, Postgres and SQLite with different strategy sets.
type Dialect struct {
	name    string
	manager veloxsql.Manager

	mu       sync.RWMutex
	settings settings

	types         schema.TypeMap
	autoIncrement AutoIncrement
	introspector  Introspector
	log           *slog.Logger
}

// DialectOption configures a Dialect at construction.
type DialectOption func(*Dialect)

// WithQuote sets the identifier quote character.
func WithQuote(q string) DialectOption {
	return func(d *Dialect) {
		d.settings.quote = q
	}
}

// WithDivider sets the identifier divider.
func WithDivider(div string) DialectOption {
	return func(d *Dialect) {
		d.settings.divider = div
	}
}

// WithBoolLiterals sets the boolean true and false literals.
func WithBoolLiterals(t, f string) DialectOption {
	return func(d *Dialect) {
		d.settings.trueLit = t
		d.settings.falseLit = f
	}
}

// WithTypeMap replaces the type-mapping table.
func WithTypeMap(m schema.TypeMap) DialectOption {
	return func(d *Dialect) {
		d.types = m
	}
}

// WithAutoIncrement sets the auto-increment reconciliation strategy.
// A nil strategy disables auto-increment inserts.
func WithAutoIncrement(s AutoIncrement) DialectOption {
	return func(d *Dialect) {
		d.autoIncrement = s
	}
}

// WithIntrospector sets the table introspection strategy.
// A nil introspector disables Describe.
func WithIntrospector(i Introspector) DialectOption {
	return func(d *Dialect) {
		d.introspector = i
	}
}

// WithLogger sets the logger used for statement tracing.
func WithLogger(l *slog.Logger) DialectOption {
	return func(d *Dialect) {
		d.log = l
	}
}

// New returns the base dialect: ANSI quoting, TRUE/FALSE literals, an empty
// type map, and neither auto-increment nor introspection support.
func New(m veloxsql.Manager, opts ...DialectOption) *Dialect {
	return newDialect("sql", m, opts...)
}

// MySQL returns a dialect for MySQL and MariaDB.
func MySQL(m veloxsql.Manager, opts ...DialectOption) *Dialect {
	base := []DialectOption{
		WithQuote("`"),
		WithBoolLiterals("1", "0"),
		WithTypeMap(schema.MySQLTypes()),
		WithAutoIncrement(Contiguous{FirstID: true}),
		WithIntrospector(IntrospectFunc(mysqlColumns)),
	}
	return newDialect(dialect.MySQL, m, append(base, opts...)...)
}

// Postgres returns a dialect for PostgreSQL. The driver does not report
// generated keys, so auto-increment inserts are not supported.
func Postgres(m veloxsql.Manager, opts ...DialectOption) *Dialect {
	base := []DialectOption{
		WithTypeMap(schema.PostgresTypes()),
		WithIntrospector(IntrospectFunc(postgresColumns)),
	}
	return newDialect(dialect.Postgres, m, append(base, opts...)...)
}

// SQLite returns a dialect for SQLite, where last_insert_rowid reports the
// key of the last row of a multi-row insert.
func SQLite(m veloxsql.Manager, opts ...DialectOption) *Dialect {
	base := []DialectOption{
		WithBoolLiterals("1", "0"),
		WithTypeMap(schema.SQLiteTypes()),
		WithAutoIncrement(Contiguous{FirstID: false}),
		WithIntrospector(IntrospectFunc(sqliteColumns)),
	}
	return newDialect(dialect.SQLite, m, append(base, opts...)...)
}

func newDialect(name string, m veloxsql.Manager, opts ...DialectOption) *Dialect {
	d := &Dialect{
		name:    name,
		manager: m,
		settings: settings{
			quote:    `"`,
			divider:  ".",
			trueLit:  "TRUE",
			falseLit: "FALSE",
		},
		log: slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Name returns the dialect name.
func (d *Dialect) Name() string { return d.name }

// TypeMap returns the type-mapping table.
func (d *Dialect) TypeMap() schema.TypeMap {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.types
}

// SetOption sets one of the recognized options. Values must be non-empty.
func (d *Dialect) SetOption(name Option, value string) error {
	if value == "" {
		return veloxsql.NewInvalidArgumentError("set option", "empty value for option %q", name)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	switch name {
	case OptionQuote:
		d.settings.quote = value
	case OptionDivider:
		d.settings.divider = value
	case OptionTrue:
		d.settings.trueLit = value
	case OptionFalse:
		d.settings.falseLit = value
	default:
		return veloxsql.NewInvalidArgumentError("set option", "unknown option %q", name)
	}
	return nil
}

// Option returns the current value of a recognized option.
func (d *Dialect) Option(name Option) (string, bool) {
	s := d.snapshot()
	switch name {
	case OptionQuote:
		return s.quote, true
	case OptionDivider:
		return s.divider, true
	case OptionTrue:
		return s.trueLit, true
	case OptionFalse:
		return s.falseLit, true
	}
	return "", false
}

func (d *Dialect) snapshot() settings {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.settings
}

// Builder returns a statement builder bound to one settings snapshot
// and the connection's quoting primitive. Without a connection, strings
// are quoted the way a connection of the dialect's engine quotes them.
func (d *Dialect) Builder() *Builder {
	var quoter dialect.Quoter = engineQuoter(d.name)
	if drv, err := d.driver(""); err == nil {
		quoter = drv
	}
	return &Builder{settings: d.snapshot(), quoter: quoter}
}

// driver returns the connection of the owning manager.
func (d *Dialect) driver(op string) (dialect.Driver, error) {
	if d.manager != nil {
		if drv := d.manager.Driver(); drv != nil {
			return drv, nil
		}
	}
	return nil, veloxsql.NewInvalidArgumentError(op, "dialect %q has no connection", d.name)
}

type engineQuoter string

func (q engineQuoter) QuoteString(s string) string { return QuoteString(string(q), s) }

// EscapeIdentifier quotes a possibly qualified identifier.
func (d *Dialect) EscapeIdentifier(ident string) string {
	return d.snapshot().identifier(ident)
}

// EscapeValue renders v as an SQL literal.
func (d *Dialect) EscapeValue(v any) (string, error) {
	return d.Builder().Value(v)
}

// InsertSQL returns the INSERT statement for the given entities.
func (d *Dialect) InsertSQL(entities ...veloxsql.Entity) (string, error) {
	return d.Builder().Insert(entities, nil)
}

// UpdateSQL returns the UPDATE statement for e. It returns an empty string
// if e has no columns besides its primary key.
func (d *Dialect) UpdateSQL(e veloxsql.Entity) (string, error) {
	return d.Builder().Update(e)
}

// DeleteSQL returns the DELETE statement for e.
func (d *Dialect) DeleteSQL(e veloxsql.Entity) (string, error) {
	return d.Builder().Delete(e)
}

// Insert inserts a single entity and synchronizes it with the stored row.
func (d *Dialect) Insert(ctx context.Context, e veloxsql.Entity, useAutoIncrement bool) error {
	return d.BulkInsert(ctx, []veloxsql.Entity{e}, true, useAutoIncrement)
}

// BulkInsert inserts entities with one statement. If update is set, the
// stored rows are read back and pushed into the entities: by position for
// auto-increment keys, by primary-key match otherwise. Entities that match
// no row are left unsynchronized.
func (d *Dialect) BulkInsert(ctx context.Context, entities []veloxsql.Entity, update, useAutoIncrement bool) error {
	if err := sameType("insert", entities); err != nil {
		return err
	}
	drv, err := d.driver("insert")
	if err != nil {
		return err
	}
	var (
		b       = d.Builder()
		table   = entities[0].Table()
		autoInc = useAutoIncrement && entities[0].AutoIncrement()
		omit    []string
	)
	if autoInc {
		if d.autoIncrement == nil {
			return veloxsql.NewUnsupportedError(d.name, "auto-increment insert")
		}
		pk := entities[0].PrimaryKey()
		if len(pk) != 1 {
			return veloxsql.NewInvalidArgumentError("insert", "auto-increment requires a single-column primary key, %s has %d", table, len(pk))
		}
		omit = pk.Columns()
	}
	query, err := b.Insert(entities, omit)
	if err != nil {
		return err
	}
	r := NewReconciler(d.manager, b, d.log)
	if autoInc && update {
		d.trace(ctx, "insert", table, query)
		return d.autoIncrement.Reconcile(ctx, r, query, entities)
	}
	var refetch string
	if update {
		// Built before executing so that a missing key fails without side effects.
		if refetch, err = b.SelectByKeys(entities); err != nil {
			return err
		}
	}
	d.trace(ctx, "insert", table, query)
	if err := drv.Exec(ctx, query, []any{}, nil); err != nil {
		return err
	}
	if !update {
		return nil
	}
	_, err = r.refetch(ctx, drv, refetch, entities)
	return err
}

// Update writes the non-key columns of e to its row.
func (d *Dialect) Update(ctx context.Context, e veloxsql.Entity) error {
	query, err := d.Builder().Update(e)
	if err != nil || query == "" {
		return err
	}
	drv, err := d.driver("update")
	if err != nil {
		return err
	}
	d.trace(ctx, "update", e.Table(), query)
	return drv.Exec(ctx, query, []any{}, nil)
}

// Delete removes the row of e.
func (d *Dialect) Delete(ctx context.Context, e veloxsql.Entity) error {
	query, err := d.Builder().Delete(e)
	if err != nil {
		return err
	}
	drv, err := d.driver("delete")
	if err != nil {
		return err
	}
	d.trace(ctx, "delete", e.Table(), query)
	return drv.Exec(ctx, query, []any{}, nil)
}

// Describe returns the column descriptors of a table, in database order.
// Descriptors are built on every call.
func (d *Dialect) Describe(ctx context.Context, table string) (*schema.Table, error) {
	if d.introspector == nil {
		return nil, veloxsql.NewUnsupportedError(d.name, "describe")
	}
	if _, err := d.driver("describe"); err != nil {
		return nil, err
	}
	raw, err := d.introspector.Columns(ctx, d, table)
	if err != nil {
		return nil, veloxsql.NewSchemaNotFoundError(table, err)
	}
	if len(raw) == 0 {
		return nil, veloxsql.NewSchemaNotFoundError(table, nil)
	}
	types := d.TypeMap()
	columns := make([]schema.Column, len(raw))
	for i, c := range raw {
		columns[i] = schema.Normalize(c, types)
	}
	t := schema.NewTable(table, columns)
	if result := schema.ValidateTable(t); result.HasErrors() || result.HasWarnings() {
		d.log.WarnContext(ctx, "table descriptor has issues", "dialect", d.name, "table", table, "result", result.String())
	}
	return t, nil
}

func (d *Dialect) trace(ctx context.Context, op, table, query string) {
	d.log.DebugContext(ctx, "executing statement", "dialect", d.name, "op", op, "table", table, "query", query)
}

// sameType checks that entities is non-empty and holds a single concrete type.
func sameType(op string, entities []veloxsql.Entity) error {
	if len(entities) == 0 {
		return veloxsql.NewInvalidArgumentError(op, "no entities")
	}
	want := reflect.TypeOf(entities[0])
	for i, e := range entities {
		if e == nil {
			return veloxsql.NewInvalidArgumentError(op, "nil entity at position %d", i)
		}
		if got := reflect.TypeOf(e); got != want {
			return veloxsql.NewInvalidArgumentError(op, "mixed entity types %s and %s", want, got)
		}
	}
	return nil
}
