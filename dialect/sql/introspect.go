package sql

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/syssam/veloxsql"
	"github.com/syssam/veloxsql/dialect/sql/schema"
)

// Introspector reads the raw column descriptions of a table, in database order.
// An empty result means the table does not exist.
type Introspector interface {
	Columns(ctx context.Context, d *Dialect, table string) ([]schema.RawColumn, error)
}

// The IntrospectFunc type is an adapter to allow the use of ordinary
// functions as Introspector.
type IntrospectFunc func(ctx context.Context, d *Dialect, table string) ([]schema.RawColumn, error)

// Columns calls f(ctx, d, table).
func (f IntrospectFunc) Columns(ctx context.Context, d *Dialect, table string) ([]schema.RawColumn, error) {
	return f(ctx, d, table)
}

// mysqlColumns reads SHOW COLUMNS. Auto-increment columns are flagged in Extra.
func mysqlColumns(ctx context.Context, d *Dialect, table string) ([]schema.RawColumn, error) {
	records, err := queryRecords(ctx, d.manager.Driver(), "SHOW COLUMNS FROM "+d.EscapeIdentifier(table))
	if err != nil {
		return nil, err
	}
	columns := make([]schema.RawColumn, 0, len(records))
	for _, r := range records {
		columns = append(columns, schema.RawColumn{
			Name:          text(r, "Field"),
			Type:          text(r, "Type"),
			Nullable:      strings.EqualFold(text(r, "Null"), "YES"),
			Default:       nullText(r, "Default"),
			AutoIncrement: strings.Contains(strings.ToLower(text(r, "Extra")), "auto_increment"),
		})
	}
	return columns, nil
}

// postgresColumnsQuery lists the live attributes of a relation. The table
// name is resolved with regclass, so it may be schema-qualified.
const postgresColumnsQuery = `SELECT a.attname AS name,
  format_type(a.atttypid, a.atttypmod) AS type,
  NOT a.attnotnull AS nullable,
  pg_get_expr(d.adbin, d.adrelid) AS "default",
  (a.attidentity <> '' OR COALESCE(pg_get_expr(d.adbin, d.adrelid), '') LIKE 'nextval(%%') AS generated
FROM pg_catalog.pg_attribute a
LEFT JOIN pg_catalog.pg_attrdef d ON d.adrelid = a.attrelid AND d.adnum = a.attnum
WHERE a.attrelid = %s::regclass AND a.attnum > 0 AND NOT a.attisdropped
ORDER BY a.attnum`

// postgresColumns reads pg_catalog. Identity and serial columns are generated.
func postgresColumns(ctx context.Context, d *Dialect, table string) ([]schema.RawColumn, error) {
	drv := d.manager.Driver()
	records, err := queryRecords(ctx, drv, fmt.Sprintf(postgresColumnsQuery, drv.QuoteString(table)))
	if err != nil {
		return nil, err
	}
	columns := make([]schema.RawColumn, 0, len(records))
	for _, r := range records {
		columns = append(columns, schema.RawColumn{
			Name:          text(r, "name"),
			Type:          text(r, "type"),
			Nullable:      truth(r, "nullable"),
			Default:       nullText(r, "default"),
			AutoIncrement: truth(r, "generated"),
		})
	}
	return columns, nil
}

// sqlitePragma renders a table pragma. The schema of a qualified table
// prefixes the pragma name, as in PRAGMA "main".table_info("users").
func sqlitePragma(s settings, pragma, table string) string {
	quote := settings{quote: s.quote}
	if s.divider != "" {
		if schemaName, name, ok := strings.Cut(table, s.divider); ok {
			return "PRAGMA " + quote.identifier(schemaName) + "." + pragma + "(" + quote.identifier(name) + ")"
		}
	}
	return "PRAGMA " + pragma + "(" + quote.identifier(table) + ")"
}

// sqliteColumns reads PRAGMA table_info. A sole INTEGER primary key is an
// alias of the rowid and therefore generated.
func sqliteColumns(ctx context.Context, d *Dialect, table string) ([]schema.RawColumn, error) {
	records, err := queryRecords(ctx, d.manager.Driver(), sqlitePragma(d.snapshot(), "table_info", table))
	if err != nil {
		return nil, err
	}
	var (
		keys    int
		rowid   = -1
		columns = make([]schema.RawColumn, 0, len(records))
	)
	for i, r := range records {
		if integer(r, "pk") > 0 {
			keys++
			if strings.EqualFold(text(r, "type"), "INTEGER") {
				rowid = i
			}
		}
		columns = append(columns, schema.RawColumn{
			Name:     text(r, "name"),
			Type:     text(r, "type"),
			Nullable: integer(r, "notnull") == 0,
			Default:  nullText(r, "dflt_value"),
		})
	}
	if keys == 1 && rowid >= 0 {
		columns[rowid].AutoIncrement = true
	}
	return columns, nil
}

func text(r veloxsql.Record, column string) string {
	v, _ := r.Get(column)
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(v)
	}
}

func nullText(r veloxsql.Record, column string) *string {
	if v, ok := r.Get(column); !ok || v == nil {
		return nil
	}
	s := text(r, column)
	return &s
}

func truth(r veloxsql.Record, column string) bool {
	v, _ := r.Get(column)
	switch v := v.(type) {
	case bool:
		return v
	case int64:
		return v != 0
	default:
		b, err := strconv.ParseBool(text(r, column))
		return err == nil && b
	}
}

func integer(r veloxsql.Record, column string) int64 {
	v, _ := r.Get(column)
	if n, ok := v.(int64); ok {
		return n
	}
	n, _ := strconv.ParseInt(text(r, column), 10, 64)
	return n
}
