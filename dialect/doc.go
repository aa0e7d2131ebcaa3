// Package dialect defines the connection contracts used by the veloxsql
// dialect layer.
//
// # Dialect Constants
//
// Each engine family is identified by a constant string:
//
//	dialect.Postgres = "postgres"
//	dialect.MySQL    = "mysql"
//	dialect.SQLite   = "sqlite3"
//
// # Driver Interface
//
// A Driver executes SQL text and exposes the engine's string-quoting
// primitive, which the value escaper relies on for text literals:
//
//	type Driver interface {
//	    Exec(ctx context.Context, query string, args, v any) error
//	    Query(ctx context.Context, query string, args, v any) error
//	    QuoteString(s string) string
//	    Tx(ctx context.Context) (Tx, error)
//	    Close() error
//	    Dialect() string
//	}
//
// The Tx interface wraps Exec and Query with Commit and Rollback. Statements
// that must observe a per-transaction value, such as the last generated
// auto-increment key, run inside a single Tx.
//
// # Sub-packages
//
//   - dialect/sql: database/sql driver, value escaping, statement building,
//     reconciliation and the Dialect composition root
//   - dialect/sql/schema: dialect-neutral column and table descriptors
package dialect
