// Package sql translates entity writes into SQL text and reconciles the
// stored rows back into the entities.
//
// # Dialects
//
// A Dialect is built from escaping settings and three strategies: a type map
// used to describe tables, an AutoIncrement reconciler and an Introspector.
// Engine variants differ only in the strategies they are composed of:
//
//	d := sql.MySQL(manager)   // backquotes, 1/0 booleans, contiguous auto-increment
//	d := sql.Postgres(manager) // pq literal quoting, no auto-increment reconciliation
//	d := sql.SQLite(manager)  // last_insert_rowid reports the last row of a batch
//	d := sql.New(manager, sql.WithQuote("`"), sql.WithBoolLiterals("'yes'", "'no'"))
//
// Options may be changed at runtime with SetOption or a YAML document applied
// with Apply. Every statement is built from one snapshot of the options.
//
// # Statements
//
// Values are rendered inline as literals. Strings are quoted by the
// connection's QuoteString, never by the dialect itself:
//
//	q, err := d.InsertSQL(a, b) // INSERT INTO `users` (`id`, `name`) VALUES (1, 'a'), (2, NULL)
//	q, err := d.UpdateSQL(a)    // UPDATE `users` SET `name` = 'a' WHERE `id` = 1
//	q, err := d.DeleteSQL(a)    // DELETE FROM `users` WHERE `id` = 1
//
// # Reconciliation
//
// BulkInsert with update set reads the inserted rows back. With a generated
// key, rows are selected by the contiguous key range starting at the driver's
// last insert id and assigned by position. Otherwise rows are selected by the
// entities' primary keys and matched with KeyEqual, which tolerates the
// representation differences of database drivers ("5" equals 5).
//
// # Describe
//
// Describe reads a table's columns through the dialect's Introspector and
// normalizes them into a schema.Table.
//
//	t, err := d.Describe(ctx, "users")
//	c, _ := t.Column("name") // Type: "varchar", Length: 255
package sql
