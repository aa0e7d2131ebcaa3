package sql

import (
	"context"
	"database/sql"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/syssam/veloxsql"
	"github.com/syssam/veloxsql/dialect"
	"github.com/syssam/veloxsql/dialect/sql/schema"
)

func openSQLite(t *testing.T, ddl ...string) *manager {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	// A single connection keeps the in-memory database alive across statements.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	for _, stmt := range ddl {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}
	return &manager{drv: OpenDB(dialect.SQLite, db)}
}

const usersDDL = `CREATE TABLE users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name VARCHAR(255) NOT NULL DEFAULT 'anon',
	active BOOLEAN,
	created DATETIME
)`

func TestSQLite_InsertAutoIncrement(t *testing.T) {
	m := openSQLite(t, usersDDL, `INSERT INTO users (name) VALUES ('seed')`)
	d := SQLite(m)

	rows := make([]*row, 3)
	for i, name := range []string{"a", "b", "c"} {
		rows[i] = newRow("users", []string{"id"}, f("id", nil), f("name", name), f("active", i%2 == 0))
		rows[i].auto = true
	}
	require.NoError(t, d.BulkInsert(context.Background(), entities(rows...), true, true))
	for i, r := range rows {
		assert.True(t, r.synced)
		assert.EqualValues(t, i+2, r.get("id"), "seed row holds id 1")
		assert.Equal(t, []string{"a", "b", "c"}[i], r.get("name"))
		assert.True(t, KeyEqual(i%2 == 0, r.get("active")))
	}
	assert.Len(t, m.mapped, 3)

	// The reconciled key drives later statements.
	require.NoError(t, d.Delete(context.Background(), rows[1]))
	recs, err := queryRecords(context.Background(), m.drv, `SELECT id FROM users ORDER BY id`)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	id, _ := recs[2].Get("id")
	assert.EqualValues(t, 4, id)
}

func TestSQLite_InsertRefetch(t *testing.T) {
	m := openSQLite(t, `CREATE TABLE members (org TEXT, user INTEGER, role TEXT, since TEXT DEFAULT 'today', PRIMARY KEY (org, user))`)
	d := SQLite(m)

	a := newRow("members", []string{"org", "user"}, f("org", "acme"), f("user", "1"))
	b := newRow("members", []string{"org", "user"}, f("org", "acme"), f("user", 2), f("role", "owner"))
	require.NoError(t, d.BulkInsert(context.Background(), entities(a, b), true, false))

	assert.True(t, a.synced)
	assert.Nil(t, a.get("role"), "missing cells are inserted as NULL")
	assert.Equal(t, "today", a.get("since"), "database defaults are read back")
	assert.True(t, b.synced)
	assert.Equal(t, "owner", b.get("role"))
	assert.EqualValues(t, 2, b.get("user"))
}

func TestSQLite_UpdateQualified(t *testing.T) {
	m := openSQLite(t, usersDDL)
	d := SQLite(m)

	e := newRow("main.users", []string{"id"}, f("id", nil), f("name", "a"))
	e.auto = true
	require.NoError(t, d.Insert(context.Background(), e, true))
	require.EqualValues(t, 1, e.get("id"))

	e.data = veloxsql.Record{f("id", e.get("id")), f("name", "it's")}
	require.NoError(t, d.Update(context.Background(), e))
	recs, err := queryRecords(context.Background(), m.drv, `SELECT name FROM users WHERE id = 1`)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	name, _ := recs[0].Get("name")
	assert.Equal(t, "it's", name)
}

func TestSQLite_Describe(t *testing.T) {
	m := openSQLite(t, usersDDL)
	d := SQLite(m)

	table, err := d.Describe(context.Background(), "users")
	require.NoError(t, err)
	assert.Equal(t, "users", table.Name())
	require.Equal(t, 4, table.Len())

	id, ok := table.Column("id")
	require.True(t, ok)
	assert.True(t, id.Generated())
	assert.Equal(t, schema.SequenceDefault, *id.Default)

	name, ok := table.Column("name")
	require.True(t, ok)
	assert.Equal(t, "varchar", name.Type)
	require.NotNil(t, name.Length)
	assert.Equal(t, int64(255), *name.Length)
	assert.False(t, name.Nullable)
	require.NotNil(t, name.Default)
	assert.Equal(t, "'anon'", *name.Default)

	active, _ := table.Column("active")
	assert.Equal(t, "bool", active.ValueType.String())
	assert.True(t, active.Nullable)

	created, _ := table.Column("created")
	assert.Equal(t, "time.Time", created.ValueType.String())
	assert.Nil(t, created.Precision)
}

func TestSQLite_Describe_Qualified(t *testing.T) {
	m := openSQLite(t, usersDDL)
	table, err := SQLite(m).Describe(context.Background(), "main.users")
	require.NoError(t, err)
	assert.Equal(t, "main.users", table.Name())
	assert.Equal(t, 4, table.Len())

	_, err = SQLite(m).Describe(context.Background(), "temp.users")
	require.Error(t, err)
	assert.True(t, veloxsql.IsSchemaNotFound(err))
}

func TestSQLitePragma(t *testing.T) {
	t.Parallel()

	s := settings{quote: `"`, divider: "."}
	assert.Equal(t, `PRAGMA table_info("users")`, sqlitePragma(s, "table_info", "users"))
	assert.Equal(t, `PRAGMA "main".table_info("users")`, sqlitePragma(s, "table_info", "main.users"))
	assert.Equal(t, `PRAGMA table_info("a""b")`, sqlitePragma(s, "table_info", `a"b`))
	assert.Equal(t, `PRAGMA table_info("main.users")`, sqlitePragma(settings{quote: `"`}, "table_info", "main.users"))
}

// Literals read back through SELECT equal the values they were built from.
func TestSQLite_LiteralRoundTrip(t *testing.T) {
	m := openSQLite(t)
	d := SQLite(m)
	ts := time.Date(2024, 2, 29, 23, 59, 58, 123456000, time.UTC)
	i32 := int32(-32)
	tests := []struct {
		name string
		in   any
	}{
		{"null", nil},
		{"text", "plain"},
		{"text_quotes", `it's "quoted" ''twice''`},
		{"text_backslash", `C:\path\n`},
		{"text_newline", "line\nbreak\r\n"},
		{"text_unicode", "żółć 日本"},
		{"text_empty", ""},
		{"int", 42},
		{"int_negative", -7},
		{"int64_max", int64(math.MaxInt64)},
		{"int64_min", int64(math.MinInt64)},
		{"uint32", uint32(math.MaxUint32)},
		{"int_pointer", &i32},
		{"float", 0.1},
		{"float_negative", -2.5},
		{"float_exp", 1e21},
		{"float32", float32(1.1)},
		{"bool_true", true},
		{"bool_false", false},
		{"bytes", []byte("raw")},
		{"time", ts},
		{"time_zone", ts.In(time.FixedZone("X", -5*3600))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lit, err := d.EscapeValue(tt.in)
			require.NoError(t, err)
			recs, err := queryRecords(context.Background(), m.drv, "SELECT "+lit+" AS v")
			require.NoError(t, err)
			require.Len(t, recs, 1)
			got := recs[0][0].Value
			if s, ok := tt.in.(string); ok {
				assert.Equal(t, s, got, lit)
				return
			}
			assert.True(t, KeyEqual(tt.in, got), "%s read back as %#v", lit, got)
		})
	}
}

func TestSQLite_Describe_CompositeKey(t *testing.T) {
	m := openSQLite(t, `CREATE TABLE members (org TEXT, user INTEGER, PRIMARY KEY (org, user))`)
	table, err := SQLite(m).Describe(context.Background(), "members")
	require.NoError(t, err)
	for _, c := range table.Columns() {
		assert.False(t, c.Generated(), c.Name)
	}
}

func TestSQLite_Describe_Unknown(t *testing.T) {
	m := openSQLite(t)
	_, err := SQLite(m).Describe(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, veloxsql.IsSchemaNotFound(err))
}
