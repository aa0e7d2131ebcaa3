package sql

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/veloxsql/dialect"
)

func TestOpenDB(t *testing.T) {
	tests := []struct {
		name    string
		driver  string
		dialect string
	}{
		{"Postgres", dialect.Postgres, dialect.Postgres},
		{"MySQL", dialect.MySQL, dialect.MySQL},
		{"SQLite", dialect.SQLite, dialect.SQLite},
		{"WrappedMySQL", "mysql-traced", dialect.MySQL},
		{"Unknown", "oracle", "oracle"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, _, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			drv := OpenDB(tt.driver, db)
			require.NotNil(t, drv)
			assert.Equal(t, tt.dialect, drv.Dialect())
			assert.Same(t, db, drv.DB())
		})
	}
}

func TestQuoteString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		dialect string
		input   string
		want    string
	}{
		{"mysql_plain", dialect.MySQL, "hello", "'hello'"},
		{"mysql_quote", dialect.MySQL, "it's", `'it\'s'`},
		{"mysql_double_quote", dialect.MySQL, `say "hi"`, `'say \"hi\"'`},
		{"mysql_backslash", dialect.MySQL, `a\b`, `'a\\b'`},
		{"mysql_control", dialect.MySQL, "a\x00b\nc\rd\x1a", `'a\0b\nc\rd\Z'`},
		{"mysql_injection", dialect.MySQL, "'; DROP TABLE users; --", `'\'; DROP TABLE users; --'`},
		{"postgres_plain", dialect.Postgres, "hello", "'hello'"},
		{"postgres_quote", dialect.Postgres, "it's", "'it''s'"},
		{"postgres_backslash", dialect.Postgres, `a\b`, ` E'a\\b'`},
		{"sqlite_quote", dialect.SQLite, "it's", "'it''s'"},
		{"sqlite_backslash", dialect.SQLite, `a\b`, `'a\b'`},
		{"base_empty", "sql", "", "''"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, QuoteString(tt.dialect, tt.input))
		})
	}
}

func TestConn_QuoteString(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	// Wrapped driver names resolve to their engine.
	drv := OpenDB("mysql-traced", db)
	assert.Equal(t, `'it\'s'`, drv.QuoteString("it's"))
	drv = OpenDB(dialect.SQLite, db)
	assert.Equal(t, "'it''s'", drv.QuoteString("it's"))
}

func TestDriverQuery(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	drv := OpenDB(dialect.Postgres, db)

	t.Run("records", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, name FROM users").
			WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
				AddRow(1, []byte("Alice")).
				AddRow(2, nil))

		rows := &Rows{}
		err := drv.Query(context.Background(), "SELECT id, name FROM users", []any{}, rows)
		require.NoError(t, err)
		records, err := ScanRecords(rows)
		require.NoError(t, err)
		require.NoError(t, rows.Close())
		require.Len(t, records, 2)
		name, _ := records[0].Get("name")
		assert.Equal(t, "Alice", name, "byte slices are read as strings")
		name, ok := records[1].Get("name")
		assert.True(t, ok)
		assert.Nil(t, name)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("invalid_destination", func(t *testing.T) {
		var rows sql.Rows
		err := drv.Query(context.Background(), "SELECT 1", []any{}, &rows)
		require.Error(t, err)
	})

	t.Run("invalid_args", func(t *testing.T) {
		err := drv.Query(context.Background(), "SELECT 1", "1", &Rows{})
		require.Error(t, err)
	})

	t.Run("query_error", func(t *testing.T) {
		mock.ExpectQuery("SELECT").WillReturnError(errors.New("database error"))

		err := drv.Query(context.Background(), "SELECT", []any{}, &Rows{})
		require.ErrorContains(t, err, "dialect/sql: query: database error")
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDriverExec(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	drv := OpenDB(dialect.MySQL, db)

	t.Run("no_result", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM `users`").WillReturnResult(sqlmock.NewResult(0, 1))

		err := drv.Exec(context.Background(), "DELETE FROM `users` WHERE `id` = 1", []any{}, nil)
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("result", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO `users`").WillReturnResult(sqlmock.NewResult(7, 2))

		var res sql.Result
		err := drv.Exec(context.Background(), "INSERT INTO `users` (`name`) VALUES ('a'), ('b')", []any{}, &res)
		require.NoError(t, err)
		id, err := res.LastInsertId()
		require.NoError(t, err)
		assert.Equal(t, int64(7), id)
		n, err := res.RowsAffected()
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("invalid_destination", func(t *testing.T) {
		var id int64
		err := drv.Exec(context.Background(), "DELETE FROM `users`", []any{}, &id)
		require.Error(t, err)
	})

	t.Run("exec_error", func(t *testing.T) {
		mock.ExpectExec("DELETE").WillReturnError(errors.New("constraint violation"))

		err := drv.Exec(context.Background(), "DELETE FROM `users`", []any{}, nil)
		require.ErrorContains(t, err, "dialect/sql: exec: constraint violation")
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDriverTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	drv := OpenDB(dialect.Postgres, db)

	t.Run("commit", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO users").WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		tx, err := drv.Tx(context.Background())
		require.NoError(t, err)
		sqltx, ok := tx.(*Tx)
		require.True(t, ok)
		assert.Equal(t, "'it''s'", sqltx.QuoteString("it's"), "transactions quote like their driver")
		require.NoError(t, tx.Exec(context.Background(), "INSERT INTO users (name) VALUES ('test')", []any{}, nil))
		require.NoError(t, tx.Commit())
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rollback", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO users").WillReturnError(errors.New("error"))
		mock.ExpectRollback()

		tx, err := drv.Tx(context.Background())
		require.NoError(t, err)
		require.Error(t, tx.Exec(context.Background(), "INSERT INTO users (name) VALUES ('test')", []any{}, nil))
		require.NoError(t, tx.Rollback())
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("begin_error", func(t *testing.T) {
		mock.ExpectBegin().WillReturnError(errors.New("too many connections"))

		_, err := drv.Tx(context.Background())
		require.Error(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRollback(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	drv := OpenDB(dialect.MySQL, db)
	mock.ExpectBegin()
	mock.ExpectRollback().WillReturnError(errors.New("connection lost"))

	tx, err := drv.Tx(context.Background())
	require.NoError(t, err)
	cause := errors.New("insert failed")
	err = rollback(tx, cause)
	require.ErrorIs(t, err, cause)
	require.ErrorContains(t, err, "rolling back transaction: connection lost")
	require.NoError(t, mock.ExpectationsWereMet())
}

func BenchmarkDriver(b *testing.B) {
	db, mock, err := sqlmock.New()
	if err != nil {
		b.Fatal(err)
	}
	defer db.Close()

	drv := OpenDB(dialect.MySQL, db)

	b.Run("Query_Records", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			mock.ExpectQuery("SELECT").WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(1, "a"))
			_, _ = queryRecords(context.Background(), drv, "SELECT * FROM `users`")
		}
	})

	b.Run("Exec_Simple", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			mock.ExpectExec("INSERT").WillReturnResult(sqlmock.NewResult(1, 1))
			_ = drv.Exec(context.Background(), "INSERT INTO `t` (`id`) VALUES (1)", []any{}, nil)
		}
	})
}
