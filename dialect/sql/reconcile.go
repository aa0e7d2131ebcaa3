package sql

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/syssam/veloxsql"
	"github.com/syssam/veloxsql/dialect"
)

// AutoIncrement inserts entities whose primary key is generated by the
// database and pushes the stored rows back into them.
type AutoIncrement interface {
	Reconcile(ctx context.Context, r *Reconciler, insert string, entities []veloxsql.Entity) error
}

// Contiguous is the auto-increment strategy of engines that allocate the keys
// of one multi-row INSERT as a contiguous range. The insert and the follow-up
// SELECT run in one transaction, since the last insert id is per connection.
//
// Entities must be passed in statement order and the table must have a
// single auto-increment key column.
type Contiguous struct {
	// FirstID reports whether the driver's last insert id is the key of the
	// first inserted row (MySQL) rather than of the last one (SQLite).
	FirstID bool
}

// Reconcile implements the AutoIncrement interface.
func (c Contiguous) Reconcile(ctx context.Context, r *Reconciler, insert string, entities []veloxsql.Entity) (rerr error) {
	if len(entities) == 0 {
		return veloxsql.NewInvalidArgumentError("insert", "no entities")
	}
	keys := entities[0].PrimaryKey().Columns()
	if len(keys) != 1 {
		return veloxsql.NewInvalidArgumentError("insert", "auto-increment requires a single-column primary key")
	}
	tx, err := r.manager.Driver().Tx(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if rerr != nil {
			rerr = rollback(tx, rerr)
		}
	}()
	var res Result
	if err := tx.Exec(ctx, insert, []any{}, &res); err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("dialect/sql: last insert id: %w", err)
	}
	n := len(entities)
	if !c.FirstID {
		id -= int64(n - 1)
	}
	rows, err := r.Query(ctx, tx, r.builder.SelectRange(entities[0].Table(), keys[0], id, n))
	if err != nil {
		return err
	}
	for i := 0; i < n && i < len(rows); i++ {
		r.Attach(entities[i], rows[i])
	}
	if len(rows) < n {
		r.log.DebugContext(ctx, "entities left unsynchronized", "table", entities[0].Table(), "count", n-len(rows))
	}
	return tx.Commit()
}

// rollback calls to tx.Rollback and wraps the given error with the rollback error if occurred.
func rollback(tx dialect.Tx, err error) error {
	if rerr := tx.Rollback(); rerr != nil {
		err = errors.Join(err, fmt.Errorf("dialect/sql: rolling back transaction: %w", rerr))
	}
	return err
}

// Reconciler pushes rows read back from the database into the entities that
// produced them, through the owning manager.
type Reconciler struct {
	manager veloxsql.Manager
	builder *Builder
	log     *slog.Logger
}

// NewReconciler returns a Reconciler that builds its statements with b.
func NewReconciler(m veloxsql.Manager, b *Builder, log *slog.Logger) *Reconciler {
	if log == nil {
		log = slog.Default()
	}
	return &Reconciler{manager: m, builder: b, log: log}
}

// Builder returns the statement builder of the reconciler.
func (r *Reconciler) Builder() *Builder { return r.builder }

// Attach synchronizes e with row and registers it in the identity map as a
// freshly loaded entity. It reports whether the entity accepted the row.
func (r *Reconciler) Attach(e veloxsql.Entity, row veloxsql.Record) bool {
	if !r.manager.Sync(e, row, true) {
		return false
	}
	r.manager.Map(e, true)
	return true
}

// Query executes query on ex and reads all rows.
func (r *Reconciler) Query(ctx context.Context, ex dialect.ExecQuerier, query string) ([]veloxsql.Record, error) {
	return queryRecords(ctx, ex, query)
}

// ByPrimaryKey fetches the rows of entities by their current primary keys
// and attaches each row to the entity with an equal key. It returns the
// number of synchronized entities; the others are left untouched.
func (r *Reconciler) ByPrimaryKey(ctx context.Context, ex dialect.ExecQuerier, entities []veloxsql.Entity) (int, error) {
	query, err := r.builder.SelectByKeys(entities)
	if err != nil {
		return 0, err
	}
	return r.refetch(ctx, ex, query, entities)
}

func (r *Reconciler) refetch(ctx context.Context, ex dialect.ExecQuerier, query string, entities []veloxsql.Entity) (int, error) {
	rows, err := r.Query(ctx, ex, query)
	if err != nil {
		return 0, err
	}
	synced := 0
	remaining := MatchRows(entities, rows, func(e veloxsql.Entity, row veloxsql.Record) {
		if r.Attach(e, row) {
			synced++
		}
	})
	if len(remaining) > 0 {
		r.log.DebugContext(ctx, "entities left unsynchronized", "table", entities[0].Table(), "count", len(remaining))
	}
	return synced, nil
}

// MatchRows pairs each row with the first remaining entity whose primary key
// equals the row's key columns under KeyEqual, calls attach for each pair and
// returns the entities that matched no row.
//
// Matching is a linear scan per row, O(rows × entities). Batches are small
// enough for this; an index keyed by the primary-key tuple would be needed
// for very large batches.
func MatchRows(entities []veloxsql.Entity, rows []veloxsql.Record, attach func(veloxsql.Entity, veloxsql.Record)) []veloxsql.Entity {
	remaining := make([]veloxsql.Entity, len(entities))
	copy(remaining, entities)
	for _, row := range rows {
		for i, e := range remaining {
			if keyMatches(e.PrimaryKey(), row) {
				attach(e, row)
				remaining = append(remaining[:i], remaining[i+1:]...)
				break
			}
		}
	}
	return remaining
}

// keyMatches reports whether every primary-key column of pk has an equal value in row.
func keyMatches(pk, row veloxsql.Record) bool {
	if len(pk) == 0 {
		return false
	}
	for _, f := range pk {
		v, ok := row.Get(f.Column)
		if !ok || !KeyEqual(f.Value, v) {
			return false
		}
	}
	return true
}

// queryRecords executes query on ex and reads all rows as records.
func queryRecords(ctx context.Context, ex dialect.ExecQuerier, query string) ([]veloxsql.Record, error) {
	rows := &Rows{}
	if err := ex.Query(ctx, query, []any{}, rows); err != nil {
		return nil, err
	}
	defer rows.Close()
	return ScanRecords(rows)
}

// ScanRecords reads all remaining rows. Byte slices are returned as strings.
func ScanRecords(rows ColumnScanner) ([]veloxsql.Record, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("dialect/sql: columns: %w", err)
	}
	var records []veloxsql.Record
	for rows.Next() {
		values := make([]any, len(columns))
		dest := make([]any, len(columns))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("dialect/sql: scan: %w", err)
		}
		record := make(veloxsql.Record, len(columns))
		for i, c := range columns {
			v := values[i]
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			record[i] = veloxsql.Field{Column: c, Value: v}
		}
		records = append(records, record)
	}
	return records, rows.Err()
}
