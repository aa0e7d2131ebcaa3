package sql

import (
	"slices"
	"sync"

	"github.com/syssam/veloxsql"
	"github.com/syssam/veloxsql/dialect"
)

// row is a generic entity backed by an ordered record.
type row struct {
	table  string
	keys   []string
	data   veloxsql.Record
	auto   bool
	synced bool
}

func newRow(table string, keys []string, fields ...veloxsql.Field) *row {
	return &row{table: table, keys: keys, data: fields}
}

func (r *row) Table() string           { return r.table }
func (r *row) Values() veloxsql.Record { return r.data }
func (r *row) AutoIncrement() bool     { return r.auto }

func (r *row) PrimaryKey() veloxsql.Record {
	pk := make(veloxsql.Record, 0, len(r.keys))
	for _, k := range r.keys {
		v, _ := r.data.Get(k)
		pk = append(pk, veloxsql.Field{Column: k, Value: v})
	}
	return pk
}

func (r *row) get(column string) any {
	v, _ := r.data.Get(column)
	return v
}

// otherRow has a different concrete type than row.
type otherRow struct{ *row }

// manager records synchronized and mapped entities.
type manager struct {
	drv dialect.Driver

	mu     sync.Mutex
	mapped []veloxsql.Entity
	reject bool
}

func (m *manager) Driver() dialect.Driver { return m.drv }

func (m *manager) Sync(e veloxsql.Entity, rec veloxsql.Record, fromDatabase bool) bool {
	if m.reject || !fromDatabase {
		return false
	}
	var r *row
	switch e := e.(type) {
	case *row:
		r = e
	case otherRow:
		r = e.row
	default:
		return false
	}
	r.data = slices.Clone(rec)
	r.synced = true
	return true
}

func (m *manager) Map(e veloxsql.Entity, _ bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mapped = append(m.mapped, e)
}

// quoteOnly is a driver usable for building statements without a database.
func quoteOnly(name string) *Driver {
	return NewDriver(name, Conn{dialect: name})
}

func entities(rows ...*row) []veloxsql.Entity {
	es := make([]veloxsql.Entity, len(rows))
	for i, r := range rows {
		es[i] = r
	}
	return es
}

func f(column string, value any) veloxsql.Field {
	return veloxsql.Field{Column: column, Value: value}
}
