package veloxsql

import (
	"github.com/syssam/veloxsql/dialect"
)

// Field is a single column/value pair.
type Field struct {
	Column string
	Value  any
}

// Record is an ordered list of column values. It is used both for the
// in-memory state of an entity and for rows read back from the database.
type Record []Field

// Get returns the value of the given column.
func (r Record) Get(column string) (any, bool) {
	for _, f := range r {
		if f.Column == column {
			return f.Value, true
		}
	}
	return nil, false
}

// Has reports whether the record holds the given column.
func (r Record) Has(column string) bool {
	_, ok := r.Get(column)
	return ok
}

// Columns returns the column names in order.
func (r Record) Columns() []string {
	columns := make([]string, len(r))
	for i, f := range r {
		columns[i] = f.Column
	}
	return columns
}

// Entity is the in-memory representation of a table row, owned by a Manager.
//
// The dialect layer reads entities to build statements and pushes database
// state back through the Manager; it never owns an entity's lifecycle.
type Entity interface {
	// Table returns the table name, possibly qualified (e.g. "app.users").
	Table() string
	// PrimaryKey returns the primary-key columns and their current values, in key order.
	PrimaryKey() Record
	// Values returns every column of the entity with its current value.
	Values() Record
	// AutoIncrement reports whether the primary key is generated by the database.
	AutoIncrement() bool
}

// Manager is the component that owns entities, their identity map and the connection.
type Manager interface {
	// Driver returns the connection used to execute statements.
	Driver() dialect.Driver
	// Sync pushes a freshly read row into the entity and marks it clean.
	// It reports whether the entity accepted the row.
	Sync(e Entity, row Record, fromDatabase bool) bool
	// Map registers the entity in the identity map.
	Map(e Entity, overwrite bool)
}
