// Package schema holds dialect-neutral table and column descriptors and the
// normalizer that produces them from a dialect's raw column description.
package schema

import (
	"slices"

	"github.com/syssam/veloxsql/schema/field"
)

// SequenceDefault is the reserved default expression of a column whose value
// is generated by the database (AUTO_INCREMENT, SERIAL, IDENTITY, rowid alias).
const SequenceDefault = "<sequence>"

// RawColumn is a single column as reported by a dialect's introspection query,
// before normalization.
type RawColumn struct {
	Name     string
	Type     string // Declared type, e.g. "varchar(255)" or "int(10) unsigned".
	Nullable bool
	Default  *string // Default expression, nil if none.
	// AutoIncrement is derived from dialect-specific signal fields
	// (e.g. MySQL's Extra column), never from the default text.
	AutoIncrement bool
}

// Column is a normalized column descriptor.
//
// At most one of Length, Precision and Values is set, matching the
// category of ValueType.
type Column struct {
	Name      string     `yaml:"name"`
	Type      string     `yaml:"type"`       // Normalized data type, lowercase, without size suffix.
	ValueType field.Type `yaml:"value_type"` // Resolved semantic type, TypeInvalid if unmapped.
	Nullable  bool       `yaml:"nullable"`
	Default   *string    `yaml:"default,omitempty"`
	Length    *int64     `yaml:"length,omitempty"`    // Max length of character and binary types.
	Precision *int       `yaml:"precision,omitempty"` // Fractional precision of temporal types.
	Values    []string   `yaml:"values,omitempty"`    // Allowed values of enum and set types.
}

// Resolved reports whether the column type has a semantic value type.
func (c Column) Resolved() bool {
	return c.ValueType.Valid()
}

// Generated reports whether the column default is a database sequence.
func (c Column) Generated() bool {
	return c.Default != nil && *c.Default == SequenceDefault
}

// Table is an ordered, immutable set of column descriptors.
type Table struct {
	name    string
	columns []Column
}

// NewTable returns a table descriptor holding a copy of the given columns.
func NewTable(name string, columns []Column) *Table {
	t := &Table{name: name, columns: make([]Column, len(columns))}
	for i, c := range columns {
		t.columns[i] = c.clone()
	}
	return t
}

// Name returns the table name.
func (t *Table) Name() string { return t.name }

// Len returns the number of columns.
func (t *Table) Len() int { return len(t.columns) }

// Columns returns a copy of the columns in database order.
func (t *Table) Columns() []Column {
	columns := make([]Column, len(t.columns))
	for i, c := range t.columns {
		columns[i] = c.clone()
	}
	return columns
}

// Column returns the column with the given name.
func (t *Table) Column(name string) (Column, bool) {
	for _, c := range t.columns {
		if c.Name == name {
			return c.clone(), true
		}
	}
	return Column{}, false
}

func (c Column) clone() Column {
	c.Values = slices.Clone(c.Values)
	if c.Default != nil {
		d := *c.Default
		c.Default = &d
	}
	if c.Length != nil {
		l := *c.Length
		c.Length = &l
	}
	if c.Precision != nil {
		p := *c.Precision
		c.Precision = &p
	}
	return c
}
