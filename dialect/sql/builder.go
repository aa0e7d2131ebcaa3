package sql

import (
	"strconv"
	"strings"
	"time"

	"github.com/syssam/veloxsql"
	"github.com/syssam/veloxsql/dialect"
)

// TimeLayout is the ISO-8601 layout of date/time literals, applied in UTC.
const TimeLayout = "2006-01-02T15:04:05.000000"

// identifier quotes each divider-separated segment of ident.
// Quote characters inside a segment are doubled.
func (s settings) identifier(ident string) string {
	var parts []string
	if s.divider == "" {
		parts = []string{ident}
	} else {
		parts = strings.Split(ident, s.divider)
	}
	var b strings.Builder
	for i, p := range parts {
		if i > 0 {
			b.WriteString(s.divider)
		}
		b.WriteString(s.quote)
		b.WriteString(strings.ReplaceAll(p, s.quote, s.quote+s.quote))
		b.WriteString(s.quote)
	}
	return b.String()
}

// Builder composes escaped fragments into statements. A Builder is bound to
// one settings snapshot, so every statement it builds is consistent.
type Builder struct {
	settings
	quoter dialect.Quoter
}

// Identifier quotes a possibly qualified identifier.
func (b *Builder) Identifier(ident string) string {
	return b.identifier(ident)
}

// Value renders v as an SQL literal.
func (b *Builder) Value(v any) (string, error) {
	sv, err := ValueOf(v)
	if err != nil {
		return "", err
	}
	return b.Literal(sv)
}

// Literal renders a scalar value.
func (b *Builder) Literal(v Value) (string, error) {
	switch v := v.(type) {
	case NullValue:
		return "NULL", nil
	case BoolValue:
		if v {
			return b.trueLit, nil
		}
		return b.falseLit, nil
	case IntValue:
		return strconv.FormatInt(int64(v), 10), nil
	case UintValue:
		return strconv.FormatUint(uint64(v), 10), nil
	case FloatValue:
		return strconv.FormatFloat(float64(v), 'g', -1, 64), nil
	case TextValue:
		return b.quoter.QuoteString(string(v)), nil
	case TimeValue:
		return b.quoter.QuoteString(time.Time(v).UTC().Format(TimeLayout)), nil
	default:
		return "", veloxsql.NewNotScalarError(v)
	}
}

// Insert builds a multi-row INSERT. The column list is the ordered union of
// the entities' columns, minus omit; missing cells are NULL.
func (b *Builder) Insert(entities []veloxsql.Entity, omit []string) (string, error) {
	if err := sameType("insert", entities); err != nil {
		return "", err
	}
	var (
		columns []string
		seen    = make(map[string]bool)
		rows    = make([]map[string]any, len(entities))
	)
	for _, c := range omit {
		seen[c] = true
	}
	for i, e := range entities {
		values := e.Values()
		rows[i] = make(map[string]any, len(values))
		for _, f := range values {
			if _, ok := rows[i][f.Column]; !ok {
				rows[i][f.Column] = f.Value
			}
			if !seen[f.Column] {
				seen[f.Column] = true
				columns = append(columns, f.Column)
			}
		}
	}
	if len(columns) == 0 {
		return "", veloxsql.NewInvalidArgumentError("insert", "no columns to insert into %s", entities[0].Table())
	}
	var sb strings.Builder
	sb.WriteString("INSERT INTO ")
	sb.WriteString(b.identifier(entities[0].Table()))
	sb.WriteString(" (")
	for i, c := range columns {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(b.identifier(c))
	}
	sb.WriteString(") VALUES ")
	for i, row := range rows {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteByte('(')
		for j, c := range columns {
			if j > 0 {
				sb.WriteString(", ")
			}
			lit := "NULL"
			if v, ok := row[c]; ok {
				var err error
				if lit, err = b.Value(v); err != nil {
					return "", err
				}
			}
			sb.WriteString(lit)
		}
		sb.WriteByte(')')
	}
	return sb.String(), nil
}

// Update builds an UPDATE of every non-key column of e. It returns an empty
// string if there is nothing to set.
func (b *Builder) Update(e veloxsql.Entity) (string, error) {
	if e == nil {
		return "", veloxsql.NewInvalidArgumentError("update", "nil entity")
	}
	pk := e.PrimaryKey()
	where, err := b.where("update", e.Table(), pk)
	if err != nil {
		return "", err
	}
	var sets []string
	for _, f := range e.Values() {
		if pk.Has(f.Column) {
			continue
		}
		lit, err := b.Value(f.Value)
		if err != nil {
			return "", err
		}
		sets = append(sets, b.identifier(f.Column)+" = "+lit)
	}
	if len(sets) == 0 {
		return "", nil
	}
	return "UPDATE " + b.identifier(e.Table()) + " SET " + strings.Join(sets, ", ") + " WHERE " + where, nil
}

// Delete builds a DELETE of the row of e.
func (b *Builder) Delete(e veloxsql.Entity) (string, error) {
	if e == nil {
		return "", veloxsql.NewInvalidArgumentError("delete", "nil entity")
	}
	where, err := b.where("delete", e.Table(), e.PrimaryKey())
	if err != nil {
		return "", err
	}
	return "DELETE FROM " + b.identifier(e.Table()) + " WHERE " + where, nil
}

// where conjoins an equality predicate per primary-key column.
func (b *Builder) where(op, table string, pk veloxsql.Record) (string, error) {
	if len(pk) == 0 {
		return "", veloxsql.NewInvalidArgumentError(op, "%s has no primary key", table)
	}
	preds := make([]string, len(pk))
	for i, f := range pk {
		if f.Value == nil {
			return "", veloxsql.NewInvalidArgumentError(op, "primary key %s of %s has no value", f.Column, table)
		}
		lit, err := b.Value(f.Value)
		if err != nil {
			return "", err
		}
		preds[i] = b.identifier(f.Column) + " = " + lit
	}
	return strings.Join(preds, " AND "), nil
}

// SelectByKeys builds a SELECT of the rows matching each entity's current
// primary-key tuple. A single-column key uses IN; a composite key uses a
// disjunction of conjunctions, since not every engine accepts row values in an IN list.
func (b *Builder) SelectByKeys(entities []veloxsql.Entity) (string, error) {
	if err := sameType("select", entities); err != nil {
		return "", err
	}
	table := entities[0].Table()
	keys := entities[0].PrimaryKey().Columns()
	if len(keys) == 0 {
		return "", veloxsql.NewInvalidArgumentError("select", "%s has no primary key", table)
	}
	preds := make([]string, len(entities))
	for i, e := range entities {
		pk := e.PrimaryKey()
		lits := make([]string, len(keys))
		for j, k := range keys {
			v, ok := pk.Get(k)
			if !ok || v == nil {
				return "", veloxsql.NewInvalidArgumentError("select", "primary key %s of %s has no value", k, table)
			}
			lit, err := b.Value(v)
			if err != nil {
				return "", err
			}
			lits[j] = lit
			if len(keys) > 1 {
				lits[j] = b.identifier(k) + " = " + lit
			}
		}
		if len(keys) > 1 {
			preds[i] = "(" + strings.Join(lits, " AND ") + ")"
		} else {
			preds[i] = lits[0]
		}
	}
	where := b.identifier(keys[0]) + " IN (" + strings.Join(preds, ", ") + ")"
	if len(keys) > 1 {
		where = strings.Join(preds, " OR ")
	}
	return "SELECT * FROM " + b.identifier(table) + " WHERE " + where, nil
}

// SelectRange builds a SELECT of n rows with column >= from, ordered by column.
func (b *Builder) SelectRange(table, column string, from int64, n int) string {
	c := b.identifier(column)
	return "SELECT * FROM " + b.identifier(table) + " WHERE " + c + " >= " + strconv.FormatInt(from, 10) +
		" ORDER BY " + c + " ASC LIMIT " + strconv.Itoa(n)
}
