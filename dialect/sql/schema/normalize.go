package schema

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/syssam/veloxsql/schema/field"
)

// declRe splits a declared type into its name, its parenthesized
// parameters and any trailing modifiers, e.g. "int(10) unsigned".
var declRe = regexp.MustCompile(`^([^(]*)(?:\((.*)\))?(.*)$`)

// Normalize converts a raw column description into a column descriptor,
// resolving its value type through types.
func Normalize(raw RawColumn, types TypeMap) Column {
	name, params := splitType(raw.Type)
	c := Column{
		Name:     raw.Name,
		Type:     name,
		Nullable: raw.Nullable,
		Default:  raw.Default,
	}
	if vt, ok := lookup(types, name); ok {
		c.ValueType = vt
	}
	if params != "" {
		switch {
		case c.ValueType.Textual():
			if n, err := strconv.ParseInt(strings.TrimSpace(params), 10, 64); err == nil {
				c.Length = &n
			}
		case c.ValueType.Temporal():
			if n, err := strconv.Atoi(strings.TrimSpace(params)); err == nil {
				c.Precision = &n
			}
		case c.ValueType.Enumerated():
			c.Values = parseValues(params)
		}
	}
	if raw.AutoIncrement {
		d := SequenceDefault
		c.Default = &d
	}
	return c
}

// splitType returns the normalized type name and the verbatim content of
// its parenthesized suffix.
func splitType(decl string) (name, params string) {
	m := declRe.FindStringSubmatch(strings.TrimSpace(decl))
	if m == nil {
		return normalizeName(decl), ""
	}
	return normalizeName(m[1] + " " + m[3]), m[2]
}

// TypeName returns the name decl is looked up by in a TypeMap: lowercase,
// single-spaced and without its parenthesized parameters.
func TypeName(decl string) string {
	name, _ := splitType(decl)
	return name
}

func normalizeName(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// lookup resolves name, dropping trailing modifiers that have no entry
// (e.g. "int unsigned zerofill" resolves as "int unsigned").
func lookup(types TypeMap, name string) (field.Type, bool) {
	for words := strings.Fields(name); len(words) > 0; words = words[:len(words)-1] {
		if t, ok := types.Lookup(strings.Join(words, " ")); ok {
			return t, true
		}
	}
	return field.TypeInvalid, false
}

// parseValues parses a quoted value list such as 'a','b\'c'. A quote inside
// a value is escaped by a backslash or by doubling it.
func parseValues(s string) []string {
	var (
		values  []string
		b       strings.Builder
		inQuote bool
	)
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case !inQuote && ch == '\'':
			inQuote = true
			b.Reset()
		case !inQuote:
		case ch == '\\' && i+1 < len(s):
			i++
			b.WriteByte(s[i])
		case ch == '\'' && i+1 < len(s) && s[i+1] == '\'':
			i++
			b.WriteByte('\'')
		case ch == '\'':
			inQuote = false
			values = append(values, b.String())
		default:
			b.WriteByte(ch)
		}
	}
	return values
}
