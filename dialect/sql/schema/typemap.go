package schema

import (
	"maps"

	"github.com/syssam/veloxsql/schema/field"
)

// TypeMap maps normalized physical type names to semantic value types.
// A TypeMap is immutable once built; use With to derive a modified copy.
type TypeMap struct {
	types map[string]field.Type
}

// NewTypeMap returns a TypeMap holding a copy of types.
func NewTypeMap(types map[string]field.Type) TypeMap {
	return TypeMap{types: maps.Clone(types)}
}

// Lookup returns the value type of the given normalized type name.
// Unknown names are not an error; they report false.
func (m TypeMap) Lookup(name string) (field.Type, bool) {
	t, ok := m.types[name]
	return t, ok
}

// With returns a new TypeMap with the given entries added or replaced.
func (m TypeMap) With(types map[string]field.Type) TypeMap {
	merged := make(map[string]field.Type, len(m.types)+len(types))
	maps.Copy(merged, m.types)
	maps.Copy(merged, types)
	return TypeMap{types: merged}
}

// Len returns the number of entries.
func (m TypeMap) Len() int { return len(m.types) }

var mysqlTypes = NewTypeMap(map[string]field.Type{
	"bit":                field.TypeBool,
	"bool":               field.TypeBool,
	"boolean":            field.TypeBool,
	"tinyint":            field.TypeInt8,
	"smallint":           field.TypeInt16,
	"mediumint":          field.TypeInt32,
	"int":                field.TypeInt32,
	"integer":            field.TypeInt32,
	"bigint":             field.TypeInt64,
	"tinyint unsigned":   field.TypeUint8,
	"smallint unsigned":  field.TypeUint16,
	"mediumint unsigned": field.TypeUint32,
	"int unsigned":       field.TypeUint32,
	"integer unsigned":   field.TypeUint32,
	"bigint unsigned":    field.TypeUint64,
	"float":              field.TypeFloat32,
	"double":             field.TypeFloat64,
	"real":               field.TypeFloat64,
	"decimal":            field.TypeFloat64,
	"numeric":            field.TypeFloat64,
	"char":               field.TypeString,
	"varchar":            field.TypeString,
	"tinytext":           field.TypeString,
	"text":               field.TypeString,
	"mediumtext":         field.TypeString,
	"longtext":           field.TypeString,
	"binary":             field.TypeBytes,
	"varbinary":          field.TypeBytes,
	"tinyblob":           field.TypeBytes,
	"blob":               field.TypeBytes,
	"mediumblob":         field.TypeBytes,
	"longblob":           field.TypeBytes,
	"date":               field.TypeTime,
	"datetime":           field.TypeTime,
	"timestamp":          field.TypeTime,
	"time":               field.TypeTime,
	"year":               field.TypeInt16,
	"enum":               field.TypeEnum,
	"set":                field.TypeSet,
	"json":               field.TypeJSON,
})

var postgresTypes = NewTypeMap(map[string]field.Type{
	"boolean":                     field.TypeBool,
	"smallint":                    field.TypeInt16,
	"integer":                     field.TypeInt32,
	"bigint":                      field.TypeInt64,
	"real":                        field.TypeFloat32,
	"double precision":            field.TypeFloat64,
	"numeric":                     field.TypeFloat64,
	"character":                   field.TypeString,
	"character varying":           field.TypeString,
	"text":                        field.TypeString,
	"bytea":                       field.TypeBytes,
	"date":                        field.TypeTime,
	"timestamp without time zone": field.TypeTime,
	"timestamp with time zone":    field.TypeTime,
	"time without time zone":      field.TypeTime,
	"time with time zone":         field.TypeTime,
	"json":                        field.TypeJSON,
	"jsonb":                       field.TypeJSON,
	"uuid":                        field.TypeUUID,
})

var sqliteTypes = NewTypeMap(map[string]field.Type{
	"bool":      field.TypeBool,
	"boolean":   field.TypeBool,
	"integer":   field.TypeInt64,
	"int":       field.TypeInt,
	"bigint":    field.TypeInt64,
	"smallint":  field.TypeInt16,
	"tinyint":   field.TypeInt8,
	"real":      field.TypeFloat64,
	"double":    field.TypeFloat64,
	"float":     field.TypeFloat64,
	"numeric":   field.TypeFloat64,
	"decimal":   field.TypeFloat64,
	"text":      field.TypeString,
	"varchar":   field.TypeString,
	"char":      field.TypeString,
	"clob":      field.TypeString,
	"blob":      field.TypeBytes,
	"date":      field.TypeTime,
	"datetime":  field.TypeTime,
	"timestamp": field.TypeTime,
	"json":      field.TypeJSON,
	"uuid":      field.TypeUUID,
})

// MySQLTypes returns the type-mapping table of MySQL and MariaDB.
func MySQLTypes() TypeMap { return mysqlTypes }

// PostgresTypes returns the type-mapping table of PostgreSQL, keyed by format_type names.
func PostgresTypes() TypeMap { return postgresTypes }

// SQLiteTypes returns the type-mapping table of SQLite declared column types.
func SQLiteTypes() TypeMap { return sqliteTypes }
