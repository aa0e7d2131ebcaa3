// Package field defines the semantic value types that physical database
// columns resolve to.
//
// Each dialect carries a type-mapping table from its normalized physical
// type names to these types:
//
//	"varchar"      -> field.TypeString
//	"int unsigned" -> field.TypeUint32
//	"datetime"     -> field.TypeTime
//	"enum"         -> field.TypeEnum
//	"set"          -> field.TypeSet
//	"json"         -> field.TypeJSON
//
// A column whose physical type has no entry resolves to TypeInvalid.
//
// # Categories
//
// The category predicates decide which facet of a column descriptor is
// populated from the declared type suffix:
//
//	field.TypeString.Textual()   // max length, e.g. varchar(255)
//	field.TypeTime.Temporal()    // fractional precision, e.g. datetime(6)
//	field.TypeEnum.Enumerated()  // allowed values, e.g. enum('a','b')
package field
