package sql

import (
	"database/sql/driver"
	"math"
	"reflect"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/syssam/veloxsql"
)

// Value is a scalar that can be rendered as an SQL literal.
// The set of implementations is closed: NullValue, BoolValue, IntValue,
// UintValue, FloatValue, TextValue and TimeValue.
type Value interface {
	scalar()
}

type (
	// NullValue is the SQL NULL.
	NullValue struct{}
	// BoolValue is a boolean rendered with the dialect's boolean literals.
	BoolValue bool
	// IntValue is a signed integer.
	IntValue int64
	// UintValue is an unsigned integer.
	UintValue uint64
	// FloatValue is a finite floating-point number.
	FloatValue float64
	// TextValue is a string passed through the connection's quoting primitive.
	TextValue string
	// TimeValue is a point in time, stored in UTC.
	TimeValue time.Time
)

func (NullValue) scalar()  {}
func (BoolValue) scalar()  {}
func (IntValue) scalar()   {}
func (UintValue) scalar()  {}
func (FloatValue) scalar() {}
func (TextValue) scalar()  {}
func (TimeValue) scalar()  {}

// ValueOf classifies v into one of the scalar variants.
// It fails with a veloxsql.NotScalarError for any other kind.
func ValueOf(v any) (Value, error) {
	switch v := v.(type) {
	case nil:
		return NullValue{}, nil
	case Value:
		return v, nil
	case bool:
		return BoolValue(v), nil
	case int:
		return IntValue(v), nil
	case int8:
		return IntValue(v), nil
	case int16:
		return IntValue(v), nil
	case int32:
		return IntValue(v), nil
	case int64:
		return IntValue(v), nil
	case uint:
		return UintValue(v), nil
	case uint8:
		return UintValue(v), nil
	case uint16:
		return UintValue(v), nil
	case uint32:
		return UintValue(v), nil
	case uint64:
		return UintValue(v), nil
	case float32:
		return floatValue(widen32(v), v)
	case float64:
		return floatValue(v, v)
	case string:
		return TextValue(v), nil
	case []byte:
		if v == nil {
			return NullValue{}, nil
		}
		return TextValue(v), nil
	case time.Time:
		return TimeValue(v), nil
	case uuid.UUID:
		return TextValue(v.String()), nil
	case *bool:
		return pointerValue(v)
	case *int:
		return pointerValue(v)
	case *int8:
		return pointerValue(v)
	case *int16:
		return pointerValue(v)
	case *int32:
		return pointerValue(v)
	case *int64:
		return pointerValue(v)
	case *uint:
		return pointerValue(v)
	case *uint8:
		return pointerValue(v)
	case *uint16:
		return pointerValue(v)
	case *uint32:
		return pointerValue(v)
	case *uint64:
		return pointerValue(v)
	case *float32:
		return pointerValue(v)
	case *float64:
		return pointerValue(v)
	case *string:
		return pointerValue(v)
	case *[]byte:
		return pointerValue(v)
	case *time.Time:
		return pointerValue(v)
	case *uuid.UUID:
		return pointerValue(v)
	case driver.Valuer:
		// A nil pointer to a type with a value receiver would panic in Value.
		if nilPointer(v) {
			return NullValue{}, nil
		}
		dv, err := v.Value()
		if err != nil {
			return nil, err
		}
		// A Valuer returning itself would loop forever.
		if _, ok := dv.(driver.Valuer); ok {
			return nil, veloxsql.NewNotScalarError(v)
		}
		return ValueOf(dv)
	default:
		return nil, veloxsql.NewNotScalarError(v)
	}
}

func floatValue(f float64, orig any) (Value, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, veloxsql.NewNotScalarError(orig)
	}
	return FloatValue(f), nil
}

func pointerValue[T any](p *T) (Value, error) {
	if p == nil {
		return NullValue{}, nil
	}
	return ValueOf(*p)
}

func nilPointer(v any) bool {
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

// widen32 converts f to the float64 with the shortest decimal form of f,
// so float32(1.1) becomes 1.1 rather than 1.100000023841858.
func widen32(f float32) float64 {
	w, err := strconv.ParseFloat(strconv.FormatFloat(float64(f), 'g', -1, 32), 64)
	if err != nil {
		return float64(f)
	}
	return w
}
