package sql

import (
	"database/sql/driver"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"time"

	"github.com/google/uuid"
)

type keyKind uint8

// The order matters: KeyEqual compares the lower kind against the higher one.
const (
	keyNull keyKind = iota
	keyBool
	keyInt
	keyUint
	keyFloat
	keyTime
	keyText
)

type keyValue struct {
	kind keyKind
	b    bool
	i    int64
	u    uint64
	f    float64
	t    time.Time
	s    string
}

// KeyEqual reports whether an in-memory key value equals a value read back
// from the database, tolerating representation differences:
//
//   - nil equals only nil. A nil pointer is nil; other pointers compare by
//     the value they point to.
//   - Integers of any width compare by value. Integral floats are integers.
//   - An integer equals a string only in canonical base-10 form: "5" equals 5,
//     "05", "+5" and " 5" do not.
//   - A non-integral float equals a string that parses to the same float.
//   - Byte slices compare as strings; UUIDs compare by their string form.
//   - A time equals another time at the same instant, or a string holding that
//     instant in UTC in one of the layouts TimeLayout, RFC 3339 or "2006-01-02 15:04:05".
//   - true and false equal 1 and 0, and their string forms "1" and "0".
//   - Any other value is compared by its fmt string form.
func KeyEqual(a, b any) bool {
	x, y := keyOf(a), keyOf(b)
	if x.kind > y.kind {
		x, y = y, x
	}
	return keysEqual(x, y)
}

func keysEqual(x, y keyValue) bool {
	if x.kind == y.kind {
		switch x.kind {
		case keyNull:
			return true
		case keyBool:
			return x.b == y.b
		case keyInt:
			return x.i == y.i
		case keyUint:
			return x.u == y.u
		case keyFloat:
			return x.f == y.f
		case keyTime:
			return x.t.Equal(y.t)
		default:
			return x.s == y.s
		}
	}
	switch x.kind {
	case keyNull:
		return false
	case keyBool:
		n := keyValue{kind: keyInt}
		if x.b {
			n.i = 1
		}
		return keysEqual(n, y)
	case keyInt:
		return y.kind == keyText && y.s == strconv.FormatInt(x.i, 10)
	case keyUint:
		return y.kind == keyText && y.s == strconv.FormatUint(x.u, 10)
	case keyFloat:
		if y.kind != keyText {
			return false
		}
		f, err := strconv.ParseFloat(y.s, 64)
		return err == nil && f == x.f
	case keyTime:
		t, ok := parseKeyTime(y.s)
		return ok && t.Equal(x.t)
	}
	return false
}

func keyOf(v any) keyValue {
	switch v := v.(type) {
	case nil:
		return keyValue{kind: keyNull}
	case bool:
		return keyValue{kind: keyBool, b: v}
	case int:
		return keyValue{kind: keyInt, i: int64(v)}
	case int8:
		return keyValue{kind: keyInt, i: int64(v)}
	case int16:
		return keyValue{kind: keyInt, i: int64(v)}
	case int32:
		return keyValue{kind: keyInt, i: int64(v)}
	case int64:
		return keyValue{kind: keyInt, i: v}
	case uint:
		return uintKey(uint64(v))
	case uint8:
		return uintKey(uint64(v))
	case uint16:
		return uintKey(uint64(v))
	case uint32:
		return uintKey(uint64(v))
	case uint64:
		return uintKey(v)
	case float32:
		return floatKey(widen32(v))
	case float64:
		return floatKey(v)
	case string:
		return keyValue{kind: keyText, s: v}
	case []byte:
		return keyValue{kind: keyText, s: string(v)}
	case uuid.UUID:
		return keyValue{kind: keyText, s: v.String()}
	case time.Time:
		return keyValue{kind: keyTime, t: v}
	case driver.Valuer:
		if nilPointer(v) {
			return keyValue{kind: keyNull}
		}
		dv, err := v.Value()
		if err != nil {
			return keyValue{kind: keyText, s: fmt.Sprint(v)}
		}
		if _, ok := dv.(driver.Valuer); ok {
			return keyValue{kind: keyText, s: fmt.Sprint(dv)}
		}
		return keyOf(dv)
	default:
		if rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer {
			if rv.IsNil() {
				return keyValue{kind: keyNull}
			}
			return keyOf(rv.Elem().Interface())
		}
		return keyValue{kind: keyText, s: fmt.Sprint(v)}
	}
}

func uintKey(u uint64) keyValue {
	if u <= math.MaxInt64 {
		return keyValue{kind: keyInt, i: int64(u)}
	}
	return keyValue{kind: keyUint, u: u}
}

func floatKey(f float64) keyValue {
	if f == math.Trunc(f) && f >= math.MinInt64 && f < math.MaxInt64 {
		return keyValue{kind: keyInt, i: int64(f)}
	}
	return keyValue{kind: keyFloat, f: f}
}

var keyTimeLayouts = []string{TimeLayout, time.RFC3339Nano, "2006-01-02 15:04:05.999999999", "2006-01-02 15:04:05"}

func parseKeyTime(s string) (time.Time, bool) {
	for _, layout := range keyTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
