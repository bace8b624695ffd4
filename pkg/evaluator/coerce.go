package evaluator

import (
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/anders-frisk/JSBinder/pkg/types"
)

// Coercion helpers mirroring the host-language numeric and string
// conversion rules the binder emulates. Undefined is represented by nil,
// explicit null by types.Null.

// toNumber converts a value to a float64 following host coercion rules.
// Undefined converts to NaN, null to 0, booleans to 0/1, strings via
// numeric parsing ("" is 0, unparseable is NaN).
func toNumber(v interface{}) float64 {
	switch n := v.(type) {
	case nil:
		return math.NaN()
	case types.Null:
		return 0
	case bool:
		if n {
			return 1
		}
		return 0
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int8:
		return float64(n)
	case int16:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case uint:
		return float64(n)
	case uint8:
		return float64(n)
	case uint16:
		return float64(n)
	case uint32:
		return float64(n)
	case uint64:
		return float64(n)
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0
		}
		switch s {
		case "Infinity", "+Infinity":
			return math.Inf(1)
		case "-Infinity":
			return math.Inf(-1)
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

// isNumber reports whether v is a numeric value (not a numeric string).
func isNumber(v interface{}) bool {
	switch v.(type) {
	case float64, float32, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return true
	default:
		return false
	}
}

// toString converts a value to its display string form.
func toString(v interface{}) string {
	switch s := v.(type) {
	case nil:
		return "undefined"
	case types.Null:
		return "null"
	case string:
		return s
	case bool:
		if s {
			return "true"
		}
		return "false"
	default:
		if isNumber(v) {
			return numberString(toNumber(v))
		}
		rv := reflect.ValueOf(v)
		switch rv.Kind() {
		case reflect.Slice, reflect.Array:
			return "[object Array]"
		case reflect.Map:
			return "[object Object]"
		}
		return "[object Object]"
	}
}

// numberString formats a float the way the host language prints numbers:
// integral values without a decimal point, everything else in shortest form.
func numberString(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == math.Trunc(f) && math.Abs(f) < 1e21:
		return strconv.FormatFloat(f, 'f', -1, 64)
	default:
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
}

// truthy reports host-language truthiness: false, 0, NaN, "", undefined and
// null are falsy, everything else is truthy.
func truthy(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return false
	case types.Null:
		return false
	case bool:
		return t
	case string:
		return t != ""
	default:
		if isNumber(v) {
			f := toNumber(v)
			return f != 0 && !math.IsNaN(f)
		}
		return true
	}
}

// toInt32 converts a value to a signed 32-bit integer using the host's
// modulo-2^32 wrapping rules for bitwise and shift operators.
func toInt32(v interface{}) int32 {
	return int32(toUint32(v))
}

// toUint32 converts a value to an unsigned 32-bit integer.
func toUint32(v interface{}) uint32 {
	f := toNumber(v)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	m := math.Mod(math.Trunc(f), 4294967296)
	if m < 0 {
		m += 4294967296
	}
	return uint32(m)
}

// isNullish reports whether v is undefined or null.
func isNullish(v interface{}) bool {
	if v == nil {
		return true
	}
	_, isNull := v.(types.Null)
	return isNull
}

// sameRef reports reference identity for slices and maps, and falls back to
// value equality for comparable kinds. It never panics on uncomparable
// values.
func sameRef(a, b interface{}) bool {
	ra := reflect.ValueOf(a)
	rb := reflect.ValueOf(b)
	if ra.Kind() != rb.Kind() {
		return false
	}
	switch ra.Kind() {
	case reflect.Slice:
		return ra.Pointer() == rb.Pointer() && ra.Len() == rb.Len()
	case reflect.Map, reflect.Func, reflect.Chan, reflect.UnsafePointer, reflect.Ptr:
		return ra.Pointer() == rb.Pointer()
	default:
		if ra.Type() != rb.Type() || !ra.Type().Comparable() {
			return false
		}
		return a == b
	}
}

// looseEqual implements the host's loose equality (==) semantics:
// undefined and null are mutually equal, numbers and numeric strings
// compare numerically, booleans coerce to numbers, objects compare by
// reference.
func looseEqual(a, b interface{}) bool {
	aNullish, bNullish := isNullish(a), isNullish(b)
	if aNullish || bNullish {
		return aNullish && bNullish
	}

	as, aIsStr := a.(string)
	bs, bIsStr := b.(string)
	ab, aIsBool := a.(bool)
	bb, bIsBool := b.(bool)

	switch {
	case aIsStr && bIsStr:
		return as == bs
	case aIsBool && bIsBool:
		return ab == bb
	case isNumber(a) && isNumber(b):
		return toNumber(a) == toNumber(b)
	case isNumber(a) && bIsStr, aIsStr && isNumber(b),
		aIsBool, bIsBool:
		// Mixed scalar kinds coerce to numbers (NaN compares unequal).
		return toNumber(a) == toNumber(b)
	default:
		return sameRef(a, b)
	}
}

// strictEqual implements strict equality (===): operands must be of the
// same kind; objects compare by reference; undefined and null are distinct.
func strictEqual(a, b interface{}) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	_, aNull := a.(types.Null)
	_, bNull := b.(types.Null)
	if aNull || bNull {
		return aNull && bNull
	}

	if isNumber(a) != isNumber(b) {
		return false
	}
	if isNumber(a) {
		return toNumber(a) == toNumber(b)
	}

	as, aIsStr := a.(string)
	bs, bIsStr := b.(string)
	if aIsStr != bIsStr {
		return false
	}
	if aIsStr {
		return as == bs
	}

	ab, aIsBool := a.(bool)
	bb, bIsBool := b.(bool)
	if aIsBool != bIsBool {
		return false
	}
	if aIsBool {
		return ab == bb
	}

	return sameRef(a, b)
}
