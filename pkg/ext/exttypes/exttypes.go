// Package exttypes provides type predicate functions for JSBinder binding
// expressions.
package exttypes

import (
	"github.com/anders-frisk/JSBinder/pkg/functions"
	"github.com/anders-frisk/JSBinder/pkg/types"
)

// All returns all type predicate function definitions.
func All() []functions.Def {
	return []functions.Def{
		IsString(),
		IsNumber(),
		IsBoolean(),
		IsArray(),
		IsObject(),
		IsNull(),
		IsDefined(),
		IsEmpty(),
		TypeOf(),
	}
}

// IsString returns the definition for $isString(v).
func IsString() functions.Def {
	return predicate("isString", func(v interface{}) bool {
		_, ok := v.(string)
		return ok
	})
}

// IsNumber returns the definition for $isNumber(v).
func IsNumber() functions.Def {
	return predicate("isNumber", func(v interface{}) bool {
		switch v.(type) {
		case float64, float32, int, int32, int64, uint, uint64:
			return true
		default:
			return false
		}
	})
}

// IsBoolean returns the definition for $isBoolean(v).
func IsBoolean() functions.Def {
	return predicate("isBoolean", func(v interface{}) bool {
		_, ok := v.(bool)
		return ok
	})
}

// IsArray returns the definition for $isArray(v).
func IsArray() functions.Def {
	return predicate("isArray", func(v interface{}) bool {
		_, ok := v.([]interface{})
		return ok
	})
}

// IsObject returns the definition for $isObject(v).
func IsObject() functions.Def {
	return predicate("isObject", func(v interface{}) bool {
		_, ok := v.(map[string]interface{})
		return ok
	})
}

// IsNull returns the definition for $isNull(v): explicit null only,
// undefined is not null.
func IsNull() functions.Def {
	return predicate("isNull", func(v interface{}) bool {
		return v == types.NullValue
	})
}

// IsDefined returns the definition for $isDefined(v).
func IsDefined() functions.Def {
	return predicate("isDefined", func(v interface{}) bool {
		return v != nil
	})
}

// IsEmpty returns the definition for $isEmpty(v): undefined, null, the
// empty string, and empty sequences/mappings are empty.
func IsEmpty() functions.Def {
	return predicate("isEmpty", func(v interface{}) bool {
		switch t := v.(type) {
		case nil:
			return true
		case string:
			return t == ""
		case []interface{}:
			return len(t) == 0
		case map[string]interface{}:
			return len(t) == 0
		default:
			return v == types.NullValue
		}
	})
}

// TypeOf returns the definition for $typeOf(v).
func TypeOf() functions.Def {
	return functions.Def{
		Name: "typeOf",
		Fn: func(v interface{}) (interface{}, error) {
			switch v.(type) {
			case nil:
				return "undefined", nil
			case string:
				return "string", nil
			case bool:
				return "boolean", nil
			case float64, float32, int, int32, int64, uint, uint64:
				return "number", nil
			case []interface{}:
				return "array", nil
			case map[string]interface{}:
				return "object", nil
			default:
				if v == types.NullValue {
					return "null", nil
				}
				return "unknown", nil
			}
		},
	}
}

func predicate(name string, fn func(interface{}) bool) functions.Def {
	return functions.Def{
		Name: name,
		Fn: func(v interface{}) (interface{}, error) {
			return fn(v), nil
		},
	}
}
