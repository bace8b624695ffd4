// Package extobject provides extended mapping functions for JSBinder
// binding expressions. Keys are emitted in sorted order so results are
// deterministic across refreshes.
package extobject

import (
	"sort"

	"github.com/anders-frisk/JSBinder/pkg/functions"
)

// All returns all extended mapping function definitions.
func All() []functions.Def {
	return []functions.Def{
		Keys(),
		Values(),
		Entries(),
		Size(),
	}
}

// Keys returns the definition for $keys(obj).
func Keys() functions.Def {
	return functions.Def{
		Name: "keys",
		Fn: func(v interface{}) (interface{}, error) {
			m, ok := v.(map[string]interface{})
			if !ok {
				return nil, nil
			}
			keys := sortedKeys(m)
			out := make([]interface{}, len(keys))
			for i, k := range keys {
				out[i] = k
			}
			return out, nil
		},
	}
}

// Values returns the definition for $values(obj), ordered by key.
func Values() functions.Def {
	return functions.Def{
		Name: "values",
		Fn: func(v interface{}) (interface{}, error) {
			m, ok := v.(map[string]interface{})
			if !ok {
				return nil, nil
			}
			out := make([]interface{}, 0, len(m))
			for _, k := range sortedKeys(m) {
				out = append(out, m[k])
			}
			return out, nil
		},
	}
}

// Entries returns the definition for $entries(obj): a sequence of
// {key, value} mappings ordered by key.
func Entries() functions.Def {
	return functions.Def{
		Name: "entries",
		Fn: func(v interface{}) (interface{}, error) {
			m, ok := v.(map[string]interface{})
			if !ok {
				return nil, nil
			}
			out := make([]interface{}, 0, len(m))
			for _, k := range sortedKeys(m) {
				out = append(out, map[string]interface{}{
					"key":   k,
					"value": m[k],
				})
			}
			return out, nil
		},
	}
}

// Size returns the definition for $size(obj).
func Size() functions.Def {
	return functions.Def{
		Name: "size",
		Fn: func(v interface{}) (interface{}, error) {
			m, ok := v.(map[string]interface{})
			if !ok {
				return float64(0), nil
			}
			return float64(len(m)), nil
		},
	}
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
