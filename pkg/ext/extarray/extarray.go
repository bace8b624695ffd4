// Package extarray provides extended sequence functions for JSBinder
// binding expressions. A non-sequence argument yields undefined rather than
// an error, matching the resolver's absence semantics.
package extarray

import (
	"github.com/anders-frisk/JSBinder/pkg/evaluator"
	"github.com/anders-frisk/JSBinder/pkg/functions"
	"github.com/anders-frisk/JSBinder/pkg/types"
)

// All returns all extended sequence function definitions.
func All() []functions.Def {
	return []functions.Def{
		First(),
		Last(),
		Count(),
		Flatten(),
		Unique(),
		Compact(),
		Reverse(),
	}
}

// First returns the definition for $first(seq).
func First() functions.Def {
	return functions.Def{
		Name: "first",
		Fn: func(v interface{}) (interface{}, error) {
			seq, ok := v.([]interface{})
			if !ok || len(seq) == 0 {
				return nil, nil
			}
			return seq[0], nil
		},
	}
}

// Last returns the definition for $last(seq).
func Last() functions.Def {
	return functions.Def{
		Name: "last",
		Fn: func(v interface{}) (interface{}, error) {
			seq, ok := v.([]interface{})
			if !ok || len(seq) == 0 {
				return nil, nil
			}
			return seq[len(seq)-1], nil
		},
	}
}

// Count returns the definition for $count(seq).
func Count() functions.Def {
	return functions.Def{
		Name: "count",
		Fn: func(v interface{}) (interface{}, error) {
			seq, ok := v.([]interface{})
			if !ok {
				return float64(0), nil
			}
			return float64(len(seq)), nil
		},
	}
}

// Flatten returns the definition for $flatten(seq): one level deep.
func Flatten() functions.Def {
	return functions.Def{
		Name: "flatten",
		Fn: func(v interface{}) (interface{}, error) {
			seq, ok := v.([]interface{})
			if !ok {
				return nil, nil
			}
			out := make([]interface{}, 0, len(seq))
			for _, e := range seq {
				if inner, isSeq := e.([]interface{}); isSeq {
					out = append(out, inner...)
					continue
				}
				out = append(out, e)
			}
			return out, nil
		},
	}
}

// Unique returns the definition for $unique(seq): first occurrence of each
// display value wins.
func Unique() functions.Def {
	return functions.Def{
		Name: "unique",
		Fn: func(v interface{}) (interface{}, error) {
			seq, ok := v.([]interface{})
			if !ok {
				return nil, nil
			}
			seen := make(map[string]struct{}, len(seq))
			out := make([]interface{}, 0, len(seq))
			for _, e := range seq {
				k := evaluator.Display(e)
				if _, dup := seen[k]; dup {
					continue
				}
				seen[k] = struct{}{}
				out = append(out, e)
			}
			return out, nil
		},
	}
}

// Compact returns the definition for $compact(seq): drops nullish entries.
func Compact() functions.Def {
	return functions.Def{
		Name: "compact",
		Fn: func(v interface{}) (interface{}, error) {
			seq, ok := v.([]interface{})
			if !ok {
				return nil, nil
			}
			out := make([]interface{}, 0, len(seq))
			for _, e := range seq {
				if e == nil || e == types.NullValue {
					continue
				}
				out = append(out, e)
			}
			return out, nil
		},
	}
}

// Reverse returns the definition for $reverseSeq(seq).
func Reverse() functions.Def {
	return functions.Def{
		Name: "reverseSeq",
		Fn: func(v interface{}) (interface{}, error) {
			seq, ok := v.([]interface{})
			if !ok {
				return nil, nil
			}
			out := make([]interface{}, len(seq))
			for i, e := range seq {
				out[len(seq)-1-i] = e
			}
			return out, nil
		},
	}
}
