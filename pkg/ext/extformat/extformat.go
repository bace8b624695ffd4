// Package extformat provides data-format functions for JSBinder binding
// expressions.
package extformat

import (
	"encoding/json"
	"fmt"

	"github.com/anders-frisk/JSBinder/pkg/functions"
)

// All returns all data-format function definitions.
func All() []functions.Def {
	return []functions.Def{
		JSON(),
		FromJSON(),
	}
}

// JSON returns the definition for $json(v): compact JSON encoding.
// Undefined encodes as null.
func JSON() functions.Def {
	return functions.Def{
		Name: "json",
		Fn: func(v interface{}) (interface{}, error) {
			raw, err := json.Marshal(v)
			if err != nil {
				return nil, fmt.Errorf("$json: %w", err)
			}
			return string(raw), nil
		},
	}
}

// FromJSON returns the definition for $fromJson(str).
func FromJSON() functions.Def {
	return functions.Def{
		Name: "fromJson",
		Fn: func(v interface{}) (interface{}, error) {
			s, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("$fromJson: argument must be a string")
			}
			var out interface{}
			if err := json.Unmarshal([]byte(s), &out); err != nil {
				return nil, fmt.Errorf("$fromJson: %w", err)
			}
			return out, nil
		},
	}
}
