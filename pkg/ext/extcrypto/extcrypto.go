// Package extcrypto provides identifier and digest functions for JSBinder
// binding expressions.
package extcrypto

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"

	"github.com/anders-frisk/JSBinder/pkg/evaluator"
	"github.com/anders-frisk/JSBinder/pkg/functions"
)

// All returns all identifier and digest function definitions.
func All() []functions.Def {
	return []functions.Def{
		UUID(),
		Hash(),
		Base64(),
		Unbase64(),
	}
}

// UUID returns the definition for $uuid(v). The argument is ignored; every
// call yields a fresh random UUID, so the result is never change-detection
// stable and belongs in event handlers, not steady-state bindings.
func UUID() functions.Def {
	return functions.Def{
		Name: "uuid",
		Fn: func(interface{}) (interface{}, error) {
			return uuid.NewString(), nil
		},
	}
}

// Hash returns the definition for $hash(v): SHA-256 hex digest of the
// display string.
func Hash() functions.Def {
	return functions.Def{
		Name: "hash",
		Fn: func(v interface{}) (interface{}, error) {
			sum := sha256.Sum256([]byte(evaluator.Display(v)))
			return hex.EncodeToString(sum[:]), nil
		},
	}
}

// Base64 returns the definition for $base64(v).
func Base64() functions.Def {
	return functions.Def{
		Name: "base64",
		Fn: func(v interface{}) (interface{}, error) {
			return base64.StdEncoding.EncodeToString([]byte(evaluator.Display(v))), nil
		},
	}
}

// Unbase64 returns the definition for $unbase64(str).
func Unbase64() functions.Def {
	return functions.Def{
		Name: "unbase64",
		Fn: func(v interface{}) (interface{}, error) {
			s, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("$unbase64: argument must be a string")
			}
			raw, err := base64.StdEncoding.DecodeString(s)
			if err != nil {
				return nil, fmt.Errorf("$unbase64: %w", err)
			}
			return string(raw), nil
		},
	}
}
