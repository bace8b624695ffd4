// Package extstring provides extended string functions for JSBinder
// binding expressions. Register them via functions.Registry.RegisterAll or
// via the top-level ext.RegisterAll helper.
package extstring

import (
	"strings"
	"unicode"

	"github.com/anders-frisk/JSBinder/pkg/evaluator"
	"github.com/anders-frisk/JSBinder/pkg/functions"
)

// All returns all extended string function definitions.
func All() []functions.Def {
	return []functions.Def{
		Upper(),
		Lower(),
		Trim(),
		Capitalize(),
		TitleCase(),
		CamelCase(),
		SnakeCase(),
		KebabCase(),
		Reverse(),
		Length(),
	}
}

// Upper returns the definition for $upper(str).
func Upper() functions.Def {
	return functions.Def{
		Name: "upper",
		Fn: func(v interface{}) (interface{}, error) {
			return strings.ToUpper(evaluator.Display(v)), nil
		},
	}
}

// Lower returns the definition for $lower(str).
func Lower() functions.Def {
	return functions.Def{
		Name: "lower",
		Fn: func(v interface{}) (interface{}, error) {
			return strings.ToLower(evaluator.Display(v)), nil
		},
	}
}

// Trim returns the definition for $trim(str).
func Trim() functions.Def {
	return functions.Def{
		Name: "trim",
		Fn: func(v interface{}) (interface{}, error) {
			return strings.TrimSpace(evaluator.Display(v)), nil
		},
	}
}

// Capitalize returns the definition for $capitalize(str): first rune upper,
// rest untouched.
func Capitalize() functions.Def {
	return functions.Def{
		Name: "capitalize",
		Fn: func(v interface{}) (interface{}, error) {
			s := evaluator.Display(v)
			if s == "" {
				return s, nil
			}
			r := []rune(s)
			r[0] = unicode.ToUpper(r[0])
			return string(r), nil
		},
	}
}

// TitleCase returns the definition for $titleCase(str): every word
// capitalized.
func TitleCase() functions.Def {
	return functions.Def{
		Name: "titleCase",
		Fn: func(v interface{}) (interface{}, error) {
			words := strings.Fields(evaluator.Display(v))
			for i, w := range words {
				r := []rune(strings.ToLower(w))
				if len(r) > 0 {
					r[0] = unicode.ToUpper(r[0])
				}
				words[i] = string(r)
			}
			return strings.Join(words, " "), nil
		},
	}
}

// CamelCase returns the definition for $camelCase(str).
func CamelCase() functions.Def {
	return functions.Def{
		Name: "camelCase",
		Fn: func(v interface{}) (interface{}, error) {
			words := splitWords(evaluator.Display(v))
			var b strings.Builder
			for i, w := range words {
				if i == 0 {
					b.WriteString(strings.ToLower(w))
					continue
				}
				r := []rune(strings.ToLower(w))
				r[0] = unicode.ToUpper(r[0])
				b.WriteString(string(r))
			}
			return b.String(), nil
		},
	}
}

// SnakeCase returns the definition for $snakeCase(str).
func SnakeCase() functions.Def {
	return functions.Def{
		Name: "snakeCase",
		Fn: func(v interface{}) (interface{}, error) {
			return joinLower(evaluator.Display(v), "_"), nil
		},
	}
}

// KebabCase returns the definition for $kebabCase(str).
func KebabCase() functions.Def {
	return functions.Def{
		Name: "kebabCase",
		Fn: func(v interface{}) (interface{}, error) {
			return joinLower(evaluator.Display(v), "-"), nil
		},
	}
}

// Reverse returns the definition for $reverse(str), rune-wise.
func Reverse() functions.Def {
	return functions.Def{
		Name: "reverse",
		Fn: func(v interface{}) (interface{}, error) {
			r := []rune(evaluator.Display(v))
			for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
				r[i], r[j] = r[j], r[i]
			}
			return string(r), nil
		},
	}
}

// Length returns the definition for $length(str): rune count.
func Length() functions.Def {
	return functions.Def{
		Name: "length",
		Fn: func(v interface{}) (interface{}, error) {
			return float64(len([]rune(evaluator.Display(v)))), nil
		},
	}
}

// splitWords breaks an identifier or phrase into words on spaces, hyphens,
// underscores and lower-to-upper case boundaries.
func splitWords(s string) []string {
	var words []string
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			words = append(words, string(cur))
			cur = cur[:0]
		}
	}
	var prev rune
	for _, r := range s {
		switch {
		case r == ' ' || r == '-' || r == '_':
			flush()
		case unicode.IsUpper(r) && (unicode.IsLower(prev) || unicode.IsDigit(prev)):
			flush()
			cur = append(cur, r)
		default:
			cur = append(cur, r)
		}
		prev = r
	}
	flush()
	return words
}

func joinLower(s, sep string) string {
	words := splitWords(s)
	for i, w := range words {
		words[i] = strings.ToLower(w)
	}
	return strings.Join(words, sep)
}
