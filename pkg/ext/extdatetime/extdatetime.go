// Package extdatetime provides date/time functions for JSBinder binding
// expressions. Timestamps are Unix milliseconds, the native time
// representation of the state tree; formatted output uses RFC 3339 in UTC.
package extdatetime

import (
	"fmt"
	"math"
	"time"

	"github.com/anders-frisk/JSBinder/pkg/evaluator"
	"github.com/anders-frisk/JSBinder/pkg/functions"
)

// All returns all date/time function definitions.
func All() []functions.Def {
	return []functions.Def{
		FromMillis(),
		ToMillis(),
		Year(),
		Month(),
		Day(),
		Weekday(),
		Hour(),
		Minute(),
	}
}

// FromMillis returns the definition for $fromMillis(ms): RFC 3339 UTC.
func FromMillis() functions.Def {
	return functions.Def{
		Name: "fromMillis",
		Fn: func(v interface{}) (interface{}, error) {
			t, err := millisTime("fromMillis", v)
			if err != nil {
				return nil, err
			}
			return t.Format(time.RFC3339), nil
		},
	}
}

// ToMillis returns the definition for $toMillis(str): parses RFC 3339.
func ToMillis() functions.Def {
	return functions.Def{
		Name: "toMillis",
		Fn: func(v interface{}) (interface{}, error) {
			s, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("$toMillis: argument must be a string")
			}
			t, err := time.Parse(time.RFC3339, s)
			if err != nil {
				return nil, fmt.Errorf("$toMillis: %w", err)
			}
			return float64(t.UnixMilli()), nil
		},
	}
}

// Year returns the definition for $year(ms).
func Year() functions.Def {
	return component("year", func(t time.Time) float64 { return float64(t.Year()) })
}

// Month returns the definition for $month(ms): 1 through 12.
func Month() functions.Def {
	return component("month", func(t time.Time) float64 { return float64(t.Month()) })
}

// Day returns the definition for $day(ms): day of month.
func Day() functions.Def {
	return component("day", func(t time.Time) float64 { return float64(t.Day()) })
}

// Weekday returns the definition for $weekday(ms): 0 is Sunday.
func Weekday() functions.Def {
	return component("weekday", func(t time.Time) float64 { return float64(t.Weekday()) })
}

// Hour returns the definition for $hour(ms).
func Hour() functions.Def {
	return component("hour", func(t time.Time) float64 { return float64(t.Hour()) })
}

// Minute returns the definition for $minute(ms).
func Minute() functions.Def {
	return component("minute", func(t time.Time) float64 { return float64(t.Minute()) })
}

func component(name string, fn func(time.Time) float64) functions.Def {
	return functions.Def{
		Name: name,
		Fn: func(v interface{}) (interface{}, error) {
			t, err := millisTime(name, v)
			if err != nil {
				return nil, err
			}
			return fn(t), nil
		},
	}
}

func millisTime(name string, v interface{}) (time.Time, error) {
	ms := evaluator.Number(v)
	if math.IsNaN(ms) || math.IsInf(ms, 0) {
		return time.Time{}, fmt.Errorf("$%s: argument must be a millisecond timestamp", name)
	}
	return time.UnixMilli(int64(ms)).UTC(), nil
}
