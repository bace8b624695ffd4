// Package extnumeric provides extended numeric functions for JSBinder
// binding expressions. Scalar functions coerce their argument with the
// host-language number rules; aggregate functions take a sequence and skip
// non-numeric entries.
package extnumeric

import (
	"fmt"
	"math"
	"sort"

	"github.com/anders-frisk/JSBinder/pkg/evaluator"
	"github.com/anders-frisk/JSBinder/pkg/functions"
)

// All returns all extended numeric function definitions.
func All() []functions.Def {
	return []functions.Def{
		Abs(),
		Sign(),
		Trunc(),
		Round(),
		Floor(),
		Ceil(),
		Sqrt(),
		Log(),
		Sum(),
		Avg(),
		Min(),
		Max(),
		Median(),
	}
}

// Abs returns the definition for $abs(n).
func Abs() functions.Def {
	return scalar("abs", math.Abs)
}

// Sign returns the definition for $sign(n): -1, 0 or 1.
func Sign() functions.Def {
	return scalar("sign", func(n float64) float64 {
		switch {
		case n > 0:
			return 1
		case n < 0:
			return -1
		default:
			return 0
		}
	})
}

// Trunc returns the definition for $trunc(n).
func Trunc() functions.Def {
	return scalar("trunc", math.Trunc)
}

// Round returns the definition for $round(n): half away from zero.
func Round() functions.Def {
	return scalar("round", math.Round)
}

// Floor returns the definition for $floor(n).
func Floor() functions.Def {
	return scalar("floor", math.Floor)
}

// Ceil returns the definition for $ceil(n).
func Ceil() functions.Def {
	return scalar("ceil", math.Ceil)
}

// Sqrt returns the definition for $sqrt(n).
func Sqrt() functions.Def {
	return functions.Def{
		Name: "sqrt",
		Fn: func(v interface{}) (interface{}, error) {
			n := evaluator.Number(v)
			if n < 0 {
				return nil, fmt.Errorf("$sqrt: negative argument %v", n)
			}
			return math.Sqrt(n), nil
		},
	}
}

// Log returns the definition for $log(n): natural logarithm.
func Log() functions.Def {
	return functions.Def{
		Name: "log",
		Fn: func(v interface{}) (interface{}, error) {
			n := evaluator.Number(v)
			if n <= 0 {
				return nil, fmt.Errorf("$log: non-positive argument %v", n)
			}
			return math.Log(n), nil
		},
	}
}

// Sum returns the definition for $sum(seq).
func Sum() functions.Def {
	return aggregate("sum", func(ns []float64) float64 {
		total := 0.0
		for _, n := range ns {
			total += n
		}
		return total
	})
}

// Avg returns the definition for $avg(seq).
func Avg() functions.Def {
	return aggregate("avg", func(ns []float64) float64 {
		total := 0.0
		for _, n := range ns {
			total += n
		}
		return total / float64(len(ns))
	})
}

// Min returns the definition for $min(seq).
func Min() functions.Def {
	return aggregate("min", func(ns []float64) float64 {
		m := ns[0]
		for _, n := range ns[1:] {
			m = math.Min(m, n)
		}
		return m
	})
}

// Max returns the definition for $max(seq).
func Max() functions.Def {
	return aggregate("max", func(ns []float64) float64 {
		m := ns[0]
		for _, n := range ns[1:] {
			m = math.Max(m, n)
		}
		return m
	})
}

// Median returns the definition for $median(seq).
func Median() functions.Def {
	return aggregate("median", func(ns []float64) float64 {
		sorted := append([]float64(nil), ns...)
		sort.Float64s(sorted)
		mid := len(sorted) / 2
		if len(sorted)%2 == 1 {
			return sorted[mid]
		}
		return (sorted[mid-1] + sorted[mid]) / 2
	})
}

func scalar(name string, fn func(float64) float64) functions.Def {
	return functions.Def{
		Name: name,
		Fn: func(v interface{}) (interface{}, error) {
			return fn(evaluator.Number(v)), nil
		},
	}
}

func aggregate(name string, fn func([]float64) float64) functions.Def {
	return functions.Def{
		Name: name,
		Fn: func(v interface{}) (interface{}, error) {
			seq, ok := v.([]interface{})
			if !ok {
				return nil, fmt.Errorf("$%s: argument must be a sequence", name)
			}
			ns := make([]float64, 0, len(seq))
			for _, e := range seq {
				if n := evaluator.Number(e); !math.IsNaN(n) {
					ns = append(ns, n)
				}
			}
			if len(ns) == 0 {
				return nil, nil
			}
			return fn(ns), nil
		},
	}
}
