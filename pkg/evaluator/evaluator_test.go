package evaluator_test

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/anders-frisk/JSBinder/pkg/evaluator"
	"github.com/anders-frisk/JSBinder/pkg/parser"
	"github.com/anders-frisk/JSBinder/pkg/types"
)

// Helper functions

func evalStr(t *testing.T, input string, state map[string]interface{}) interface{} {
	t.Helper()
	expr, err := parser.Parse(input)
	if err != nil {
		t.Fatalf("Failed to parse %q: %v", input, err)
	}
	v, err := evaluator.New().Eval(expr, evaluator.NewContext(state))
	if err != nil {
		t.Fatalf("Failed to evaluate %q: %v", input, err)
	}
	return v
}

func checkNumber(t *testing.T, input string, state map[string]interface{}, want float64) {
	t.Helper()
	v := evalStr(t, input, state)
	f, ok := v.(float64)
	if !ok {
		t.Fatalf("%q: expected float64, got %T (%v)", input, v, v)
	}
	if math.IsNaN(want) {
		if !math.IsNaN(f) {
			t.Errorf("%q: expected NaN, got %v", input, f)
		}
		return
	}
	if f != want {
		t.Errorf("%q: expected %v, got %v", input, want, f)
	}
}

// Arithmetic and precedence

func TestEvalArithmetic(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{"2 + 3 * 4", 14},
		{"(2 + 3) * 4", 20},
		{"10 - 3 - 2", 5},
		{"2 ** 3 ** 2", 512},
		{"-2 ** 2", 4},
		{"7 % 3", 1},
		{"1 / 4", 0.25},
		{"+'42'", 42},
		{"-'3'", -3},
		{"1 + true", 2},
		{"null + 1", 1},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			checkNumber(t, tt.input, nil, tt.want)
		})
	}
}

func TestEvalDivisionByZero(t *testing.T) {
	v := evalStr(t, "1 / 0", nil)
	if f, ok := v.(float64); !ok || !math.IsInf(f, 1) {
		t.Errorf("expected +Infinity, got %v", v)
	}
}

func TestEvalAddCoercion(t *testing.T) {
	// Both operands numeric after coercion: numeric addition.
	checkNumber(t, "1 + '2'", nil, 3)

	// A non-numeric string operand switches + to concatenation.
	if v := evalStr(t, "'a' + 1", nil); v != "a1" {
		t.Errorf("expected %q, got %v", "a1", v)
	}
	if v := evalStr(t, "1 + 'a'", nil); v != "1a" {
		t.Errorf("expected %q, got %v", "1a", v)
	}

	// Undefined poisons numeric addition without a string operand.
	checkNumber(t, "missing + 1", nil, math.NaN())
}

// Bitwise and shifts

func TestEvalBitwise(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{"5 & 3", 1},
		{"5 | 2", 7},
		{"5 ^ 1", 4},
		{"~0", -1},
		{"1 << 3", 8},
		{"-8 >> 1", -4},
		{"-1 >>> 0", 4294967295},
		{"1 << 33", 2}, // shift count wraps mod 32
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			checkNumber(t, tt.input, nil, tt.want)
		})
	}
}

// Comparison and equality

func TestEvalComparison(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"'apple' < 'banana'", true},
		{"'10' < '9'", true}, // two strings compare lexicographically
		{"10 < 9", false},
		{"5 > '3'", true}, // mixed operands compare numerically
		{"3 >= 3", true},
		{"missing > 0", false}, // NaN operand: every relation is false
		{"missing <= 0", false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if v := evalStr(t, tt.input, nil); v != tt.want {
				t.Errorf("expected %v, got %v", tt.want, v)
			}
		})
	}
}

func TestEvalEquality(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"null == undefined", true},
		{"null === undefined", false},
		{"null == 0", false}, // nullish only equals nullish
		{"'1' == 1", true},
		{"'1' === 1", false},
		{"true == 1", true},
		{"true === 1", false},
		{"NaN == NaN", false},
		{"'a' != 'b'", true},
		{"2 !== 2", false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if v := evalStr(t, tt.input, nil); v != tt.want {
				t.Errorf("expected %v, got %v", tt.want, v)
			}
		})
	}
}

// Logical operators

func TestEvalLogical(t *testing.T) {
	if v := evalStr(t, "0 || 'x'", nil); v != "x" {
		t.Errorf("|| should return the operand value, got %v", v)
	}
	if v := evalStr(t, "1 && 2", nil); v != 2.0 {
		t.Errorf("&& should return the operand value, got %v", v)
	}
	if v := evalStr(t, "'' ?? 'y'", nil); v != "" {
		t.Errorf("?? must not treat empty string as nullish, got %v", v)
	}
	if v := evalStr(t, "null ?? 'y'", nil); v != "y" {
		t.Errorf("?? should skip null, got %v", v)
	}
	if v := evalStr(t, "missing ?? 'y'", nil); v != "y" {
		t.Errorf("?? should skip undefined, got %v", v)
	}
}

func TestEvalShortCircuit(t *testing.T) {
	// The right side references an unregistered function: evaluating it
	// would error, so these only pass if it is skipped.
	if v := evalStr(t, "false && $boom(1)", nil); v != false {
		t.Errorf("expected false, got %v", v)
	}
	if v := evalStr(t, "'left' || $boom(1)", nil); v != "left" {
		t.Errorf("expected left operand, got %v", v)
	}
	if v := evalStr(t, "0 ?? $boom(1)", nil); v != 0.0 {
		t.Errorf("expected 0, got %v", v)
	}
}

// Ternary

func TestEvalTernaryLazy(t *testing.T) {
	if v := evalStr(t, "true ? 1 : $boom(1)", nil); v != 1.0 {
		t.Errorf("expected 1, got %v", v)
	}
	if v := evalStr(t, "false ? $boom(1) : 2", nil); v != 2.0 {
		t.Errorf("expected 2, got %v", v)
	}
}

func TestEvalTernaryChain(t *testing.T) {
	state := map[string]interface{}{"n": float64(5)}
	v := evalStr(t, "n < 0 ? 'neg' : n == 0 ? 'zero' : 'pos'", state)
	if v != "pos" {
		t.Errorf("expected %q, got %v", "pos", v)
	}
}

// Unary

func TestEvalUnary(t *testing.T) {
	if v := evalStr(t, "!0", nil); v != true {
		t.Errorf("expected true, got %v", v)
	}
	if v := evalStr(t, "!!''", nil); v != false {
		t.Errorf("expected false, got %v", v)
	}
	if v := evalStr(t, "!!'x'", nil); v != true {
		t.Errorf("expected true, got %v", v)
	}
}

// Paths against state

func planetState() map[string]interface{} {
	return map[string]interface{}{
		"planets": []interface{}{
			map[string]interface{}{"name": "Sun", "type": "Star"},
			map[string]interface{}{"name": "Mercury", "type": "Rock"},
			map[string]interface{}{"name": "Venus", "type": "Rock"},
		},
	}
}

func TestEvalPaths(t *testing.T) {
	state := planetState()
	if v := evalStr(t, "planets[0].name", state); v != "Sun" {
		t.Errorf("expected Sun, got %v", v)
	}
	if v := evalStr(t, "planets.length", state); v != 3.0 {
		t.Errorf("expected 3, got %v", v)
	}
	if v := evalStr(t, "planets[1].type == 'Rock'", state); v != true {
		t.Errorf("expected true, got %v", v)
	}
}

func TestEvalReusesCompiledExpression(t *testing.T) {
	expr, err := parser.Parse("planets[0].name")
	if err != nil {
		t.Fatal(err)
	}
	ev := evaluator.New()

	state := planetState()
	evalCtx := evaluator.NewContext(state)
	if v, _ := ev.Eval(expr, evalCtx); v != "Sun" {
		t.Fatalf("expected Sun, got %v", v)
	}

	// Mutate the state; the same compiled expression sees the new value.
	state["planets"].([]interface{})[0].(map[string]interface{})["name"] = "Mercury"
	if v, _ := ev.Eval(expr, evalCtx); v != "Mercury" {
		t.Errorf("expected Mercury after mutation, got %v", v)
	}
}

func TestEvalPlaceholders(t *testing.T) {
	expr, err := parser.Parse("planets[{k1}].name")
	if err != nil {
		t.Fatal(err)
	}
	ev := evaluator.New()
	evalCtx := evaluator.NewContext(planetState()).
		WithIndexes(evaluator.IndexMap{"k1": 2})

	v, err := ev.Eval(expr, evalCtx)
	if err != nil {
		t.Fatal(err)
	}
	if v != "Venus" {
		t.Errorf("expected Venus, got %v", v)
	}

	// Unknown placeholder: the whole path is undefined, not an error.
	expr2, _ := parser.Parse("planets[{nope}].name")
	v, err = ev.Eval(expr2, evaluator.NewContext(planetState()))
	if err != nil {
		t.Fatal(err)
	}
	if v != nil {
		t.Errorf("expected undefined, got %v", v)
	}
}

// Custom functions

func TestEvalCustomFunction(t *testing.T) {
	ev := evaluator.New()
	err := ev.RegisterFunction("double", func(v interface{}) (interface{}, error) {
		return evaluator.Number(v) * 2, nil
	})
	if err != nil {
		t.Fatal(err)
	}

	expr, _ := parser.Parse("$double(21)")
	v, err := ev.Eval(expr, evaluator.NewContext(nil))
	if err != nil {
		t.Fatal(err)
	}
	if v != 42.0 {
		t.Errorf("expected 42, got %v", v)
	}
}

func TestEvalUnregisteredFunction(t *testing.T) {
	expr, _ := parser.Parse("$nope(1)")
	_, err := evaluator.New().Eval(expr, evaluator.NewContext(nil))
	if err == nil {
		t.Fatal("expected error for unregistered function")
	}
	var terr *types.Error
	if !errors.As(err, &terr) || terr.Code != types.ErrUndefinedFunction {
		t.Errorf("expected code %s, got %v", types.ErrUndefinedFunction, err)
	}
}

func TestEvalFunctionFailure(t *testing.T) {
	boom := fmt.Errorf("boom")
	ev := evaluator.New()
	_ = ev.RegisterFunction("fail", func(interface{}) (interface{}, error) {
		return nil, boom
	})

	expr, _ := parser.Parse("$fail(1)")
	_, err := ev.Eval(expr, evaluator.NewContext(nil))
	if err == nil {
		t.Fatal("expected error")
	}
	var terr *types.Error
	if !errors.As(err, &terr) || terr.Code != types.ErrFunctionFailed {
		t.Errorf("expected code %s, got %v", types.ErrFunctionFailed, err)
	}
	if !errors.Is(err, boom) {
		t.Errorf("expected wrapped cause, got %v", err)
	}
}

// Display helper

func TestDisplay(t *testing.T) {
	tests := []struct {
		in   interface{}
		want string
	}{
		{nil, "undefined"},
		{types.NullValue, "null"},
		{true, "true"},
		{float64(3), "3"},
		{float64(3.5), "3.5"},
		{math.NaN(), "NaN"},
		{math.Inf(1), "Infinity"},
		{"x", "x"},
		{[]interface{}{1.0}, "[object Array]"},
		{map[string]interface{}{}, "[object Object]"},
	}
	for _, tt := range tests {
		if got := evaluator.Display(tt.in); got != tt.want {
			t.Errorf("Display(%v): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}
