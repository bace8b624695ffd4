// Package jsbinder provides a declarative data-binding runtime for
// tree-structured display documents.
//
// JSBinder keeps an in-memory display tree synchronized with a mutable
// state tree. Templates declare bindings with b-* directive attributes and
// {{ expr }} interpolations; the runtime compiles the expressions once,
// detects value changes per binding, and reconciles repeated lists with
// keyed minimal-move diffs.
//
// # Quick Start
//
//	b := binder.New()
//	root, err := b.MountHTML(`
//	    <ul b-each="planets" b-key="@item.name" b-alias="item">
//	        <li>{{ @item.name }}</li>
//	    </ul>`)
//	_ = b.Merge("planets", planets)
//	_ = b.Flush()
//	html := root.Render()
//
// # Expressions
//
//	// Compile once, evaluate many times
//	expr, err := jsbinder.Compile("price * quantity >= 100 ? 'bulk' : 'unit'")
//	result, _ := ev.Eval(expr, evaluator.NewContext(state))
//
//	// One-shot convenience
//	result, err := jsbinder.Eval("user.name ?? 'anonymous'", state)
//
// # More Information
//
// For detailed documentation, see:
//   - Binder: github.com/anders-frisk/JSBinder/pkg/binder
//   - Parser: github.com/anders-frisk/JSBinder/pkg/parser
//   - Evaluator: github.com/anders-frisk/JSBinder/pkg/evaluator
//   - Reconciler: github.com/anders-frisk/JSBinder/pkg/reconcile
package jsbinder

import (
	"fmt"

	"github.com/anders-frisk/JSBinder/pkg/evaluator"
	"github.com/anders-frisk/JSBinder/pkg/parser"
	"github.com/anders-frisk/JSBinder/pkg/types"
)

// Version returns the current version of JSBinder.
func Version() string {
	return "v0.1.0-dev"
}

// Compile compiles a binding expression for repeated evaluation.
//
// The compiled expression is immutable and safe for concurrent reads.
func Compile(source string, opts ...parser.CompileOption) (*types.Expression, error) {
	return parser.Compile(source, opts...)
}

// Eval is a convenience function that compiles and evaluates an expression
// against a state tree in a single call.
//
// For repeated evaluations of the same expression, use Compile instead.
func Eval(source string, state map[string]interface{}, opts ...evaluator.EvalOption) (interface{}, error) {
	expr, err := Compile(source)
	if err != nil {
		return nil, err
	}
	return evaluator.New(opts...).Eval(expr, evaluator.NewContext(state))
}

// MustCompile is like Compile but panics if the expression cannot be
// compiled. It simplifies safe initialization of global variables.
func MustCompile(source string) *types.Expression {
	expr, err := Compile(source)
	if err != nil {
		panic(fmt.Sprintf("jsbinder: Compile(%q): %v", source, err))
	}
	return expr
}
