// Package evaluator implements the JSBinder expression evaluation engine.
//
// The evaluator receives a parsed Abstract Syntax Tree (AST) from the parser
// and evaluates it against the current state tree. It supports:
//   - Path resolution with index-placeholder substitution
//   - Host-language numeric coercion and loose/strict equality
//   - Lazy ternary evaluation (only the taken branch is resolved)
//   - User-registered custom functions, looked up at evaluation time
//
// Evaluation is always fully synchronous and total up to error; there is no
// suspension or cancellation mid-evaluation.
//
// # Example
//
//	ev := evaluator.New()
//	result, err := ev.Eval(expr, evaluator.NewContext(state))
package evaluator

import (
	"log/slog"

	"github.com/anders-frisk/JSBinder/pkg/functions"
	"github.com/anders-frisk/JSBinder/pkg/types"
)

// Evaluator evaluates compiled binding expressions against a state tree.
type Evaluator struct {
	opts   EvalOptions
	logger *slog.Logger
	funcs  *functions.Registry
}

// EvalOptions configures evaluator behavior.
type EvalOptions struct {
	// MaxDepth limits AST recursion depth.
	MaxDepth int
	// Logger for structured logging.
	Logger *slog.Logger
	// Functions is the custom-function table consulted by $name(...) calls.
	// When nil a fresh empty registry is created.
	Functions *functions.Registry
}

// New creates a new Evaluator with default options.
func New(opts ...EvalOption) *Evaluator {
	options := EvalOptions{
		MaxDepth: 1000,
	}

	for _, opt := range opts {
		opt(&options)
	}

	if options.Logger == nil {
		options.Logger = slog.Default()
	}
	if options.Functions == nil {
		options.Functions = functions.NewRegistry()
	}

	return &Evaluator{
		opts:   options,
		logger: options.Logger,
		funcs:  options.Functions,
	}
}

// Functions returns the evaluator's custom-function registry.
func (e *Evaluator) Functions() *functions.Registry {
	return e.funcs
}

// RegisterFunction adds a custom function to the evaluator's registry.
// The name must match the identifier grammar; an existing name is
// overwritten silently.
func (e *Evaluator) RegisterFunction(name string, fn functions.Func) error {
	return e.funcs.Register(name, fn)
}

// Eval evaluates a compiled expression against the context's state tree.
// It is a pure function of its inputs except for whatever side effects the
// registered custom functions may have.
func (e *Evaluator) Eval(expr *types.Expression, evalCtx *Context) (interface{}, error) {
	if expr == nil || expr.AST() == nil {
		return nil, types.NewError(types.ErrEmptyExpression, "invalid expression", -1)
	}
	if evalCtx == nil {
		evalCtx = NewContext(nil)
	}
	return e.evalNode(expr.AST(), evalCtx, 0)
}

// EvalOption configures evaluation behavior.
type EvalOption func(*EvalOptions)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) EvalOption {
	return func(opts *EvalOptions) {
		opts.Logger = logger
	}
}

// WithMaxDepth sets the maximum AST recursion depth.
func WithMaxDepth(depth int) EvalOption {
	return func(opts *EvalOptions) {
		opts.MaxDepth = depth
	}
}

// WithFunctions attaches an external custom-function registry.
// Several evaluators may share one registry.
func WithFunctions(reg *functions.Registry) EvalOption {
	return func(opts *EvalOptions) {
		opts.Functions = reg
	}
}
