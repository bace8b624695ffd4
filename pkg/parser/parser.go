// Package parser implements the JSBinder expression compiler.
//
// The parser uses a hand-written recursive descent approach with Pratt's
// "Top Down Operator Precedence" algorithm. An expression is compiled once
// per binding occurrence and evaluated many times, so the compiler favors
// simple, allocation-light ASTs over parse speed tricks.
//
// # Architecture
//
// The parser consists of two main components:
//   - Lexer: tokenizes the input expression into a stream of tokens
//   - Parser: builds an Abstract Syntax Tree (AST) from tokens
//
// # Example
//
//	expr, err := parser.Compile("planets[0].name")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	ast := expr.AST()
package parser

import (
	"github.com/anders-frisk/JSBinder/pkg/types"
)

// Parse parses a binding expression and returns the compiled Expression.
//
// The function tokenizes the input, builds an AST, and validates the syntax.
// If parsing fails, it returns a detailed error with position information.
// Malformed expressions are a hard error; the parser never attempts
// recovery.
func Parse(input string) (*types.Expression, error) {
	p := NewParser(input)
	return p.Parse()
}

// Compile is an alias for Parse, provided for API consistency.
func Compile(input string, opts ...CompileOption) (*types.Expression, error) {
	p := NewParser(input, opts...)
	return p.Parse()
}

// CompileOption configures compilation behavior.
type CompileOption func(*CompileOptions)

// CompileOptions holds parser configuration.
type CompileOptions struct {
	// MaxDepth limits recursion depth to prevent stack overflow.
	MaxDepth int
}

// WithMaxDepth sets the maximum parsing depth.
func WithMaxDepth(depth int) CompileOption {
	return func(opts *CompileOptions) {
		opts.MaxDepth = depth
	}
}
