// Package types defines the core type system for JSBinder.
//
// This package contains type definitions for:
//   - Expression: compiled binding expressions
//   - ASTNode: Abstract Syntax Tree nodes
//   - Null: explicit null distinct from undefined
//   - Error types: structured errors with codes
package types

// Expression represents a compiled binding expression.
//
// An Expression is built once per binding occurrence and evaluated many
// times against the current state tree. It is immutable after construction
// and safe for concurrent reads.
type Expression struct {
	ast    *ASTNode
	source string
}

// NewExpression creates a new Expression from an AST.
func NewExpression(ast *ASTNode, source string) *Expression {
	return &Expression{
		ast:    ast,
		source: source,
	}
}

// AST returns the Abstract Syntax Tree of the expression.
func (e *Expression) AST() *ASTNode {
	return e.ast
}

// Source returns the original source text of the expression.
func (e *Expression) Source() string {
	return e.source
}

// String returns a string representation of the expression.
func (e *Expression) String() string {
	return e.source
}

// Rewrite returns a new Expression whose PathRef nodes have been rewritten
// through the supplied function. The receiver is left untouched.
func (e *Expression) Rewrite(rewrite func(string) string) *Expression {
	return &Expression{
		ast:    e.ast.CloneWithPathRewrite(rewrite),
		source: e.source,
	}
}
