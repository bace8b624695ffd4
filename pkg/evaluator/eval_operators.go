package evaluator

import (
	"fmt"
	"math"

	"github.com/anders-frisk/JSBinder/pkg/types"
)

// evalBinary folds a binary operator subtree. Logical and coalescing
// operators short-circuit; everything else evaluates both sides first.
func (e *Evaluator) evalBinary(node *types.ASTNode, evalCtx *Context, depth int) (interface{}, error) {
	switch node.Op {
	case "&&":
		return e.evalAnd(node, evalCtx, depth)
	case "||":
		return e.evalOr(node, evalCtx, depth)
	case "??":
		return e.evalCoalesce(node, evalCtx, depth)
	}

	left, err := e.evalNode(node.LHS, evalCtx, depth+1)
	if err != nil {
		return nil, err
	}

	right, err := e.evalNode(node.RHS, evalCtx, depth+1)
	if err != nil {
		return nil, err
	}

	switch node.Op {
	case "+":
		return opAdd(left, right), nil
	case "-":
		return toNumber(left) - toNumber(right), nil
	case "*":
		return toNumber(left) * toNumber(right), nil
	case "/":
		return toNumber(left) / toNumber(right), nil
	case "%":
		return math.Mod(toNumber(left), toNumber(right)), nil
	case "**":
		return math.Pow(toNumber(left), toNumber(right)), nil
	case "<<":
		return float64(toInt32(left) << (toUint32(right) & 31)), nil
	case ">>":
		return float64(toInt32(left) >> (toUint32(right) & 31)), nil
	case ">>>":
		return float64(toUint32(left) >> (toUint32(right) & 31)), nil
	case ">=":
		return opCompare(left, right, func(c int) bool { return c >= 0 }), nil
	case ">":
		return opCompare(left, right, func(c int) bool { return c > 0 }), nil
	case "<=":
		return opCompare(left, right, func(c int) bool { return c <= 0 }), nil
	case "<":
		return opCompare(left, right, func(c int) bool { return c < 0 }), nil
	case "===":
		return strictEqual(left, right), nil
	case "==":
		return looseEqual(left, right), nil
	case "!==":
		return !strictEqual(left, right), nil
	case "!=":
		return !looseEqual(left, right), nil
	case "&":
		return float64(toInt32(left) & toInt32(right)), nil
	case "^":
		return float64(toInt32(left) ^ toInt32(right)), nil
	case "|":
		return float64(toInt32(left) | toInt32(right)), nil
	default:
		return nil, fmt.Errorf("unsupported binary operator: %s", node.Op)
	}
}

// evalUnary evaluates a prefix operator expression.
func (e *Evaluator) evalUnary(node *types.ASTNode, evalCtx *Context, depth int) (interface{}, error) {
	operand, err := e.evalNode(node.LHS, evalCtx, depth+1)
	if err != nil {
		return nil, err
	}

	switch node.Op {
	case "-":
		return -toNumber(operand), nil
	case "+":
		return toNumber(operand), nil
	case "!":
		return !truthy(operand), nil
	case "!!":
		return truthy(operand), nil
	case "~":
		return float64(^toInt32(operand)), nil
	default:
		return nil, fmt.Errorf("unsupported unary operator: %s", node.Op)
	}
}

// evalAnd short-circuits: the right side is only evaluated when the left is
// truthy; the result is an operand value, not a forced boolean.
func (e *Evaluator) evalAnd(node *types.ASTNode, evalCtx *Context, depth int) (interface{}, error) {
	left, err := e.evalNode(node.LHS, evalCtx, depth+1)
	if err != nil {
		return nil, err
	}
	if !truthy(left) {
		return left, nil
	}
	return e.evalNode(node.RHS, evalCtx, depth+1)
}

// evalOr short-circuits: the right side is only evaluated when the left is
// falsy.
func (e *Evaluator) evalOr(node *types.ASTNode, evalCtx *Context, depth int) (interface{}, error) {
	left, err := e.evalNode(node.LHS, evalCtx, depth+1)
	if err != nil {
		return nil, err
	}
	if truthy(left) {
		return left, nil
	}
	return e.evalNode(node.RHS, evalCtx, depth+1)
}

// evalCoalesce returns the left side unless it is undefined or null.
func (e *Evaluator) evalCoalesce(node *types.ASTNode, evalCtx *Context, depth int) (interface{}, error) {
	left, err := e.evalNode(node.LHS, evalCtx, depth+1)
	if err != nil {
		return nil, err
	}
	if !isNullish(left) {
		return left, nil
	}
	return e.evalNode(node.RHS, evalCtx, depth+1)
}

// opAdd implements the host's + semantics: if both operands coerce to
// numbers the result is numeric addition (NaN-propagating); otherwise both
// sides are stringified and concatenated.
func opAdd(left, right interface{}) interface{} {
	lf, rf := toNumber(left), toNumber(right)
	if !math.IsNaN(lf) && !math.IsNaN(rf) {
		return lf + rf
	}

	_, lStr := left.(string)
	_, rStr := right.(string)
	if lStr || rStr {
		return toString(left) + toString(right)
	}

	return math.NaN()
}

// opCompare evaluates a relational operator: two strings compare
// lexicographically, anything else compares numerically. A NaN operand
// makes every relation false.
func opCompare(left, right interface{}, test func(int) bool) bool {
	ls, lOK := left.(string)
	rs, rOK := right.(string)
	if lOK && rOK {
		switch {
		case ls < rs:
			return test(-1)
		case ls > rs:
			return test(1)
		default:
			return test(0)
		}
	}

	lf, rf := toNumber(left), toNumber(right)
	if math.IsNaN(lf) || math.IsNaN(rf) {
		return false
	}
	switch {
	case lf < rf:
		return test(-1)
	case lf > rf:
		return test(1)
	default:
		return test(0)
	}
}
