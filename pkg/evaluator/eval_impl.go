package evaluator

import (
	"fmt"

	"github.com/anders-frisk/JSBinder/pkg/types"
)

// evalNode walks the tree bottom-up: leaves resolve first, then operator
// subtrees fold outward mirroring the parser's precedence tiers.
func (e *Evaluator) evalNode(node *types.ASTNode, evalCtx *Context, depth int) (interface{}, error) {
	if node == nil {
		return nil, nil
	}
	if e.opts.MaxDepth > 0 && depth > e.opts.MaxDepth {
		return nil, types.NewError(types.ErrSyntaxError, "expression tree too deep", node.Position)
	}

	switch node.Type {
	case types.NodeLiteral:
		return node.Value, nil
	case types.NodePathRef:
		return Resolve(node.Path, evalCtx)
	case types.NodeUnary:
		return e.evalUnary(node, evalCtx, depth)
	case types.NodeBinary:
		return e.evalBinary(node, evalCtx, depth)
	case types.NodeTernary:
		return e.evalTernary(node, evalCtx, depth)
	case types.NodeCall:
		return e.evalCall(node, evalCtx, depth)
	default:
		return nil, fmt.Errorf("unsupported node type: %s", node.Type)
	}
}

// evalTernary evaluates a conditional expression lazily: only the taken
// branch is resolved, so the untaken branch may reference undefined paths
// without consequence.
func (e *Evaluator) evalTernary(node *types.ASTNode, evalCtx *Context, depth int) (interface{}, error) {
	cond, err := e.evalNode(node.LHS, evalCtx, depth+1)
	if err != nil {
		return nil, err
	}
	if truthy(cond) {
		return e.evalNode(node.RHS, evalCtx, depth+1)
	}
	return e.evalNode(node.Else, evalCtx, depth+1)
}

// evalCall invokes a registered custom function with one evaluated
// argument. An unregistered name is an evaluation-time error because
// registration can happen after parsing.
func (e *Evaluator) evalCall(node *types.ASTNode, evalCtx *Context, depth int) (interface{}, error) {
	fn, ok := e.funcs.Lookup(node.Name)
	if !ok {
		return nil, types.NewError(types.ErrUndefinedFunction, fmt.Sprintf("function %q is not registered", node.Name), node.Position)
	}

	arg, err := e.evalNode(node.LHS, evalCtx, depth+1)
	if err != nil {
		return nil, err
	}

	result, err := fn(arg)
	if err != nil {
		return nil, types.NewError(types.ErrFunctionFailed, fmt.Sprintf("function %q failed", node.Name), node.Position).WithCause(err)
	}
	return result, nil
}
