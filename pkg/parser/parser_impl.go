package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/anders-frisk/JSBinder/pkg/types"
)

// Parser implements a recursive descent parser for binding expressions.
// It uses Pratt's "Top Down Operator Precedence" algorithm to handle
// operator precedence correctly.
type Parser struct {
	lexer   *Lexer
	current Token
	prev    Token
	depth   int
	opts    CompileOptions
}

// NewParser creates a new parser for the given input string.
func NewParser(input string, opts ...CompileOption) *Parser {
	options := CompileOptions{
		MaxDepth: 100,
	}
	for _, opt := range opts {
		opt(&options)
	}

	p := &Parser{
		lexer: NewLexer(input),
		opts:  options,
	}

	// Read the first token
	p.advance()

	return p
}

// Parse parses the entire expression and returns the root AST node.
func (p *Parser) Parse() (*types.Expression, error) {
	if p.current.Type == TokenError {
		return nil, p.lexer.Error()
	}

	if p.current.Type == TokenEOF {
		return nil, p.error(types.ErrEmptyExpression, "Empty expression")
	}

	node, err := p.parseExpression(0)
	if err != nil {
		return nil, err
	}

	if p.current.Type == TokenError {
		return nil, p.lexer.Error()
	}
	if p.current.Type != TokenEOF {
		// Two operands with no operator between them land here.
		return nil, p.error(types.ErrMissingOperator, fmt.Sprintf("Unexpected token: %s", p.current.Value))
	}

	return types.NewExpression(node, p.lexer.input), nil
}

// Operator precedence table (binding power).
// Higher values bind more tightly. The ternary condition is the loosest
// operator; unary operators bind tighter than exponentiation, so
// "-2 ** 2" is (-2) ** 2.
var precedence = map[TokenType]int{
	TokenCondition:      10, // ?:
	TokenCoalesce:       15, // ??
	TokenOr:             20, // ||
	TokenAnd:            25, // &&
	TokenBitOr:          30, // |
	TokenBitXor:         35, // ^
	TokenBitAnd:         40, // &
	TokenStrictEqual:    45, // ===
	TokenEqual:          45, // ==
	TokenStrictNotEqual: 45, // !==
	TokenNotEqual:       45, // !=
	TokenGreaterEqual:   50, // >=
	TokenGreater:        50, // >
	TokenLessEqual:      50, // <=
	TokenLess:           50, // <
	TokenShiftLeft:      55, // <<
	TokenShiftRight:     55, // >>
	TokenShiftRightZero: 55, // >>>
	TokenPlus:           60, // + (binary)
	TokenMinus:          60, // - (binary)
	TokenMult:           65, // *
	TokenDiv:            65, // /
	TokenMod:            65, // %
	TokenPow:            70, // ** (right-associative)
}

// unaryPrecedence is the binding power of prefix operators. It sits above
// TokenPow so that a unary operand never swallows an exponentiation.
const unaryPrecedence = 75

// getPrecedence returns the precedence of a token type.
func (p *Parser) getPrecedence(tt TokenType) int {
	if prec, ok := precedence[tt]; ok {
		return prec
	}
	return 0
}

// advance moves to the next token.
func (p *Parser) advance() {
	p.prev = p.current
	p.current = p.lexer.Next()
}

// expect checks if the current token matches the expected type and advances.
func (p *Parser) expect(tt TokenType) error {
	if p.current.Type != tt {
		return p.error(types.ErrExpectedToken, fmt.Sprintf("Expected %s but got %s", tt.String(), p.current.Type.String()))
	}
	p.advance()
	return nil
}

// error creates a parser error carrying the offending source text.
func (p *Parser) error(code types.ErrorCode, message string) error {
	return &types.Error{
		Code:     code,
		Message:  fmt.Sprintf("%s in %q", message, p.lexer.input),
		Position: p.current.Position,
		Token:    p.current.Value,
	}
}

// parseExpression parses an expression with operator precedence.
// rbp is the right binding power (minimum precedence).
func (p *Parser) parseExpression(rbp int) (*types.ASTNode, error) {
	p.depth++
	defer func() { p.depth-- }()
	if p.opts.MaxDepth > 0 && p.depth > p.opts.MaxDepth {
		return nil, p.error(types.ErrSyntaxError, "Expression too deeply nested")
	}

	if p.current.Type == TokenError {
		return nil, p.lexer.Error()
	}

	// Parse prefix expression (nud - null denotation)
	left, err := p.parsePrefix()
	if err != nil {
		return nil, err
	}

	// Parse infix expressions while precedence allows (led - left denotation)
	for rbp < p.getPrecedence(p.current.Type) {
		left, err = p.parseInfix(left)
		if err != nil {
			return nil, err
		}
	}

	return left, nil
}

// parsePrefix parses a prefix expression (nud - null denotation).
// These are expressions that don't require a left-hand side.
// A leading - or + lands here, which is exactly what makes it unary:
// it appears at an expression start or right after an operator or '('.
func (p *Parser) parsePrefix() (*types.ASTNode, error) {
	token := p.current

	switch token.Type {
	case TokenNumber:
		return p.parseNumber()
	case TokenString:
		return p.parseString()
	case TokenPath:
		return p.parsePath()
	case TokenFunc:
		return p.parseCall()
	case TokenParenOpen:
		return p.parseGrouping()
	case TokenMinus, TokenPlus, TokenNot, TokenNotNot, TokenBitNot:
		return p.parseUnary()
	case TokenEOF:
		return nil, p.error(types.ErrDanglingOperator, "Unexpected end of expression")
	case TokenError:
		return nil, p.lexer.Error()
	default:
		return nil, p.error(types.ErrDanglingOperator, fmt.Sprintf("Unexpected token: %s", token.Type.String()))
	}
}

// parseInfix parses an infix expression (led - left denotation).
// These are expressions that require a left-hand side.
func (p *Parser) parseInfix(left *types.ASTNode) (*types.ASTNode, error) {
	token := p.current

	switch token.Type {
	case TokenCondition:
		return p.parseTernary(left)
	case TokenPlus, TokenMinus, TokenPow, TokenMult, TokenDiv, TokenMod,
		TokenShiftLeft, TokenShiftRight, TokenShiftRightZero,
		TokenGreaterEqual, TokenGreater, TokenLessEqual, TokenLess,
		TokenStrictEqual, TokenEqual, TokenStrictNotEqual, TokenNotEqual,
		TokenBitAnd, TokenBitXor, TokenBitOr,
		TokenAnd, TokenOr, TokenCoalesce:
		return p.parseBinaryOp(left)
	default:
		return nil, p.error(types.ErrSyntaxError, fmt.Sprintf("Unexpected infix token: %s", token.Type.String()))
	}
}

// parseNumber parses a number literal.
func (p *Parser) parseNumber() (*types.ASTNode, error) {
	node := types.NewASTNode(types.NodeLiteral, p.current.Position)

	val, err := strconv.ParseFloat(p.current.Value, 64)
	if err != nil {
		return nil, p.error(types.ErrInvalidNumber, fmt.Sprintf("Invalid number: %s", p.current.Value))
	}

	node.Value = val
	p.advance()
	return node, nil
}

// parseString parses a string literal.
func (p *Parser) parseString() (*types.ASTNode, error) {
	node := types.NewASTNode(types.NodeLiteral, p.current.Position)
	node.Value = unescapeString(p.current.Value)
	p.advance()
	return node, nil
}

// parsePath parses a path reference. The raw path token is kept as-is;
// segmentation, literal recognition and placeholder substitution happen in
// the resolver at evaluation time.
func (p *Parser) parsePath() (*types.ASTNode, error) {
	node := types.NewASTNode(types.NodePathRef, p.current.Position)
	node.Path = p.current.Value
	p.advance()
	return node, nil
}

// parseCall parses a function call: $name(arg).
// Exactly one argument is supported. The function is looked up at
// evaluation time, not here, because registration may happen after parsing.
func (p *Parser) parseCall() (*types.ASTNode, error) {
	node := types.NewASTNode(types.NodeCall, p.current.Position)
	node.Name = p.current.Value
	p.advance()

	if err := p.expect(TokenParenOpen); err != nil {
		return nil, err
	}

	arg, err := p.parseExpression(0)
	if err != nil {
		return nil, err
	}
	node.LHS = arg

	if err := p.expect(TokenParenClose); err != nil {
		return nil, err
	}

	return node, nil
}

// parseGrouping parses a parenthesized expression.
func (p *Parser) parseGrouping() (*types.ASTNode, error) {
	p.advance() // Skip '('

	expr, err := p.parseExpression(0)
	if err != nil {
		return nil, err
	}

	if err := p.expect(TokenParenClose); err != nil {
		return nil, err
	}

	return expr, nil
}

// parseUnary parses a prefix operator expression.
func (p *Parser) parseUnary() (*types.ASTNode, error) {
	node := types.NewASTNode(types.NodeUnary, p.current.Position)
	node.Op = p.current.Type.String()
	p.advance()

	operand, err := p.parseExpression(unaryPrecedence)
	if err != nil {
		return nil, err
	}
	node.LHS = operand

	return node, nil
}

// parseBinaryOp parses a binary operator expression.
// Operators within one tier associate left-to-right, except ** which
// associates right-to-left (parsed with prec-1 on the right).
func (p *Parser) parseBinaryOp(left *types.ASTNode) (*types.ASTNode, error) {
	op := p.current
	prec := p.getPrecedence(op.Type)
	p.advance()

	rbp := prec
	if op.Type == TokenPow {
		rbp = prec - 1
	}

	right, err := p.parseExpression(rbp)
	if err != nil {
		return nil, err
	}

	node := types.NewASTNode(types.NodeBinary, op.Position)
	node.Op = op.Type.String()
	node.LHS = left
	node.RHS = right

	return node, nil
}

// parseTernary parses a conditional expression.
// Syntax: condition ? then_expr : else_expr
// Right-associative and the lowest-precedence operator.
func (p *Parser) parseTernary(condition *types.ASTNode) (*types.ASTNode, error) {
	node := types.NewASTNode(types.NodeTernary, p.current.Position)
	node.LHS = condition
	p.advance() // Skip '?'

	thenExpr, err := p.parseExpression(0)
	if err != nil {
		return nil, err
	}
	node.RHS = thenExpr

	if err := p.expect(TokenColon); err != nil {
		return nil, err
	}

	// Right-associative: parse the else branch with prec-1
	elseExpr, err := p.parseExpression(precedence[TokenCondition] - 1)
	if err != nil {
		return nil, err
	}
	node.Else = elseExpr

	return node, nil
}

// unescapeString processes the escape sequences the tokenizer allowed
// through: \" \' \\ \n \t \r. Anything else keeps its backslash verbatim.
func unescapeString(s string) string {
	if !strings.Contains(s, "\\") {
		return s // Fast path: no escapes
	}

	var result strings.Builder
	result.Grow(len(s))

	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 >= len(s) {
			result.WriteByte(s[i])
			continue
		}

		i++
		switch s[i] {
		case 'n':
			result.WriteByte('\n')
		case 't':
			result.WriteByte('\t')
		case 'r':
			result.WriteByte('\r')
		case '\\':
			result.WriteByte('\\')
		case '"':
			result.WriteByte('"')
		case '\'':
			result.WriteByte('\'')
		default:
			result.WriteByte('\\')
			result.WriteByte(s[i])
		}
	}

	return result.String()
}
