package parser

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/anders-frisk/JSBinder/pkg/types"
)

const eof = -1

// Lexer converts a binding expression into a sequence of tokens.
// The implementation is based on Rob Pike's "Lexical Scanning in Go" technique.
//
// Path fragments are emitted as single tokens: dots and balanced bracket
// groups (including quoted strings and nested brackets inside them) are part
// of the path token, so characters inside brackets or string literals are
// never misinterpreted as operators. Operator matching is longest-first,
// so ">>>" never tokenizes as ">>" followed by ">".
type Lexer struct {
	input   string // Input string being scanned
	length  int    // Length of input string
	start   int    // Start position of current token
	current int    // Current position in input
	width   int    // Width of last rune read
	err     error  // First error encountered
}

// NewLexer creates a new lexer from the provided input string.
// The input is tokenized by successive calls to the Next method.
func NewLexer(input string) *Lexer {
	return &Lexer{
		input:  input,
		length: len(input),
	}
}

// Next returns the next token from the input.
// When the end of the input is reached, Next returns TokenEOF for all
// subsequent calls.
func (l *Lexer) Next() Token {
	l.skipWhitespace()

	ch := l.nextRune()
	if ch == eof {
		return l.eof()
	}

	// Operators and punctuation, longest match first
	if seqs, ok := symbols[ch]; ok {
		for _, seq := range seqs {
			if strings.HasPrefix(l.input[l.current:], seq.rest) {
				l.current += len(seq.rest)
				return l.newToken(seq.tt)
			}
		}
		return l.error(types.ErrUnknownOperator, "Unknown operator")
	}

	// String literals (single or double quoted)
	if ch == '"' || ch == '\'' {
		l.ignore()
		return l.scanString(ch)
	}

	// Number literals
	if ch >= '0' && ch <= '9' {
		l.backup()
		return l.scanNumber()
	}

	// Function-call marker: $name
	if ch == '$' {
		l.ignore()
		return l.scanFunc()
	}

	// Path fragments and identifiers
	if isPathStart(ch) {
		l.backup()
		return l.scanPath()
	}

	return l.error(types.ErrSyntaxError, "Unexpected character")
}

// Error returns the first error encountered during lexing, if any.
func (l *Lexer) Error() error {
	return l.err
}

// scanString reads a string literal from the current position.
// The opening quote has already been consumed. Content is preserved
// verbatim, including any operator-like characters inside.
func (l *Lexer) scanString(quote rune) Token {
Loop:
	for {
		switch l.nextRune() {
		case quote:
			break Loop
		case '\\':
			// Consume escaped character
			if r := l.nextRune(); r != eof {
				break
			}
			fallthrough
		case eof:
			return l.error(types.ErrStringNotClosed, "Unterminated string literal")
		}
	}

	l.backup()
	t := l.newToken(TokenString)
	l.acceptRune(quote)
	l.ignore()
	return t
}

// scanNumber reads a number literal from the current position.
// Format: [0-9]+(\.[0-9]+)?([eE][+-]?[0-9]+)?
func (l *Lexer) scanNumber() Token {
	l.acceptAll(isDigit)

	// Decimal part
	if l.acceptRune('.') {
		if !l.acceptAll(isDigit) {
			// A trailing dot is not part of the number.
			l.backup()
			return l.newToken(TokenNumber)
		}
	}

	// Exponent part
	if l.acceptRunes2('e', 'E') {
		l.acceptRunes2('+', '-')
		l.acceptAll(isDigit)
	}

	return l.newToken(TokenNumber)
}

// scanFunc reads a function name after the $ sigil.
func (l *Lexer) scanFunc() Token {
	if !l.accept(isIdentStart) {
		return l.error(types.ErrSyntaxError, "Expected function name after '$'")
	}
	l.acceptAll(isIdentPart)
	return l.newToken(TokenFunc)
}

// scanPath reads a path fragment from the current position.
// A path is a sequence of identifier segments joined by dots, where any
// segment may carry one or more bracket groups: list[3].title,
// @item.name, list[{k1}].name, matrix[1][2].
func (l *Lexer) scanPath() Token {
	l.acceptRune('@') // optional alias sigil

	for {
		ch := l.nextRune()
		if ch == eof {
			break
		}

		if ch == '[' {
			if !l.scanBracketGroup() {
				return l.error(types.ErrBracketNotClosed, "Unterminated bracket group")
			}
			continue
		}

		if !isIdentPart(ch) && ch != '.' {
			l.backup()
			break
		}
	}

	return l.newToken(TokenPath)
}

// scanBracketGroup consumes a balanced bracket group. The opening '[' has
// already been consumed. Quoted strings inside the group are protected so
// that a ']' inside a string does not close the group.
// Returns false when the input ends before the group is closed.
func (l *Lexer) scanBracketGroup() bool {
	depth := 1
	for depth > 0 {
		switch ch := l.nextRune(); ch {
		case eof:
			return false
		case '[':
			depth++
		case ']':
			depth--
		case '"', '\'':
			if !l.scanBracketString(ch) {
				return false
			}
		}
	}
	return true
}

// scanBracketString consumes a quoted string inside a bracket group.
func (l *Lexer) scanBracketString(quote rune) bool {
	for {
		switch l.nextRune() {
		case quote:
			return true
		case '\\':
			if l.nextRune() == eof {
				return false
			}
		case eof:
			return false
		}
	}
}

// Helper methods

func (l *Lexer) eof() Token {
	return Token{
		Type:     TokenEOF,
		Position: l.current,
	}
}

func (l *Lexer) error(code types.ErrorCode, message string) Token {
	t := l.newToken(TokenError)
	l.err = &types.Error{
		Code:     code,
		Message:  message,
		Position: t.Position,
		Token:    t.Value,
	}
	return t
}

func (l *Lexer) newToken(tt TokenType) Token {
	t := Token{
		Type:     tt,
		Value:    l.input[l.start:l.current],
		Position: l.start,
	}
	l.width = 0
	l.start = l.current
	return t
}

func (l *Lexer) nextRune() rune {
	if l.err != nil || l.current >= l.length {
		l.width = 0
		return eof
	}

	r, w := utf8.DecodeRuneInString(l.input[l.current:])
	l.width = w
	l.current += w
	return r
}

func (l *Lexer) backup() {
	l.current -= l.width
}

func (l *Lexer) ignore() {
	l.start = l.current
}

func (l *Lexer) acceptRune(r rune) bool {
	return l.accept(func(c rune) bool {
		return c == r
	})
}

func (l *Lexer) acceptRunes2(r1, r2 rune) bool {
	return l.accept(func(c rune) bool {
		return c == r1 || c == r2
	})
}

func (l *Lexer) accept(isValid func(rune) bool) bool {
	if isValid(l.nextRune()) {
		return true
	}
	l.backup()
	return false
}

func (l *Lexer) acceptAll(isValid func(rune) bool) bool {
	var matched bool
	for l.accept(isValid) {
		matched = true
	}
	return matched
}

func (l *Lexer) skipWhitespace() {
	l.acceptAll(isWhitespace)
	l.ignore()
}

// Character classification functions

func isWhitespace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\v':
		return true
	default:
		return false
	}
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isPathStart(r rune) bool {
	return r == '@' || isIdentStart(r)
}
