package parser

// TokenType represents the type of a lexical token.
type TokenType uint8

const (
	// Special tokens
	TokenEOF TokenType = iota
	TokenError

	// Literals and references
	TokenNumber // 123, 3.14, 1e-10
	TokenString // "hello" or 'hello'
	TokenPath   // fieldName, list[3].title, @item.name, list[{k1}].name
	TokenFunc   // $name, custom function call marker

	// Grouping and ternary punctuation
	TokenParenOpen  // (
	TokenParenClose // )
	TokenCondition  // ?
	TokenColon      // :

	// Unary operators
	TokenNot    // !
	TokenNotNot // !!
	TokenBitNot // ~

	// Arithmetic operators
	TokenPlus  // + (binary or unary, resolved by the parser)
	TokenMinus // - (binary or unary, resolved by the parser)
	TokenPow   // **
	TokenMult  // *
	TokenDiv   // /
	TokenMod   // %

	// Shift operators
	TokenShiftLeft     // <<
	TokenShiftRight    // >>
	TokenShiftRightZero // >>>

	// Relational operators
	TokenGreaterEqual // >=
	TokenGreater      // >
	TokenLessEqual    // <=
	TokenLess         // <

	// Equality operators
	TokenStrictEqual    // ===
	TokenEqual          // ==
	TokenStrictNotEqual // !==
	TokenNotEqual       // !=

	// Bitwise operators
	TokenBitAnd // &
	TokenBitXor // ^
	TokenBitOr  // |

	// Logical operators
	TokenAnd      // &&
	TokenOr       // ||
	TokenCoalesce // ??
)

// String returns a string representation of the token type.
func (tt TokenType) String() string {
	switch tt {
	case TokenEOF:
		return "(eof)"
	case TokenError:
		return "(error)"
	case TokenNumber:
		return "(number)"
	case TokenString:
		return "(string)"
	case TokenPath:
		return "(path)"
	case TokenFunc:
		return "(function)"
	case TokenParenOpen:
		return "("
	case TokenParenClose:
		return ")"
	case TokenCondition:
		return "?"
	case TokenColon:
		return ":"
	case TokenNot:
		return "!"
	case TokenNotNot:
		return "!!"
	case TokenBitNot:
		return "~"
	case TokenPlus:
		return "+"
	case TokenMinus:
		return "-"
	case TokenPow:
		return "**"
	case TokenMult:
		return "*"
	case TokenDiv:
		return "/"
	case TokenMod:
		return "%"
	case TokenShiftLeft:
		return "<<"
	case TokenShiftRight:
		return ">>"
	case TokenShiftRightZero:
		return ">>>"
	case TokenGreaterEqual:
		return ">="
	case TokenGreater:
		return ">"
	case TokenLessEqual:
		return "<="
	case TokenLess:
		return "<"
	case TokenStrictEqual:
		return "==="
	case TokenEqual:
		return "=="
	case TokenStrictNotEqual:
		return "!=="
	case TokenNotEqual:
		return "!="
	case TokenBitAnd:
		return "&"
	case TokenBitXor:
		return "^"
	case TokenBitOr:
		return "|"
	case TokenAnd:
		return "&&"
	case TokenOr:
		return "||"
	case TokenCoalesce:
		return "??"
	default:
		return "(unknown)"
	}
}

// Token represents a lexical token in a binding expression.
type Token struct {
	Type     TokenType // Type of the token
	Value    string    // Literal value of the token
	Position int       // Starting position in the input string
}

// symbolSeq pairs an operator suffix (everything after the first rune) with
// its token type.
type symbolSeq struct {
	rest string
	tt   TokenType
}

// symbols maps the first rune of an operator to its possible completions,
// ordered longest first so that ">>>" never tokenizes as ">>" then ">".
var symbols = map[rune][]symbolSeq{
	'(': {{"", TokenParenOpen}},
	')': {{"", TokenParenClose}},
	':': {{"", TokenColon}},
	'?': {{"?", TokenCoalesce}, {"", TokenCondition}},
	'!': {{"==", TokenStrictNotEqual}, {"=", TokenNotEqual}, {"!", TokenNotNot}, {"", TokenNot}},
	'~': {{"", TokenBitNot}},
	'+': {{"", TokenPlus}},
	'-': {{"", TokenMinus}},
	'*': {{"*", TokenPow}, {"", TokenMult}},
	'/': {{"", TokenDiv}},
	'%': {{"", TokenMod}},
	'<': {{"<", TokenShiftLeft}, {"=", TokenLessEqual}, {"", TokenLess}},
	'>': {{">>", TokenShiftRightZero}, {">", TokenShiftRight}, {"=", TokenGreaterEqual}, {"", TokenGreater}},
	'=': {{"==", TokenStrictEqual}, {"=", TokenEqual}},
	'&': {{"&", TokenAnd}, {"", TokenBitAnd}},
	'^': {{"", TokenBitXor}},
	'|': {{"|", TokenOr}, {"", TokenBitOr}},
}
