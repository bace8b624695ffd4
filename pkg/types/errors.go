package types

import "fmt"

// ErrorCode represents a JSBinder error code.
type ErrorCode string

// Error codes. S-codes are parse-time, U-codes and D-codes surface at
// evaluation or reconciliation time. A failure carrying any of these codes
// is fatal for the one binding that produced it, never for the whole
// refresh pass.
const (
	// S0xxx: Tokenizer/Parser syntax errors
	ErrEmptyExpression  ErrorCode = "S0101"
	ErrStringNotClosed  ErrorCode = "S0102"
	ErrBracketNotClosed ErrorCode = "S0103"
	ErrInvalidNumber    ErrorCode = "S0104"
	ErrUnknownOperator  ErrorCode = "S0105"
	ErrSyntaxError      ErrorCode = "S0201"
	ErrExpectedToken    ErrorCode = "S0202"
	ErrDanglingOperator ErrorCode = "S0203"
	ErrMissingOperator  ErrorCode = "S0204"

	// U1xxx: Unresolved references
	ErrUndefinedFunction ErrorCode = "U1002"

	// D1xxx: Evaluation/reconciliation diagnostics
	ErrFunctionFailed ErrorCode = "D1001"
	ErrDuplicateKey   ErrorCode = "D1002"
	ErrForbiddenPath  ErrorCode = "D1003"
)

// Error represents a structured JSBinder error.
type Error struct {
	Code     ErrorCode
	Message  string
	Position int
	Token    string
	Err      error
}

// NewError creates a new JSBinder error.
func NewError(code ErrorCode, message string, position int) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		Position: position,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Position >= 0 {
		return fmt.Sprintf("%s at position %d: %s", e.Code, e.Position, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithToken adds token information to the error.
func (e *Error) WithToken(token string) *Error {
	e.Token = token
	return e
}

// WithCause wraps another error.
func (e *Error) WithCause(err error) *Error {
	e.Err = err
	return e
}
