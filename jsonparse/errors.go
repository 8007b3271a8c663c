package jsonparse

import (
	"errors"
	"fmt"
)

// ErrorKind identifies which failure a SyntaxError reports.
type ErrorKind uint8

const (
	// ErrUnterminatedString: a string's closing quote was never found.
	ErrUnterminatedString ErrorKind = iota + 1
	// ErrUnexpectedChar: a byte outside the lexical alphabet.
	ErrUnexpectedChar
	// ErrUnexpectedToken: a grammar violation (wrong key, colon, comma,
	// bracket or value token).
	ErrUnexpectedToken
	// ErrUnexpectedEOF: tokens ran out where one was required.
	ErrUnexpectedEOF
	// ErrTrailingToken: tokens remain after the top-level value.
	ErrTrailingToken
	// ErrBadNumber: a number token that is not a valid float64 literal.
	ErrBadNumber
	// ErrTooDeep: arrays and objects nested beyond MaxDepth.
	ErrTooDeep
)

// String returns the kind name.
func (k ErrorKind) String() string {
	switch k {
	case ErrUnterminatedString:
		return "unterminated string"
	case ErrUnexpectedChar:
		return "unexpected character"
	case ErrUnexpectedToken:
		return "unexpected token"
	case ErrUnexpectedEOF:
		return "unexpected end of input"
	case ErrTrailingToken:
		return "trailing token"
	case ErrBadNumber:
		return "bad number"
	case ErrTooDeep:
		return "nesting too deep"
	default:
		return "unknown"
	}
}

// IsLexical reports whether the failure was detected by the tokenizer.
func (k ErrorKind) IsLexical() bool {
	return k == ErrUnterminatedString || k == ErrUnexpectedChar
}

// SyntaxError represents a tokenizing or parsing error with location.
type SyntaxError struct {
	Kind    ErrorKind
	Message string
	Offset  int  // Byte offset into the input
	Line    int  // 1-based; 0 when the input was not available
	Column  int  // 1-based; 0 when the input was not available
	Token   int  // Index into the token sequence, -1 for lexical errors
	Char    byte // Offending byte for ErrUnexpectedChar
	Err     error
}

func (e *SyntaxError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("jsonparse: %s at %d:%d (offset %d)", e.Message, e.Line, e.Column, e.Offset)
	}
	return fmt.Sprintf("jsonparse: %s at offset %d", e.Message, e.Offset)
}

// Unwrap returns the underlying error, if any.
func (e *SyntaxError) Unwrap() error {
	return e.Err
}

// KindOf returns the ErrorKind carried by err, or 0 if err is not a
// *SyntaxError.
func KindOf(err error) ErrorKind {
	var se *SyntaxError
	if errors.As(err, &se) {
		return se.Kind
	}
	return 0
}

// Locate fills Line and Column of a *SyntaxError from input when the error
// was raised by the parser, which only sees tokens.
func Locate(err error, input string) error {
	var se *SyntaxError
	if errors.As(err, &se) && se.Line == 0 {
		se.Line, se.Column = lineCol(input, se.Offset)
	}
	return err
}
