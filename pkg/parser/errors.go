package parser

import (
	"fmt"

	"github.com/talkpp-lang/talkpp/pkg/token"
)

// LexError represents a lexical analysis error. Position reports the byte
// offset of the first input that matched no token rule.
type LexError struct {
	Pos     token.Position
	Message string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("lexical error at position %d: %s", e.Pos.Offset, e.Message)
}

// ParseError represents a syntax error at a specific source position.
type ParseError struct {
	Pos     token.Position
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at line %d, column %d: %s", e.Pos.Line, e.Pos.Column, e.Message)
}

// Common error messages
const (
	ErrInvalidToken          = "invalid token: '%s'"
	ErrUnterminatedString    = "unterminated string literal"
	ErrUnterminatedComment   = "unterminated block comment"
	ErrExpectedThen          = "expected 'then' after condition"
	ErrExpectedCondition     = "expected condition"
	ErrExpectedActionVerb    = "expected action verb"
	ErrExpectedVariableName  = "expected variable name"
	ErrExpectedColon         = "expected ':' after variable name"
	ErrExpectedExpression    = "expected expression"
	ErrInvalidIntegerLiteral = "invalid integer literal %q"
	ErrInvalidFloatLiteral   = "invalid float literal %q"
)
