// Package token defines the lexical tokens of the Talk++ language.
//
// Keyword and verb tokens are fixed constants; verbs normalize singular and
// plural surface forms ("send", "sends") to a single type at lookup time.
package token

import "fmt"

// TokenType represents the type of a lexical token.
type TokenType int32

const (
	// Special tokens
	EOF TokenType = iota
	ILLEGAL

	// Literals
	IDENT   // lowercase identifier: new_user, email
	SERVICE // capitalized service name: SendGrid, Twilio
	STRING  // "hello" or `hello`, delimiters stripped
	INT     // 42
	FLOAT   // 19.99

	// Punctuation
	COMMA     // ,
	DOT       // .
	COLON     // :
	SEMICOLON // ;

	// Keywords
	IF
	THEN
	ELSE
	WHEN
	AND
	OR
	USING
	WITH
	TO
	IN
	FROM

	// Action verbs
	SEND
	STORE
	VALIDATE
	PROCESS
	TRIGGER
	CALL
)

// String returns a human-readable representation of the token type.
func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TOKEN(%d)", t)
}

// tokenNames maps token types to their string representations.
var tokenNames = map[TokenType]string{
	EOF:     "EOF",
	ILLEGAL: "ILLEGAL",

	IDENT:   "IDENT",
	SERVICE: "SERVICE",
	STRING:  "STRING",
	INT:     "INT",
	FLOAT:   "FLOAT",

	COMMA:     ",",
	DOT:       ".",
	COLON:     ":",
	SEMICOLON: ";",

	IF:    "IF",
	THEN:  "THEN",
	ELSE:  "ELSE",
	WHEN:  "WHEN",
	AND:   "AND",
	OR:    "OR",
	USING: "USING",
	WITH:  "WITH",
	TO:    "TO",
	IN:    "IN",
	FROM:  "FROM",

	SEND:     "SEND",
	STORE:    "STORE",
	VALIDATE: "VALIDATE",
	PROCESS:  "PROCESS",
	TRIGGER:  "TRIGGER",
	CALL:     "CALL",
}

// keywords maps keyword strings to their token types. Keywords are
// case-sensitive: a capitalized "If" lexes as a service name, not a keyword.
var keywords = map[string]TokenType{
	"if":    IF,
	"then":  THEN,
	"else":  ELSE,
	"when":  WHEN,
	"and":   AND,
	"or":    OR,
	"using": USING,
	"with":  WITH,
	"to":    TO,
	"in":    IN,
	"from":  FROM,
}

// verbs maps action verb surface forms to their token types. Both singular
// and plural forms are accepted and normalize to the same type.
var verbs = map[string]TokenType{
	"send":      SEND,
	"sends":     SEND,
	"store":     STORE,
	"stores":    STORE,
	"validate":  VALIDATE,
	"validates": VALIDATE,
	"process":   PROCESS,
	"processes": PROCESS,
	"trigger":   TRIGGER,
	"triggers":  TRIGGER,
	"call":      CALL,
	"calls":     CALL,
}

// LookupWord returns the token type for the given lowercase word.
// Keywords win over verbs; anything else is an IDENT.
func LookupWord(word string) TokenType {
	if tok, ok := keywords[word]; ok {
		return tok
	}
	if tok, ok := verbs[word]; ok {
		return tok
	}
	return IDENT
}

// IsKeyword returns true if the token type is a keyword.
func IsKeyword(t TokenType) bool {
	return t >= IF && t <= FROM
}

// IsVerb returns true if the token type is an action verb.
func IsVerb(t TokenType) bool {
	return t >= SEND && t <= CALL
}

// Token represents a lexical token with position information.
// The span covers the token's exact bytes in the source, including any
// string delimiters stripped from the literal.
type Token struct {
	Type    TokenType
	Literal string
	Span    Span
}

// Pos returns the starting position of the token.
func (t Token) Pos() Position {
	return t.Span.Start
}
