package parser

import (
	"fmt"
	"strings"

	"github.com/talkpp-lang/talkpp/pkg/token"
)

// Lexer tokenizes Talk++ input.
type Lexer struct {
	input   string
	pos     int  // current position in input
	readPos int  // reading position (after current char)
	ch      byte // current char under examination
	line    int  // current line number (1-based)
	col     int  // current column number (1-based)

	comments []token.Comment
	err      *LexError // first lexical error, set once
}

// NewLexer creates a new Lexer for the given input.
func NewLexer(input string) *Lexer {
	l := &Lexer{
		input: input,
		line:  1,
		col:   0,
	}
	l.readChar()
	return l
}

// Tokenize scans the entire input and returns its tokens. The returned
// slice carries no EOF sentinel. Scanning is fail-fast: the first input
// that matches no token rule aborts with a *LexError.
func Tokenize(input string) ([]token.Token, error) {
	l := NewLexer(input)
	var tokens []token.Token
	for {
		tok := l.NextToken()
		switch tok.Type {
		case token.EOF:
			return tokens, nil
		case token.ILLEGAL:
			return nil, l.Err()
		}
		tokens = append(tokens, tok)
	}
}

// Err returns the lexical error encountered, if any.
func (l *Lexer) Err() *LexError {
	return l.err
}

// Comments returns the comments skipped so far, in source order.
func (l *Lexer) Comments() []token.Comment {
	return l.comments
}

// readChar advances to the next character.
func (l *Lexer) readChar() {
	if l.readPos >= len(l.input) {
		l.ch = 0 // ASCII NUL = EOF
	} else {
		l.ch = l.input[l.readPos]
	}
	l.pos = l.readPos
	l.readPos++

	if l.ch == '\n' {
		l.line++
		l.col = 0
	} else {
		l.col++
	}
}

// peekChar returns the next character without advancing.
func (l *Lexer) peekChar() byte {
	if l.readPos >= len(l.input) {
		return 0
	}
	return l.input[l.readPos]
}

// currentPos returns the current position.
func (l *Lexer) currentPos() token.Position {
	return token.Position{
		Line:   l.line,
		Column: l.col,
		Offset: l.pos,
	}
}

// NextToken returns the next token. After an ILLEGAL token, Err reports
// the underlying error.
func (l *Lexer) NextToken() token.Token {
	if err := l.skipWhitespaceAndComments(); err != nil {
		return l.illegal(err)
	}

	start := l.currentPos()

	switch {
	case l.ch == 0:
		return token.Token{Type: token.EOF, Span: token.Span{Start: start, End: start}}
	case l.ch == ',':
		return l.punctToken(token.COMMA, start)
	case l.ch == '.':
		return l.punctToken(token.DOT, start)
	case l.ch == ':':
		return l.punctToken(token.COLON, start)
	case l.ch == ';':
		return l.punctToken(token.SEMICOLON, start)
	case l.ch == '"' || l.ch == '`':
		return l.readString(start)
	case isDigit(l.ch):
		return l.readNumber(start)
	case isUpper(l.ch):
		return l.readServiceName(start)
	case isLower(l.ch) || l.ch == '_':
		return l.readWord(start)
	default:
		return l.illegal(&LexError{
			Pos:     start,
			Message: fmt.Sprintf(ErrInvalidToken, string(l.ch)),
		})
	}
}

// punctToken consumes a single-character punctuation token.
func (l *Lexer) punctToken(t token.TokenType, start token.Position) token.Token {
	literal := string(l.ch)
	l.readChar()
	return token.Token{Type: t, Literal: literal, Span: token.Span{Start: start, End: l.currentPos()}}
}

// illegal records the error and returns an ILLEGAL token positioned at it.
func (l *Lexer) illegal(err *LexError) token.Token {
	if l.err == nil {
		l.err = err
	}
	return token.Token{Type: token.ILLEGAL, Span: token.Span{Start: err.Pos, End: err.Pos}}
}

// skipWhitespaceAndComments skips whitespace and both comment forms.
// An unterminated block comment is a lexical error at its opening position.
func (l *Lexer) skipWhitespaceAndComments() *LexError {
	for {
		for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\f' {
			l.readChar()
		}

		if l.ch == '/' && l.peekChar() == '/' {
			l.skipLineComment()
			continue
		}

		if l.ch == '/' && l.peekChar() == '*' {
			if err := l.skipBlockComment(); err != nil {
				return err
			}
			continue
		}

		return nil
	}
}

// skipLineComment consumes "// ..." up to the end of line and records it.
func (l *Lexer) skipLineComment() {
	start := l.currentPos()
	for l.ch != '\n' && l.ch != 0 {
		l.readChar()
	}
	l.comments = append(l.comments, token.Comment{
		Kind: token.LineComment,
		Text: l.input[start.Offset:l.pos],
		Span: token.Span{Start: start, End: l.currentPos()},
	})
}

// skipBlockComment consumes "/* ... */" and records it.
func (l *Lexer) skipBlockComment() *LexError {
	start := l.currentPos()

	l.readChar() // skip '/'
	l.readChar() // skip '*'

	for l.ch != 0 {
		if l.ch == '*' && l.peekChar() == '/' {
			l.readChar() // skip '*'
			l.readChar() // skip '/'
			l.comments = append(l.comments, token.Comment{
				Kind: token.BlockComment,
				Text: l.input[start.Offset:l.pos],
				Span: token.Span{Start: start, End: l.currentPos()},
			})
			return nil
		}
		l.readChar()
	}

	return &LexError{Pos: start, Message: ErrUnterminatedComment}
}

// readString reads a double-quoted or backtick-quoted string literal.
// The delimiters are stripped; backslash escape sequences are preserved
// exactly as written.
func (l *Lexer) readString(start token.Position) token.Token {
	quote := l.ch
	l.readChar() // skip opening quote

	var value strings.Builder
	for {
		switch l.ch {
		case 0:
			return l.illegal(&LexError{Pos: start, Message: ErrUnterminatedString})
		case quote:
			l.readChar() // skip closing quote
			return token.Token{
				Type:    token.STRING,
				Literal: value.String(),
				Span:    token.Span{Start: start, End: l.currentPos()},
			}
		case '\\':
			value.WriteByte(l.ch)
			l.readChar()
			if l.ch == 0 {
				return l.illegal(&LexError{Pos: start, Message: ErrUnterminatedString})
			}
			value.WriteByte(l.ch)
			l.readChar()
		default:
			value.WriteByte(l.ch)
			l.readChar()
		}
	}
}

// readNumber reads an integer or decimal float literal. A dot counts as
// part of the number only when a digit follows, so "1." lexes as INT DOT.
func (l *Lexer) readNumber(start token.Position) token.Token {
	for isDigit(l.ch) {
		l.readChar()
	}

	kind := token.INT
	if l.ch == '.' && isDigit(l.peekChar()) {
		kind = token.FLOAT
		l.readChar() // skip '.'
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	return token.Token{
		Type:    kind,
		Literal: l.input[start.Offset:l.pos],
		Span:    token.Span{Start: start, End: l.currentPos()},
	}
}

// readServiceName reads a capitalized service name: SendGrid, Twilio.
// Underscores are not part of service names.
func (l *Lexer) readServiceName(start token.Position) token.Token {
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return token.Token{
		Type:    token.SERVICE,
		Literal: l.input[start.Offset:l.pos],
		Span:    token.Span{Start: start, End: l.currentPos()},
	}
}

// readWord reads a lowercase word and classifies it as keyword, verb,
// or identifier. Classification is case-sensitive: "if" is a keyword,
// "If" never reaches here.
func (l *Lexer) readWord(start token.Position) token.Token {
	for isLetter(l.ch) || isDigit(l.ch) || l.ch == '_' {
		l.readChar()
	}
	word := l.input[start.Offset:l.pos]
	return token.Token{
		Type:    token.LookupWord(word),
		Literal: word,
		Span:    token.Span{Start: start, End: l.currentPos()},
	}
}

// isLetter returns true if ch is an ASCII letter.
func isLetter(ch byte) bool {
	return isLower(ch) || isUpper(ch)
}

func isLower(ch byte) bool {
	return ch >= 'a' && ch <= 'z'
}

func isUpper(ch byte) bool {
	return ch >= 'A' && ch <= 'Z'
}

// isDigit returns true if ch is a digit.
func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}
