// Package parser provides lexing and parsing for the Talk++ language.
//
// # Usage
//
//	tokens, err := parser.Tokenize(`if new user registers then validate email using SendGrid`)
//	if err != nil {
//	    // handle error
//	}
//	prog, err := parser.Parse(tokens)
//
// ParseSource combines both steps.
//
// # Grammar Overview
//
// The parser implements a recursive descent parser over the token stream:
//
//	program     → statement*
//	statement   → conditional | action | assignment
//	conditional → ("if" | "when") condition "then" action* ["else" action*]
//	condition   → primary (("and" | "or") primary)*     left associative
//	primary     → IDENT IDENT+ [("in" | "from" | "to") (STRING | IDENT)]
//	action      → verb [IDENT | STRING] [("using" | "with") SERVICE]
//	assignment  → IDENT ":" expression
//	expression  → IDENT | STRING | INT | FLOAT | SERVICE
//
// Unknown tokens at the top level are skipped, not errors. The first
// syntax error aborts parsing.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/talkpp-lang/talkpp/pkg/ast"
	"github.com/talkpp-lang/talkpp/pkg/token"
)

// Parser parses a Talk++ token stream into an AST.
type Parser struct {
	tokens []token.Token
	pos    int
	eof    token.Token // synthesized token for safe peeks past the end
}

// New creates a parser over the given token stream.
func New(tokens []token.Token) *Parser {
	eofPos := token.Position{Line: 1, Column: 1}
	if n := len(tokens); n > 0 {
		eofPos = tokens[n-1].Span.End
	}
	return &Parser{
		tokens: tokens,
		eof:    token.Token{Type: token.EOF, Span: token.Span{Start: eofPos, End: eofPos}},
	}
}

// Parse parses a token stream into a program.
func Parse(tokens []token.Token) (*ast.Program, error) {
	return New(tokens).ParseProgram()
}

// ParseSource tokenizes and parses Talk++ source text.
func ParseSource(input string) (*ast.Program, error) {
	tokens, err := Tokenize(input)
	if err != nil {
		return nil, err
	}
	return Parse(tokens)
}

// ParseProgram consumes the whole token stream and returns the program.
func (p *Parser) ParseProgram() (*ast.Program, error) {
	prog := &ast.Program{}
	for !p.atEnd() {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		if stmt != nil {
			prog.Statements = append(prog.Statements, stmt)
		}
	}
	return prog, nil
}

// ---------- Token Helpers ----------

// current returns the token under the cursor, or the EOF sentinel.
func (p *Parser) current() token.Token {
	if p.pos >= len(p.tokens) {
		return p.eof
	}
	return p.tokens[p.pos]
}

// peekAhead returns the token n positions ahead of the cursor.
func (p *Parser) peekAhead(n int) token.Token {
	if p.pos+n >= len(p.tokens) {
		return p.eof
	}
	return p.tokens[p.pos+n]
}

// advance moves the cursor forward by one token.
func (p *Parser) advance() {
	if p.pos < len(p.tokens) {
		p.pos++
	}
}

// atEnd returns true once the cursor has consumed every token.
func (p *Parser) atEnd() bool {
	return p.pos >= len(p.tokens)
}

// check returns true if the current token is of the given type.
func (p *Parser) check(t token.TokenType) bool {
	return p.current().Type == t
}

// errorf builds a ParseError positioned at the current token.
func (p *Parser) errorf(format string, args ...any) *ParseError {
	return &ParseError{
		Pos:     p.current().Pos(),
		Message: fmt.Sprintf(format, args...),
	}
}

// ---------- Statements ----------

// parseStatement parses one statement. A nil statement with a nil error
// means the current token was skipped.
func (p *Parser) parseStatement() (ast.Statement, error) {
	cur := p.current()

	switch {
	case cur.Type == token.IF || cur.Type == token.WHEN:
		return p.parseConditional()
	case token.IsVerb(cur.Type):
		return p.parseAction()
	case cur.Type == token.IDENT:
		// An identifier starts an assignment only when a colon follows
		// the variable name: "greeting : ..." . Otherwise it is a custom
		// action verb.
		if p.peekAhead(1).Type == token.COLON {
			return p.parseAssignment()
		}
		return p.parseAction()
	default:
		p.advance()
		return nil, nil
	}
}

// parseConditional parses "if/when <condition> then <actions> [else <actions>]".
func (p *Parser) parseConditional() (ast.Statement, error) {
	p.advance() // consume if/when

	cond, err := p.parseCondition()
	if err != nil {
		return nil, err
	}

	if !p.check(token.THEN) {
		return nil, p.errorf(ErrExpectedThen)
	}
	p.advance()

	thenActions, err := p.parseActionList(true)
	if err != nil {
		return nil, err
	}

	var elseActions []*ast.ActionStatement
	if p.check(token.ELSE) {
		p.advance()
		elseActions, err = p.parseActionList(false)
		if err != nil {
			return nil, err
		}
	}

	return &ast.ConditionalStatement{
		Condition:   cond,
		ThenActions: thenActions,
		ElseActions: elseActions,
	}, nil
}

// parseActionList collects consecutive action statements for a conditional
// branch. The first non-action statement ends the list; it is consumed and
// dropped, matching the permissive top-level skip. The returned slice is
// never nil.
func (p *Parser) parseActionList(stopAtElse bool) ([]*ast.ActionStatement, error) {
	actions := []*ast.ActionStatement{}
	for !p.atEnd() {
		if stopAtElse && p.check(token.ELSE) {
			break
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		action, ok := stmt.(*ast.ActionStatement)
		if !ok {
			break
		}
		actions = append(actions, action)
	}
	return actions, nil
}

// ---------- Conditions ----------

// parseCondition parses a left-associative and/or chain. Both operators
// share one precedence level: "a and b or c" folds as "(a and b) or c".
func (p *Parser) parseCondition() (ast.Condition, error) {
	left, err := p.parsePrimaryCondition()
	if err != nil {
		return nil, err
	}

	for p.check(token.AND) || p.check(token.OR) {
		op := ast.OpAnd
		if p.check(token.OR) {
			op = ast.OpOr
		}
		p.advance()

		right, err := p.parsePrimaryCondition()
		if err != nil {
			return nil, err
		}

		left = &ast.LogicalCondition{Left: left, Operator: op, Right: right}
	}

	return left, nil
}

// parsePrimaryCondition parses an event condition: two or more identifiers
// where the last is the event action and the rest join into the subject,
// with an optional in/from/to context qualifier.
func (p *Parser) parsePrimaryCondition() (ast.Condition, error) {
	var parts []string
	for p.check(token.IDENT) {
		parts = append(parts, p.current().Literal)
		p.advance()
	}

	if len(parts) < 2 {
		return nil, p.errorf(ErrExpectedCondition)
	}

	subject := strings.Join(parts[:len(parts)-1], " ")
	action := parts[len(parts)-1]

	var context *string
	if p.check(token.IN) || p.check(token.FROM) || p.check(token.TO) {
		p.advance()
		// Only a string or identifier forms a context value; any other
		// token leaves the context empty with the preposition consumed.
		if p.check(token.STRING) || p.check(token.IDENT) {
			value := p.current().Literal
			context = &value
			p.advance()
		}
	}

	return &ast.EventCondition{Subject: subject, Action: action, Context: context}, nil
}

// ---------- Actions ----------

// verbActions maps verb token types to canonical actions.
var verbActions = map[token.TokenType]ast.Action{
	token.SEND:     ast.ActionSend,
	token.STORE:    ast.ActionStore,
	token.VALIDATE: ast.ActionValidate,
	token.PROCESS:  ast.ActionProcess,
	token.TRIGGER:  ast.ActionTrigger,
	token.CALL:     ast.ActionCall,
}

// parseAction parses "verb [target] [using/with Service]".
func (p *Parser) parseAction() (ast.Statement, error) {
	cur := p.current()

	var action ast.Action
	switch {
	case cur.Type == token.IDENT:
		action = ast.ActionFromVerb(cur.Literal)
		p.advance()
	case token.IsVerb(cur.Type):
		action = verbActions[cur.Type]
		p.advance()
	default:
		return nil, p.errorf(ErrExpectedActionVerb)
	}

	var target ast.Expression
	if p.check(token.IDENT) || p.check(token.STRING) {
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		target = expr
	}

	var service *ast.ServiceCall
	if p.check(token.USING) || p.check(token.WITH) {
		p.advance()
		// A non-service token after using/with leaves the binding empty
		// with the preposition consumed.
		if p.check(token.SERVICE) {
			service = &ast.ServiceCall{
				Name:   p.current().Literal,
				Config: map[string]ast.Expression{},
			}
			p.advance()
		}
	}

	return &ast.ActionStatement{
		Action:     action,
		Target:     target,
		Service:    service,
		Parameters: map[string]ast.Expression{},
	}, nil
}

// ---------- Assignments ----------

// parseAssignment parses "name : expression".
func (p *Parser) parseAssignment() (ast.Statement, error) {
	if !p.check(token.IDENT) {
		return nil, p.errorf(ErrExpectedVariableName)
	}
	name := p.current().Literal
	p.advance()

	if !p.check(token.COLON) {
		return nil, p.errorf(ErrExpectedColon)
	}
	p.advance()

	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	return &ast.AssignmentStatement{Variable: name, Value: value}, nil
}

// ---------- Expressions ----------

// parseExpression parses a single expression token. Service names are
// plain identifier references in expression position.
func (p *Parser) parseExpression() (ast.Expression, error) {
	cur := p.current()

	switch cur.Type {
	case token.IDENT:
		p.advance()
		return &ast.Identifier{Name: cur.Literal}, nil
	case token.STRING:
		p.advance()
		return &ast.StringLit{Value: cur.Literal}, nil
	case token.INT:
		value, err := strconv.ParseInt(cur.Literal, 10, 64)
		if err != nil {
			return nil, p.errorf(ErrInvalidIntegerLiteral, cur.Literal)
		}
		p.advance()
		return &ast.IntegerLit{Value: value}, nil
	case token.FLOAT:
		value, err := strconv.ParseFloat(cur.Literal, 64)
		if err != nil {
			return nil, p.errorf(ErrInvalidFloatLiteral, cur.Literal)
		}
		p.advance()
		return &ast.FloatLit{Value: value}, nil
	case token.SERVICE:
		p.advance()
		return &ast.Identifier{Name: cur.Literal}, nil
	default:
		return nil, p.errorf(ErrExpectedExpression)
	}
}
