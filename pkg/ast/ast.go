// Package ast defines the abstract syntax tree for Talk++ programs.
//
// The tree is an immutable value structure: the parser builds it, the code
// generators walk it, and nothing mutates it in between. Nodes carry no
// behavior beyond classification helpers.
package ast

// Program is the root node: an ordered list of top-level statements.
type Program struct {
	Statements []Statement
}

// Statement represents a top-level Talk++ statement.
type Statement interface {
	stmtNode()
}

// Condition represents the test of a conditional statement.
type Condition interface {
	condNode()
}

// Expression represents a value-producing form.
type Expression interface {
	exprNode()
}

// ---------- Statement Types ----------

// ConditionalStatement represents "if/when <condition> then <actions>"
// with an optional else branch. ElseActions is nil when no else clause was
// written; an else clause with no actions is an empty non-nil slice.
type ConditionalStatement struct {
	Condition   Condition
	ThenActions []*ActionStatement
	ElseActions []*ActionStatement
}

func (*ConditionalStatement) stmtNode() {}

// ActionStatement represents a verb with an optional target and an optional
// service binding: "validate email using SendGrid".
type ActionStatement struct {
	Action     Action
	Target     Expression // nil when the verb stands alone
	Service    *ServiceCall
	Parameters map[string]Expression // reserved, always empty today
}

func (*ActionStatement) stmtNode() {}

// AssignmentStatement represents "name: value".
type AssignmentStatement struct {
	Variable string
	Value    Expression
}

func (*AssignmentStatement) stmtNode() {}

// CommentStatement is reserved for source comments surfaced into the tree.
// The parser never produces it today; generators render it as a comment in
// the target language.
type CommentStatement struct {
	Text string
}

func (*CommentStatement) stmtNode() {}

// ---------- Actions ----------

// Action is the verb of an action statement. The canonical verbs are fixed;
// any other identifier in verb position passes through as a custom action.
type Action string

// Canonical action verbs.
const (
	ActionSend     Action = "send"
	ActionStore    Action = "store"
	ActionValidate Action = "validate"
	ActionProcess  Action = "process"
	ActionTrigger  Action = "trigger"
	ActionCall     Action = "call"
)

// canonicalVerbs maps singular and plural surface forms to canonical actions.
var canonicalVerbs = map[string]Action{
	"send":      ActionSend,
	"sends":     ActionSend,
	"store":     ActionStore,
	"stores":    ActionStore,
	"validate":  ActionValidate,
	"validates": ActionValidate,
	"process":   ActionProcess,
	"processes": ActionProcess,
	"trigger":   ActionTrigger,
	"triggers":  ActionTrigger,
	"call":      ActionCall,
	"calls":     ActionCall,
}

// ActionFromVerb normalizes a verb identifier to its canonical action.
// Unrecognized verbs pass through verbatim as custom actions.
func ActionFromVerb(verb string) Action {
	if a, ok := canonicalVerbs[verb]; ok {
		return a
	}
	return Action(verb)
}

// IsCustom returns true if the action is not one of the canonical verbs.
func (a Action) IsCustom() bool {
	switch a {
	case ActionSend, ActionStore, ActionValidate, ActionProcess, ActionTrigger, ActionCall:
		return false
	}
	return true
}

// ServiceCall binds an action to an external service by name.
// Method and Config are reserved for the extended call syntax.
type ServiceCall struct {
	Name   string
	Method *string
	Config map[string]Expression
}

// ---------- Condition Types ----------

// EventCondition represents a natural-language event test:
// "new user registers" has subject "new user" and action "registers".
// Context carries the optional in/from/to qualifier.
type EventCondition struct {
	Subject string
	Action  string
	Context *string
}

func (*EventCondition) condNode() {}

// ComparisonCondition represents "left <op> right". The parser never builds
// one today; the form is reserved for the comparison syntax and generators
// handle it fully.
type ComparisonCondition struct {
	Left     Expression
	Operator ComparisonOperator
	Right    Expression
}

func (*ComparisonCondition) condNode() {}

// LogicalCondition represents two conditions joined by and/or.
type LogicalCondition struct {
	Left     Condition
	Operator LogicalOperator
	Right    Condition
}

func (*LogicalCondition) condNode() {}

// ComparisonOperator names a comparison. Operators render per target
// language, so the values are abstract names rather than symbols.
type ComparisonOperator string

// Comparison operators.
const (
	OpEqual        ComparisonOperator = "equal"
	OpNotEqual     ComparisonOperator = "not_equal"
	OpGreaterThan  ComparisonOperator = "greater_than"
	OpLessThan     ComparisonOperator = "less_than"
	OpGreaterEqual ComparisonOperator = "greater_equal"
	OpLessEqual    ComparisonOperator = "less_equal"
)

// LogicalOperator joins two conditions.
type LogicalOperator string

// Logical operators.
const (
	OpAnd LogicalOperator = "and"
	OpOr  LogicalOperator = "or"
)

// ---------- Expression Types ----------

// Identifier references a variable by name.
type Identifier struct {
	Name string
}

func (*Identifier) exprNode() {}

// StringLit is a string literal with delimiters stripped. Escape sequences
// are preserved exactly as written.
type StringLit struct {
	Value string
}

func (*StringLit) exprNode() {}

// IntegerLit is an unsigned decimal integer literal.
type IntegerLit struct {
	Value int64
}

func (*IntegerLit) exprNode() {}

// FloatLit is a decimal float literal.
type FloatLit struct {
	Value float64
}

func (*FloatLit) exprNode() {}

// BooleanLit is reserved: no literal syntax produces it today.
type BooleanLit struct {
	Value bool
}

func (*BooleanLit) exprNode() {}

// PropertyAccess is reserved for "object.property" syntax. Generators
// reject it as an unsupported feature.
type PropertyAccess struct {
	Object   Expression
	Property string
}

func (*PropertyAccess) exprNode() {}

// FunctionCall is reserved for call syntax. Generators reject it as an
// unsupported feature.
type FunctionCall struct {
	Name      string
	Arguments []Expression
}

func (*FunctionCall) exprNode() {}
