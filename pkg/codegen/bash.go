package codegen

import (
	"fmt"
	"strconv"

	"github.com/talkpp-lang/talkpp/pkg/ast"
)

// bashGenerator renders programs as standalone shell handler scripts.
// The handler reads a JSON event from its first argument and prints a
// JSON response on stdout.
type bashGenerator struct{}

func (bashGenerator) Target() TargetLanguage { return TargetBash }

func (bashGenerator) Generate(prog *ast.Program, cfg Config) (string, error) {
	w := &bashWriter{cfg: cfg}
	return w.program(prog)
}

type bashWriter struct {
	sourceWriter
	cfg Config
}

func (w *bashWriter) program(prog *ast.Program) (string, error) {
	w.line(0, "#!/usr/bin/env bash")
	w.line(0, "# Generated by Talk++ Compiler")
	w.linef(0, "# Target: %s | Optimization: %s", TargetBash, w.cfg.Optimization)
	w.blank()
	w.line(0, "set -euo pipefail")
	w.blank()
	w.line(0, "handler() {")
	w.line(1, `local event_json="$1"`)
	w.line(1, "local event_type")
	w.line(1, `event_type=$(printf '%s' "$event_json" | sed -n 's/.*"type"[[:space:]]*:[[:space:]]*"\([^"]*\)".*/\1/p')`)
	if len(prog.Statements) > 0 {
		w.blank()
		for _, stmt := range prog.Statements {
			if err := w.statement(stmt, 1); err != nil {
				return "", err
			}
		}
	}
	w.blank()
	w.line(1, `printf '{"status":"ok","message":"done"}\n'`)
	w.line(0, "}")
	w.blank()
	w.line(0, "default_event='{}'")
	w.line(0, `handler "${1:-$default_event}"`)
	return w.output(), nil
}

func (w *bashWriter) statement(stmt ast.Statement, depth int) error {
	switch s := stmt.(type) {
	case *ast.ConditionalStatement:
		return w.conditional(s, depth)
	case *ast.ActionStatement:
		_, err := w.action(s, depth)
		return err
	case *ast.AssignmentStatement:
		return w.assignment(s, depth)
	case *ast.CommentStatement:
		w.line(depth, "# "+s.Text)
		return nil
	default:
		return &GenError{Message: fmt.Sprintf("unknown statement type %T", stmt)}
	}
}

func (w *bashWriter) conditional(stmt *ast.ConditionalStatement, depth int) error {
	cond, err := w.condition(stmt.Condition)
	if err != nil {
		return err
	}
	w.linef(depth, "if %s; then", cond)
	if err := w.actionBlock(stmt.ThenActions, depth+1); err != nil {
		return err
	}
	if stmt.ElseActions != nil {
		w.line(depth, "else")
		if err := w.actionBlock(stmt.ElseActions, depth+1); err != nil {
			return err
		}
	}
	w.line(depth, "fi")
	return nil
}

// actionBlock renders a branch body. Shell branches need at least one
// command, so an empty or all-comment branch gets a colon builtin.
func (w *bashWriter) actionBlock(actions []*ast.ActionStatement, depth int) error {
	emitted := false
	for _, act := range actions {
		actEmitted, err := w.action(act, depth)
		if err != nil {
			return err
		}
		emitted = emitted || actEmitted
	}
	if !emitted {
		w.line(depth, ":")
	}
	return nil
}

func (w *bashWriter) action(stmt *ast.ActionStatement, depth int) (bool, error) {
	if stmt.Service == nil {
		w.line(depth, "# "+actionText(stmt))
		return false, nil
	}
	svc, ok := LookupService(stmt.Service.Name)
	if !ok {
		w.linef(depth, "# WARNING: unknown service '%s'", stmt.Service.Name)
		w.linef(depth, "# TODO: Implement %s integration", stmt.Service.Name)
		return false, nil
	}
	w.line(depth, "# "+svc.Comment)
	if w.cfg.Debug {
		w.linef(depth, "echo %q >&2", svc.Activity)
	}
	w.line(depth, "# TODO: "+svc.Todo)
	w.linef(depth, "if ! %s; then", svc.CallName)
	w.line(depth+1, `printf '{"status":"error","message":"%s"}\n' "`+svc.Failure+`"`)
	w.line(depth+1, "return 0")
	w.line(depth, "fi")
	return true, nil
}

func (w *bashWriter) assignment(stmt *ast.AssignmentStatement, depth int) error {
	if ref, ok := stmt.Value.(*ast.Identifier); ok {
		w.linef(depth, "local %s='' # unresolved reference: %s", stmt.Variable, ref.Name)
		return nil
	}
	value, err := w.literal(stmt.Value)
	if err != nil {
		return err
	}
	w.linef(depth, "local %s=%s", stmt.Variable, value)
	return nil
}

func (w *bashWriter) condition(cond ast.Condition) (string, error) {
	switch c := cond.(type) {
	case *ast.EventCondition:
		return fmt.Sprintf(`[[ "$event_type" == %q ]]`, eventTag(c)), nil
	case *ast.ComparisonCondition:
		left, err := w.operand(c.Left)
		if err != nil {
			return "", err
		}
		right, err := w.operand(c.Right)
		if err != nil {
			return "", err
		}
		op, err := bashComparisonOp(c)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("[[ %s %s %s ]]", left, op, right), nil
	case *ast.LogicalCondition:
		left, err := w.condition(c.Left)
		if err != nil {
			return "", err
		}
		right, err := w.condition(c.Right)
		if err != nil {
			return "", err
		}
		op, err := logicalOp(c.Operator, "&&", "||")
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("( %s %s %s )", left, op, right), nil
	default:
		return "", &GenError{Message: fmt.Sprintf("unknown condition type %T", cond)}
	}
}

// bashComparisonOp picks the test operator. Equality goes stringwise
// when either operand is a string literal; ordering is always numeric.
func bashComparisonOp(c *ast.ComparisonCondition) (string, error) {
	stringly := isStringOperand(c.Left) || isStringOperand(c.Right)
	switch c.Operator {
	case ast.OpEqual:
		if stringly {
			return "==", nil
		}
		return "-eq", nil
	case ast.OpNotEqual:
		if stringly {
			return "!=", nil
		}
		return "-ne", nil
	case ast.OpGreaterThan:
		return "-gt", nil
	case ast.OpLessThan:
		return "-lt", nil
	case ast.OpGreaterEqual:
		return "-ge", nil
	case ast.OpLessEqual:
		return "-le", nil
	}
	return "", &GenError{Message: fmt.Sprintf("unknown comparison operator %q", c.Operator)}
}

func isStringOperand(expr ast.Expression) bool {
	_, ok := expr.(*ast.StringLit)
	return ok
}

// operand renders an expression inside a [[ ]] test. Identifiers become
// variable expansions.
func (w *bashWriter) operand(expr ast.Expression) (string, error) {
	if ref, ok := expr.(*ast.Identifier); ok {
		return `"$` + ref.Name + `"`, nil
	}
	return w.literal(expr)
}

func (w *bashWriter) literal(expr ast.Expression) (string, error) {
	switch e := expr.(type) {
	case *ast.StringLit:
		return `"` + e.Value + `"`, nil
	case *ast.IntegerLit:
		return strconv.FormatInt(e.Value, 10), nil
	case *ast.FloatLit:
		return formatFloat(e.Value), nil
	case *ast.BooleanLit:
		return `"` + strconv.FormatBool(e.Value) + `"`, nil
	default:
		return "", exprUnsupported(expr)
	}
}
