package codegen

import (
	"fmt"
	"strconv"

	"github.com/talkpp-lang/talkpp/pkg/ast"
)

// javascriptGenerator renders programs as CommonJS async handler
// scaffolds.
type javascriptGenerator struct{}

func (javascriptGenerator) Target() TargetLanguage { return TargetJavaScript }

func (javascriptGenerator) Generate(prog *ast.Program, cfg Config) (string, error) {
	w := &javascriptWriter{cfg: cfg}
	return w.program(prog)
}

type javascriptWriter struct {
	sourceWriter
	cfg Config
}

var javascriptComparisonOps = map[ast.ComparisonOperator]string{
	ast.OpEqual:        "===",
	ast.OpNotEqual:     "!==",
	ast.OpGreaterThan:  ">",
	ast.OpLessThan:     "<",
	ast.OpGreaterEqual: ">=",
	ast.OpLessEqual:    "<=",
}

func (w *javascriptWriter) program(prog *ast.Program) (string, error) {
	w.line(0, "// Generated by Talk++ Compiler")
	w.linef(0, "// Target: %s | Optimization: %s", TargetJavaScript, w.cfg.Optimization)
	w.blank()
	w.line(0, "async function handler(event) {")
	for _, stmt := range prog.Statements {
		if err := w.statement(stmt, 1); err != nil {
			return "", err
		}
	}
	w.line(1, "return { status: 'ok', message: 'done' };")
	w.line(0, "}")
	if w.cfg.Debug {
		w.blank()
		w.line(0, "async function main() {")
		w.line(1, "const response = await handler({ data: {} });")
		w.line(1, "console.log(JSON.stringify(response));")
		w.line(0, "}")
		w.blank()
		w.line(0, "if (require.main === module) {")
		w.line(1, "main();")
		w.line(0, "}")
	}
	w.blank()
	w.line(0, "module.exports = { handler };")
	return w.output(), nil
}

func (w *javascriptWriter) statement(stmt ast.Statement, depth int) error {
	switch s := stmt.(type) {
	case *ast.ConditionalStatement:
		return w.conditional(s, depth)
	case *ast.ActionStatement:
		return w.action(s, depth)
	case *ast.AssignmentStatement:
		return w.assignment(s, depth)
	case *ast.CommentStatement:
		w.line(depth, "// "+s.Text)
		return nil
	default:
		return &GenError{Message: fmt.Sprintf("unknown statement type %T", stmt)}
	}
}

func (w *javascriptWriter) conditional(stmt *ast.ConditionalStatement, depth int) error {
	cond, err := w.condition(stmt.Condition)
	if err != nil {
		return err
	}
	w.linef(depth, "if (%s) {", cond)
	for _, act := range stmt.ThenActions {
		if err := w.action(act, depth+1); err != nil {
			return err
		}
	}
	if stmt.ElseActions != nil {
		w.line(depth, "} else {")
		for _, act := range stmt.ElseActions {
			if err := w.action(act, depth+1); err != nil {
				return err
			}
		}
	}
	w.line(depth, "}")
	return nil
}

func (w *javascriptWriter) action(stmt *ast.ActionStatement, depth int) error {
	if stmt.Service == nil {
		w.line(depth, "// "+actionText(stmt))
		return nil
	}
	svc, ok := LookupService(stmt.Service.Name)
	if !ok {
		w.linef(depth, "// WARNING: unknown service '%s'", stmt.Service.Name)
		w.linef(depth, "// TODO: Implement %s integration", stmt.Service.Name)
		return nil
	}
	w.line(depth, "// "+svc.Comment)
	if w.cfg.Debug {
		w.linef(depth, "console.log('%s');", svc.Activity)
	}
	w.line(depth, "// TODO: "+svc.Todo)
	w.line(depth, "try {")
	w.linef(depth+1, "await %s();", snakeToCamel(svc.CallName))
	w.line(depth, "} catch (err) {")
	w.linef(depth+1, "return { status: 'error', message: `%s: ${err}` };", svc.Failure)
	w.line(depth, "}")
	return nil
}

func (w *javascriptWriter) assignment(stmt *ast.AssignmentStatement, depth int) error {
	if ref, ok := stmt.Value.(*ast.Identifier); ok {
		w.linef(depth, "const %s = null; // unresolved reference: %s", stmt.Variable, ref.Name)
		return nil
	}
	value, err := w.expression(stmt.Value)
	if err != nil {
		return err
	}
	w.linef(depth, "const %s = %s;", stmt.Variable, value)
	return nil
}

func (w *javascriptWriter) condition(cond ast.Condition) (string, error) {
	switch c := cond.(type) {
	case *ast.EventCondition:
		return fmt.Sprintf("event.data.type === '%s'", eventTag(c)), nil
	case *ast.ComparisonCondition:
		left, err := w.expression(c.Left)
		if err != nil {
			return "", err
		}
		right, err := w.expression(c.Right)
		if err != nil {
			return "", err
		}
		op, ok := javascriptComparisonOps[c.Operator]
		if !ok {
			return "", &GenError{Message: fmt.Sprintf("unknown comparison operator %q", c.Operator)}
		}
		return fmt.Sprintf("%s %s %s", left, op, right), nil
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
		return fmt.Sprintf("(%s %s %s)", left, op, right), nil
	default:
		return "", &GenError{Message: fmt.Sprintf("unknown condition type %T", cond)}
	}
}

func (w *javascriptWriter) expression(expr ast.Expression) (string, error) {
	switch e := expr.(type) {
	case *ast.Identifier:
		return e.Name, nil
	case *ast.StringLit:
		return "'" + e.Value + "'", nil
	case *ast.IntegerLit:
		return strconv.FormatInt(e.Value, 10), nil
	case *ast.FloatLit:
		return formatFloat(e.Value), nil
	case *ast.BooleanLit:
		return strconv.FormatBool(e.Value), nil
	default:
		return "", exprUnsupported(expr)
	}
}
