package codegen

import (
	"fmt"
	"strconv"

	"github.com/talkpp-lang/talkpp/pkg/ast"
)

// pythonGenerator renders programs as asyncio handler scaffolds.
type pythonGenerator struct{}

func (pythonGenerator) Target() TargetLanguage { return TargetPython }

func (pythonGenerator) Generate(prog *ast.Program, cfg Config) (string, error) {
	w := &pythonWriter{cfg: cfg}
	return w.program(prog)
}

type pythonWriter struct {
	sourceWriter
	cfg Config
}

var pythonComparisonOps = map[ast.ComparisonOperator]string{
	ast.OpEqual:        "==",
	ast.OpNotEqual:     "!=",
	ast.OpGreaterThan:  ">",
	ast.OpLessThan:     "<",
	ast.OpGreaterEqual: ">=",
	ast.OpLessEqual:    "<=",
}

func (w *pythonWriter) program(prog *ast.Program) (string, error) {
	w.line(0, "# Generated by Talk++ Compiler")
	w.linef(0, "# Target: %s | Optimization: %s", TargetPython, w.cfg.Optimization)
	w.blank()
	w.line(0, "import asyncio")
	w.line(0, "import json")
	if w.cfg.Debug {
		w.line(0, "import logging")
	}
	w.blank()
	if w.cfg.Debug {
		w.line(0, "logger = logging.getLogger(__name__)")
		w.blank()
	}
	w.blank()
	w.line(0, "class Event:")
	w.line(1, "def __init__(self, data):")
	w.line(2, "self.data = data")
	w.blank()
	w.blank()
	w.line(0, "class Response:")
	w.line(1, "def __init__(self, status, message):")
	w.line(2, "self.status = status")
	w.line(2, "self.message = message")
	w.blank()
	w.line(1, "@classmethod")
	w.line(1, "def ok(cls, message):")
	w.line(2, `return cls("ok", message)`)
	w.blank()
	w.line(1, "@classmethod")
	w.line(1, "def error(cls, message):")
	w.line(2, `return cls("error", message)`)
	w.blank()
	w.blank()
	w.line(0, "async def handler(event):")
	for _, stmt := range prog.Statements {
		if err := w.statement(stmt, 1); err != nil {
			return "", err
		}
	}
	w.line(1, `return Response.ok("done")`)
	w.blank()
	w.blank()
	w.line(0, `if __name__ == "__main__":`)
	if w.cfg.Debug {
		w.line(1, "logging.basicConfig(level=logging.INFO)")
	}
	w.line(1, "result = asyncio.run(handler(Event({})))")
	w.line(1, `print(json.dumps({"status": result.status, "message": result.message}))`)
	return w.output(), nil
}

func (w *pythonWriter) statement(stmt ast.Statement, depth int) error {
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

func (w *pythonWriter) conditional(stmt *ast.ConditionalStatement, depth int) error {
	cond, err := w.condition(stmt.Condition)
	if err != nil {
		return err
	}
	w.linef(depth, "if %s:", cond)
	if err := w.actionBlock(stmt.ThenActions, depth+1); err != nil {
		return err
	}
	if stmt.ElseActions != nil {
		w.line(depth, "else:")
		if err := w.actionBlock(stmt.ElseActions, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// actionBlock renders a branch body. Comment-only renderings do not
// count as statements, so an empty or all-comment branch gets a pass to
// stay syntactically valid.
func (w *pythonWriter) actionBlock(actions []*ast.ActionStatement, depth int) error {
	emitted := false
	for _, act := range actions {
		actEmitted, err := w.action(act, depth)
		if err != nil {
			return err
		}
		emitted = emitted || actEmitted
	}
	if !emitted {
		w.line(depth, "pass")
	}
	return nil
}

func (w *pythonWriter) action(stmt *ast.ActionStatement, depth int) (bool, error) {
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
		w.linef(depth, "logger.info(%q)", svc.Activity)
	}
	w.line(depth, "# TODO: "+svc.Todo)
	w.line(depth, "try:")
	w.linef(depth+1, "await %s()", svc.CallName)
	w.line(depth, "except Exception as exc:")
	w.linef(depth+1, `return Response.error(f"%s: {exc}")`, svc.Failure)
	return true, nil
}

func (w *pythonWriter) assignment(stmt *ast.AssignmentStatement, depth int) error {
	if ref, ok := stmt.Value.(*ast.Identifier); ok {
		w.linef(depth, "%s = None  # unresolved reference: %s", stmt.Variable, ref.Name)
		return nil
	}
	value, err := w.expression(stmt.Value)
	if err != nil {
		return err
	}
	w.linef(depth, "%s = %s", stmt.Variable, value)
	return nil
}

func (w *pythonWriter) condition(cond ast.Condition) (string, error) {
	switch c := cond.(type) {
	case *ast.EventCondition:
		return fmt.Sprintf(`event.data.get("type") == %q`, eventTag(c)), nil
	case *ast.ComparisonCondition:
		left, err := w.expression(c.Left)
		if err != nil {
			return "", err
		}
		right, err := w.expression(c.Right)
		if err != nil {
			return "", err
		}
		op, ok := pythonComparisonOps[c.Operator]
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
		op, err := logicalOp(c.Operator, "and", "or")
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(%s %s %s)", left, op, right), nil
	default:
		return "", &GenError{Message: fmt.Sprintf("unknown condition type %T", cond)}
	}
}

func (w *pythonWriter) expression(expr ast.Expression) (string, error) {
	switch e := expr.(type) {
	case *ast.Identifier:
		return e.Name, nil
	case *ast.StringLit:
		return `"` + e.Value + `"`, nil
	case *ast.IntegerLit:
		return strconv.FormatInt(e.Value, 10), nil
	case *ast.FloatLit:
		return formatFloat(e.Value), nil
	case *ast.BooleanLit:
		if e.Value {
			return "True", nil
		}
		return "False", nil
	default:
		return "", exprUnsupported(expr)
	}
}
