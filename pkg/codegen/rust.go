package codegen

import (
	"fmt"
	"strconv"

	"github.com/talkpp-lang/talkpp/pkg/ast"
)

// rustGenerator renders programs as asynchronous Rust handler scaffolds
// built on serde and tokio.
type rustGenerator struct{}

func (rustGenerator) Target() TargetLanguage { return TargetRust }

func (rustGenerator) Generate(prog *ast.Program, cfg Config) (string, error) {
	w := &rustWriter{cfg: cfg}
	return w.program(prog)
}

type rustWriter struct {
	sourceWriter
	cfg Config
}

var rustComparisonOps = map[ast.ComparisonOperator]string{
	ast.OpEqual:        "==",
	ast.OpNotEqual:     "!=",
	ast.OpGreaterThan:  ">",
	ast.OpLessThan:     "<",
	ast.OpGreaterEqual: ">=",
	ast.OpLessEqual:    "<=",
}

func (w *rustWriter) program(prog *ast.Program) (string, error) {
	w.line(0, "// Generated by Talk++ Compiler")
	w.linef(0, "// Target: %s | Optimization: %s", TargetRust, w.cfg.Optimization)
	w.blank()
	w.line(0, "use serde::{Deserialize, Serialize};")
	w.line(0, "use serde_json::Value;")
	w.blank()
	w.line(0, "#[derive(Debug, Serialize, Deserialize)]")
	w.line(0, "pub struct Event {")
	w.line(1, "pub data: Value,")
	w.line(0, "}")
	w.blank()
	w.line(0, "#[derive(Debug, Serialize, Deserialize)]")
	w.line(0, "pub struct Response {")
	w.line(1, "pub status: String,")
	w.line(1, "pub message: String,")
	w.line(0, "}")
	w.blank()
	w.line(0, "impl Response {")
	w.line(1, "pub fn ok(message: impl Into<String>) -> Self {")
	w.line(2, `Self { status: "ok".to_string(), message: message.into() }`)
	w.line(1, "}")
	w.blank()
	w.line(1, "pub fn error(message: impl Into<String>) -> Self {")
	w.line(2, `Self { status: "error".to_string(), message: message.into() }`)
	w.line(1, "}")
	w.line(0, "}")
	w.blank()
	w.line(0, "pub async fn handler(event: Event) -> Result<Response, Box<dyn std::error::Error>> {")
	for _, stmt := range prog.Statements {
		if err := w.statement(stmt, 1); err != nil {
			return "", err
		}
	}
	w.line(1, `Ok(Response::ok("done"))`)
	w.line(0, "}")
	if w.cfg.Debug {
		w.blank()
		w.line(0, "#[tokio::main]")
		w.line(0, "async fn main() -> Result<(), Box<dyn std::error::Error>> {")
		w.line(1, "tracing_subscriber::fmt::init();")
		w.line(1, "let event = Event { data: serde_json::json!({}) };")
		w.line(1, "let response = handler(event).await?;")
		w.line(1, `println!("{:?}", response);`)
		w.line(1, "Ok(())")
		w.line(0, "}")
	}
	return w.output(), nil
}

func (w *rustWriter) statement(stmt ast.Statement, depth int) error {
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

func (w *rustWriter) conditional(stmt *ast.ConditionalStatement, depth int) error {
	cond, err := w.condition(stmt.Condition)
	if err != nil {
		return err
	}
	w.linef(depth, "if %s {", cond)
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

func (w *rustWriter) action(stmt *ast.ActionStatement, depth int) error {
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
		w.linef(depth, "tracing::info!(%q);", svc.Activity)
	}
	w.line(depth, "// TODO: "+svc.Todo)
	w.linef(depth, "let %s = %s().await;", svc.ResultV, svc.CallName)
	w.linef(depth, "if let Err(e) = %s {", svc.ResultV)
	w.linef(depth+1, `return Ok(Response::error(format!("%s: {}", e)));`, svc.Failure)
	w.line(depth, "}")
	return nil
}

func (w *rustWriter) assignment(stmt *ast.AssignmentStatement, depth int) error {
	if ref, ok := stmt.Value.(*ast.Identifier); ok {
		w.linef(depth, "let %s = Value::Null; // unresolved reference: %s", stmt.Variable, ref.Name)
		return nil
	}
	value, err := w.expression(stmt.Value)
	if err != nil {
		return err
	}
	w.linef(depth, "let %s = %s;", stmt.Variable, value)
	return nil
}

func (w *rustWriter) condition(cond ast.Condition) (string, error) {
	switch c := cond.(type) {
	case *ast.EventCondition:
		return fmt.Sprintf(`event.data.get("type").and_then(|v| v.as_str()) == Some(%q)`, eventTag(c)), nil
	case *ast.ComparisonCondition:
		left, err := w.expression(c.Left)
		if err != nil {
			return "", err
		}
		right, err := w.expression(c.Right)
		if err != nil {
			return "", err
		}
		op, ok := rustComparisonOps[c.Operator]
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

func (w *rustWriter) expression(expr ast.Expression) (string, error) {
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
		return strconv.FormatBool(e.Value), nil
	default:
		return "", exprUnsupported(expr)
	}
}
