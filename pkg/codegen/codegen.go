// Package codegen renders Talk++ programs as source text in five target
// languages.
//
// Every backend implements the same statement-to-snippet mapping; only
// the surface syntax differs. Generation is pure and deterministic: the
// same program and config always produce identical bytes, and the first
// unsupported form aborts with an error.
package codegen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/talkpp-lang/talkpp/pkg/ast"
)

// Generator renders a program for one target language.
type Generator interface {
	Target() TargetLanguage
	Generate(prog *ast.Program, cfg Config) (string, error)
}

// generators holds one backend per target language.
var generators = map[TargetLanguage]Generator{
	TargetRust:       rustGenerator{},
	TargetPython:     pythonGenerator{},
	TargetJavaScript: javascriptGenerator{},
	TargetTypeScript: typescriptGenerator{},
	TargetBash:       bashGenerator{},
}

// Generate renders the program with the backend selected by the config.
func Generate(prog *ast.Program, cfg Config) (string, error) {
	if prog == nil {
		return "", &InternalError{Message: "nil program"}
	}
	gen, ok := generators[cfg.Target]
	if !ok {
		return "", &GenError{Message: fmt.Sprintf("unsupported target language %q", cfg.Target)}
	}
	return gen.Generate(prog, cfg)
}

// ---------- Shared Helpers ----------

// sourceWriter accumulates generated lines. Backends embed it.
type sourceWriter struct {
	b strings.Builder
}

func (w *sourceWriter) line(depth int, s string) {
	w.b.WriteString(indent(depth))
	w.b.WriteString(s)
	w.b.WriteByte('\n')
}

func (w *sourceWriter) linef(depth int, format string, args ...any) {
	w.line(depth, fmt.Sprintf(format, args...))
}

func (w *sourceWriter) blank() {
	w.b.WriteByte('\n')
}

func (w *sourceWriter) raw(s string) {
	w.b.WriteString(s)
}

func (w *sourceWriter) output() string {
	return w.b.String()
}

// indent returns four spaces per depth level.
func indent(depth int) string {
	return strings.Repeat("    ", depth)
}

// eventTag derives the event type tag tested by generated handlers:
// the subject with spaces collapsed to underscores, joined to the action.
// "new user" + "registers" becomes "new_user_registers".
func eventTag(e *ast.EventCondition) string {
	return strings.ReplaceAll(e.Subject, " ", "_") + "_" + e.Action
}

// actionText names an action for comment-only rendering, including the
// target when one was parsed.
func actionText(stmt *ast.ActionStatement) string {
	text := actionComment(stmt.Action)
	if t := targetText(stmt.Target); t != "" {
		text += ": " + t
	}
	return text
}

// actionComment names an action for comment-only rendering.
func actionComment(a ast.Action) string {
	if a.IsCustom() {
		return "Custom action: " + string(a)
	}
	return capitalize(string(a)) + " action"
}

// targetText renders an action target for comments. The parser only
// attaches identifiers and string literals as targets.
func targetText(expr ast.Expression) string {
	switch e := expr.(type) {
	case *ast.Identifier:
		return e.Name
	case *ast.StringLit:
		return e.Value
	}
	return ""
}

// logicalOp picks the target syntax for a logical connective.
func logicalOp(op ast.LogicalOperator, and, or string) (string, error) {
	switch op {
	case ast.OpAnd:
		return and, nil
	case ast.OpOr:
		return or, nil
	}
	return "", &GenError{Message: fmt.Sprintf("unknown logical operator %q", op)}
}

// exprUnsupported classifies an expression the backends cannot render.
func exprUnsupported(expr ast.Expression) error {
	switch expr.(type) {
	case *ast.PropertyAccess:
		return &UnsupportedFeatureError{Feature: "property access expressions"}
	case *ast.FunctionCall:
		return &UnsupportedFeatureError{Feature: "function call expressions"}
	default:
		return &GenError{Message: fmt.Sprintf("unknown expression type %T", expr)}
	}
}

// formatFloat renders a float literal without exponent notation.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// snakeToCamel converts snake_case stub names for camelCase targets.
func snakeToCamel(s string) string {
	parts := strings.Split(s, "_")
	for i := 1; i < len(parts); i++ {
		if parts[i] != "" {
			parts[i] = strings.ToUpper(parts[i][:1]) + parts[i][1:]
		}
	}
	return strings.Join(parts, "")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
