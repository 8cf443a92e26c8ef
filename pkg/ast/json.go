package ast

import (
	"encoding/json"
	"io"
)

// FprintJSON writes a JSON representation of the program to w. Every node
// carries a "kind" discriminator so consumers can walk the tree without
// knowing the Go types.
func FprintJSON(w io.Writer, prog *Program) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(programJSON(prog))
}

func programJSON(prog *Program) any {
	if prog == nil {
		return nil
	}
	stmts := make([]any, len(prog.Statements))
	for i, s := range prog.Statements {
		stmts[i] = statementJSON(s)
	}
	return map[string]any{
		"kind":       "program",
		"statements": stmts,
	}
}

func statementJSON(stmt Statement) any {
	switch s := stmt.(type) {
	case *ConditionalStatement:
		m := map[string]any{
			"kind":      "conditional",
			"condition": conditionJSON(s.Condition),
			"then":      actionsJSON(s.ThenActions),
		}
		if s.ElseActions != nil {
			m["else"] = actionsJSON(s.ElseActions)
		}
		return m

	case *ActionStatement:
		m := map[string]any{
			"kind":   "action",
			"action": string(s.Action),
		}
		if s.Target != nil {
			m["target"] = expressionJSON(s.Target)
		}
		if s.Service != nil {
			svc := map[string]any{"name": s.Service.Name}
			if s.Service.Method != nil {
				svc["method"] = *s.Service.Method
			}
			m["service"] = svc
		}
		return m

	case *AssignmentStatement:
		return map[string]any{
			"kind":     "assignment",
			"variable": s.Variable,
			"value":    expressionJSON(s.Value),
		}

	case *CommentStatement:
		return map[string]any{
			"kind": "comment",
			"text": s.Text,
		}

	default:
		return map[string]any{"kind": "unknown"}
	}
}

func actionsJSON(actions []*ActionStatement) []any {
	out := make([]any, len(actions))
	for i, a := range actions {
		out[i] = statementJSON(a)
	}
	return out
}

func conditionJSON(cond Condition) any {
	switch c := cond.(type) {
	case *EventCondition:
		m := map[string]any{
			"kind":    "event",
			"subject": c.Subject,
			"action":  c.Action,
		}
		if c.Context != nil {
			m["context"] = *c.Context
		}
		return m

	case *ComparisonCondition:
		return map[string]any{
			"kind":     "comparison",
			"operator": string(c.Operator),
			"left":     expressionJSON(c.Left),
			"right":    expressionJSON(c.Right),
		}

	case *LogicalCondition:
		return map[string]any{
			"kind":     "logical",
			"operator": string(c.Operator),
			"left":     conditionJSON(c.Left),
			"right":    conditionJSON(c.Right),
		}

	default:
		return map[string]any{"kind": "unknown"}
	}
}

func expressionJSON(expr Expression) any {
	switch e := expr.(type) {
	case *Identifier:
		return map[string]any{"kind": "identifier", "name": e.Name}
	case *StringLit:
		return map[string]any{"kind": "string", "value": e.Value}
	case *IntegerLit:
		return map[string]any{"kind": "integer", "value": e.Value}
	case *FloatLit:
		return map[string]any{"kind": "float", "value": e.Value}
	case *BooleanLit:
		return map[string]any{"kind": "boolean", "value": e.Value}
	case *PropertyAccess:
		return map[string]any{
			"kind":     "property",
			"object":   expressionJSON(e.Object),
			"property": e.Property,
		}
	case *FunctionCall:
		args := make([]any, len(e.Arguments))
		for i, a := range e.Arguments {
			args[i] = expressionJSON(a)
		}
		return map[string]any{"kind": "call", "name": e.Name, "arguments": args}
	default:
		return map[string]any{"kind": "unknown"}
	}
}
