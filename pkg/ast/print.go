package ast

import (
	"fmt"
	"io"
	"strings"
)

// Fprint writes a textual representation of the program tree to w.
func Fprint(w io.Writer, prog *Program) {
	p := &printer{w: w}
	p.program(prog)
}

type printer struct {
	w      io.Writer
	indent int
}

func (p *printer) printf(format string, args ...any) {
	fmt.Fprintf(p.w, "%s%s", strings.Repeat("  ", p.indent), fmt.Sprintf(format, args...))
}

func (p *printer) program(prog *Program) {
	if prog == nil {
		return
	}
	p.printf("Program (%d statements)\n", len(prog.Statements))
	p.indent++
	for _, stmt := range prog.Statements {
		p.statement(stmt)
	}
	p.indent--
}

func (p *printer) statement(stmt Statement) {
	switch s := stmt.(type) {
	case *ConditionalStatement:
		p.printf("Conditional\n")
		p.indent++
		p.printf("Condition:\n")
		p.indent++
		p.condition(s.Condition)
		p.indent--
		p.printf("Then:\n")
		p.indent++
		for _, a := range s.ThenActions {
			p.statement(a)
		}
		p.indent--
		if s.ElseActions != nil {
			p.printf("Else:\n")
			p.indent++
			for _, a := range s.ElseActions {
				p.statement(a)
			}
			p.indent--
		}
		p.indent--

	case *ActionStatement:
		p.printf("Action %s\n", s.Action)
		p.indent++
		if s.Target != nil {
			p.printf("Target: %s\n", exprString(s.Target))
		}
		if s.Service != nil {
			p.printf("Service: %s\n", s.Service.Name)
		}
		p.indent--

	case *AssignmentStatement:
		p.printf("Assignment %s\n", s.Variable)
		p.indent++
		p.printf("Value: %s\n", exprString(s.Value))
		p.indent--

	case *CommentStatement:
		p.printf("Comment %q\n", s.Text)

	default:
		p.printf("Unknown statement %T\n", stmt)
	}
}

func (p *printer) condition(cond Condition) {
	switch c := cond.(type) {
	case *EventCondition:
		if c.Context != nil {
			p.printf("Event subject=%q action=%q context=%q\n", c.Subject, c.Action, *c.Context)
		} else {
			p.printf("Event subject=%q action=%q\n", c.Subject, c.Action)
		}

	case *ComparisonCondition:
		p.printf("Comparison %s\n", c.Operator)
		p.indent++
		p.printf("Left: %s\n", exprString(c.Left))
		p.printf("Right: %s\n", exprString(c.Right))
		p.indent--

	case *LogicalCondition:
		p.printf("Logical %s\n", c.Operator)
		p.indent++
		p.condition(c.Left)
		p.condition(c.Right)
		p.indent--

	default:
		p.printf("Unknown condition %T\n", cond)
	}
}

func exprString(expr Expression) string {
	switch e := expr.(type) {
	case *Identifier:
		return e.Name
	case *StringLit:
		return fmt.Sprintf("%q", e.Value)
	case *IntegerLit:
		return fmt.Sprintf("%d", e.Value)
	case *FloatLit:
		return fmt.Sprintf("%g", e.Value)
	case *BooleanLit:
		return fmt.Sprintf("%t", e.Value)
	case *PropertyAccess:
		return fmt.Sprintf("%s.%s", exprString(e.Object), e.Property)
	case *FunctionCall:
		args := make([]string, len(e.Arguments))
		for i, a := range e.Arguments {
			args[i] = exprString(a)
		}
		return fmt.Sprintf("%s(%s)", e.Name, strings.Join(args, ", "))
	default:
		return fmt.Sprintf("%T", expr)
	}
}
