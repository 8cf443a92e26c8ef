package commands

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/talkpp-lang/talkpp/internal/cli/output"
	"github.com/talkpp-lang/talkpp/pkg/ast"
	"github.com/talkpp-lang/talkpp/pkg/compiler"
	"github.com/talkpp-lang/talkpp/pkg/token"
)

// InspectOptions holds options for the inspect command.
type InspectOptions struct {
	Tokens bool
	AST    bool
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand() *cobra.Command {
	opts := &InspectOptions{}
	cmd := &cobra.Command{
		Use:   "inspect <input>",
		Short: "Show the token stream or syntax tree of a source file",
		Long: `Inspect the front half of the pipeline for one source file.

The default view is the syntax tree. --tokens prints the token stream
with source positions instead. --format json switches either view to a
machine-readable form.`,
		Example: `  # Print the syntax tree
  talkppc inspect rules.talkpp

  # Print the token stream
  talkppc inspect rules.talkpp --tokens

  # Machine-readable tree
  talkppc inspect rules.talkpp --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd, args[0], opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Tokens, "tokens", false, "Show the token stream")
	cmd.Flags().BoolVar(&opts.AST, "ast", false, "Show the syntax tree (default)")
	cmd.MarkFlagsMutuallyExclusive("tokens", "ast")

	return cmd
}

func runInspect(cmd *cobra.Command, input string, opts *InspectOptions) error {
	c := NewCommandContext(cmd)

	source, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	if opts.Tokens {
		return renderTokens(c, string(source))
	}
	return renderAST(c, string(source))
}

func renderTokens(c *CommandContext, source string) error {
	tokens, err := compiler.Tokenize(source)
	if err != nil {
		return err
	}

	if c.Renderer.EffectiveMode() == output.ModeJSON {
		type tokenView struct {
			Type    string `json:"type"`
			Literal string `json:"literal"`
			Line    int    `json:"line"`
			Column  int    `json:"column"`
			Start   int    `json:"start"`
			End     int    `json:"end"`
		}
		views := make([]tokenView, 0, len(tokens))
		for _, tok := range tokens {
			views = append(views, tokenView{
				Type:    tok.Type.String(),
				Literal: tok.Literal,
				Line:    tok.Span.Start.Line,
				Column:  tok.Span.Start.Column,
				Start:   tok.Span.Start.Offset,
				End:     tok.Span.End.Offset,
			})
		}
		return c.Renderer.JSON(struct {
			Tokens []tokenView `json:"tokens"`
		}{Tokens: views})
	}

	t := table.NewWriter()
	t.SetOutputMirror(c.Renderer.Writer())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Type", "Literal", "Line", "Column", "Span"})
	for _, tok := range tokens {
		t.AppendRow(table.Row{
			tok.Type.String(),
			tokenLiteral(tok),
			tok.Span.Start.Line,
			tok.Span.Start.Column,
			fmt.Sprintf("%d..%d", tok.Span.Start.Offset, tok.Span.End.Offset),
		})
	}
	t.Render()
	return nil
}

// tokenLiteral quotes a literal for table display so whitespace and
// empty literals stay visible.
func tokenLiteral(tok token.Token) string {
	if tok.Type == token.EOF {
		return ""
	}
	return fmt.Sprintf("%q", tok.Literal)
}

func renderAST(c *CommandContext, source string) error {
	prog, err := compiler.Parse(source)
	if err != nil {
		return err
	}
	if c.Renderer.EffectiveMode() == output.ModeJSON {
		return ast.FprintJSON(c.Renderer.Writer(), prog)
	}
	ast.Fprint(c.Renderer.Writer(), prog)
	return nil
}
