package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/talkpp-lang/talkpp/pkg/compiler"
)

// NewREPLCommand creates the repl command.
func NewREPLCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Compile Talk++ rules interactively",
		Long: `Start an interactive session that compiles each line as a complete
Talk++ program and prints the generated source.

Dot-commands control the session: .target switches the output language
and .tokens swaps the generated code for a token dump.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runREPL(cmd)
		},
	}
}

// replSession holds the mutable session state.
type replSession struct {
	cmd    *cobra.Command
	cfg    compiler.Config
	comp   *compiler.Compiler
	tokens bool
}

func runREPL(cmd *cobra.Command) error {
	c := NewCommandContext(cmd)

	cc, err := c.Cfg.CompilerConfig()
	if err != nil {
		return err
	}
	session := &replSession{cmd: cmd, cfg: cc, comp: compiler.NewWithConfig(cc)}

	// Project-local history next to the state database.
	historyFile := filepath.Join(filepath.Dir(c.Cfg.StatePath), "repl_history")
	_ = os.MkdirAll(filepath.Dir(historyFile), 0o755)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "talkpp> ",
		HistoryFile:     historyFile,
		AutoComplete:    replCompleter(),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Talk++ REPL (target: %s)\n", session.cfg.Target)
	_, _ = fmt.Fprintln(out, "Type a rule to compile it, .help for commands, .quit to exit")
	_, _ = fmt.Fprintln(out)

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, ".") {
			if quit := session.handleCommand(line); quit {
				break
			}
			continue
		}

		session.eval(line)
	}

	return nil
}

// handleCommand runs a dot-command and reports whether to quit.
func (s *replSession) handleCommand(line string) bool {
	parts := strings.Fields(line)
	command := strings.ToLower(parts[0])

	switch command {
	case ".quit", ".exit":
		return true

	case ".help":
		s.printHelp()

	case ".target":
		if len(parts) < 2 {
			_, _ = fmt.Fprintln(s.cmd.ErrOrStderr(), "Usage: .target <rust|python|javascript|typescript|bash>")
			break
		}
		target, err := compiler.ParseTargetLanguage(parts[1])
		if err != nil {
			_, _ = fmt.Fprintf(s.cmd.ErrOrStderr(), "Error: %v\n", err)
			break
		}
		s.cfg.Target = target
		s.comp = compiler.NewWithConfig(s.cfg)
		_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), "target: %s\n", target)

	case ".tokens":
		s.tokens = !s.tokens
		status := "off"
		if s.tokens {
			status = "on"
		}
		_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), "token dump: %s\n", status)

	case ".clear":
		_, _ = fmt.Fprint(s.cmd.OutOrStdout(), "\033[H\033[2J")

	default:
		_, _ = fmt.Fprintf(s.cmd.ErrOrStderr(), "Unknown command: %s (type .help for commands)\n", command)
	}
	return false
}

// eval compiles one line as a complete program.
func (s *replSession) eval(line string) {
	out := s.cmd.OutOrStdout()

	if s.tokens {
		tokens, err := compiler.Tokenize(line)
		if err != nil {
			_, _ = fmt.Fprintf(s.cmd.ErrOrStderr(), "Error: %v\n", err)
			return
		}
		for _, tok := range tokens {
			_, _ = fmt.Fprintf(out, "%-10s %q\n", tok.Type.String(), tok.Literal)
		}
		_, _ = fmt.Fprintln(out)
		return
	}

	code, err := s.comp.Compile(line)
	if err != nil {
		_, _ = fmt.Fprintf(s.cmd.ErrOrStderr(), "Error: %v\n", err)
		return
	}
	_, _ = fmt.Fprint(out, code)
	if !strings.HasSuffix(code, "\n") {
		_, _ = fmt.Fprintln(out)
	}
}

func (s *replSession) printHelp() {
	help := `
Commands:
  .help             Show this help message
  .target <lang>    Switch the output language
  .tokens           Toggle token dump mode
  .clear            Clear the screen
  .quit / .exit     Exit the REPL

Tips:
  - Each line compiles as a complete program
  - Separate multiple rules on one line with a period
  - Use arrow keys to navigate history
`
	_, _ = fmt.Fprintln(s.cmd.OutOrStdout(), help)
}

// replCompleter completes dot-commands, target names, language
// keywords, and known service names.
func replCompleter() *readline.PrefixCompleter {
	targets := make([]readline.PrefixCompleterInterface, 0, len(compiler.Targets()))
	for _, t := range compiler.Targets() {
		targets = append(targets, readline.PcItem(string(t)))
	}

	items := []readline.PrefixCompleterInterface{
		readline.PcItem(".help"),
		readline.PcItem(".target", targets...),
		readline.PcItem(".tokens"),
		readline.PcItem(".clear"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	}

	words := []string{
		"if", "when", "then", "else", "and", "or", "using", "with", "to", "from", "in",
		"send", "store", "validate", "process", "trigger", "call",
	}
	for _, word := range words {
		items = append(items, readline.PcItem(word))
	}
	for _, svc := range compiler.Services() {
		items = append(items, readline.PcItem(svc.Name))
	}

	return readline.NewPrefixCompleter(items...)
}
