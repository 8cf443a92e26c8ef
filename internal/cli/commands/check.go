package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/talkpp-lang/talkpp/internal/cli/output"
	"github.com/talkpp-lang/talkpp/pkg/compiler"
)

// checkResult is the verdict for one input file.
type checkResult struct {
	Input string `json:"input"`
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check <input>...",
		Short: "Validate Talk++ sources without writing output",
		Long: `Run the full compile pipeline and discard the generated code.

check reports the first error in each file with its source position and
exits non-zero when any file fails.`,
		Example: `  # Validate one file
  talkppc check rules.talkpp

  # Validate a batch
  talkppc check src/*.talkpp`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args)
		},
	}
}

func runCheck(cmd *cobra.Command, args []string) error {
	c := NewCommandContext(cmd)

	cc, err := c.Cfg.CompilerConfig()
	if err != nil {
		return err
	}
	comp := compiler.NewWithConfig(cc)

	results := make([]checkResult, 0, len(args))
	failed := 0
	for _, input := range args {
		res := checkResult{Input: input, Valid: true}
		if err := checkFile(comp, input); err != nil {
			res.Valid = false
			res.Error = err.Error()
			failed++
		}
		results = append(results, res)
	}

	if c.Renderer.EffectiveMode() == output.ModeJSON {
		if err := c.Renderer.JSON(struct {
			Checks []checkResult `json:"checks"`
		}{Checks: results}); err != nil {
			return err
		}
	} else {
		for _, res := range results {
			if res.Valid {
				c.Renderer.Success(res.Input + ": syntax is valid")
			} else {
				c.Renderer.Error(fmt.Sprintf("%s: %s", res.Input, res.Error))
			}
		}
	}

	if failed == 0 {
		return nil
	}
	if len(args) == 1 {
		return errors.New("check failed")
	}
	return fmt.Errorf("check failed for %d of %d inputs", failed, len(args))
}

func checkFile(comp *compiler.Compiler, input string) error {
	source, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	_, err = comp.Compile(string(source))
	return err
}
