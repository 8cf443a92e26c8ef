package codegen

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/stretchr/testify/require"

	"github.com/talkpp-lang/talkpp/pkg/ast"
)

// syntaxPrograms covers the statement shapes the backends can produce.
// Each entry must survive every backend without an error.
func syntaxPrograms(t *testing.T) map[string]*ast.Program {
	t.Helper()

	sources := map[string]string{
		"sendgrid rule":   "if new user registers then validate email using SendGrid",
		"else branch":     "when payment fails then send alert using Twilio else store record using PostgreSQL",
		"empty else":      "if new user registers then send email else .",
		"logical chain":   "if new user registers and payment succeeds or trial expires then send email using SendGrid",
		"unknown service": "if user pays then process payment using Stripe",
		"plain actions":   "send email notify user",
		"assignments":     "x: 42\npi: 3.14\nname: \"alice\"\nwho: other",
		"empty program":   "",
	}

	programs := make(map[string]*ast.Program, len(sources)+1)
	for name, src := range sources {
		programs[name] = mustParse(t, src)
	}
	programs["comparison"] = &ast.Program{Statements: []ast.Statement{
		&ast.ConditionalStatement{
			Condition: &ast.ComparisonCondition{
				Left:     &ast.Identifier{Name: "user_age"},
				Operator: ast.OpGreaterEqual,
				Right:    &ast.IntegerLit{Value: 21},
			},
			ThenActions: []*ast.ActionStatement{
				{Action: ast.ActionTrigger, Target: &ast.Identifier{Name: "upgrade"}},
			},
		},
	}}
	return programs
}

// esbuild transforms without type checking, which makes it a convenient
// syntax oracle for the JavaScript and TypeScript backends.
func TestGeneratedJavaScriptParses(t *testing.T) {
	for name, prog := range syntaxPrograms(t) {
		for _, debug := range []bool{true, false} {
			out, err := Generate(prog, Config{Target: TargetJavaScript, Optimization: OptimizationDebug, Debug: debug})
			require.NoError(t, err, "program %q", name)

			result := api.Transform(out, api.TransformOptions{Loader: api.LoaderJS})
			require.Empty(t, result.Errors, "program %q (debug=%v) must produce valid JavaScript:\n%s", name, debug, out)
		}
	}
}

func TestGeneratedTypeScriptParses(t *testing.T) {
	for name, prog := range syntaxPrograms(t) {
		for _, debug := range []bool{true, false} {
			out, err := Generate(prog, Config{Target: TargetTypeScript, Optimization: OptimizationDebug, Debug: debug})
			require.NoError(t, err, "program %q", name)

			result := api.Transform(out, api.TransformOptions{Loader: api.LoaderTS})
			require.Empty(t, result.Errors, "program %q (debug=%v) must produce valid TypeScript:\n%s", name, debug, out)
		}
	}
}

func TestGeneratedBashParses(t *testing.T) {
	bash, err := exec.LookPath("bash")
	if err != nil {
		t.Skip("bash not installed")
	}

	dir := t.TempDir()
	for name, prog := range syntaxPrograms(t) {
		out, err := Generate(prog, debugConfig(TargetBash))
		require.NoError(t, err, "program %q", name)

		script := filepath.Join(dir, "handler.sh")
		require.NoError(t, os.WriteFile(script, []byte(out), 0o755))

		check := exec.Command(bash, "-n", script)
		output, err := check.CombinedOutput()
		require.NoError(t, err, "program %q must produce valid shell:\n%s\n%s", name, output, out)
	}
}

func TestGeneratedPythonParses(t *testing.T) {
	python, err := exec.LookPath("python3")
	if err != nil {
		t.Skip("python3 not installed")
	}

	dir := t.TempDir()
	for name, prog := range syntaxPrograms(t) {
		out, err := Generate(prog, debugConfig(TargetPython))
		require.NoError(t, err, "program %q", name)

		script := filepath.Join(dir, "handler.py")
		require.NoError(t, os.WriteFile(script, []byte(out), 0o644))

		check := exec.Command(python, "-m", "py_compile", script)
		output, err := check.CombinedOutput()
		require.NoError(t, err, "program %q must produce valid Python:\n%s\n%s", name, output, out)
	}
}
