package commands

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talkpp-lang/talkpp/internal/cli/testutil"
)

func runCheckCommand(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	cmd := NewCheckCommand()
	out := new(bytes.Buffer)
	errOut := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestCheckCommand_ValidFile(t *testing.T) {
	path := testutil.WriteSource(t, t.TempDir(), "rules.talkpp",
		"if new user registers then validate email using SendGrid")

	out, _, err := runCheckCommand(t, path)
	require.NoError(t, err)
	assert.Contains(t, out, "syntax is valid")
	assert.Contains(t, out, "rules.talkpp")
}

func TestCheckCommand_InvalidSyntax(t *testing.T) {
	path := testutil.WriteSource(t, t.TempDir(), "broken.talkpp",
		"if user registers send email")

	_, errOut, err := runCheckCommand(t, path)
	require.Error(t, err)
	assert.Equal(t, "check failed", err.Error())
	assert.Contains(t, errOut, "expected 'then' after condition")
}

func TestCheckCommand_MissingFile(t *testing.T) {
	_, errOut, err := runCheckCommand(t, "no-such-file.talkpp")
	require.Error(t, err)
	assert.Contains(t, errOut, "failed to read input")
}

func TestCheckCommand_MixedInputs(t *testing.T) {
	dir := t.TempDir()
	good := testutil.WriteSource(t, dir, "good.talkpp",
		"when payment completes then send receipt using SendGrid")
	bad := testutil.WriteSource(t, dir, "bad.talkpp",
		"if @ then send email")

	out, errOut, err := runCheckCommand(t, good, bad)
	require.Error(t, err)
	assert.Equal(t, "check failed for 1 of 2 inputs", err.Error())
	assert.Contains(t, out, "good.talkpp: syntax is valid")
	assert.Contains(t, errOut, "bad.talkpp")
	assert.Contains(t, errOut, "invalid token")
}

func TestCheckCommand_RequiresInput(t *testing.T) {
	_, _, err := runCheckCommand(t)
	require.Error(t, err)
}
