package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRenderer(mode Mode) (*Renderer, *bytes.Buffer, *bytes.Buffer) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return NewRenderer(out, errOut, mode), out, errOut
}

func TestRenderer_PlainStylesOffTerminal(t *testing.T) {
	r, out, _ := newTestRenderer(ModeText)

	r.Println(r.Styles().Header1.Render("Builds"))
	assert.Equal(t, "Builds\n", out.String(), "buffers never receive escape sequences")
}

func TestRenderer_EffectiveMode(t *testing.T) {
	tests := []struct {
		mode Mode
		want Mode
	}{
		{ModeAuto, ModeText},
		{"", ModeText},
		{ModeText, ModeText},
		{ModeJSON, ModeJSON},
	}

	for _, tt := range tests {
		r, _, _ := newTestRenderer(tt.mode)
		assert.Equal(t, tt.want, r.EffectiveMode())
	}
}

func TestMode_Valid(t *testing.T) {
	assert.True(t, ModeAuto.Valid())
	assert.True(t, ModeText.Valid())
	assert.True(t, ModeJSON.Valid())
	assert.False(t, Mode("markdown").Valid())
	assert.False(t, Mode("").Valid())
}

func TestRenderer_Header(t *testing.T) {
	r, out, _ := newTestRenderer(ModeText)

	r.Header(1, "Compiler")
	r.Header(2, "Targets")
	assert.Equal(t, "Compiler\n\nTargets\n\n", out.String())
}

func TestRenderer_StatusLine(t *testing.T) {
	r, out, _ := newTestRenderer(ModeText)

	r.StatusLine("rules.talkpp", "success", "")
	r.StatusLine("broken.talkpp", "error", "missing then")
	assert.Contains(t, out.String(), "rules.talkpp")
	assert.Contains(t, out.String(), "error")
	assert.Contains(t, out.String(), "missing then")
}

func TestRenderer_DiagnosticsGoToErrOut(t *testing.T) {
	r, out, errOut := newTestRenderer(ModeText)

	r.Success("compiled 3 files")
	r.Warning("unknown service 'Stripe'")
	r.Error("build failed")

	assert.Contains(t, out.String(), "compiled 3 files")
	assert.NotContains(t, out.String(), "unknown service")
	assert.Contains(t, errOut.String(), "unknown service 'Stripe'")
	assert.Contains(t, errOut.String(), "build failed")
}

func TestRenderer_JSON(t *testing.T) {
	r, out, _ := newTestRenderer(ModeJSON)

	require.NoError(t, r.JSON(map[string]any{"status": "ok", "files": 2}))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	assert.Equal(t, "ok", decoded["status"])
	assert.Equal(t, float64(2), decoded["files"])
}
