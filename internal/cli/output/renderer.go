// Package output renders command results as styled text or JSON.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// Mode selects how a command renders its result.
type Mode string

const (
	// ModeAuto behaves like ModeText and enables styling on terminals.
	ModeAuto Mode = "auto"
	ModeText Mode = "text"
	ModeJSON Mode = "json"
)

// Valid returns true if the mode is one of the accepted --format values.
func (m Mode) Valid() bool {
	switch m {
	case ModeAuto, ModeText, ModeJSON:
		return true
	}
	return false
}

// Renderer writes command output. Results go to out; warnings and errors
// go to errOut. Styling is applied only when out is a terminal, so piped
// and captured output stays plain.
type Renderer struct {
	out    io.Writer
	errOut io.Writer
	mode   Mode
	styles *Styles
}

// NewRenderer builds a renderer for the given writers. An empty mode
// means ModeAuto.
func NewRenderer(out, errOut io.Writer, mode Mode) *Renderer {
	if mode == "" {
		mode = ModeAuto
	}
	styles := plainStyles()
	if mode != ModeJSON && isTerminal(out) {
		styles = defaultStyles()
	}
	return &Renderer{out: out, errOut: errOut, mode: mode, styles: styles}
}

// EffectiveMode resolves ModeAuto to the concrete mode in use.
func (r *Renderer) EffectiveMode() Mode {
	if r.mode == ModeAuto {
		return ModeText
	}
	return r.mode
}

// Styles returns the style set matching the renderer's destination.
func (r *Renderer) Styles() *Styles { return r.styles }

// Writer returns the result writer, for components that stream output.
func (r *Renderer) Writer() io.Writer { return r.out }

// ErrWriter returns the diagnostics writer.
func (r *Renderer) ErrWriter() io.Writer { return r.errOut }

func (r *Renderer) Println(s string) {
	fmt.Fprintln(r.out, s)
}

func (r *Renderer) Printf(format string, args ...any) {
	fmt.Fprintf(r.out, format, args...)
}

// Header prints a styled section heading followed by a blank line.
// Level 1 is the page title; anything deeper renders as a subsection.
func (r *Renderer) Header(level int, text string) {
	style := r.styles.Header2
	if level <= 1 {
		style = r.styles.Header1
	}
	r.Println(style.Render(text))
	r.Println("")
}

// StatusLine prints an aligned name/status pair with an optional detail.
func (r *Renderer) StatusLine(name, status, detail string) {
	line := fmt.Sprintf("  %-24s %s", name, r.statusText(status))
	if detail != "" {
		line += "  " + r.styles.Muted.Render(detail)
	}
	r.Println(line)
}

func (r *Renderer) statusText(status string) string {
	switch status {
	case "success", "ok":
		return r.styles.Success.Render(status)
	case "error", "failed":
		return r.styles.Error.Render(status)
	case "warning":
		return r.styles.Warning.Render(status)
	}
	return status
}

// Success prints a confirmation line to out.
func (r *Renderer) Success(text string) {
	r.Println(r.styles.Success.Render("✓ " + text))
}

// Warning prints a warning line to errOut.
func (r *Renderer) Warning(text string) {
	fmt.Fprintln(r.errOut, r.styles.Warning.Render("⚠ "+text))
}

// Error prints an error line to errOut.
func (r *Renderer) Error(text string) {
	fmt.Fprintln(r.errOut, r.styles.Error.Render("✗ "+text))
}

// JSON encodes v to out with indentation.
func (r *Renderer) JSON(v any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
