package codegen

import (
	"fmt"
	"sort"
	"strings"
)

// TargetLanguage selects the backend that renders a program.
type TargetLanguage string

// Supported target languages.
const (
	TargetRust       TargetLanguage = "rust"
	TargetPython     TargetLanguage = "python"
	TargetJavaScript TargetLanguage = "javascript"
	TargetTypeScript TargetLanguage = "typescript"
	TargetBash       TargetLanguage = "bash"
)

// Targets returns the supported target languages in canonical order.
func Targets() []TargetLanguage {
	return []TargetLanguage{TargetRust, TargetPython, TargetJavaScript, TargetTypeScript, TargetBash}
}

// Valid returns true if the target names a supported backend.
func (t TargetLanguage) Valid() bool {
	switch t {
	case TargetRust, TargetPython, TargetJavaScript, TargetTypeScript, TargetBash:
		return true
	}
	return false
}

// targetAliases maps accepted spellings to canonical target names.
var targetAliases = map[string]TargetLanguage{
	"rust":       TargetRust,
	"python":     TargetPython,
	"javascript": TargetJavaScript,
	"js":         TargetJavaScript,
	"typescript": TargetTypeScript,
	"ts":         TargetTypeScript,
	"bash":       TargetBash,
}

// ParseTargetLanguage resolves a target name or alias, case-insensitively.
func ParseTargetLanguage(s string) (TargetLanguage, error) {
	if t, ok := targetAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return t, nil
	}
	return "", fmt.Errorf("unknown target language %q (valid: rust, python, javascript, typescript, bash)", s)
}

// Aliases returns the alternate spellings accepted for a target, sorted.
// The canonical name is excluded.
func Aliases(t TargetLanguage) []string {
	var out []string
	for alias, target := range targetAliases {
		if target == t && alias != string(t) {
			out = append(out, alias)
		}
	}
	sort.Strings(out)
	return out
}

// OptimizationLevel is recorded in the generated banner and in build
// metadata. It never changes the shape of the generated code.
type OptimizationLevel string

// Optimization levels.
const (
	OptimizationDebug   OptimizationLevel = "debug"
	OptimizationRelease OptimizationLevel = "release"
	OptimizationSize    OptimizationLevel = "size"
)

// Valid returns true if the level is one of the accepted values.
func (o OptimizationLevel) Valid() bool {
	switch o {
	case OptimizationDebug, OptimizationRelease, OptimizationSize:
		return true
	}
	return false
}

// ParseOptimizationLevel resolves an optimization level name.
func ParseOptimizationLevel(s string) (OptimizationLevel, error) {
	o := OptimizationLevel(strings.ToLower(strings.TrimSpace(s)))
	if !o.Valid() {
		return "", fmt.Errorf("unknown optimization level %q (valid: debug, release, size)", s)
	}
	return o, nil
}

// Config carries the generation settings for one compile.
type Config struct {
	Target       TargetLanguage
	Optimization OptimizationLevel
	Debug        bool
}

// DefaultConfig returns the default generation settings.
func DefaultConfig() Config {
	return Config{
		Target:       TargetRust,
		Optimization: OptimizationDebug,
		Debug:        true,
	}
}
