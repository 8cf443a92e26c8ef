// Package compiler assembles the Talk++ pipeline behind a single facade.
//
// The three stages run strictly in order: text is tokenized, tokens are
// parsed into a tree, and the tree is rendered for one target language.
// Every stage is pure, and the first error aborts the run.
//
// Usage:
//
//	c := compiler.NewWithConfig(compiler.Config{
//		Target:       compiler.TargetPython,
//		Optimization: compiler.OptimizationRelease,
//	})
//	out, err := c.Compile(`if new user registers then validate email using SendGrid`)
package compiler

import (
	"fmt"

	"github.com/talkpp-lang/talkpp/pkg/ast"
	"github.com/talkpp-lang/talkpp/pkg/codegen"
	"github.com/talkpp-lang/talkpp/pkg/parser"
	"github.com/talkpp-lang/talkpp/pkg/token"
)

// Config carries the generation settings for one compile.
type Config = codegen.Config

// TargetLanguage selects the backend that renders a program.
type TargetLanguage = codegen.TargetLanguage

// OptimizationLevel is recorded in generated banners and build metadata.
type OptimizationLevel = codegen.OptimizationLevel

// Supported target languages.
const (
	TargetRust       = codegen.TargetRust
	TargetPython     = codegen.TargetPython
	TargetJavaScript = codegen.TargetJavaScript
	TargetTypeScript = codegen.TargetTypeScript
	TargetBash       = codegen.TargetBash
)

// Optimization levels.
const (
	OptimizationDebug   = codegen.OptimizationDebug
	OptimizationRelease = codegen.OptimizationRelease
	OptimizationSize    = codegen.OptimizationSize
)

// DefaultConfig returns the default generation settings: Rust, debug
// optimization, debug instrumentation on.
func DefaultConfig() Config { return codegen.DefaultConfig() }

// Targets returns the supported target languages in canonical order.
func Targets() []TargetLanguage { return codegen.Targets() }

// ParseTargetLanguage resolves a target name or alias, case-insensitively.
func ParseTargetLanguage(s string) (TargetLanguage, error) {
	return codegen.ParseTargetLanguage(s)
}

// ParseOptimizationLevel resolves an optimization level name.
func ParseOptimizationLevel(s string) (OptimizationLevel, error) {
	return codegen.ParseOptimizationLevel(s)
}

// TargetAliases returns the alternate spellings accepted for a target.
func TargetAliases(t TargetLanguage) []string {
	return codegen.Aliases(t)
}

// ServiceIntegration describes a known external service integration.
type ServiceIntegration = codegen.ServiceIntegration

// Services returns the service integrations the backends know about.
func Services() []ServiceIntegration {
	return codegen.RegisteredServices()
}

// Compiler runs the full pipeline with a fixed configuration. The zero
// value is not usable; construct one with New or NewWithConfig.
type Compiler struct {
	cfg Config
}

// New returns a compiler with the default configuration.
func New() *Compiler {
	return &Compiler{cfg: codegen.DefaultConfig()}
}

// NewWithConfig returns a compiler using the given configuration.
func NewWithConfig(cfg Config) *Compiler {
	return &Compiler{cfg: cfg}
}

// Config returns the compiler's configuration.
func (c *Compiler) Config() Config {
	return c.cfg
}

// Compile translates Talk++ source text into the configured target
// language. Stage errors pass through unwrapped: a *parser.LexError,
// *parser.ParseError, or one of the codegen error types.
func (c *Compiler) Compile(input string) (string, error) {
	tokens, err := parser.Tokenize(input)
	if err != nil {
		return "", err
	}
	prog, err := parser.Parse(tokens)
	if err != nil {
		return "", err
	}
	return codegen.Generate(prog, c.cfg)
}

// Tokenize exposes the lexer stage for tooling.
func Tokenize(input string) ([]token.Token, error) {
	return parser.Tokenize(input)
}

// Parse exposes the front half of the pipeline for tooling.
func Parse(input string) (*ast.Program, error) {
	return parser.ParseSource(input)
}

// SemanticError is reserved for analysis diagnostics between the parse
// and generate stages. No analysis pass emits one today.
type SemanticError struct {
	Message string
}

func (e *SemanticError) Error() string {
	return fmt.Sprintf("semantic error: %s", e.Message)
}
