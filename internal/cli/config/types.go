// Package config loads talkppc configuration from config files,
// environment variables, and command flags.
package config

import (
	"fmt"

	"github.com/talkpp-lang/talkpp/internal/cli/output"
	"github.com/talkpp-lang/talkpp/pkg/compiler"
)

// Defaults applied before any other configuration source.
const (
	DefaultTarget       = "rust"
	DefaultOptimization = "debug"
	DefaultStateFile    = ".talkpp/state.db"
	DefaultOutput       = "auto"
)

// Config holds all CLI configuration options. Precedence, highest to
// lowest: flags, TALKPP_ environment variables, config file, defaults.
type Config struct {
	Target       string `koanf:"target"`
	Optimization string `koanf:"optimization"`
	Debug        bool   `koanf:"debug"`
	StatePath    string `koanf:"state_path"`
	History      bool   `koanf:"history"`
	Verbose      bool   `koanf:"verbose"`
	OutputFormat string `koanf:"format"`
}

// Default returns a configuration carrying only the default values. It
// backs commands that run without a prior LoadConfig, such as direct
// construction in tests.
func Default() *Config {
	return &Config{
		Target:       DefaultTarget,
		Optimization: DefaultOptimization,
		Debug:        true,
		StatePath:    DefaultStateFile,
		History:      true,
		OutputFormat: DefaultOutput,
	}
}

// Validate checks the merged configuration once after loading, so every
// command can trust the values.
func (c *Config) Validate() error {
	if _, err := compiler.ParseTargetLanguage(c.Target); err != nil {
		return err
	}
	if _, err := compiler.ParseOptimizationLevel(c.Optimization); err != nil {
		return err
	}
	if !output.Mode(c.OutputFormat).Valid() {
		return fmt.Errorf("unknown output format %q (valid: auto, text, json)", c.OutputFormat)
	}
	return nil
}

// CompilerConfig converts the CLI configuration into pipeline settings.
func (c *Config) CompilerConfig() (compiler.Config, error) {
	target, err := compiler.ParseTargetLanguage(c.Target)
	if err != nil {
		return compiler.Config{}, err
	}
	opt, err := compiler.ParseOptimizationLevel(c.Optimization)
	if err != nil {
		return compiler.Config{}, err
	}
	return compiler.Config{Target: target, Optimization: opt, Debug: c.Debug}, nil
}
