package config

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talkpp-lang/talkpp/pkg/compiler"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "talkpp.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		cfg       Config
		wantErr   bool
		errSubstr string
	}{
		{
			name: "valid defaults",
			cfg:  Config{Target: "rust", Optimization: "debug", OutputFormat: "auto"},
		},
		{
			name: "target alias accepted",
			cfg:  Config{Target: "ts", Optimization: "release", OutputFormat: "json"},
		},
		{
			name:      "unknown target",
			cfg:       Config{Target: "cobol", Optimization: "debug", OutputFormat: "auto"},
			wantErr:   true,
			errSubstr: "unknown target language",
		},
		{
			name:      "unknown optimization",
			cfg:       Config{Target: "rust", Optimization: "fast", OutputFormat: "auto"},
			wantErr:   true,
			errSubstr: "unknown optimization level",
		},
		{
			name:      "unknown format",
			cfg:       Config{Target: "rust", Optimization: "debug", OutputFormat: "markdown"},
			wantErr:   true,
			errSubstr: "unknown output format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errSubstr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	ResetConfig()

	// An empty config file keeps every default in place.
	cfg, err := LoadConfig(writeConfigFile(t, ""), nil)
	require.NoError(t, err)

	assert.Equal(t, "rust", cfg.Target)
	assert.Equal(t, "debug", cfg.Optimization)
	assert.True(t, cfg.Debug)
	assert.Equal(t, DefaultStateFile, cfg.StatePath)
	assert.True(t, cfg.History)
	assert.False(t, cfg.Verbose)
	assert.Equal(t, "auto", cfg.OutputFormat)
}

func TestLoadConfig_FileValues(t *testing.T) {
	ResetConfig()

	cfgPath := writeConfigFile(t, `target: python
optimization: release
debug: false
history: false
format: json
state_path: build/state.db
`)

	cfg, err := LoadConfig(cfgPath, nil)
	require.NoError(t, err)

	assert.Equal(t, "python", cfg.Target)
	assert.Equal(t, "release", cfg.Optimization)
	assert.False(t, cfg.Debug)
	assert.False(t, cfg.History)
	assert.Equal(t, "json", cfg.OutputFormat)
	assert.Equal(t, "build/state.db", cfg.StatePath)
	assert.Equal(t, cfgPath, ConfigFileUsed())
}

func TestLoadConfig_FlagPrecedence(t *testing.T) {
	ResetConfig()

	cfgPath := writeConfigFile(t, "target: python\n")

	require.NoError(t, os.Setenv("TALKPP_TARGET", "typescript"))
	defer func() { _ = os.Unsetenv("TALKPP_TARGET") }()

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("target", "", "target language")
	require.NoError(t, flags.Set("target", "bash"))

	cfg, err := LoadConfig(cfgPath, flags)
	require.NoError(t, err)
	assert.Equal(t, "bash", cfg.Target, "flag value should override config file and env var")
}

func TestLoadConfig_EnvPrecedenceOverFile(t *testing.T) {
	ResetConfig()

	cfgPath := writeConfigFile(t, "target: python\ndebug: true\n")

	require.NoError(t, os.Setenv("TALKPP_TARGET", "javascript"))
	require.NoError(t, os.Setenv("TALKPP_DEBUG", "false"))
	defer func() {
		_ = os.Unsetenv("TALKPP_TARGET")
		_ = os.Unsetenv("TALKPP_DEBUG")
	}()

	cfg, err := LoadConfig(cfgPath, nil)
	require.NoError(t, err)
	assert.Equal(t, "javascript", cfg.Target, "env var should override config file")
	assert.False(t, cfg.Debug, "env var should coerce into bool fields")
}

func TestLoadConfig_FlagNotSetUsesEnv(t *testing.T) {
	ResetConfig()

	cfgPath := writeConfigFile(t, "target: python\n")

	require.NoError(t, os.Setenv("TALKPP_TARGET", "javascript"))
	defer func() { _ = os.Unsetenv("TALKPP_TARGET") }()

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("target", "", "target language")

	cfg, err := LoadConfig(cfgPath, flags)
	require.NoError(t, err)
	assert.Equal(t, "javascript", cfg.Target, "unset flags fall back to env vars")
}

func TestLoadConfig_StateFlagMapsToStatePath(t *testing.T) {
	ResetConfig()

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("state", "", "state database path")
	require.NoError(t, flags.Set("state", "elsewhere/state.db"))

	cfg, err := LoadConfig(writeConfigFile(t, ""), flags)
	require.NoError(t, err)
	assert.Equal(t, "elsewhere/state.db", cfg.StatePath)
}

func TestLoadConfig_RejectsInvalidValues(t *testing.T) {
	ResetConfig()

	_, err := LoadConfig(writeConfigFile(t, "target: cobol\n"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown target language")
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	ResetConfig()

	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestCompilerConfig(t *testing.T) {
	cfg := Config{Target: "ts", Optimization: "size", Debug: true, OutputFormat: "auto"}

	cc, err := cfg.CompilerConfig()
	require.NoError(t, err)
	assert.Equal(t, compiler.TargetTypeScript, cc.Target)
	assert.Equal(t, compiler.OptimizationSize, cc.Optimization)
	assert.True(t, cc.Debug)
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, DefaultTarget, cfg.Target)
	assert.Equal(t, DefaultOptimization, cfg.Optimization)
	assert.True(t, cfg.Debug)
	assert.Equal(t, DefaultStateFile, cfg.StatePath)
	assert.True(t, cfg.History)
	assert.Equal(t, DefaultOutput, cfg.OutputFormat)
	assert.NoError(t, cfg.Validate())
}

func TestGetCurrentConfig(t *testing.T) {
	ResetConfig()
	assert.Nil(t, GetCurrentConfig())

	cfg, err := LoadConfig(writeConfigFile(t, "target: python\n"), nil)
	require.NoError(t, err)
	require.NotNil(t, GetCurrentConfig())
	assert.Equal(t, cfg, GetCurrentConfig())

	ResetConfig()
	assert.Nil(t, GetCurrentConfig())
}

func TestGetLogger(t *testing.T) {
	// Fallback must be usable, not nil
	logger := GetLogger(context.Background())
	require.NotNil(t, logger)

	stored := slog.New(slog.DiscardHandler)
	ctx := context.WithValue(context.Background(), LoggerKey(), stored)
	assert.Same(t, stored, GetLogger(ctx))
}
