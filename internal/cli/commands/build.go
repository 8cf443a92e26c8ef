package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/talkpp-lang/talkpp/internal/cli/output"
	"github.com/talkpp-lang/talkpp/internal/manifest"
	"github.com/talkpp-lang/talkpp/internal/state"
	"github.com/talkpp-lang/talkpp/internal/watch"
	"github.com/talkpp-lang/talkpp/pkg/compiler"
)

// targetExtensions maps each target language to the extension of its
// generated source file. The mapping belongs to the CLI; the compiler
// core never touches the filesystem.
var targetExtensions = map[compiler.TargetLanguage]string{
	compiler.TargetRust:       ".rs",
	compiler.TargetPython:     ".py",
	compiler.TargetJavaScript: ".js",
	compiler.TargetTypeScript: ".ts",
	compiler.TargetBash:       ".sh",
}

// TargetExtension returns the output file extension for a target.
func TargetExtension(t compiler.TargetLanguage) string {
	return targetExtensions[t]
}

// outputPath derives the sibling output path for an input file.
func outputPath(input string, target compiler.TargetLanguage) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + targetExtensions[target]
}

// BuildOptions holds options for the build command.
type BuildOptions struct {
	Out      string
	Manifest bool
	Watch    bool
}

// NewBuildCommand creates the build command.
func NewBuildCommand(version string) *cobra.Command {
	opts := &BuildOptions{}
	cmd := &cobra.Command{
		Use:   "build <input>...",
		Short: "Compile Talk++ sources to the configured target",
		Long: `Compile one or more Talk++ source files.

Each input compiles to a sibling file carrying the target's extension,
so rules.talkpp becomes rules.rs under the Rust target. Multiple inputs
compile concurrently. Every build is recorded in the history database
unless history is disabled.`,
		Example: `  # Compile to Rust (the default target)
  talkppc build rules.talkpp

  # Compile two files to TypeScript
  talkppc build -t ts signup.talkpp billing.talkpp

  # Choose the output path
  talkppc build rules.talkpp --out dist/rules.rs

  # Recompile on every change
  talkppc build rules.talkpp --watch`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, args, opts, version)
		},
	}

	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "Output file (single input only)")
	cmd.Flags().BoolVar(&opts.Manifest, "manifest", false, "Write talkpp.manifest.yaml describing the outputs")
	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Rebuild whenever an input changes")

	return cmd
}

func runBuild(cmd *cobra.Command, args []string, opts *BuildOptions, version string) error {
	c := NewCommandContext(cmd)

	if opts.Out != "" && len(args) != 1 {
		return fmt.Errorf("--out requires exactly one input file, got %d", len(args))
	}

	cc, err := c.Cfg.CompilerConfig()
	if err != nil {
		return err
	}

	b := &builder{
		c:        c,
		comp:     compiler.NewWithConfig(cc),
		cfg:      cc,
		out:      opts.Out,
		manifest: opts.Manifest,
		version:  version,
		order:    args,
		results:  make(map[string]*buildResult),
	}

	if c.Cfg.History {
		store, cleanup, err := c.OpenStore()
		if err != nil {
			// An unusable history database must not block compilation.
			c.Logger.Warn("build history unavailable", "error", err)
		} else {
			defer cleanup()
			b.store = store
		}
	}

	buildErr := b.buildAll(cmd.Context(), args)

	if opts.Manifest && buildErr == nil {
		if err := b.writeManifest("."); err != nil {
			return err
		}
	}

	if !opts.Watch {
		return buildErr
	}

	// A failed initial build stays up in watch mode; the failures are
	// already reported and the next save gets another chance.
	if c.Renderer.EffectiveMode() != output.ModeJSON {
		c.Renderer.Println("Watching for changes (Ctrl+C to stop)")
	}
	return watch.Watch(cmd.Context(), watch.Options{Paths: args, Logger: c.Logger}, func(path string) error {
		b.rebuild(cmd.Context(), path)
		return nil
	})
}

// builder compiles inputs and records their outcomes.
type builder struct {
	c        *CommandContext
	comp     *compiler.Compiler
	cfg      compiler.Config
	store    state.Store
	out      string
	manifest bool
	version  string

	mu      sync.Mutex
	order   []string
	results map[string]*buildResult
}

// buildResult is the outcome of compiling one input file.
type buildResult struct {
	Input      string `json:"input"`
	Output     string `json:"output,omitempty"`
	Status     string `json:"status"`
	Error      string `json:"error,omitempty"`
	SizeBytes  int    `json:"size_bytes,omitempty"`
	DurationMS int64  `json:"duration_ms"`
}

// buildAll compiles every input concurrently and renders the results in
// input order.
func (b *builder) buildAll(ctx context.Context, inputs []string) error {
	results := make([]*buildResult, len(inputs))

	var g errgroup.Group
	for i, input := range inputs {
		g.Go(func() error {
			res := b.compile(ctx, input)
			results[i] = res
			if res.Error != "" {
				return errors.New(res.Error)
			}
			return nil
		})
	}
	err := g.Wait()

	b.mu.Lock()
	for _, res := range results {
		b.results[res.Input] = res
	}
	b.mu.Unlock()

	b.render(results)

	if err == nil {
		return nil
	}
	if len(inputs) == 1 {
		return errors.New("build failed")
	}
	failed := 0
	for _, res := range results {
		if res.Error != "" {
			failed++
		}
	}
	return fmt.Errorf("build failed for %d of %d inputs", failed, len(inputs))
}

// rebuild recompiles a single input after a watch event.
func (b *builder) rebuild(ctx context.Context, input string) {
	res := b.compile(ctx, input)

	b.mu.Lock()
	b.results[input] = res
	b.mu.Unlock()

	b.render([]*buildResult{res})

	if b.manifest && res.Error == "" {
		if err := b.writeManifest("."); err != nil {
			b.c.Renderer.Error(err.Error())
		}
	}
}

// compile runs one input through the pipeline and writes its output.
// The history record covers the write too: a build that cannot persist
// its output is a failed build.
func (b *builder) compile(ctx context.Context, input string) *buildResult {
	start := time.Now()
	res := &buildResult{Input: input, Output: b.resolveOutput(input)}

	id := b.recordStart(ctx, input, res.Output)

	code, err := b.compileFile(input)
	if err == nil {
		err = writeOutput(res.Output, code)
	}
	res.DurationMS = time.Since(start).Milliseconds()

	if err != nil {
		res.Status = string(state.BuildStatusFailed)
		res.Error = err.Error()
	} else {
		res.Status = string(state.BuildStatusSuccess)
		res.SizeBytes = len(code)
	}

	b.recordDone(ctx, id, res)
	return res
}

func (b *builder) compileFile(input string) (string, error) {
	source, err := os.ReadFile(input)
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return b.comp.Compile(string(source))
}

func (b *builder) resolveOutput(input string) string {
	if b.out != "" {
		return b.out
	}
	return outputPath(input, b.cfg.Target)
}

func writeOutput(path, code string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(code), 0o644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// recordStart inserts a running build record and returns its id.
// History failures degrade to a warning so compilation is never blocked.
func (b *builder) recordStart(ctx context.Context, input, output string) string {
	if b.store == nil {
		return ""
	}
	rec := &state.Build{
		Source:       input,
		Output:       output,
		Target:       string(b.cfg.Target),
		Optimization: string(b.cfg.Optimization),
		Debug:        b.cfg.Debug,
	}
	if err := b.store.RecordBuild(ctx, rec); err != nil {
		b.c.Logger.Warn("failed to record build", "source", input, "error", err)
		return ""
	}
	return rec.ID
}

func (b *builder) recordDone(ctx context.Context, id string, res *buildResult) {
	if b.store == nil || id == "" {
		return
	}
	if err := b.store.CompleteBuild(ctx, id, state.BuildStatus(res.Status), res.Error); err != nil {
		b.c.Logger.Warn("failed to complete build record", "id", id, "error", err)
	}
}

// render reports results in input order. JSON mode emits one document
// for the whole batch.
func (b *builder) render(results []*buildResult) {
	if b.c.Renderer.EffectiveMode() == output.ModeJSON {
		_ = b.c.Renderer.JSON(struct {
			Builds []*buildResult `json:"builds"`
		}{Builds: results})
		return
	}
	for _, res := range results {
		if res.Error == "" {
			b.c.Renderer.Success(fmt.Sprintf("%s -> %s (%d bytes)", res.Input, res.Output, res.SizeBytes))
		} else {
			b.c.Renderer.Error(fmt.Sprintf("%s: %s", res.Input, res.Error))
		}
	}
}

// writeManifest captures the latest result for every input.
func (b *builder) writeManifest(dir string) error {
	m := manifest.New(fmt.Sprintf("talkppc v%s", b.version), string(b.cfg.Target), string(b.cfg.Optimization), b.cfg.Debug)

	b.mu.Lock()
	for _, input := range b.order {
		res := b.results[input]
		if res == nil || res.Error != "" {
			continue
		}
		m.AddArtifact(res.Input, res.Output, res.SizeBytes)
	}
	b.mu.Unlock()

	path, err := m.Write(dir)
	if err != nil {
		return err
	}
	if b.c.Renderer.EffectiveMode() != output.ModeJSON {
		b.c.Renderer.Success("wrote " + path)
	}
	return nil
}
