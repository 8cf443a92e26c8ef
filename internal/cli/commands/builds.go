package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/talkpp-lang/talkpp/internal/cli/output"
	"github.com/talkpp-lang/talkpp/internal/state"
)

// BuildsOptions holds options for the builds command.
type BuildsOptions struct {
	Limit int
	Prune int
}

// NewBuildsCommand creates the builds command.
func NewBuildsCommand() *cobra.Command {
	opts := &BuildsOptions{}
	cmd := &cobra.Command{
		Use:   "builds [build-id]",
		Short: "Show recorded build history",
		Long: `List builds from the history database, newest first.

Pass a build id, or a unique prefix of one, for the full record of a
single build.`,
		Example: `  # The twenty most recent builds
  talkppc builds

  # Everything
  talkppc builds --limit 0

  # One build in detail
  talkppc builds 2f1c70ab

  # Drop all but the fifty most recent records
  talkppc builds --prune 50`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuilds(cmd, args, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "Maximum builds to list (0 for all)")
	cmd.Flags().IntVar(&opts.Prune, "prune", -1, "Keep only the given number of recent builds")

	return cmd
}

func runBuilds(cmd *cobra.Command, args []string, opts *BuildsOptions) error {
	c := NewCommandContext(cmd)

	store, cleanup, err := c.OpenStore()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := cmd.Context()

	if opts.Prune >= 0 {
		removed, err := store.PruneBuilds(ctx, opts.Prune)
		if err != nil {
			return err
		}
		if c.Renderer.EffectiveMode() == output.ModeJSON {
			return c.Renderer.JSON(struct {
				Removed int64 `json:"removed"`
			}{Removed: removed})
		}
		c.Renderer.Success(fmt.Sprintf("pruned %d build records", removed))
		return nil
	}

	if len(args) == 1 {
		return renderBuildDetail(ctx, c, store, args[0])
	}
	return renderBuildList(ctx, c, store, opts.Limit)
}

// buildView is the JSON shape of a build record.
type buildView struct {
	ID           string     `json:"id"`
	Source       string     `json:"source"`
	Output       string     `json:"output,omitempty"`
	Target       string     `json:"target"`
	Optimization string     `json:"optimization"`
	Debug        bool       `json:"debug"`
	Status       string     `json:"status"`
	Error        string     `json:"error,omitempty"`
	StartedAt    time.Time  `json:"started_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	DurationMS   int64      `json:"duration_ms"`
}

func viewOf(b *state.Build) buildView {
	return buildView{
		ID:           b.ID,
		Source:       b.Source,
		Output:       b.Output,
		Target:       b.Target,
		Optimization: b.Optimization,
		Debug:        b.Debug,
		Status:       string(b.Status),
		Error:        b.Error,
		StartedAt:    b.StartedAt,
		CompletedAt:  b.CompletedAt,
		DurationMS:   b.DurationMS,
	}
}

func renderBuildDetail(ctx context.Context, c *CommandContext, store *state.SQLiteStore, id string) error {
	b, err := store.GetBuild(ctx, id)
	if err != nil {
		return err
	}

	if c.Renderer.EffectiveMode() == output.ModeJSON {
		return c.Renderer.JSON(viewOf(b))
	}

	r := c.Renderer
	r.Header(1, "Build "+b.ID)
	r.Printf("  %-14s %s\n", "Source", b.Source)
	if b.Output != "" {
		r.Printf("  %-14s %s\n", "Output", b.Output)
	}
	r.Printf("  %-14s %s\n", "Target", b.Target)
	r.Printf("  %-14s %s\n", "Optimization", b.Optimization)
	r.Printf("  %-14s %t\n", "Debug", b.Debug)
	r.Printf("  %-14s %s\n", "Status", string(b.Status))
	if b.Error != "" {
		r.Printf("  %-14s %s\n", "Error", b.Error)
	}
	r.Printf("  %-14s %s\n", "Started", b.StartedAt.Local().Format(time.DateTime))
	if b.CompletedAt != nil {
		r.Printf("  %-14s %s\n", "Completed", b.CompletedAt.Local().Format(time.DateTime))
		r.Printf("  %-14s %dms\n", "Duration", b.DurationMS)
	}
	return nil
}

func renderBuildList(ctx context.Context, c *CommandContext, store *state.SQLiteStore, limit int) error {
	builds, err := store.ListBuilds(ctx, limit)
	if err != nil {
		return err
	}

	if c.Renderer.EffectiveMode() == output.ModeJSON {
		views := make([]buildView, 0, len(builds))
		for _, b := range builds {
			views = append(views, viewOf(b))
		}
		return c.Renderer.JSON(struct {
			Builds []buildView `json:"builds"`
		}{Builds: views})
	}

	r := c.Renderer
	if len(builds) == 0 {
		r.Println("No builds recorded yet.")
		return nil
	}

	total, err := store.CountBuilds(ctx)
	if err != nil {
		return err
	}
	schema, err := store.GetMigrationVersion()
	if err != nil {
		return err
	}

	r.Header(1, "Build History")
	r.Printf("State: %s (schema v%d)\n", store.Path(), schema)
	r.Printf("Showing %d of %d builds\n\n", len(builds), total)

	t := table.NewWriter()
	t.SetOutputMirror(r.Writer())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"ID", "Source", "Target", "Status", "Duration", "Started"})
	for _, b := range builds {
		t.AppendRow(table.Row{
			shortID(b.ID),
			b.Source,
			b.Target,
			string(b.Status),
			durationCell(b),
			b.StartedAt.Local().Format(time.DateTime),
		})
	}
	t.Render()
	return nil
}

// shortID abbreviates a uuid for table display. The JSON listing keeps
// the full id, and the detail view accepts the prefix.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func durationCell(b *state.Build) string {
	if b.CompletedAt == nil {
		return "-"
	}
	return fmt.Sprintf("%dms", b.DurationMS)
}
