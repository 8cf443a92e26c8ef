package commands

import (
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/talkpp-lang/talkpp/internal/cli/output"
	"github.com/talkpp-lang/talkpp/pkg/compiler"
)

// NewInfoCommand creates the info command.
func NewInfoCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show supported targets and service integrations",
		Long: `Display the compiler version, the supported target languages with
their aliases and output extensions, and the service integrations the
backends generate stubs for.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInfo(cmd, version)
		},
	}
}

type targetInfo struct {
	Name      string   `json:"name"`
	Aliases   []string `json:"aliases,omitempty"`
	Extension string   `json:"extension"`
}

type serviceInfo struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

func runInfo(cmd *cobra.Command, version string) error {
	c := NewCommandContext(cmd)

	targets := make([]targetInfo, 0, len(compiler.Targets()))
	for _, t := range compiler.Targets() {
		targets = append(targets, targetInfo{
			Name:      string(t),
			Aliases:   compiler.TargetAliases(t),
			Extension: TargetExtension(t),
		})
	}

	services := make([]serviceInfo, 0, len(compiler.Services()))
	for _, svc := range compiler.Services() {
		services = append(services, serviceInfo{Name: svc.Name, Kind: svc.Kind})
	}

	levels := []string{
		string(compiler.OptimizationDebug),
		string(compiler.OptimizationRelease),
		string(compiler.OptimizationSize),
	}

	if c.Renderer.EffectiveMode() == output.ModeJSON {
		return c.Renderer.JSON(struct {
			Version       string        `json:"version"`
			Targets       []targetInfo  `json:"targets"`
			Optimizations []string      `json:"optimizations"`
			Services      []serviceInfo `json:"services"`
		}{Version: version, Targets: targets, Optimizations: levels, Services: services})
	}

	r := c.Renderer
	r.Header(1, "Talk++ Compiler")
	r.Printf("Version: %s\n", version)

	titleCaser := cases.Title(language.English)
	titled := make([]string, 0, len(levels))
	for _, level := range levels {
		titled = append(titled, titleCaser.String(level))
	}
	r.Printf("Optimization levels: %s\n", strings.Join(titled, ", "))
	r.Println("")

	r.Header(2, "Targets")
	t := table.NewWriter()
	t.SetOutputMirror(r.Writer())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Target", "Aliases", "Extension"})
	for _, target := range targets {
		t.AppendRow(table.Row{target.Name, strings.Join(target.Aliases, ", "), target.Extension})
	}
	t.Render()
	r.Println("")

	r.Header(2, "Service Integrations")
	st := table.NewWriter()
	st.SetOutputMirror(r.Writer())
	st.SetStyle(table.StyleLight)
	st.AppendHeader(table.Row{"Service", "Kind"})
	for _, svc := range services {
		st.AppendRow(table.Row{svc.Name, svc.Kind})
	}
	st.Render()

	return nil
}
