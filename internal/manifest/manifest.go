// Package manifest writes a YAML record of what a build produced, so
// other tooling can discover generated artifacts without re-running the
// compiler.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Filename is the manifest file written next to build outputs.
const Filename = "talkpp.manifest.yaml"

// Manifest describes a single build invocation and its artifacts.
type Manifest struct {
	Version      int        `yaml:"version"`
	BuildID      string     `yaml:"build_id"`
	GeneratedAt  time.Time  `yaml:"generated_at"`
	Compiler     string     `yaml:"compiler"`
	Target       string     `yaml:"target"`
	Optimization string     `yaml:"optimization"`
	Debug        bool       `yaml:"debug"`
	Artifacts    []Artifact `yaml:"artifacts"`
}

// Artifact is one source-to-output mapping.
type Artifact struct {
	Source string `yaml:"source"`
	Output string `yaml:"output"`
	Size   int    `yaml:"size_bytes"`
}

// New returns a manifest stamped with a fresh build ID and the current
// time in UTC, truncated to whole seconds so the file stays readable.
func New(compiler, target, optimization string, debug bool) *Manifest {
	return &Manifest{
		Version:      1,
		BuildID:      uuid.New().String(),
		GeneratedAt:  time.Now().UTC().Truncate(time.Second),
		Compiler:     compiler,
		Target:       target,
		Optimization: optimization,
		Debug:        debug,
	}
}

// AddArtifact appends a source-to-output entry.
func (m *Manifest) AddArtifact(source, output string, size int) {
	m.Artifacts = append(m.Artifacts, Artifact{
		Source: source,
		Output: output,
		Size:   size,
	})
}

// Write renders the manifest as YAML into dir and returns the path of
// the written file.
func (m *Manifest) Write(dir string) (string, error) {
	data, err := yaml.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("failed to marshal manifest: %w", err)
	}

	path := filepath.Join(dir, Filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write manifest: %w", err)
	}

	return path, nil
}

// Load reads a manifest file from path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}

	return &m, nil
}
