// Package state records compilation history for Talk++ using SQLite.
// Every build, successful or failed, is stored in a local database so
// the CLI can report what was compiled, when, and with which settings.
package state

import (
	"context"
	"time"
)

// BuildStatus describes the lifecycle of a recorded build.
type BuildStatus string

const (
	BuildStatusRunning BuildStatus = "running"
	BuildStatusSuccess BuildStatus = "success"
	BuildStatusFailed  BuildStatus = "failed"
)

// Build is a single recorded compilation.
type Build struct {
	ID           string
	Source       string // input path, or a pseudo-path such as "<stdin>" or "<repl>"
	Output       string // output path, empty when the result went to stdout
	Target       string
	Optimization string
	Debug        bool
	Status       BuildStatus
	Error        string // compiler error message for failed builds
	StartedAt    time.Time
	CompletedAt  *time.Time
	DurationMS   int64
}

// Store is the persistence interface for build history.
type Store interface {
	// RecordBuild inserts a build in the running state, assigning an ID
	// and start timestamp when the caller left them empty.
	RecordBuild(ctx context.Context, build *Build) error

	// CompleteBuild marks a build as finished with the given status and
	// stores its duration. errMsg is kept only for failed builds.
	CompleteBuild(ctx context.Context, id string, status BuildStatus, errMsg string) error

	// GetBuild retrieves a build by its full ID or a unique ID prefix.
	GetBuild(ctx context.Context, id string) (*Build, error)

	// ListBuilds returns builds ordered newest first. A limit of zero or
	// less returns all builds.
	ListBuilds(ctx context.Context, limit int) ([]*Build, error)

	// CountBuilds returns the total number of recorded builds.
	CountBuilds(ctx context.Context) (int, error)

	// PruneBuilds deletes all but the most recent keep builds and
	// returns the number of rows removed.
	PruneBuilds(ctx context.Context, keep int) (int64, error)

	// Close releases the underlying database connection.
	Close() error
}
