package state

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// NewSQLiteStore creates a new SQLite state store instance. A nil logger
// discards all diagnostics.
func NewSQLiteStore(logger *slog.Logger) *SQLiteStore {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SQLiteStore{logger: logger}
}

// NewSQLiteStoreWithDB wraps an existing database connection. Useful for
// testing or when the connection comes from elsewhere.
func NewSQLiteStoreWithDB(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db, logger: slog.New(slog.DiscardHandler)}
}

// Open opens a connection to the SQLite database at path, creating
// parent directories as needed. Use ":memory:" for an in-memory
// database.
func (s *SQLiteStore) Open(path string) error {
	dsn := path
	if path == ":memory:" {
		dsn = ":memory:"
	} else {
		if dir := filepath.Dir(path); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("failed to create state directory: %w", err)
			}
		}
		// Enable foreign keys and WAL mode for better performance
		dsn = fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}

	if path == ":memory:" {
		// Each new pool connection to :memory: gets its own empty
		// database, so keep a single connection.
		db.SetMaxOpenConns(1)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	s.db = db
	s.path = path
	s.logger.Debug("opened state database", "path", path)
	return nil
}

// Close closes the SQLite database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Path returns the database path this store was opened with.
func (s *SQLiteStore) Path() string {
	return s.path
}

// generateID creates a new UUID.
func generateID() string {
	return uuid.New().String()
}

// --- Build operations ---

// RecordBuild inserts a build in the running state. A zero ID gets a
// fresh UUID, a zero StartedAt gets the current time in UTC, and an
// empty status defaults to running.
func (s *SQLiteStore) RecordBuild(ctx context.Context, build *Build) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	if build.ID == "" {
		build.ID = generateID()
	}
	if build.StartedAt.IsZero() {
		build.StartedAt = time.Now().UTC()
	}
	if build.Status == "" {
		build.Status = BuildStatusRunning
	}

	var errMsg *string
	if build.Error != "" {
		errMsg = &build.Error
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO builds (id, source, output, target, optimization, debug, status, error, started_at, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		build.ID, build.Source, build.Output, build.Target, build.Optimization, build.Debug, build.Status, errMsg, build.StartedAt, build.DurationMS,
	)
	if err != nil {
		return fmt.Errorf("failed to record build: %w", err)
	}

	s.logger.DebugContext(ctx, "recorded build", "id", build.ID, "source", build.Source, "target", build.Target)
	return nil
}

// CompleteBuild marks a build as finished with the given status and
// stores the elapsed time since it started.
func (s *SQLiteStore) CompleteBuild(ctx context.Context, id string, status BuildStatus, errMsg string) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	now := time.Now().UTC()
	var errorPtr *string
	if errMsg != "" {
		errorPtr = &errMsg
	}

	var startedAt time.Time
	err := s.db.QueryRowContext(ctx, `SELECT started_at FROM builds WHERE id = ?`, id).Scan(&startedAt)
	if err == sql.ErrNoRows {
		return fmt.Errorf("build not found: %s", id)
	}
	if err != nil {
		return fmt.Errorf("failed to get build start time: %w", err)
	}

	durationMS := now.Sub(startedAt).Milliseconds()

	result, err := s.db.ExecContext(ctx,
		`UPDATE builds SET status = ?, completed_at = ?, error = ?, duration_ms = ? WHERE id = ?`,
		status, now, errorPtr, durationMS, id,
	)
	if err != nil {
		return fmt.Errorf("failed to complete build: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("build not found: %s", id)
	}

	s.logger.DebugContext(ctx, "completed build", "id", id, "status", status, "duration_ms", durationMS)
	return nil
}

// GetBuild retrieves a build by ID. A unique prefix of at least four
// characters is accepted in place of the full id.
func (s *SQLiteStore) GetBuild(ctx context.Context, id string) (*Build, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	build := &Build{}
	var completedAt sql.NullTime
	var errMsg sql.NullString

	err := s.db.QueryRowContext(ctx,
		`SELECT id, source, output, target, optimization, debug, status, error, started_at, completed_at, duration_ms
		 FROM builds WHERE id = ?`,
		id,
	).Scan(&build.ID, &build.Source, &build.Output, &build.Target, &build.Optimization, &build.Debug, &build.Status, &errMsg, &build.StartedAt, &completedAt, &build.DurationMS)

	if err == sql.ErrNoRows {
		return s.getBuildByPrefix(ctx, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get build: %w", err)
	}

	if completedAt.Valid {
		build.CompletedAt = &completedAt.Time
	}
	if errMsg.Valid {
		build.Error = errMsg.String
	}

	return build, nil
}

// getBuildByPrefix resolves an abbreviated build id. The prefix must
// match exactly one record.
func (s *SQLiteStore) getBuildByPrefix(ctx context.Context, prefix string) (*Build, error) {
	if len(prefix) < 4 || len(prefix) >= 36 {
		return nil, fmt.Errorf("build not found: %s", prefix)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source, output, target, optimization, debug, status, error, started_at, completed_at, duration_ms
		 FROM builds WHERE id LIKE ? || '%' LIMIT 2`,
		prefix,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get build: %w", err)
	}
	defer rows.Close()

	var builds []*Build
	for rows.Next() {
		build := &Build{}
		var completedAt sql.NullTime
		var errMsg sql.NullString

		if err := rows.Scan(&build.ID, &build.Source, &build.Output, &build.Target, &build.Optimization, &build.Debug, &build.Status, &errMsg, &build.StartedAt, &completedAt, &build.DurationMS); err != nil {
			return nil, fmt.Errorf("failed to scan build: %w", err)
		}
		if completedAt.Valid {
			build.CompletedAt = &completedAt.Time
		}
		if errMsg.Valid {
			build.Error = errMsg.String
		}
		builds = append(builds, build)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to get build: %w", err)
	}

	switch len(builds) {
	case 0:
		return nil, fmt.Errorf("build not found: %s", prefix)
	case 1:
		return builds[0], nil
	}
	return nil, fmt.Errorf("ambiguous build id: %s", prefix)
}

// ListBuilds returns recorded builds ordered newest first. A limit of
// zero or less returns all builds.
func (s *SQLiteStore) ListBuilds(ctx context.Context, limit int) ([]*Build, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	query := `SELECT id, source, output, target, optimization, debug, status, error, started_at, completed_at, duration_ms
		 FROM builds ORDER BY started_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list builds: %w", err)
	}
	defer rows.Close()

	var builds []*Build
	for rows.Next() {
		build := &Build{}
		var completedAt sql.NullTime
		var errMsg sql.NullString

		err := rows.Scan(&build.ID, &build.Source, &build.Output, &build.Target, &build.Optimization, &build.Debug, &build.Status, &errMsg, &build.StartedAt, &completedAt, &build.DurationMS)
		if err != nil {
			return nil, fmt.Errorf("failed to scan build: %w", err)
		}

		if completedAt.Valid {
			build.CompletedAt = &completedAt.Time
		}
		if errMsg.Valid {
			build.Error = errMsg.String
		}
		builds = append(builds, build)
	}

	return builds, rows.Err()
}

// CountBuilds returns the total number of recorded builds.
func (s *SQLiteStore) CountBuilds(ctx context.Context) (int, error) {
	if s.db == nil {
		return 0, fmt.Errorf("database not opened")
	}

	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM builds`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count builds: %w", err)
	}

	return count, nil
}

// PruneBuilds deletes all but the most recent keep builds and returns
// the number of rows removed.
func (s *SQLiteStore) PruneBuilds(ctx context.Context, keep int) (int64, error) {
	if s.db == nil {
		return 0, fmt.Errorf("database not opened")
	}
	if keep < 0 {
		keep = 0
	}

	result, err := s.db.ExecContext(ctx,
		`DELETE FROM builds WHERE id NOT IN (
			SELECT id FROM builds ORDER BY started_at DESC, id LIMIT ?
		 )`,
		keep,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to prune builds: %w", err)
	}

	removed, _ := result.RowsAffected()
	if removed > 0 {
		s.logger.DebugContext(ctx, "pruned builds", "removed", removed, "kept", keep)
	}
	return removed, nil
}

// Ensure SQLiteStore implements the Store interface
var _ Store = (*SQLiteStore)(nil)
