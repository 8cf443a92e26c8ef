package state

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store := NewSQLiteStore(nil)
	if err := store.Open(filepath.Join(t.TempDir(), "state.db")); err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	if err := store.Migrate(); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testBuild(started time.Time) *Build {
	return &Build{
		Source:       "rules.talkpp",
		Output:       "rules.rs",
		Target:       "rust",
		Optimization: "debug",
		Debug:        true,
		StartedAt:    started,
	}
}

func TestSQLiteStore_OpenClose(t *testing.T) {
	store := NewSQLiteStore(nil)

	if err := store.Open(":memory:"); err != nil {
		t.Fatalf("failed to open in-memory store: %v", err)
	}

	if err := store.Close(); err != nil {
		t.Fatalf("failed to close store: %v", err)
	}
}

func TestSQLiteStore_OpenCreatesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".talkpp", "state.db")

	store := NewSQLiteStore(nil)
	if err := store.Open(path); err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(filepath.Dir(path)); err != nil {
		t.Errorf("state directory was not created: %v", err)
	}
	if store.Path() != path {
		t.Errorf("expected path %q, got %q", path, store.Path())
	}
}

func TestSQLiteStore_Migrate(t *testing.T) {
	store := setupTestStore(t)

	// Verify the builds table exists by querying it
	rows, err := store.db.Query("SELECT 1 FROM builds LIMIT 1")
	if err != nil {
		t.Fatalf("builds table does not exist: %v", err)
	}
	rows.Close()

	version, err := store.GetMigrationVersion()
	if err != nil {
		t.Fatalf("failed to get migration version: %v", err)
	}
	if version < 1 {
		t.Errorf("expected migration version >= 1, got %d", version)
	}
}

func TestSQLiteStore_InMemory(t *testing.T) {
	ctx := context.Background()

	store := NewSQLiteStore(nil)
	if err := store.Open(":memory:"); err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	defer store.Close()

	if err := store.Migrate(); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	if err := store.RecordBuild(ctx, testBuild(time.Now().UTC())); err != nil {
		t.Fatalf("failed to record build: %v", err)
	}

	count, err := store.CountBuilds(ctx)
	if err != nil {
		t.Fatalf("failed to count builds: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 build, got %d", count)
	}
}

func TestSQLiteStore_RecordAndGetBuild(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	build := testBuild(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	if err := store.RecordBuild(ctx, build); err != nil {
		t.Fatalf("failed to record build: %v", err)
	}
	if build.ID == "" {
		t.Fatal("build ID should have been assigned")
	}
	if build.Status != BuildStatusRunning {
		t.Errorf("expected status %q, got %q", BuildStatusRunning, build.Status)
	}

	got, err := store.GetBuild(ctx, build.ID)
	if err != nil {
		t.Fatalf("failed to get build: %v", err)
	}

	if got.Source != "rules.talkpp" {
		t.Errorf("expected source 'rules.talkpp', got %q", got.Source)
	}
	if got.Output != "rules.rs" {
		t.Errorf("expected output 'rules.rs', got %q", got.Output)
	}
	if got.Target != "rust" {
		t.Errorf("expected target 'rust', got %q", got.Target)
	}
	if got.Optimization != "debug" {
		t.Errorf("expected optimization 'debug', got %q", got.Optimization)
	}
	if !got.Debug {
		t.Error("expected debug flag to round-trip as true")
	}
	if got.Status != BuildStatusRunning {
		t.Errorf("expected status %q, got %q", BuildStatusRunning, got.Status)
	}
	if got.Error != "" {
		t.Errorf("expected empty error, got %q", got.Error)
	}
	if !got.StartedAt.Equal(build.StartedAt) {
		t.Errorf("expected started_at %v, got %v", build.StartedAt, got.StartedAt)
	}
	if got.CompletedAt != nil {
		t.Errorf("running build should have no completed_at, got %v", got.CompletedAt)
	}
}

func TestSQLiteStore_RecordBuildFillsDefaults(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	build := testBuild(time.Time{})
	if err := store.RecordBuild(ctx, build); err != nil {
		t.Fatalf("failed to record build: %v", err)
	}

	if build.ID == "" {
		t.Error("build ID should have been assigned")
	}
	if build.StartedAt.IsZero() {
		t.Error("started_at should have been assigned")
	}
	if since := time.Since(build.StartedAt); since < 0 || since > time.Minute {
		t.Errorf("started_at %v is not recent", build.StartedAt)
	}
	if build.Status != BuildStatusRunning {
		t.Errorf("expected status %q, got %q", BuildStatusRunning, build.Status)
	}
}

func TestSQLiteStore_CompleteBuildSuccess(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	build := testBuild(time.Now().UTC().Add(-50 * time.Millisecond))
	if err := store.RecordBuild(ctx, build); err != nil {
		t.Fatalf("failed to record build: %v", err)
	}

	if err := store.CompleteBuild(ctx, build.ID, BuildStatusSuccess, ""); err != nil {
		t.Fatalf("failed to complete build: %v", err)
	}

	got, err := store.GetBuild(ctx, build.ID)
	if err != nil {
		t.Fatalf("failed to get build: %v", err)
	}
	if got.Status != BuildStatusSuccess {
		t.Errorf("expected status %q, got %q", BuildStatusSuccess, got.Status)
	}
	if got.CompletedAt == nil {
		t.Fatal("completed build should have completed_at")
	}
	if got.CompletedAt.Before(got.StartedAt) {
		t.Errorf("completed_at %v is before started_at %v", got.CompletedAt, got.StartedAt)
	}
	if got.DurationMS < 0 {
		t.Errorf("expected non-negative duration, got %d", got.DurationMS)
	}
	if got.Error != "" {
		t.Errorf("successful build should have no error, got %q", got.Error)
	}
}

func TestSQLiteStore_CompleteBuildFailed(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	build := testBuild(time.Now().UTC())
	build.Output = ""
	if err := store.RecordBuild(ctx, build); err != nil {
		t.Fatalf("failed to record build: %v", err)
	}

	msg := "lexical error at position 3: invalid token: '@'"
	if err := store.CompleteBuild(ctx, build.ID, BuildStatusFailed, msg); err != nil {
		t.Fatalf("failed to complete build: %v", err)
	}

	got, err := store.GetBuild(ctx, build.ID)
	if err != nil {
		t.Fatalf("failed to get build: %v", err)
	}
	if got.Status != BuildStatusFailed {
		t.Errorf("expected status %q, got %q", BuildStatusFailed, got.Status)
	}
	if got.Error != msg {
		t.Errorf("expected error %q, got %q", msg, got.Error)
	}
	if got.Output != "" {
		t.Errorf("expected empty output, got %q", got.Output)
	}
}

func TestSQLiteStore_CompleteBuildNotFound(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	err := store.CompleteBuild(ctx, "no-such-id", BuildStatusSuccess, "")
	if err == nil {
		t.Fatal("expected error for unknown build ID")
	}
	if !strings.Contains(err.Error(), "build not found") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestSQLiteStore_RecordBuildDuplicateID(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	first := testBuild(time.Now().UTC())
	first.ID = "dup"
	if err := store.RecordBuild(ctx, first); err != nil {
		t.Fatalf("failed to record build: %v", err)
	}

	second := testBuild(time.Now().UTC())
	second.ID = "dup"
	err := store.RecordBuild(ctx, second)
	if err == nil {
		t.Fatal("expected primary key violation")
	}
	if !strings.Contains(err.Error(), "failed to record build") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestSQLiteStore_GetBuildNotFound(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	_, err := store.GetBuild(ctx, "no-such-id")
	if err == nil {
		t.Fatal("expected error for unknown build ID")
	}
	if !strings.Contains(err.Error(), "build not found") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestSQLiteStore_GetBuildByPrefix(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	build := testBuild(time.Now().UTC())
	if err := store.RecordBuild(ctx, build); err != nil {
		t.Fatalf("failed to record build: %v", err)
	}

	got, err := store.GetBuild(ctx, build.ID[:8])
	if err != nil {
		t.Fatalf("failed to get build by prefix: %v", err)
	}
	if got.ID != build.ID {
		t.Errorf("expected build %s, got %s", build.ID, got.ID)
	}

	if _, err := store.GetBuild(ctx, build.ID[:3]); err == nil {
		t.Error("expected error for a three-character prefix")
	}
}

func TestSQLiteStore_GetBuildAmbiguousPrefix(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	for _, id := range []string{"aaaa-one", "aaaa-two"} {
		build := testBuild(time.Now().UTC())
		build.ID = id
		if err := store.RecordBuild(ctx, build); err != nil {
			t.Fatalf("failed to record build %s: %v", id, err)
		}
	}

	_, err := store.GetBuild(ctx, "aaaa")
	if err == nil {
		t.Fatal("expected error for ambiguous prefix")
	}
	if !strings.Contains(err.Error(), "ambiguous build id") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestSQLiteStore_ListBuildsOrderAndLimit(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	var ids []string
	for i := 0; i < 3; i++ {
		build := testBuild(base.Add(time.Duration(i) * time.Minute))
		if err := store.RecordBuild(ctx, build); err != nil {
			t.Fatalf("failed to record build %d: %v", i, err)
		}
		ids = append(ids, build.ID)
	}

	builds, err := store.ListBuilds(ctx, 0)
	if err != nil {
		t.Fatalf("failed to list builds: %v", err)
	}
	if len(builds) != 3 {
		t.Fatalf("expected 3 builds, got %d", len(builds))
	}
	if builds[0].ID != ids[2] || builds[1].ID != ids[1] || builds[2].ID != ids[0] {
		t.Error("builds are not ordered newest first")
	}

	limited, err := store.ListBuilds(ctx, 2)
	if err != nil {
		t.Fatalf("failed to list builds with limit: %v", err)
	}
	if len(limited) != 2 {
		t.Fatalf("expected 2 builds, got %d", len(limited))
	}
	if limited[0].ID != ids[2] {
		t.Error("limited listing should start with the newest build")
	}
}

func TestSQLiteStore_PruneBuilds(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	var ids []string
	for i := 0; i < 5; i++ {
		build := testBuild(base.Add(time.Duration(i) * time.Minute))
		if err := store.RecordBuild(ctx, build); err != nil {
			t.Fatalf("failed to record build %d: %v", i, err)
		}
		ids = append(ids, build.ID)
	}

	removed, err := store.PruneBuilds(ctx, 2)
	if err != nil {
		t.Fatalf("failed to prune builds: %v", err)
	}
	if removed != 3 {
		t.Errorf("expected 3 builds removed, got %d", removed)
	}

	count, err := store.CountBuilds(ctx)
	if err != nil {
		t.Fatalf("failed to count builds: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 builds after prune, got %d", count)
	}

	remaining, err := store.ListBuilds(ctx, 0)
	if err != nil {
		t.Fatalf("failed to list builds: %v", err)
	}
	if remaining[0].ID != ids[4] || remaining[1].ID != ids[3] {
		t.Error("prune kept the wrong builds")
	}
}

func TestSQLiteStore_NotOpened(t *testing.T) {
	ctx := context.Background()
	store := NewSQLiteStore(nil)

	if err := store.RecordBuild(ctx, &Build{}); err == nil {
		t.Error("RecordBuild should fail when the database is not opened")
	}
	if err := store.CompleteBuild(ctx, "x", BuildStatusSuccess, ""); err == nil {
		t.Error("CompleteBuild should fail when the database is not opened")
	}
	if _, err := store.GetBuild(ctx, "x"); err == nil {
		t.Error("GetBuild should fail when the database is not opened")
	}
	if _, err := store.ListBuilds(ctx, 0); err == nil {
		t.Error("ListBuilds should fail when the database is not opened")
	}
	if _, err := store.CountBuilds(ctx); err == nil {
		t.Error("CountBuilds should fail when the database is not opened")
	}
	if _, err := store.PruneBuilds(ctx, 1); err == nil {
		t.Error("PruneBuilds should fail when the database is not opened")
	}
	if err := store.Migrate(); err == nil {
		t.Error("Migrate should fail when the database is not opened")
	}
	if _, err := store.GetMigrationVersion(); err == nil {
		t.Error("GetMigrationVersion should fail when the database is not opened")
	}
	if err := store.Close(); err != nil {
		t.Errorf("Close on an unopened store should be a no-op, got %v", err)
	}
}

func TestMigrateWithDB(t *testing.T) {
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "raw.db"))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	if err := MigrateWithDB(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	var name string
	err = db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'builds'`).Scan(&name)
	if err != nil {
		t.Fatalf("builds table missing after migration: %v", err)
	}
}
