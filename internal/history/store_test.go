package history_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"tilestats/internal/history"
)

func openStore(t *testing.T) *history.Store {
	t.Helper()
	store, err := history.Open(context.Background(), filepath.Join(t.TempDir(), "state", "history.db"))
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRecordAndGet(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	started := time.Date(2017, 10, 6, 10, 0, 0, 0, time.UTC)
	run := &history.Run{
		Input:        "tornik-map-20171006.10000.tsv",
		Output:       "tornik-map-20171006.10000.output",
		Policy:       "max-merge",
		Lines:        10000,
		MapRequests:  9800,
		SkippedLines: 150,
		IgnoredLines: 50,
		Records:      4,
		LongestRun:   37,
		StartedAt:    started,
		FinishedAt:   started.Add(1500 * time.Millisecond),
	}
	if err := store.Record(ctx, run); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if run.ID == "" {
		t.Fatal("expected run ID to be assigned")
	}

	fetched, err := store.Get(ctx, run.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if *fetched != *run {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", *fetched, *run)
	}
	if fetched.Duration() != 1500*time.Millisecond {
		t.Fatalf("unexpected duration %s", fetched.Duration())
	}

	byPrefix, err := store.Get(ctx, run.ID[:8])
	if err != nil {
		t.Fatalf("Get by prefix failed: %v", err)
	}
	if byPrefix.ID != run.ID {
		t.Fatalf("prefix lookup returned %s", byPrefix.ID)
	}
}

func TestGetUnknownRun(t *testing.T) {
	store := openStore(t)
	if _, err := store.Get(context.Background(), "does-not-exist"); !errors.Is(err, history.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListNewestFirstWithLimit(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		run := &history.Run{
			ID:         history.NewRunID(),
			Input:      "in.tsv",
			Output:     "out.tsv",
			Policy:     "append",
			Records:    i,
			StartedAt:  base.Add(time.Duration(i) * time.Hour),
			FinishedAt: base.Add(time.Duration(i)*time.Hour + time.Second),
		}
		if err := store.Record(ctx, run); err != nil {
			t.Fatalf("Record %d failed: %v", i, err)
		}
	}

	runs, err := store.List(ctx, 2)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].Records != 2 || runs[1].Records != 1 {
		t.Fatalf("expected newest first, got %+v", runs)
	}

	all, err := store.List(ctx, 0)
	if err != nil {
		t.Fatalf("List all failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(all))
	}
}

func TestListOrdersSubSecondRuns(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	base := time.Date(2017, 10, 6, 10, 0, 0, 0, time.UTC)
	runs := []*history.Run{
		{ID: "older", Input: "in.tsv", Output: "out.tsv", Policy: "max-merge", StartedAt: base, FinishedAt: base},
		{ID: "newer", Input: "in.tsv", Output: "out.tsv", Policy: "max-merge", StartedAt: base.Add(500 * time.Millisecond), FinishedAt: base.Add(time.Second)},
	}
	for _, run := range runs {
		if err := store.Record(ctx, run); err != nil {
			t.Fatalf("Record %s failed: %v", run.ID, err)
		}
	}

	listed, err := store.List(ctx, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(listed) != 2 || listed[0].ID != "newer" || listed[1].ID != "older" {
		t.Fatalf("expected newer before older, got %+v", listed)
	}
	if !listed[0].StartedAt.Equal(runs[1].StartedAt) {
		t.Fatalf("started_at round trip: got %s want %s", listed[0].StartedAt, runs[1].StartedAt)
	}

	latest, err := store.List(ctx, 1)
	if err != nil {
		t.Fatalf("List with limit failed: %v", err)
	}
	if len(latest) != 1 || latest[0].ID != "newer" {
		t.Fatalf("expected limit to keep the newest run, got %+v", latest)
	}
}

func TestClear(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if err := store.Record(ctx, &history.Run{Input: "a", Output: "b", Policy: "append", StartedAt: time.Now(), FinishedAt: time.Now()}); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}
	removed, err := store.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if removed != 2 {
		t.Fatalf("expected 2 removed, got %d", removed)
	}
	runs, err := store.List(ctx, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(runs) != 0 {
		t.Fatalf("expected empty history, got %+v", runs)
	}
}

func TestReopenKeepsRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()

	store, err := history.Open(ctx, path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := store.Record(ctx, &history.Run{Input: "a", Output: "b", Policy: "max-merge", StartedAt: time.Now(), FinishedAt: time.Now()}); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := history.Open(ctx, path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()
	runs, err := reopened.List(ctx, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run after reopen, got %d", len(runs))
	}
}

func TestOpenRejectsForeignSchemaVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()

	store, err := history.Open(ctx, path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA user_version = 7"); err != nil {
		t.Fatalf("bump user_version: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("close raw db: %v", err)
	}

	if _, err := history.Open(ctx, path); !errors.Is(err, history.ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}
