package journal_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"jellyclean/internal/journal"
	"jellyclean/internal/testsupport"
)

func TestAppendAndRecent(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithJournal())
	j := testsupport.MustOpenJournal(t, cfg)
	ctx := context.Background()

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	first := journal.Record{
		RunID:      "run-a",
		RecordedAt: at,
		Path:       "/media/The Movie (2000)",
		Kind:       "directory",
		Canonical:  "The.Movie.2000",
		Target:     "/media/The.Movie.2000",
		Status:     "cleaned",
		Mutations:  4,
		Subtitles:  2,
		Removed:    1,
	}
	id, err := j.Append(ctx, first)
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if id == 0 {
		t.Fatal("expected row id")
	}
	if _, err := j.Append(ctx, journal.Record{RunID: "run-b", Path: "/media/junk", Kind: "directory", Status: "skipped", Error: "bad name", TVCandidate: true}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	recent, err := j.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recent))
	}
	if recent[0].RunID != "run-b" || !recent[0].TVCandidate || recent[0].Error != "bad name" {
		t.Fatalf("expected newest first, got %+v", recent[0])
	}
	if recent[0].Canonical != "" {
		t.Fatalf("expected empty canonical for NULL column, got %q", recent[0].Canonical)
	}
	got := recent[1]
	if !got.RecordedAt.Equal(at) {
		t.Fatalf("recorded_at mismatch: %v", got.RecordedAt)
	}
	got.ID = 0
	got.RecordedAt = first.RecordedAt
	if got != first {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, first)
	}

	limited, err := j.Recent(ctx, 1)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(limited) != 1 {
		t.Fatalf("expected limit to apply, got %d", len(limited))
	}

	run, err := j.Run(ctx, "run-a")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(run) != 1 || run[0].Path != first.Path {
		t.Fatalf("unexpected run records %+v", run)
	}
}

func TestAppendRequiresRunIDAndPath(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	j := testsupport.MustOpenJournal(t, cfg)
	ctx := context.Background()

	if _, err := j.Append(ctx, journal.Record{Path: "/x"}); err == nil {
		t.Fatal("expected error without run id")
	}
	if _, err := j.Append(ctx, journal.Record{RunID: "r"}); err == nil {
		t.Fatal("expected error without path")
	}
}

func TestReopenKeepsHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history.db")
	ctx := context.Background()

	j, err := journal.Open(ctx, path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if _, err := j.Append(ctx, journal.Record{RunID: "r", Path: "/p", Kind: "video", Status: "cleaned"}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := j.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := journal.Open(ctx, path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()
	records, err := reopened.Recent(ctx, 0)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected persisted record, got %d", len(records))
	}
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	if _, err := journal.Open(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestSchemaMismatchIsReported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()

	j, err := journal.Open(ctx, path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	_ = j.Close()

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	if _, err := db.ExecContext(ctx, "UPDATE schema_version SET version = 99"); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	_ = db.Close()

	_, err = journal.Open(ctx, path)
	if !errors.Is(err, journal.ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}
