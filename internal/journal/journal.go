package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Record is one processed top-level entry.
type Record struct {
	ID          int64
	RunID       string
	RecordedAt  time.Time
	Path        string
	Kind        string
	Canonical   string
	Target      string
	Status      string
	Mutations   int
	Subtitles   int
	Removed     int
	TVCandidate bool
	Error       string
}

// Journal appends entry outcomes to an SQLite database.
type Journal struct {
	db   *sql.DB
	path string
}

// Open creates or connects to the journal database at path.
func Open(ctx context.Context, path string) (*Journal, error) {
	if path == "" {
		return nil, errors.New("journal path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create journal directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	j := &Journal{db: db, path: path}
	if err := j.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return j, nil
}

// Path returns the database file location.
func (j *Journal) Path() string {
	return j.path
}

// Close closes the underlying database connection.
func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	return j.db.Close()
}

// Append stores rec. RunID and Path are required; a zero RecordedAt is
// replaced with the current time.
func (j *Journal) Append(ctx context.Context, rec Record) (int64, error) {
	if rec.RunID == "" {
		return 0, errors.New("journal record missing run id")
	}
	if rec.Path == "" {
		return 0, errors.New("journal record missing path")
	}
	if rec.RecordedAt.IsZero() {
		rec.RecordedAt = time.Now()
	}

	res, err := j.db.ExecContext(ctx,
		`INSERT INTO entries (
            run_id, recorded_at, path, kind, canonical, target, status,
            mutations, subtitles, removed, tv_candidate, error_message
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID,
		rec.RecordedAt.UTC().Format(time.RFC3339Nano),
		rec.Path,
		rec.Kind,
		nullableString(rec.Canonical),
		nullableString(rec.Target),
		rec.Status,
		rec.Mutations,
		rec.Subtitles,
		rec.Removed,
		boolToInt(rec.TVCandidate),
		nullableString(rec.Error),
	)
	if err != nil {
		return 0, fmt.Errorf("insert entry: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// Recent returns up to limit records, newest first. A non-positive limit
// returns everything.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Record, error) {
	query := `SELECT id, run_id, recorded_at, path, kind, canonical, target, status,
        mutations, subtitles, removed, tv_candidate, error_message
        FROM entries ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	return j.query(ctx, query, args...)
}

// Run returns the records of one run in processing order.
func (j *Journal) Run(ctx context.Context, runID string) ([]Record, error) {
	return j.query(ctx, `SELECT id, run_id, recorded_at, path, kind, canonical, target, status,
        mutations, subtitles, removed, tv_candidate, error_message
        FROM entries WHERE run_id = ? ORDER BY id ASC`, runID)
}

func (j *Journal) query(ctx context.Context, query string, args ...any) ([]Record, error) {
	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	return records, nil
}

func scanRecord(rows *sql.Rows) (Record, error) {
	var (
		rec                      Record
		recordedAt               string
		canonical, target, errMs sql.NullString
		tv                       int
	)
	if err := rows.Scan(
		&rec.ID, &rec.RunID, &recordedAt, &rec.Path, &rec.Kind, &canonical, &target, &rec.Status,
		&rec.Mutations, &rec.Subtitles, &rec.Removed, &tv, &errMs,
	); err != nil {
		return Record{}, fmt.Errorf("scan entry: %w", err)
	}
	parsed, err := time.Parse(time.RFC3339Nano, recordedAt)
	if err != nil {
		return Record{}, fmt.Errorf("parse recorded_at %q: %w", recordedAt, err)
	}
	rec.RecordedAt = parsed
	rec.Canonical = canonical.String
	rec.Target = target.String
	rec.Error = errMs.String
	rec.TVCandidate = tv != 0
	return rec, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
