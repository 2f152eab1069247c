package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"sheaf/internal/config"
)

// Store manages merge run persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Record summarizes one completed merge run.
type Record struct {
	ID                string
	StartedAt         time.Time
	FinishedAt        time.Time
	InputDir          string
	OutputPath        string
	Mode              string
	Files             int64
	RowsIn            int64
	DuplicatesSkipped int64
	RowsOut           int64
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func (s *Store) execWithRetry(ctx context.Context, query string, args ...any) (sql.Result, error) {
	ctx = ensureContext(ctx)
	var (
		res     sql.Result
		execErr error
	)
	if err := retryOnBusy(ctx, func() error {
		res, execErr = s.db.ExecContext(ctx, query, args...)
		return execErr
	}); err != nil {
		return nil, err
	}
	return res, nil
}

// Open initializes or connects to the history database.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := cfg.HistoryDBPath()
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the location of the backing database file.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// RecordMerge inserts a completed run summary. Records without an ID or
// timestamps get them assigned here.
func (s *Store) RecordMerge(ctx context.Context, rec *Record) error {
	if rec == nil {
		return errors.New("record is nil")
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if rec.StartedAt.IsZero() {
		rec.StartedAt = now
	}
	if rec.FinishedAt.IsZero() {
		rec.FinishedAt = now
	}

	_, err := s.execWithRetry(
		ctx,
		`INSERT INTO merge_runs (
            id, started_at, finished_at, input_dir, output_path, mode,
            files, rows_in, duplicates_skipped, rows_out
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.StartedAt.UTC().Format(time.RFC3339Nano),
		rec.FinishedAt.UTC().Format(time.RFC3339Nano),
		rec.InputDir,
		rec.OutputPath,
		rec.Mode,
		rec.Files,
		rec.RowsIn,
		rec.DuplicatesSkipped,
		rec.RowsOut,
	)
	if err != nil {
		return fmt.Errorf("insert merge run: %w", err)
	}
	return nil
}

// RecentMerges returns up to limit runs, newest first. A limit <= 0 falls
// back to 20.
func (s *Store) RecentMerges(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}

	// rowid follows insert order, which is finish order for merge runs.
	rows, err := s.db.QueryContext(
		ensureContext(ctx),
		`SELECT `+runColumns+` FROM merge_runs ORDER BY rowid DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query merge runs: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan merge run: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate merge runs: %w", err)
	}
	return records, nil
}

// Clear removes all recorded runs and reports how many were deleted.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(ctx, "DELETE FROM merge_runs")
	if err != nil {
		return 0, fmt.Errorf("clear merge runs: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return affected, nil
}

const runColumns = "id, started_at, finished_at, input_dir, output_path, mode, files, rows_in, duplicates_skipped, rows_out"

func scanRun(scanner interface{ Scan(dest ...any) error }) (Record, error) {
	var (
		id          string
		startedRaw  sql.NullString
		finishedRaw sql.NullString
		inputDir    sql.NullString
		outputPath  sql.NullString
		mode        sql.NullString
		files       sql.NullInt64
		rowsIn      sql.NullInt64
		duplicates  sql.NullInt64
		rowsOut     sql.NullInt64
	)

	if err := scanner.Scan(
		&id,
		&startedRaw,
		&finishedRaw,
		&inputDir,
		&outputPath,
		&mode,
		&files,
		&rowsIn,
		&duplicates,
		&rowsOut,
	); err != nil {
		return Record{}, err
	}

	rec := Record{
		ID:                id,
		InputDir:          inputDir.String,
		OutputPath:        outputPath.String,
		Mode:              mode.String,
		Files:             files.Int64,
		RowsIn:            rowsIn.Int64,
		DuplicatesSkipped: duplicates.Int64,
		RowsOut:           rowsOut.Int64,
	}
	if started, err := parseTimeString(startedRaw.String); err == nil {
		rec.StartedAt = started
	}
	if finished, err := parseTimeString(finishedRaw.String); err == nil {
		rec.FinishedAt = finished
	}
	return rec, nil
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}
