package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Store manages job history persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond

	// DefaultListLimit bounds List when no limit is given.
	DefaultListLimit = 20

	// timeLayout has fixed width so stored timestamps sort lexically.
	timeLayout = "2006-01-02T15:04:05.000000000Z"
)

const entryColumns = "id, job_id, audio_path, output_dir, semitones, split, format, outcome, failure_kind, failed_stage, error_message, deliverables_json, stem_failures_json, removed_count, cleanup_error_count, started_at, finished_at"

// Open creates or connects to the history database at path.
func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("history database path required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record inserts a finished job and returns its row id.
func (s *Store) Record(ctx context.Context, entry Entry) (int64, error) {
	if strings.TrimSpace(entry.JobID) == "" {
		return 0, errors.New("job id required")
	}
	deliverables, err := marshalOptional(entry.Deliverables, len(entry.Deliverables))
	if err != nil {
		return 0, fmt.Errorf("marshal deliverables: %w", err)
	}
	stemFailures, err := marshalOptional(entry.StemFailures, len(entry.StemFailures))
	if err != nil {
		return 0, fmt.Errorf("marshal stem failures: %w", err)
	}

	var res sql.Result
	err = retryOnBusy(ctx, func() error {
		var execErr error
		res, execErr = s.db.ExecContext(ctx,
			`INSERT INTO jobs (
                job_id, audio_path, output_dir, semitones, split, format, outcome,
                failure_kind, failed_stage, error_message, deliverables_json,
                stem_failures_json, removed_count, cleanup_error_count, started_at, finished_at
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			entry.JobID,
			entry.AudioPath,
			entry.OutputDir,
			entry.Semitones,
			boolToInt(entry.Split),
			nullableString(entry.Format),
			entry.Outcome,
			nullableString(entry.FailureKind),
			nullableString(entry.FailedStage),
			nullableString(entry.ErrorMessage),
			deliverables,
			stemFailures,
			entry.RemovedCount,
			entry.CleanupErrorCount,
			formatTime(entry.StartedAt),
			formatTime(entry.FinishedAt),
		)
		return execErr
	})
	if err != nil {
		return 0, fmt.Errorf("insert job: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// List returns recorded jobs, newest first.
func (s *Store) List(ctx context.Context, filter Filter) ([]Entry, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	query := `SELECT ` + entryColumns + ` FROM jobs`
	args := make([]any, 0, 2)
	if outcome := strings.TrimSpace(filter.Outcome); outcome != "" {
		query += ` WHERE outcome = ?`
		args = append(args, outcome)
	}
	query += ` ORDER BY started_at DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate jobs: %w", err)
	}
	return entries, nil
}

// Get returns the job with the given job id, or nil when absent.
func (s *Store) Get(ctx context.Context, jobID string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM jobs WHERE job_id = ?`, jobID)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return entry, nil
}

// Prune deletes all but the newest keep jobs and returns how many were removed.
func (s *Store) Prune(ctx context.Context, keep int) (int64, error) {
	if keep < 0 {
		return 0, fmt.Errorf("keep must be >= 0, got %d", keep)
	}
	var res sql.Result
	err := retryOnBusy(ctx, func() error {
		var execErr error
		res, execErr = s.db.ExecContext(ctx,
			`DELETE FROM jobs WHERE id NOT IN (
                SELECT id FROM jobs ORDER BY started_at DESC, id DESC LIMIT ?
            )`, keep)
		return execErr
	})
	if err != nil {
		return 0, fmt.Errorf("prune jobs: %w", err)
	}
	return res.RowsAffected()
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

func scanEntry(scanner interface{ Scan(dest ...any) error }) (*Entry, error) {
	var (
		entry        Entry
		split        int64
		format       sql.NullString
		failureKind  sql.NullString
		failedStage  sql.NullString
		errorMessage sql.NullString
		deliverables sql.NullString
		stemFailures sql.NullString
		startedRaw   string
		finishedRaw  string
	)
	if err := scanner.Scan(
		&entry.ID,
		&entry.JobID,
		&entry.AudioPath,
		&entry.OutputDir,
		&entry.Semitones,
		&split,
		&format,
		&entry.Outcome,
		&failureKind,
		&failedStage,
		&errorMessage,
		&deliverables,
		&stemFailures,
		&entry.RemovedCount,
		&entry.CleanupErrorCount,
		&startedRaw,
		&finishedRaw,
	); err != nil {
		return nil, err
	}
	entry.Split = split != 0
	entry.Format = format.String
	entry.FailureKind = failureKind.String
	entry.FailedStage = failedStage.String
	entry.ErrorMessage = errorMessage.String
	if deliverables.Valid && deliverables.String != "" {
		if err := json.Unmarshal([]byte(deliverables.String), &entry.Deliverables); err != nil {
			return nil, fmt.Errorf("decode deliverables: %w", err)
		}
	}
	if stemFailures.Valid && stemFailures.String != "" {
		if err := json.Unmarshal([]byte(stemFailures.String), &entry.StemFailures); err != nil {
			return nil, fmt.Errorf("decode stem failures: %w", err)
		}
	}
	if t, err := parseTimeString(startedRaw); err == nil {
		entry.StartedAt = t
	}
	if t, err := parseTimeString(finishedRaw); err == nil {
		entry.FinishedAt = t
	}
	return &entry, nil
}

func marshalOptional(value any, n int) (any, error) {
	if n == 0 {
		return nil, nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	return string(data), nil
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

func formatTime(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Format(timeLayout)
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	return time.Parse(time.RFC3339Nano, value)
}
