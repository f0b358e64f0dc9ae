package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/seantiz/benchtop/internal/model"

	_ "modernc.org/sqlite"
)

const createRunsTable = `
CREATE TABLE IF NOT EXISTS runs (
    id               TEXT PRIMARY KEY,
    status           TEXT NOT NULL,
    grp              TEXT NOT NULL,
    title            TEXT NOT NULL,
    description      TEXT NOT NULL,
    n                INTEGER NOT NULL,
    rounds           INTEGER NOT NULL,
    variation_marks  TEXT,
    iterations       INTEGER NOT NULL DEFAULT 0,
    total_elapsed_ns INTEGER NOT NULL DEFAULT 0,
    summary          TEXT,
    error            TEXT,
    created_at       DATETIME NOT NULL,
    started_at       DATETIME,
    finished_at      DATETIME
)`

// ErrNotFound is returned when a run is not found.
var ErrNotFound = errors.New("run not found")

// Compile-time interface satisfaction check.
var _ Store = (*SQLiteStore)(nil)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens the SQLite database at dbPath and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	if _, err := db.Exec(createRunsTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("create runs table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateRun inserts a new run record.
func (s *SQLiteStore) CreateRun(ctx context.Context, r *model.Run) error {
	marks, err := marshalMarks(r.VariationMarks)
	if err != nil {
		return err
	}
	summary, err := marshalSummary(r.Summary)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (
			id, status, grp, title, description, n, rounds,
			variation_marks, iterations, total_elapsed_ns, summary,
			error, created_at, started_at, finished_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Status, r.Group, r.Title, r.Description, r.N, r.Rounds,
		marks, r.Iterations, r.TotalElapsedNS, summary,
		r.Error, r.CreatedAt, r.StartedAt, r.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// GetRun retrieves a run by ID.
func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*model.Run, error) {
	r, err := scanRun(s.db.QueryRowContext(ctx,
		`SELECT id, status, grp, title, description, n, rounds,
			variation_marks, iterations, total_elapsed_ns, summary,
			error, created_at, started_at, finished_at
		FROM runs WHERE id = ?`, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return r, nil
}

// ListRuns returns a paginated list of runs ordered by created_at DESC,
// along with the total count of all runs.
func (s *SQLiteStore) ListRuns(ctx context.Context, limit, offset int) ([]*model.Run, int, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, 0, fmt.Errorf("begin read tx: %w", err)
	}
	defer tx.Rollback()

	var total int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM runs").Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count runs: %w", err)
	}

	rows, err := tx.QueryContext(ctx,
		`SELECT id, status, grp, title, description, n, rounds,
			variation_marks, iterations, total_elapsed_ns, summary,
			error, created_at, started_at, finished_at
		FROM runs ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`, limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []*model.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate runs: %w", err)
	}

	return runs, total, nil
}

// UpdateRunStatus transitions a run to the given status. The transition is
// validated against the current status inside a transaction; illegal
// transitions return ErrInvalidTransition. Moving to running sets started_at,
// moving to a terminal status sets finished_at.
func (s *SQLiteStore) UpdateRunStatus(ctx context.Context, id, status string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var current string
	err = tx.QueryRowContext(ctx, "SELECT status FROM runs WHERE id = ?", id).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("read run status: %w", err)
	}

	if !model.ValidTransition(current, status) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current, status)
	}

	now := time.Now().UTC()
	switch status {
	case model.StatusRunning:
		_, err = tx.ExecContext(ctx,
			"UPDATE runs SET status = ?, started_at = ? WHERE id = ?",
			status, now, id,
		)
	case model.StatusCompleted, model.StatusFailed:
		_, err = tx.ExecContext(ctx,
			"UPDATE runs SET status = ?, finished_at = ? WHERE id = ?",
			status, now, id,
		)
	default:
		_, err = tx.ExecContext(ctx,
			"UPDATE runs SET status = ? WHERE id = ?",
			status, id,
		)
	}
	if err != nil {
		return fmt.Errorf("update run status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit status update: %w", err)
	}
	return nil
}

// FinishRun writes the terminal fields of a run: status, iteration counts,
// summary, error text, and finished_at.
func (s *SQLiteStore) FinishRun(ctx context.Context, r *model.Run) error {
	summary, err := marshalSummary(r.Summary)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE runs SET
			status = ?, iterations = ?, total_elapsed_ns = ?,
			summary = ?, error = ?, finished_at = ?
		WHERE id = ?`,
		r.Status, r.Iterations, r.TotalElapsedNS,
		summary, r.Error, r.FinishedAt, r.ID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// FailRun marks a run as failed with the given error message and sets
// finished_at. Unlike UpdateRunStatus it does not validate the current
// status, so a run that never started can still be failed.
func (s *SQLiteStore) FailRun(ctx context.Context, id, errMsg string) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE runs SET status = ?, error = ?, finished_at = ? WHERE id = ?",
		model.StatusFailed, errMsg, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("fail run: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetRunStats computes aggregate statistics over all runs.
func (s *SQLiteStore) GetRunStats(ctx context.Context) (*RunStats, error) {
	stats := &RunStats{
		CountByStatus: make(map[string]int),
		CountByGroup:  make(map[string]int),
	}

	rows, err := s.db.QueryContext(ctx, "SELECT status, COUNT(*) FROM runs GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("count by status: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		stats.CountByStatus[status] = count
		stats.Total += count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate status counts: %w", err)
	}

	groupRows, err := s.db.QueryContext(ctx, "SELECT grp, COUNT(*) FROM runs GROUP BY grp")
	if err != nil {
		return nil, fmt.Errorf("count by group: %w", err)
	}
	defer groupRows.Close()
	for groupRows.Next() {
		var group string
		var count int
		if err := groupRows.Scan(&group, &count); err != nil {
			return nil, fmt.Errorf("scan group count: %w", err)
		}
		stats.CountByGroup[group] = count
	}
	if err := groupRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate group counts: %w", err)
	}

	var avg sql.NullFloat64
	err = s.db.QueryRowContext(ctx,
		"SELECT AVG(total_elapsed_ns / 1000000.0) FROM runs WHERE status = ?",
		model.StatusCompleted,
	).Scan(&avg)
	if err != nil {
		return nil, fmt.Errorf("average elapsed: %w", err)
	}
	if avg.Valid {
		stats.AvgElapsedMS = avg.Float64
	}

	return stats, nil
}

// scanner abstracts *sql.Row and *sql.Rows for scanRun.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (*model.Run, error) {
	r := &model.Run{}
	var marks, summary sql.NullString
	if err := sc.Scan(
		&r.ID, &r.Status, &r.Group, &r.Title, &r.Description, &r.N, &r.Rounds,
		&marks, &r.Iterations, &r.TotalElapsedNS, &summary,
		&r.Error, &r.CreatedAt, &r.StartedAt, &r.FinishedAt,
	); err != nil {
		return nil, err
	}

	if marks.Valid && marks.String != "" {
		if err := json.Unmarshal([]byte(marks.String), &r.VariationMarks); err != nil {
			return nil, fmt.Errorf("decode variation marks: %w", err)
		}
	}
	if summary.Valid && summary.String != "" {
		if err := json.Unmarshal([]byte(summary.String), &r.Summary); err != nil {
			return nil, fmt.Errorf("decode summary: %w", err)
		}
	}
	return r, nil
}

func marshalMarks(marks map[string]string) (sql.NullString, error) {
	if len(marks) == 0 {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(marks)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("encode variation marks: %w", err)
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func marshalSummary(summary *model.RunSummary) (sql.NullString, error) {
	if summary == nil {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(summary)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("encode summary: %w", err)
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}
