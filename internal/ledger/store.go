package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Store persists run history in SQLite.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// Open creates or connects to the ledger database at path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("ledger path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create ledger directory: %w", err)
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

	store := &Store{db: db, path: path, now: func() time.Time { return time.Now().UTC() }}
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

// BeginRun records a new run and returns it with a fresh identifier.
func (s *Store) BeginRun(ctx context.Context, passes []string) (*Run, error) {
	run := &Run{
		ID:        uuid.NewString(),
		Passes:    append([]string(nil), passes...),
		Status:    RunRunning,
		StartedAt: s.now(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, passes, status, started_at) VALUES (?, ?, ?, ?)`,
		run.ID,
		strings.Join(run.Passes, ","),
		run.Status,
		formatTime(run.StartedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

// RecordPass stores or replaces the summary of one pass.
func (s *Store) RecordPass(ctx context.Context, runID string, result PassResult) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO pass_results (
            run_id, pass, state, cards, batches, retry_rounds, failures,
            copied, discarded, unrendered, recorded_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID,
		result.Pass,
		result.State,
		result.Cards,
		result.Batches,
		result.RetryRounds,
		result.Failures,
		result.Copied,
		result.Discarded,
		result.Unrendered,
		formatTime(s.now()),
	)
	if err != nil {
		return fmt.Errorf("record pass %s: %w", result.Pass, err)
	}
	return nil
}

// RecordCards stores the per-face outcomes of a pass in one transaction.
func (s *Store) RecordCards(ctx context.Context, runID, pass string, cards []CardResult) error {
	if len(cards) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin card tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO card_results (run_id, pass, display_name, card_name, face, status)
         VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare card insert: %w", err)
	}
	defer stmt.Close()

	for _, card := range cards {
		if _, err := stmt.ExecContext(ctx, runID, pass, card.DisplayName, card.CardName, card.Face, card.Status); err != nil {
			return fmt.Errorf("record card %s: %w", card.DisplayName, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit cards: %w", err)
	}
	return nil
}

// FinishRun marks a run complete with its final status.
func (s *Store) FinishRun(ctx context.Context, runID string, status RunStatus, message string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, message = ?, finished_at = ? WHERE id = ?`,
		status,
		nullableString(message),
		formatTime(s.now()),
		runID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("finish run: unknown run %s", runID)
	}
	return nil
}

// RecentRuns returns up to limit runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, passes, status, message, started_at, finished_at
         FROM runs ORDER BY rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// PassResults returns the pass summaries recorded for a run.
func (s *Store) PassResults(ctx context.Context, runID string) ([]PassResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT pass, state, cards, batches, retry_rounds, failures, copied, discarded, unrendered
         FROM pass_results WHERE run_id = ? ORDER BY rowid`, runID)
	if err != nil {
		return nil, fmt.Errorf("query passes: %w", err)
	}
	defer rows.Close()

	var results []PassResult
	for rows.Next() {
		var r PassResult
		if err := rows.Scan(&r.Pass, &r.State, &r.Cards, &r.Batches, &r.RetryRounds,
			&r.Failures, &r.Copied, &r.Discarded, &r.Unrendered); err != nil {
			return nil, fmt.Errorf("scan pass: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// CardResults returns the card outcomes recorded for a run, optionally
// restricted to one status.
func (s *Store) CardResults(ctx context.Context, runID string, status CardStatus) ([]CardResult, error) {
	query := `SELECT display_name, card_name, face, status FROM card_results WHERE run_id = ?`
	args := []any{runID}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY pass, card_name, face`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query cards: %w", err)
	}
	defer rows.Close()

	var results []CardResult
	for rows.Next() {
		var (
			r         CardResult
			statusRaw string
		)
		if err := rows.Scan(&r.DisplayName, &r.CardName, &r.Face, &statusRaw); err != nil {
			return nil, fmt.Errorf("scan card: %w", err)
		}
		r.Status = CardStatus(statusRaw)
		results = append(results, r)
	}
	return results, rows.Err()
}
