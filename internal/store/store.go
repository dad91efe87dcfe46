// =============================================================================
// Price Compare - Run Archive
// =============================================================================
//
// This module keeps a history of comparison runs in a local SQLite file so a
// previous result can be listed, reloaded and exported again.
//
// SCHEMA:
//   runs      one row per run (id, created_at, source counts)
//   run_rows  the result rows of a run, in their sorted order
//
// Prices and quantities are stored as decimal text, never as REAL, so a
// reloaded run carries exactly the values that were saved.
//
// =============================================================================

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/ginjaninja78/price-compare/internal/types"
)

// ErrRunNotFound is returned by LoadRun for an unknown id.
var ErrRunNotFound = errors.New("run not found")

var schema = []string{
	`CREATE TABLE IF NOT EXISTS runs (
		id         TEXT PRIMARY KEY,
		created_at INTEGER NOT NULL,
		sources    INTEGER NOT NULL,
		skipped    INTEGER NOT NULL,
		row_count  INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS run_rows (
		run_id       TEXT    NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		position     INTEGER NOT NULL,
		item_key     TEXT    NOT NULL,
		item_text    TEXT    NOT NULL,
		item_numeric INTEGER NOT NULL,
		description  TEXT    NOT NULL,
		price        TEXT    NOT NULL,
		quantity     TEXT,
		source_file  TEXT    NOT NULL,
		PRIMARY KEY (run_id, position)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at)`,
}

// Run is one archived comparison.
type Run struct {
	// ID is assigned by SaveRun when empty.
	ID string

	// CreatedAt defaults to the time of SaveRun.
	CreatedAt time.Time

	Sources int
	Skipped int

	Rows []types.ResultRow
}

// RunInfo is the listing form of a Run.
type RunInfo struct {
	ID        string
	CreatedAt time.Time
	Sources   int
	Skipped   int
	RowCount  int
}

// Store is an open archive.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the archive at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive %s: %w", path, err)
	}

	// A single connection keeps PRAGMAs and transactions on one handle.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to configure archive: %w", err)
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create archive schema: %w", err)
		}
	}

	return &Store{db: db}, nil
}

// Close closes the archive.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRun writes a run and its rows in one transaction.
//
// RETURNS:
//   - The run id.
//   - An error if the write fails; nothing is saved then.
func (s *Store) SaveRun(ctx context.Context, run Run) (string, error) {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, created_at, sources, skipped, row_count) VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.CreatedAt.UnixNano(), run.Sources, run.Skipped, len(run.Rows),
	); err != nil {
		return "", fmt.Errorf("failed to save run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO run_rows (run_id, position, item_key, item_text, item_numeric, description, price, quantity, source_file)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("failed to prepare row insert: %w", err)
	}
	defer stmt.Close()

	for i, row := range run.Rows {
		var quantity sql.NullString
		if row.Quantity != nil {
			quantity = sql.NullString{String: row.Quantity.String(), Valid: true}
		}

		if _, err := stmt.ExecContext(ctx,
			run.ID, i, row.ItemKey, row.Item.Text, boolToInt(row.Item.Numeric),
			row.Description, row.Price.String(), quantity, row.SourceFile,
		); err != nil {
			return "", fmt.Errorf("failed to save row %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit run: %w", err)
	}

	return run.ID, nil
}

// ListRuns returns every archived run, newest first.
func (s *Store) ListRuns(ctx context.Context) ([]RunInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, sources, skipped, row_count FROM runs ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []RunInfo
	for rows.Next() {
		var info RunInfo
		var createdAt int64
		if err := rows.Scan(&info.ID, &createdAt, &info.Sources, &info.Skipped, &info.RowCount); err != nil {
			return nil, fmt.Errorf("failed to read run: %w", err)
		}
		info.CreatedAt = time.Unix(0, createdAt)
		runs = append(runs, info)
	}

	return runs, rows.Err()
}

// LoadRun returns a run with its rows in their saved order.
func (s *Store) LoadRun(ctx context.Context, id string) (*Run, error) {
	run := &Run{ID: id}

	var createdAt int64
	err := s.db.QueryRowContext(ctx,
		`SELECT created_at, sources, skipped FROM runs WHERE id = ?`, id,
	).Scan(&createdAt, &run.Sources, &run.Skipped)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load run %s: %w", id, err)
	}
	run.CreatedAt = time.Unix(0, createdAt)

	rows, err := s.db.QueryContext(ctx,
		`SELECT item_key, item_text, item_numeric, description, price, quantity, source_file
		 FROM run_rows WHERE run_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load rows of run %s: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			row      types.ResultRow
			numeric  int
			price    string
			quantity sql.NullString
		)
		if err := rows.Scan(&row.ItemKey, &row.Item.Text, &numeric, &row.Description, &price, &quantity, &row.SourceFile); err != nil {
			return nil, fmt.Errorf("failed to read row of run %s: %w", id, err)
		}
		row.Item.Numeric = numeric != 0

		if row.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("corrupt price %q in run %s: %w", price, id, err)
		}
		if quantity.Valid {
			q, err := decimal.NewFromString(quantity.String)
			if err != nil {
				return nil, fmt.Errorf("corrupt quantity %q in run %s: %w", quantity.String, id, err)
			}
			row.Quantity = &q
		}

		run.Rows = append(run.Rows, row)
	}

	return run, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
