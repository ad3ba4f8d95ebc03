package roster

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/timberhoa/rollcall/internal/dbx"
	"github.com/timberhoa/rollcall/internal/models"
)

// Snapshot persists the store's collection and filter state in SQLite so a
// console reload starts from where the operator left off. It is a plain
// mirror of the in-memory state, rewritten on every mutation; the in-memory
// store stays the source of truth while the process runs.
type Snapshot struct {
	db *sql.DB
}

// NewSnapshot binds a snapshot repository to an open database.
func NewSnapshot(db *sql.DB) *Snapshot {
	return &Snapshot{db: db}
}

// Init creates the backing tables when they do not exist yet.
func (s *Snapshot) Init(ctx context.Context) error {
	stmts := []string{`
CREATE TABLE IF NOT EXISTS records (
  id TEXT PRIMARY KEY,
  display_name TEXT NOT NULL,
  group_tag TEXT NOT NULL,
  status TEXT NOT NULL,
  position INTEGER NOT NULL
)`, `
CREATE TABLE IF NOT EXISTS filter_state (
  id INTEGER PRIMARY KEY CHECK (id = 1),
  query TEXT NOT NULL DEFAULT '',
  group_tag TEXT NOT NULL DEFAULT ''
)`}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to init snapshot schema: %w", err)
		}
	}
	return nil
}

// LoadRecords returns the persisted collection in its original order.
func (s *Snapshot) LoadRecords(ctx context.Context) ([]models.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, display_name, group_tag, status FROM records ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to select records: %w", err)
	}
	defer rows.Close()

	var result []models.Record
	for rows.Next() {
		var r models.Record
		if err := rows.Scan(&r.ID, &r.DisplayName, &r.Group, &r.Status); err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// SaveRecords replaces the persisted collection atomically.
func (s *Snapshot) SaveRecords(ctx context.Context, records []models.Record) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM records`); err != nil {
			return err
		}
		for n, r := range records {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO records (id, display_name, group_tag, status, position) VALUES (?, ?, ?, ?, ?)`,
				r.ID, r.DisplayName, r.Group, r.Status, n)
			if err != nil {
				return fmt.Errorf("failed to insert record %s: %w", r.ID, err)
			}
		}
		return nil
	})
}

// LoadFilter returns the persisted filter state; empty strings when none was
// ever saved.
func (s *Snapshot) LoadFilter(ctx context.Context) (query, group string, err error) {
	row := s.db.QueryRowContext(ctx, `SELECT query, group_tag FROM filter_state WHERE id = 1`)
	if err := row.Scan(&query, &group); err != nil {
		if err == sql.ErrNoRows {
			return "", "", nil
		}
		return "", "", fmt.Errorf("failed to load filter state: %w", err)
	}
	return query, group, nil
}

// SaveFilter upserts the filter state.
func (s *Snapshot) SaveFilter(ctx context.Context, query, group string) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO filter_state (id, query, group_tag) VALUES (1, ?, ?)
ON CONFLICT(id) DO UPDATE SET query = excluded.query, group_tag = excluded.group_tag`,
		query, group)
	if err != nil {
		return fmt.Errorf("failed to save filter state: %w", err)
	}
	return nil
}

// Reset wipes all persisted state.
func (s *Snapshot) Reset(ctx context.Context) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM records`); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `DELETE FROM filter_state`)
		return err
	})
}
