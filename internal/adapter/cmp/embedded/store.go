package embedded

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Store persists per-user consent decisions in SQLite.
type Store struct {
	db *sql.DB
}

// OpenStore opens (or creates) the decision database at dbPath and runs
// the schema migration.
func OpenStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open consent db: %w", err)
	}
	// WAL mode for better concurrent reads.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate consent db: %w", err)
	}
	return &Store{db: db}, nil
}

func migrate(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS decisions (
			uid         TEXT NOT NULL,
			template_id TEXT NOT NULL,
			granted     INTEGER NOT NULL,
			decided_at  TEXT NOT NULL,
			PRIMARY KEY (uid, template_id)
		)
	`)
	return err
}

// Close closes the underlying database connection.
func (s *Store) Close() error { return s.db.Close() }

// Decisions returns uid's stored decisions keyed by template id.
func (s *Store) Decisions(ctx context.Context, uid string) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT template_id, granted FROM decisions WHERE uid = ?", uid,
	)
	if err != nil {
		return nil, fmt.Errorf("query decisions: %w", err)
	}
	defer rows.Close()

	out := make(map[string]bool)
	for rows.Next() {
		var id string
		var granted int
		if err := rows.Scan(&id, &granted); err != nil {
			return nil, fmt.Errorf("scan decision: %w", err)
		}
		out[id] = granted != 0
	}
	return out, rows.Err()
}

// SaveDecisions upserts the given decisions for uid in one transaction.
func (s *Store) SaveDecisions(ctx context.Context, uid string, decisions map[string]bool) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save decisions: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	for id, granted := range decisions {
		g := 0
		if granted {
			g = 1
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO decisions (uid, template_id, granted, decided_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT (uid, template_id) DO UPDATE SET granted = excluded.granted, decided_at = excluded.decided_at
		`, uid, id, g, now); err != nil {
			return fmt.Errorf("upsert decision %s: %w", id, err)
		}
	}
	return tx.Commit()
}

// ClearDecisions removes every stored decision for uid.
func (s *Store) ClearDecisions(ctx context.Context, uid string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM decisions WHERE uid = ?", uid)
	if err != nil {
		return fmt.Errorf("clear decisions: %w", err)
	}
	return nil
}

// HasDecisions reports whether uid has any stored decision.
func (s *Store) HasDecisions(ctx context.Context, uid string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM decisions WHERE uid = ?", uid,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("count decisions: %w", err)
	}
	return n > 0, nil
}
