package cursor

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

const mentionsCursor = "mentions"

// SQLiteStore keeps the ID of the last processed mention in a SQLite database.
type SQLiteStore struct {
	db   *sql.DB
	name string
}

// NewSQLiteStore opens (or creates) the database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("error creating store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("error opening store: %w", err)
	}

	// a single connection keeps writes serialized
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db, name: mentionsCursor}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("error migrating store: %w", err)
	}

	log.Debug().Str("path", dbPath).Msg("opened cursor store")

	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) migrate() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS cursors (
		name TEXT PRIMARY KEY,
		last_id INTEGER NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`)
	return err
}

func (s *SQLiteStore) Load(ctx context.Context) (int64, bool, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `SELECT last_id FROM cursors WHERE name = ?`, s.name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("error loading cursor: %w", err)
	}

	return id, true, nil
}

func (s *SQLiteStore) Save(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cursors (name, last_id, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(name) DO UPDATE SET
			last_id = MAX(cursors.last_id, excluded.last_id),
			updated_at = excluded.updated_at
	`, s.name, id)
	if err != nil {
		return fmt.Errorf("error saving cursor: %w", err)
	}

	log.Debug().Int64("id", id).Msg("saved cursor")

	return nil
}
