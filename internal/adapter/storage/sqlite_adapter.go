package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteAdapter is the pure-Go entity store for single-node deployments and
// tests. SQLite has no row locks; serialization comes from restricting the
// pool to one connection, so units of work never interleave.
type SQLiteAdapter struct {
	sqlStore
}

func NewSQLiteAdapter(db *sql.DB) *SQLiteAdapter {
	return &SQLiteAdapter{sqlStore{db: db}}
}

// OpenSQLite opens (or creates) a SQLite database at path. Use ":memory:"
// for a throwaway store.
func OpenSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	return db, nil
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS members (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		surname TEXT NOT NULL,
		booking_count INTEGER NOT NULL DEFAULT 0,
		date_joined TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS inventory_items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		description TEXT NOT NULL,
		remaining_count INTEGER NOT NULL DEFAULT 0,
		expiration_date TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS bookings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		member_id INTEGER NOT NULL,
		inventory_item_id INTEGER NOT NULL,
		booking_datetime TIMESTAMP NOT NULL,
		is_cancelled BOOLEAN NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_member ON bookings (member_id)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_item ON bookings (inventory_item_id)`,
}

func (s *SQLiteAdapter) InitSchema(ctx context.Context) error {
	for _, stmt := range sqliteSchema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}
