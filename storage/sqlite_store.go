package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
	CREATE TABLE IF NOT EXISTS restaurants (
		id               INTEGER PRIMARY KEY AUTOINCREMENT,
		dataset          TEXT    NOT NULL,
		row_index        INTEGER NOT NULL,
		title            TEXT    NOT NULL DEFAULT '',
		category         TEXT    NOT NULL DEFAULT '',
		review_count     INTEGER NOT NULL DEFAULT 0 CHECK (review_count >= 0),
		online_order     BOOLEAN NOT NULL DEFAULT 0,
		popular_food     TEXT,
		review_comment   TEXT,
		has_popular_food BOOLEAN NOT NULL DEFAULT 0,
		created_at       TEXT    NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE (dataset, row_index)
	);

	CREATE INDEX IF NOT EXISTS idx_restaurants_category     ON restaurants(category);
	CREATE INDEX IF NOT EXISTS idx_restaurants_review_count ON restaurants(review_count);
`

// SQLiteStore persists canonical restaurant tables to a local SQLite file.
type SQLiteStore struct {
	sqlStore
}

// NewSQLiteStore opens (or creates) the database at path and migrates it.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("sqlite: create dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	db.SetMaxOpenConns(1)

	ss := &SQLiteStore{sqlStore{
		db:          db,
		name:        "sqlite",
		placeholder: func(int) string { return "?" },
	}}
	if err := ss.migrate(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return ss, nil
}
