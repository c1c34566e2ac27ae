package storage

import (
	"database/sql"
	"fmt"
	"strconv"
	"time"

	_ "github.com/lib/pq"

	"restaurant-insights/utils"
)

const postgresSchema = `
	CREATE TABLE IF NOT EXISTS restaurants (
		id               SERIAL PRIMARY KEY,
		dataset          VARCHAR(32) NOT NULL,
		row_index        INTEGER     NOT NULL,
		title            TEXT        NOT NULL DEFAULT '',
		category         TEXT        NOT NULL DEFAULT '',
		review_count     INTEGER     NOT NULL DEFAULT 0 CHECK (review_count >= 0),
		online_order     BOOLEAN     NOT NULL DEFAULT FALSE,
		popular_food     TEXT,
		review_comment   TEXT,
		has_popular_food BOOLEAN     NOT NULL DEFAULT FALSE,
		created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (dataset, row_index)
	);

	CREATE INDEX IF NOT EXISTS idx_restaurants_category     ON restaurants(category);
	CREATE INDEX IF NOT EXISTS idx_restaurants_review_count ON restaurants(review_count);
`

// PostgresStore persists canonical restaurant tables to PostgreSQL.
type PostgresStore struct {
	sqlStore
}

// NewPostgresStore opens a connection to PostgreSQL, waits for the server
// to answer, runs schema migrations and returns a ready-to-use store.
func NewPostgresStore(dsn string, retry *utils.RetryConfig) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	if retry == nil {
		retry = &utils.RetryConfig{MaxAttempts: 10, BaseDelay: 2 * time.Second}
	}
	if err := retry.Do("postgres-ping", db.Ping); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: %w", err)
	}

	ps := &PostgresStore{sqlStore{
		db:          db,
		name:        "postgres",
		placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
	}}
	if err := ps.migrate(postgresSchema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return ps, nil
}
