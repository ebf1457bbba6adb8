package storage

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// schema holds the tables backing the weekly-review and OAuth-token stores.
// Journal entries deliberately stay on the filesystem; only structured
// session state lives in SQLite.
const schema = `
CREATE TABLE IF NOT EXISTS weekly_reviews (
	id              TEXT PRIMARY KEY,
	user_id         TEXT NOT NULL,
	type            TEXT NOT NULL,
	focus_areas     TEXT NOT NULL DEFAULT '',
	week_start      TIMESTAMP NOT NULL,
	started_at      TIMESTAMP NOT NULL,
	completed_at    TIMESTAMP,
	completed_steps TEXT NOT NULL DEFAULT '',
	notes           TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_weekly_reviews_user ON weekly_reviews (user_id, week_start DESC);

CREATE TABLE IF NOT EXISTS oauth_tokens (
	provider      TEXT PRIMARY KEY,
	access_token  TEXT NOT NULL,
	token_type    TEXT NOT NULL DEFAULT 'Bearer',
	refresh_token TEXT NOT NULL DEFAULT '',
	expiry        TIMESTAMP
);
`

// OpenDB opens (or creates) the Luna SQLite database at path with WAL mode
// and foreign keys enabled, and applies the schema.
func OpenDB(path string) (*sql.DB, error) {
	dsn := path + "?_journal_mode=WAL&_synchronous=NORMAL&_foreign_keys=on"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging database %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}
	return db, nil
}
