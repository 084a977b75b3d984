// Package store provides SQLite-backed persistence for notes, artifacts,
// tasks, and feedback.
package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS tasks (
	id           TEXT PRIMARY KEY,
	project      TEXT NOT NULL,
	title        TEXT NOT NULL,
	description  TEXT NOT NULL DEFAULT '',
	status       TEXT NOT NULL DEFAULT 'queued',
	trust_level  TEXT NOT NULL DEFAULT 'PROTOTYPE',
	priority     TEXT NOT NULL DEFAULT 'NORMAL',
	created_at   DATETIME NOT NULL,
	started_at   DATETIME,
	completed_at DATETIME
);

CREATE INDEX IF NOT EXISTS idx_tasks_project_status ON tasks(project, status);

CREATE TABLE IF NOT EXISTS notes (
	id         TEXT PRIMARY KEY,
	content    TEXT NOT NULL,
	project    TEXT NOT NULL DEFAULT '',
	tags       TEXT NOT NULL DEFAULT '[]',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_notes_project ON notes(project);

CREATE TABLE IF NOT EXISTS artifacts (
	id           TEXT PRIMARY KEY,
	title        TEXT NOT NULL,
	content      TEXT NOT NULL,
	content_type TEXT NOT NULL DEFAULT 'text/plain',
	project      TEXT NOT NULL DEFAULT '',
	created_at   DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_artifacts_project ON artifacts(project);

CREATE TABLE IF NOT EXISTS feedback (
	id         TEXT PRIMARY KEY,
	message    TEXT NOT NULL,
	user_id    TEXT NOT NULL,
	username   TEXT NOT NULL DEFAULT '',
	guild_name TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_feedback_user_created ON feedback(user_id, created_at);
`

// DB wraps a sql.DB with entity-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
