package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

const DriverName = "sqlite3"

// AUTOINCREMENT keeps ids of deleted rows from being handed out again.
const schema = `
CREATE TABLE IF NOT EXISTS calls (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title VARCHAR(255) NOT NULL,
	description TEXT,
	audio_file_path VARCHAR(500),
	transcript TEXT,
	duration REAL CHECK (duration >= 0),
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS call_analyses (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	call_id INTEGER NOT NULL REFERENCES calls(id),
	analysis_type VARCHAR(100) NOT NULL,
	content TEXT NOT NULL,
	confidence_score REAL CHECK (confidence_score >= 0 AND confidence_score <= 1),
	created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_call_analyses_call_id ON call_analyses(call_id);

CREATE TABLE IF NOT EXISTS objections (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	call_id INTEGER NOT NULL REFERENCES calls(id),
	objection_text TEXT NOT NULL,
	objection_type VARCHAR(100),
	"timestamp" REAL CHECK ("timestamp" >= 0),
	response_text TEXT,
	effectiveness_score REAL CHECK (effectiveness_score >= 0 AND effectiveness_score <= 1),
	suggested_improvement TEXT,
	is_resolved BOOLEAN NOT NULL DEFAULT 0,
	created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_objections_call_id ON objections(call_id);
`

// New opens a SQLite database with foreign keys enforced. Writers are
// funnelled through a single connection, which also keeps in-memory
// databases alive for the lifetime of the pool.
func New(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open(DriverName, withPragmas(dsn))
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	return db, nil
}

func Migrate(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply sqlite schema: %w", err)
	}
	return nil
}

func withPragmas(dsn string) string {
	if strings.Contains(dsn, "_foreign_keys") || strings.Contains(dsn, "_fk=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_foreign_keys=on&_busy_timeout=5000"
}
