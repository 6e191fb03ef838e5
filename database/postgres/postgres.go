package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

const DriverName = "postgres"

const schema = `
CREATE TABLE IF NOT EXISTS calls (
	id SERIAL PRIMARY KEY,
	title VARCHAR(255) NOT NULL,
	description TEXT,
	audio_file_path VARCHAR(500),
	transcript TEXT,
	duration DOUBLE PRECISION CHECK (duration >= 0),
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS call_analyses (
	id SERIAL PRIMARY KEY,
	call_id INTEGER NOT NULL REFERENCES calls(id),
	analysis_type VARCHAR(100) NOT NULL,
	content TEXT NOT NULL,
	confidence_score DOUBLE PRECISION CHECK (confidence_score >= 0 AND confidence_score <= 1),
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_call_analyses_call_id ON call_analyses(call_id);

CREATE TABLE IF NOT EXISTS objections (
	id SERIAL PRIMARY KEY,
	call_id INTEGER NOT NULL REFERENCES calls(id),
	objection_text TEXT NOT NULL,
	objection_type VARCHAR(100),
	"timestamp" DOUBLE PRECISION CHECK ("timestamp" >= 0),
	response_text TEXT,
	effectiveness_score DOUBLE PRECISION CHECK (effectiveness_score >= 0 AND effectiveness_score <= 1),
	suggested_improvement TEXT,
	is_resolved BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_objections_call_id ON objections(call_id);
`

func New(dsn string, maxOpenConns int) (*sqlx.DB, error) {
	db, err := sqlx.Open(DriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}

	if maxOpenConns > 0 {
		db.SetMaxOpenConns(maxOpenConns)
		db.SetMaxIdleConns(maxOpenConns / 2)
	}
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	return db, nil
}

func Migrate(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply postgres schema: %w", err)
	}
	return nil
}
