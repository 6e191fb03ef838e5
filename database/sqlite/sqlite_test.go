package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithPragmas(t *testing.T) {
	assert.Equal(t, "file:x.db?_foreign_keys=on&_busy_timeout=5000", withPragmas("file:x.db"))
	assert.Equal(t, "file:x?mode=memory&_foreign_keys=on&_busy_timeout=5000", withPragmas("file:x?mode=memory"))
	assert.Equal(t, "file:x?_fk=1", withPragmas("file:x?_fk=1"))
}

func TestMigrateIsIdempotentAndEnforcesForeignKeys(t *testing.T) {
	db, err := New("file:" + t.Name() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	require.NoError(t, Migrate(ctx, db))
	require.NoError(t, Migrate(ctx, db))

	now := time.Now().UTC()
	_, err = db.ExecContext(ctx,
		`INSERT INTO call_analyses (call_id, analysis_type, content, created_at) VALUES (?, ?, ?, ?)`,
		42, "coaching_feedback", "orphan", now)
	assert.Error(t, err, "child rows must reference an existing call")

	_, err = db.ExecContext(ctx,
		`INSERT INTO calls (title, duration, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		"Demo Call", -1.0, now, now)
	assert.Error(t, err, "negative durations are rejected by the schema")
}
