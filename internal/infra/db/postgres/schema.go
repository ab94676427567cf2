package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

var schema = []string{`
CREATE TABLE IF NOT EXISTS substances (
  position        INTEGER NOT NULL,
  name            TEXT PRIMARY KEY,
  normalized_name TEXT NOT NULL DEFAULT '',
  category        TEXT NOT NULL,
  description     TEXT NOT NULL
)`, `
CREATE TABLE IF NOT EXISTS analysis_failures (
  id           BIGSERIAL PRIMARY KEY,
  analysis_id  TEXT NOT NULL,
  filename     TEXT NOT NULL,
  phase        TEXT NOT NULL,
  message      TEXT NOT NULL,
  details_json JSONB NOT NULL DEFAULT '{}'::jsonb,
  created_at   TIMESTAMPTZ NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_failures_created ON analysis_failures (created_at DESC)`,
}

// EnsureSchema creates the tables used by the repositories.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("postgres schema: %w", err)
		}
	}
	return nil
}
