package mysql

import (
	"context"
	"database/sql"
	"fmt"
)

var schema = []string{`
CREATE TABLE IF NOT EXISTS substances (
  position        INT NOT NULL,
  name            VARCHAR(255) NOT NULL,
  normalized_name VARCHAR(255) NOT NULL DEFAULT '',
  category        VARCHAR(16)  NOT NULL,
  description     TEXT         NOT NULL,
  PRIMARY KEY (name)
) CHARACTER SET utf8mb4`, `
CREATE TABLE IF NOT EXISTS analysis_failures (
  id           BIGINT AUTO_INCREMENT PRIMARY KEY,
  analysis_id  VARCHAR(64)  NOT NULL,
  filename     VARCHAR(255) NOT NULL,
  phase        VARCHAR(32)  NOT NULL,
  message      TEXT         NOT NULL,
  details_json JSON         NOT NULL,
  created_at   DATETIME(3)  NOT NULL,
  INDEX idx_failures_created (created_at)
) CHARACTER SET utf8mb4`,
}

// EnsureSchema creates the tables used by the repositories.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("mysql schema: %w", err)
		}
	}
	return nil
}
