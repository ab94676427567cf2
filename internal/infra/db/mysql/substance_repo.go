package mysql

import (
	"context"
	"database/sql"
	"fmt"

	domain "github.com/bryanwahyu/rxscan/internal/domain/substances"
)

type SubstanceRepository struct {
	db *sql.DB
}

func NewSubstanceRepository(db *sql.DB) *SubstanceRepository {
	return &SubstanceRepository{db: db}
}

// List returns the catalog in import order
func (r *SubstanceRepository) List(ctx context.Context) ([]domain.Substance, error) {
	const q = `
SELECT name, normalized_name, category, description
FROM substances
ORDER BY position ASC, name ASC;`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("querying substances: %w", err)
	}
	defer rows.Close()

	var out []domain.Substance
	for rows.Next() {
		var s domain.Substance
		if err := rows.Scan(&s.Name, &s.NormalizedName, &s.Category, &s.Description); err != nil {
			return nil, fmt.Errorf("scanning substance: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Upsert inserts or updates every item inside one transaction
func (r *SubstanceRepository) Upsert(ctx context.Context, items []domain.Substance) error {
	const q = `
INSERT INTO substances (position, name, normalized_name, category, description)
VALUES (?,?,?,?,?)
ON DUPLICATE KEY UPDATE
  position=VALUES(position), normalized_name=VALUES(normalized_name),
  category=VALUES(category), description=VALUES(description);`

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, s := range items {
		if _, err := stmt.ExecContext(ctx, i, s.Name, s.NormalizedName, stringOrDash(s.Category), s.Description); err != nil {
			return fmt.Errorf("upsert substance %q: %w", s.Name, err)
		}
	}
	return tx.Commit()
}
