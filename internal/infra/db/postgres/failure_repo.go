package postgres

import (
	"context"
	"database/sql"
	"time"

	domain "github.com/bryanwahyu/rxscan/internal/domain/failures"
)

type FailureRepository struct{ db *sql.DB }

func NewFailureRepository(db *sql.DB) *FailureRepository { return &FailureRepository{db: db} }

func (r *FailureRepository) Save(ctx context.Context, f *domain.Failure) error {
	const q = `
INSERT INTO analysis_failures
  (analysis_id, filename, phase, message, details_json, created_at)
VALUES ($1,$2,$3,$4,$5,$6)`
	created := f.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err := r.db.ExecContext(ctx, q,
		stringOrDash(f.AnalysisID),
		stringOrDash(f.Filename),
		stringOrDash(string(f.Phase)),
		stringOrDash(f.Message),
		jsonOrEmpty(f.DetailsJSON),
		created,
	)
	return err
}

func (r *FailureRepository) Recent(ctx context.Context, limit int) ([]*domain.Failure, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
SELECT id, analysis_id, filename, phase, message, details_json::text, created_at
FROM analysis_failures
ORDER BY created_at DESC, id DESC
LIMIT $1;`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Failure
	for rows.Next() {
		var f domain.Failure
		if err := rows.Scan(&f.ID, &f.AnalysisID, &f.Filename, &f.Phase, &f.Message, &f.DetailsJSON, &f.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &f)
	}
	return out, rows.Err()
}
