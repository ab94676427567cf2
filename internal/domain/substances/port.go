package substances

import "context"

// Repository port for the substance catalog. List keeps catalog order.
type Repository interface {
	List(ctx context.Context) ([]Substance, error)
	Upsert(ctx context.Context, items []Substance) error
}
