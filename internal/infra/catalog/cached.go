package catalog

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/bryanwahyu/rxscan/internal/domain/substances"
)

const listKey = "substances:list"

// Cached keeps the catalog list of a slower repository (database) in memory.
type Cached struct {
	next  substances.Repository
	cache *cache.Cache
}

func NewCached(next substances.Repository, ttl time.Duration) *Cached {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Cached{next: next, cache: cache.New(ttl, 2*ttl)}
}

func (c *Cached) List(ctx context.Context) ([]substances.Substance, error) {
	if v, ok := c.cache.Get(listKey); ok {
		return v.([]substances.Substance), nil
	}
	items, err := c.next.List(ctx)
	if err != nil {
		return nil, err
	}
	c.cache.SetDefault(listKey, items)
	return items, nil
}

func (c *Cached) Upsert(ctx context.Context, items []substances.Substance) error {
	defer c.cache.Delete(listKey)
	return c.next.Upsert(ctx, items)
}

// Check reports an error when the catalog is empty.
func (c *Cached) Check(ctx context.Context) error {
	return checkNonEmpty(ctx, c)
}

func (m *Memory) Check(ctx context.Context) error {
	return checkNonEmpty(ctx, m)
}

func checkNonEmpty(ctx context.Context, repo substances.Repository) error {
	items, err := repo.List(ctx)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return errEmpty
	}
	return nil
}
