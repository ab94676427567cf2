package catalog

import (
	"context"
	"sync"

	"github.com/bryanwahyu/rxscan/internal/domain/substances"
)

// Memory is an in-process catalog, typically filled from the CSV file.
type Memory struct {
	mu    sync.RWMutex
	items []substances.Substance
}

func NewMemory(items []substances.Substance) *Memory {
	m := &Memory{}
	m.items = append(m.items, items...)
	return m
}

func (m *Memory) List(ctx context.Context) ([]substances.Substance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]substances.Substance, len(m.items))
	copy(out, m.items)
	return out, nil
}

// Upsert replaces entries with the same name and appends new ones.
func (m *Memory) Upsert(ctx context.Context, items []substances.Substance) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	pos := make(map[string]int, len(m.items))
	for i, s := range m.items {
		pos[s.Name] = i
	}
	for _, s := range items {
		if i, ok := pos[s.Name]; ok {
			m.items[i] = s
			continue
		}
		pos[s.Name] = len(m.items)
		m.items = append(m.items, s)
	}
	return nil
}
