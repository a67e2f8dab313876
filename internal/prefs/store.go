// Package prefs persists the small bits of user state that must survive a
// reload: per-item order quantities and the UI theme. The core only ever
// sees a plain key-value surface; values may be absent, stale or garbage and
// the consumer coerces rather than errors.
package prefs

import (
	"context"
	"sync"
)

// Store is the key-value surface the aggregation core consumes.
type Store interface {
	// OrderQuantities returns all persisted order quantities as raw strings
	// keyed by item key. Non-numeric values are the reader's problem.
	OrderQuantities(ctx context.Context) (map[string]string, error)
	// SetOrderQty persists one order quantity. Zero or negative quantities
	// remove the entry.
	SetOrderQty(ctx context.Context, key string, qty float64) error
	Theme(ctx context.Context) (string, error)
	SetTheme(ctx context.Context, theme string) error
}

// MemoryStore is an in-process Store for tests and offline (CLI) runs.
type MemoryStore struct {
	mu    sync.Mutex
	qtys  map[string]string
	theme string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{qtys: make(map[string]string)}
}

func (m *MemoryStore) OrderQuantities(ctx context.Context) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]string, len(m.qtys))
	for k, v := range m.qtys {
		out[k] = v
	}
	return out, nil
}

func (m *MemoryStore) SetOrderQty(ctx context.Context, key string, qty float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if qty <= 0 {
		delete(m.qtys, key)
		return nil
	}
	m.qtys[key] = formatQty(qty)
	return nil
}

func (m *MemoryStore) Theme(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.theme, nil
}

func (m *MemoryStore) SetTheme(ctx context.Context, theme string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.theme = theme
	return nil
}

// SeedOrderQty injects a raw persisted value, bypassing validation. Test
// hook for exercising non-numeric persisted state.
func (m *MemoryStore) SeedOrderQty(key, raw string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.qtys[key] = raw
}

var _ Store = (*MemoryStore)(nil)
