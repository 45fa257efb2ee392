package auditmock

import (
	"context"
	"sync"

	domain "fund-ledger/internal/domain/audit"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
// Created entries are recorded when CreateFn is nil.
type Repo struct {
	CreateFn         func(ctx context.Context, e *domain.Entry) error
	ListByEntityIDFn func(ctx context.Context, entityID string) ([]domain.Entry, error)

	mu      sync.Mutex
	entries []domain.Entry
}

func (m *Repo) Create(ctx context.Context, e *domain.Entry) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, e)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, *e)
	return nil
}

func (m *Repo) ListByEntityID(ctx context.Context, entityID string) ([]domain.Entry, error) {
	if m.ListByEntityIDFn != nil {
		return m.ListByEntityIDFn(ctx, entityID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Entry
	for _, e := range m.entries {
		if e.EntityID == entityID {
			out = append(out, e)
		}
	}
	return out, nil
}

// Entries returns a copy of everything recorded so far.
func (m *Repo) Entries() []domain.Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Entry(nil), m.entries...)
}
