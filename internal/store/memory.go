package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps evaluations in process memory. It is used when no
// database is configured.
type MemoryStore struct {
	mu    sync.RWMutex
	byID  map[uuid.UUID]*Evaluation
	order []uuid.UUID
	now   func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID: make(map[uuid.UUID]*Evaluation),
		now:  time.Now,
	}
}

func (m *MemoryStore) SaveEvaluation(_ context.Context, e *Evaluation) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	e.CreatedAt = m.now()

	cp := *e
	m.mu.Lock()
	if _, exists := m.byID[e.ID]; !exists {
		m.order = append(m.order, e.ID)
	}
	m.byID[e.ID] = &cp
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) GetEvaluation(_ context.Context, id uuid.UUID) (*Evaluation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *e
	return &cp, nil
}

func (m *MemoryStore) ListEvaluations(_ context.Context, limit int) ([]*Evaluation, error) {
	limit = normalizeLimit(limit)

	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Evaluation, 0, min(limit, len(m.order)))
	for i := len(m.order) - 1; i >= 0 && len(out) < limit; i-- {
		cp := *m.byID[m.order[i]]
		out = append(out, &cp)
	}
	return out, nil
}

func (m *MemoryStore) Close() error { return nil }
