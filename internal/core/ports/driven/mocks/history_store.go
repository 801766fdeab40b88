package mocks

import (
	"context"
	"sync"

	"github.com/hardline-labs/scanwise-core/internal/core/domain"
)

// MockHistoryStore is an in-memory HistoryStore for testing and for
// running without PostgreSQL.
type MockHistoryStore struct {
	mu    sync.RWMutex
	turns []*domain.Turn
}

// NewMockHistoryStore creates a new MockHistoryStore
func NewMockHistoryStore() *MockHistoryStore {
	return &MockHistoryStore{}
}

func (m *MockHistoryStore) Record(ctx context.Context, turn *domain.Turn) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *turn
	m.turns = append(m.turns, &copied)
	return nil
}

func (m *MockHistoryStore) ListBySession(ctx context.Context, sessionID string, limit int) ([]*domain.Turn, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Turn
	for _, t := range m.turns {
		if t.SessionID == sessionID {
			copied := *t
			out = append(out, &copied)
		}
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (m *MockHistoryStore) Count(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.turns), nil
}
