package mocks

import (
	"context"
	"sync"

	"github.com/hardline-labs/scanwise-core/internal/core/domain"
)

// MockSettingsStore is an in-memory SettingsStore for testing and for
// running without PostgreSQL.
type MockSettingsStore struct {
	mu       sync.RWMutex
	settings *domain.AISettings
}

// NewMockSettingsStore creates a new MockSettingsStore
func NewMockSettingsStore() *MockSettingsStore {
	return &MockSettingsStore{}
}

func (m *MockSettingsStore) GetAISettings(ctx context.Context) (*domain.AISettings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.settings == nil {
		return nil, domain.ErrNotFound
	}
	copied := *m.settings
	return &copied, nil
}

func (m *MockSettingsStore) SaveAISettings(ctx context.Context, settings *domain.AISettings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *settings
	m.settings = &copied
	return nil
}
