package mocks

import (
	"context"
	"errors"
	"sync"
	"time"
)

// MockRebuildLock is an in-process RebuildLock for testing and for
// single-instance deployments without Redis.
type MockRebuildLock struct {
	mu    sync.Mutex
	held  map[string]time.Time
	fail  bool
	taken int
}

// NewMockRebuildLock creates a new MockRebuildLock
func NewMockRebuildLock() *MockRebuildLock {
	return &MockRebuildLock{
		held: make(map[string]time.Time),
	}
}

func (m *MockRebuildLock) Acquire(ctx context.Context, name string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return false, errors.New("lock backend unavailable")
	}
	if expiry, ok := m.held[name]; ok && time.Now().Before(expiry) {
		return false, nil
	}
	m.held[name] = time.Now().Add(ttl)
	m.taken++
	return true, nil
}

func (m *MockRebuildLock) Release(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.held, name)
	return nil
}

func (m *MockRebuildLock) Extend(ctx context.Context, name string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.held[name]; !ok {
		return errors.New("lock not held")
	}
	m.held[name] = time.Now().Add(ttl)
	return nil
}

func (m *MockRebuildLock) Ping(ctx context.Context) error {
	return nil
}

// Acquisitions returns how many times a lock was successfully acquired
func (m *MockRebuildLock) Acquisitions() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.taken
}

// SetFail makes Acquire return an error
func (m *MockRebuildLock) SetFail(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail = fail
}
