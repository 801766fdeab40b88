package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/hardline-labs/scanwise-core/internal/core/domain"
)

// MockTaskQueue is an in-memory TaskQueue for testing and for running
// without Redis. Dequeued tasks stay tracked until Ack/Nack.
type MockTaskQueue struct {
	mu         sync.Mutex
	pending    []*domain.Task
	processing map[string]*domain.Task
	done       map[string]*domain.Task
	closed     bool
}

// NewMockTaskQueue creates a new MockTaskQueue
func NewMockTaskQueue() *MockTaskQueue {
	return &MockTaskQueue{
		processing: make(map[string]*domain.Task),
		done:       make(map[string]*domain.Task),
	}
}

func (m *MockTaskQueue) Enqueue(ctx context.Context, task *domain.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *task
	copied.Status = domain.TaskStatusPending
	m.pending = append(m.pending, &copied)
	return nil
}

func (m *MockTaskQueue) DequeueWithTimeout(ctx context.Context, timeout int) (*domain.Task, error) {
	deadline := time.Now().Add(time.Duration(timeout) * time.Second)
	for {
		m.mu.Lock()
		if len(m.pending) > 0 {
			task := m.pending[0]
			m.pending = m.pending[1:]
			now := time.Now()
			task.Status = domain.TaskStatusProcessing
			task.Attempts++
			task.StartedAt = &now
			m.processing[task.ID] = task
			m.mu.Unlock()
			copied := *task
			return &copied, nil
		}
		m.mu.Unlock()

		if time.Now().After(deadline) {
			return nil, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func (m *MockTaskQueue) Ack(ctx context.Context, taskID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	task, ok := m.processing[taskID]
	if !ok {
		return domain.ErrNotFound
	}
	now := time.Now()
	task.Status = domain.TaskStatusCompleted
	task.CompletedAt = &now
	delete(m.processing, taskID)
	m.done[taskID] = task
	return nil
}

func (m *MockTaskQueue) Nack(ctx context.Context, taskID string, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	task, ok := m.processing[taskID]
	if !ok {
		return domain.ErrNotFound
	}
	delete(m.processing, taskID)
	task.Error = reason
	if task.Attempts >= task.MaxAttempts {
		task.Status = domain.TaskStatusFailed
		m.done[taskID] = task
		return nil
	}
	task.Status = domain.TaskStatusPending
	m.pending = append(m.pending, task)
	return nil
}

func (m *MockTaskQueue) GetTask(ctx context.Context, taskID string) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.processing[taskID]; ok {
		copied := *t
		return &copied, nil
	}
	if t, ok := m.done[taskID]; ok {
		copied := *t
		return &copied, nil
	}
	for _, t := range m.pending {
		if t.ID == taskID {
			copied := *t
			return &copied, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockTaskQueue) Ping(ctx context.Context) error {
	return nil
}

func (m *MockTaskQueue) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// PendingCount returns the number of queued tasks
func (m *MockTaskQueue) PendingCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}
