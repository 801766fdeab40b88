package mocks

import (
	"context"
	"sync"

	"github.com/hardline-labs/scanwise-core/internal/core/ports/driven"
)

// MockGenerator is a mock implementation of Generator for testing.
// By default it echoes a canned answer; tests can script responses or force
// failures.
type MockGenerator struct {
	mu        sync.Mutex
	model     string
	response  string
	responses []string
	failNext  bool
	prompts   []string
	lastOpts  driven.GenerateOptions
}

// NewMockGenerator creates a new MockGenerator
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{
		model:    "mock-llm",
		response: "Mock answer.",
	}
}

func (m *MockGenerator) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failNext {
		m.failNext = false
		return "", context.DeadlineExceeded
	}

	m.prompts = append(m.prompts, prompt)
	m.lastOpts = opts

	if len(m.responses) > 0 {
		resp := m.responses[0]
		m.responses = m.responses[1:]
		return resp, nil
	}
	return m.response, nil
}

func (m *MockGenerator) Model() string {
	return m.model
}

func (m *MockGenerator) Ping(ctx context.Context) error {
	return nil
}

func (m *MockGenerator) Close() error {
	return nil
}

// Helper methods for testing

// SetResponse sets the default canned response
func (m *MockGenerator) SetResponse(resp string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.response = resp
}

// QueueResponses scripts responses returned in order before falling back to
// the default
func (m *MockGenerator) QueueResponses(resps ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, resps...)
}

func (m *MockGenerator) SetFailNext(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failNext = fail
}

// Prompts returns every prompt the mock has seen
func (m *MockGenerator) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.prompts))
	copy(out, m.prompts)
	return out
}

// LastPrompt returns the most recent prompt, or "" if none
func (m *MockGenerator) LastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.prompts) == 0 {
		return ""
	}
	return m.prompts[len(m.prompts)-1]
}

// LastOptions returns the options of the most recent call
func (m *MockGenerator) LastOptions() driven.GenerateOptions {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastOpts
}
