package mocks

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/hardline-labs/scanwise-core/internal/core/domain"
)

// MockVectorIndex is an in-memory VectorIndex for testing.
// Search is brute-force cosine similarity; ties keep insertion order, which
// matches the stable-tie contract of the real index.
type MockVectorIndex struct {
	mu       sync.RWMutex
	entries  []domain.IndexEntry
	rebuilt  int
	hasIndex bool
	failNext bool
}

// NewMockVectorIndex creates a new MockVectorIndex with no persisted index
func NewMockVectorIndex() *MockVectorIndex {
	return &MockVectorIndex{}
}

func (m *MockVectorIndex) Rebuild(ctx context.Context, entries []domain.IndexEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNext {
		m.failNext = false
		return context.DeadlineExceeded
	}
	m.entries = make([]domain.IndexEntry, len(entries))
	copy(m.entries, entries)
	m.hasIndex = true
	m.rebuilt++
	return nil
}

func (m *MockVectorIndex) Search(ctx context.Context, vector []float32, k int) ([]domain.RetrievedDocument, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.hasIndex {
		return nil, domain.ErrIndexUnavailable
	}

	type scored struct {
		pos   int
		score float64
	}
	ranked := make([]scored, 0, len(m.entries))
	for i, e := range m.entries {
		ranked = append(ranked, scored{pos: i, score: cosine(vector, e.Vector)})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	if k > len(ranked) {
		k = len(ranked)
	}
	out := make([]domain.RetrievedDocument, 0, k)
	for _, r := range ranked[:k] {
		e := m.entries[r.pos]
		out = append(out, domain.RetrievedDocument{
			Text:     e.Text,
			SourceID: e.SourceID,
			Score:    r.score,
		})
	}
	return out, nil
}

func (m *MockVectorIndex) Count(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.hasIndex {
		return 0, domain.ErrIndexUnavailable
	}
	return len(m.entries), nil
}

func (m *MockVectorIndex) HealthCheck(ctx context.Context) error {
	return nil
}

// Helper methods for testing

// Rebuilds returns how many times the index was rebuilt
func (m *MockVectorIndex) Rebuilds() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rebuilt
}

func (m *MockVectorIndex) SetFailNext(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failNext = fail
}

// Entries returns a copy of the current entries
func (m *MockVectorIndex) Entries() []domain.IndexEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.IndexEntry, len(m.entries))
	copy(out, m.entries)
	return out
}

func cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
