package driven

import (
	"context"

	"github.com/hardline-labs/scanwise-core/internal/core/domain"
)

// VectorIndex persists embedded finding documents and answers similarity
// queries over them. The index is read-only during querying and is replaced
// wholesale by Rebuild; there is no incremental delete or update.
type VectorIndex interface {
	// Rebuild replaces the entire index with the given entries and persists
	// it. The previously persisted index at the same location is overwritten.
	Rebuild(ctx context.Context, entries []domain.IndexEntry) error

	// Search returns the top-k entries ranked by descending similarity to
	// the query vector. Ties are broken by insertion order, which is stable
	// within one store instance. Returns domain.ErrIndexUnavailable when the
	// persisted index is missing or unreadable.
	Search(ctx context.Context, vector []float32, k int) ([]domain.RetrievedDocument, error)

	// Count returns the number of indexed entries.
	// Returns domain.ErrIndexUnavailable when no index has been persisted.
	Count(ctx context.Context) (int, error)

	// HealthCheck verifies the index backend is usable
	HealthCheck(ctx context.Context) error
}
