package driving

import (
	"context"

	"github.com/hardline-labs/scanwise-core/internal/core/domain"
)

// IndexStatus reports the state of the persisted vector index
type IndexStatus struct {
	// Documents is the number of indexed finding documents
	Documents int `json:"documents"`

	// Available reports whether the persisted index can serve queries
	Available bool `json:"available"`
}

// IndexService builds the vector index from finding documents
type IndexService interface {
	// Rebuild embeds the given documents and replaces the persisted index.
	// Documents with empty trimmed text are dropped; if none remain the
	// rebuild fails with domain.ErrEmptyCorpus and the previous index is
	// left untouched. Returns the number of indexed documents.
	Rebuild(ctx context.Context, docs []domain.FindingDocument) (int, error)

	// RebuildFromDir loads every non-empty *.txt file under dir as one
	// finding document (SourceID = file name) and rebuilds the index.
	RebuildFromDir(ctx context.Context, dir string) (int, error)

	// Status reports the current index state
	Status(ctx context.Context) (*IndexStatus, error)
}
