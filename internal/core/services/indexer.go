package services

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"context"

	"github.com/hardline-labs/scanwise-core/internal/core/domain"
	"github.com/hardline-labs/scanwise-core/internal/core/ports/driven"
	"github.com/hardline-labs/scanwise-core/internal/core/ports/driving"
	"github.com/hardline-labs/scanwise-core/internal/runtime"
)

// Ensure indexService implements IndexService
var _ driving.IndexService = (*indexService)(nil)

// indexService builds the persisted vector index from finding documents.
// Rebuilds are full replacements; there is no incremental update path.
type indexService struct {
	index    driven.VectorIndex
	services *runtime.Services // Dynamic AI services
	logger   *slog.Logger
}

// NewIndexService creates a new IndexService.
// The embedder is accessed dynamically via runtime.Services.
func NewIndexService(index driven.VectorIndex, services *runtime.Services, logger *slog.Logger) driving.IndexService {
	if logger == nil {
		logger = slog.Default()
	}
	return &indexService{
		index:    index,
		services: services,
		logger:   logger,
	}
}

// Rebuild embeds the documents and replaces the persisted index.
func (s *indexService) Rebuild(ctx context.Context, docs []domain.FindingDocument) (int, error) {
	kept := make([]domain.FindingDocument, 0, len(docs))
	for _, doc := range docs {
		if doc.IsEmpty() {
			continue
		}
		kept = append(kept, doc)
	}
	if len(kept) == 0 {
		return 0, domain.ErrEmptyCorpus
	}

	embedder := s.services.Embedder()
	if embedder == nil {
		return 0, fmt.Errorf("%w: no embedder configured", domain.ErrServiceUnavailable)
	}

	texts := make([]string, len(kept))
	for i, doc := range kept {
		texts[i] = doc.Text
	}

	vectors, err := embedder.Embed(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embed corpus: %w", err)
	}
	if len(vectors) != len(kept) {
		return 0, fmt.Errorf("embedder returned %d vectors for %d documents", len(vectors), len(kept))
	}

	entries := make([]domain.IndexEntry, len(kept))
	for i, doc := range kept {
		entries[i] = domain.IndexEntry{
			ID:       fmt.Sprintf("%s#%d", doc.SourceID, i),
			Vector:   vectors[i],
			Text:     doc.Text,
			SourceID: doc.SourceID,
		}
	}

	if err := s.index.Rebuild(ctx, entries); err != nil {
		return 0, fmt.Errorf("rebuild index: %w", err)
	}

	s.logger.Info("vector index rebuilt",
		"documents", len(entries),
		"model", embedder.Model())
	return len(entries), nil
}

// RebuildFromDir loads every non-empty *.txt file under dir as one finding
// document with SourceID set to the file name, then rebuilds the index.
func (s *indexService) RebuildFromDir(ctx context.Context, dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("read docs dir: %w", err)
	}

	var docs []domain.FindingDocument
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ".txt") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return 0, fmt.Errorf("read %s: %w", entry.Name(), err)
		}
		docs = append(docs, domain.FindingDocument{
			Text:     strings.TrimSpace(string(data)),
			SourceID: entry.Name(),
		})
	}

	return s.Rebuild(ctx, docs)
}

// Status reports the current index state.
func (s *indexService) Status(ctx context.Context) (*driving.IndexStatus, error) {
	count, err := s.index.Count(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrIndexUnavailable) {
			return &driving.IndexStatus{Documents: 0, Available: false}, nil
		}
		return nil, err
	}
	return &driving.IndexStatus{Documents: count, Available: true}, nil
}
