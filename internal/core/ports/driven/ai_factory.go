package driven

import (
	"github.com/hardline-labs/scanwise-core/internal/core/domain"
)

// AIServiceFactory creates AI services based on configuration
type AIServiceFactory interface {
	// CreateEmbedder creates an embedder from settings.
	// Returns nil, nil if settings are not configured.
	CreateEmbedder(settings *domain.EmbeddingSettings) (Embedder, error)

	// CreateGenerator creates a generator from settings.
	// Returns nil, nil if settings are not configured.
	CreateGenerator(settings *domain.LLMSettings) (Generator, error)
}
