package ai

import (
	"fmt"

	"github.com/hardline-labs/scanwise-core/internal/core/domain"
	"github.com/hardline-labs/scanwise-core/internal/core/ports/driven"
)

// Ensure Factory implements AIServiceFactory
var _ driven.AIServiceFactory = (*Factory)(nil)

// Factory creates AI services based on configuration
type Factory struct{}

// NewFactory creates a new AI service factory
func NewFactory() *Factory {
	return &Factory{}
}

// CreateEmbedder creates an embedding service from settings
func (f *Factory) CreateEmbedder(settings *domain.EmbeddingSettings) (driven.Embedder, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return NewOllamaEmbedding(settings.Model, settings.BaseURL)
	case domain.AIProviderOpenAI:
		return NewOpenAIEmbedding(settings.APIKey, settings.Model, settings.BaseURL)
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidProvider, settings.Provider)
	}
}

// CreateGenerator creates a text generation service from settings
func (f *Factory) CreateGenerator(settings *domain.LLMSettings) (driven.Generator, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return NewOllamaLLM(settings.Model, settings.BaseURL)
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidProvider, settings.Provider)
	}
}
