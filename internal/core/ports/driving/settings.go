package driving

import (
	"context"

	"github.com/hardline-labs/scanwise-core/internal/core/domain"
)

// UpdateAISettingsRequest updates the AI provider configuration.
// Empty API key on update means "keep the stored key".
type UpdateAISettingsRequest struct {
	Embedding *domain.EmbeddingSettings `json:"embedding,omitempty"`
	LLM       *domain.LLMSettings       `json:"llm,omitempty"`
}

// AISettingsStatus reports settings together with live service availability
type AISettingsStatus struct {
	Settings            *domain.AISettings `json:"settings"`
	EmbeddingAvailable  bool               `json:"embedding_available"`
	GenerationAvailable bool               `json:"generation_available"`
}

// SettingsService manages runtime AI provider configuration
type SettingsService interface {
	// GetAISettings retrieves the current AI configuration (API keys redacted)
	GetAISettings(ctx context.Context) (*AISettingsStatus, error)

	// UpdateAISettings validates the new configuration against the live
	// provider, hot-swaps the running services and persists the settings.
	UpdateAISettings(ctx context.Context, req UpdateAISettingsRequest) (*AISettingsStatus, error)
}
