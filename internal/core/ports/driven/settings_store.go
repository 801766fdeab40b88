package driven

import (
	"context"

	"github.com/hardline-labs/scanwise-core/internal/core/domain"
)

// SettingsStore persists AI provider settings (PostgreSQL, API keys
// encrypted at rest)
type SettingsStore interface {
	// GetAISettings retrieves the current AI settings.
	// Returns domain.ErrNotFound if none have been saved yet.
	GetAISettings(ctx context.Context) (*domain.AISettings, error)

	// SaveAISettings persists AI settings
	SaveAISettings(ctx context.Context, settings *domain.AISettings) error
}
