package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hardline-labs/scanwise-core/internal/core/domain"
	"github.com/hardline-labs/scanwise-core/internal/core/ports/driven"
	"github.com/hardline-labs/scanwise-core/internal/core/ports/driving"
	"github.com/hardline-labs/scanwise-core/internal/runtime"
)

// Ensure settingsService implements SettingsService
var _ driving.SettingsService = (*settingsService)(nil)

// settingsService manages runtime AI provider configuration.
// Updates are validated against the live provider before the running
// services are swapped and the settings persisted.
type settingsService struct {
	store    driven.SettingsStore
	factory  driven.AIServiceFactory
	services *runtime.Services
}

// NewSettingsService creates a new SettingsService
func NewSettingsService(
	store driven.SettingsStore,
	factory driven.AIServiceFactory,
	services *runtime.Services,
) driving.SettingsService {
	return &settingsService{
		store:    store,
		factory:  factory,
		services: services,
	}
}

// GetAISettings retrieves the current AI configuration.
// API keys are never serialized, so nothing extra to redact.
func (s *settingsService) GetAISettings(ctx context.Context) (*driving.AISettingsStatus, error) {
	settings, err := s.store.GetAISettings(ctx)
	if errors.Is(err, domain.ErrNotFound) {
		settings = domain.DefaultAISettings()
	} else if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	return s.status(settings), nil
}

// UpdateAISettings validates, hot-swaps and persists the AI configuration.
func (s *settingsService) UpdateAISettings(ctx context.Context, req driving.UpdateAISettingsRequest) (*driving.AISettingsStatus, error) {
	current, err := s.store.GetAISettings(ctx)
	if errors.Is(err, domain.ErrNotFound) {
		current = domain.DefaultAISettings()
	} else if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	if req.Embedding != nil {
		merged := *req.Embedding
		if merged.APIKey == "" {
			// Empty key on update means "keep the stored key"
			merged.APIKey = current.Embedding.APIKey
		}
		current.Embedding = merged
	}
	if req.LLM != nil {
		merged := *req.LLM
		if merged.APIKey == "" {
			merged.APIKey = current.LLM.APIKey
		}
		current.LLM = merged
	}
	if err := current.Validate(); err != nil {
		return nil, err
	}

	if req.Embedding != nil {
		embedder, err := s.factory.CreateEmbedder(&current.Embedding)
		if err != nil {
			return nil, fmt.Errorf("create embedder: %w", err)
		}
		if err := s.services.ValidateAndSetEmbedder(ctx, embedder); err != nil {
			return nil, fmt.Errorf("%w: embedder: %v", domain.ErrServiceUnavailable, err)
		}
	}
	if req.LLM != nil {
		generator, err := s.factory.CreateGenerator(&current.LLM)
		if err != nil {
			return nil, fmt.Errorf("create generator: %w", err)
		}
		if err := s.services.ValidateAndSetGenerator(ctx, generator); err != nil {
			return nil, fmt.Errorf("%w: generator: %v", domain.ErrServiceUnavailable, err)
		}
	}

	current.UpdatedAt = time.Now()
	if err := s.store.SaveAISettings(ctx, current); err != nil {
		return nil, fmt.Errorf("save settings: %w", err)
	}

	return s.status(current), nil
}

func (s *settingsService) status(settings *domain.AISettings) *driving.AISettingsStatus {
	config := s.services.Config()
	return &driving.AISettingsStatus{
		Settings:            settings,
		EmbeddingAvailable:  config.EmbeddingAvailable(),
		GenerationAvailable: config.GenerationAvailable(),
	}
}
