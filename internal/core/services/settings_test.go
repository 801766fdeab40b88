package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hardline-labs/scanwise-core/internal/core/domain"
	"github.com/hardline-labs/scanwise-core/internal/core/ports/driven"
	"github.com/hardline-labs/scanwise-core/internal/core/ports/driven/mocks"
	"github.com/hardline-labs/scanwise-core/internal/core/ports/driving"
	"github.com/hardline-labs/scanwise-core/internal/runtime"
)

// stubFactory hands out the shared mocks instead of dialing providers
type stubFactory struct {
	embedder    driven.Embedder
	generator   driven.Generator
	embedderErr error
}

func (f *stubFactory) CreateEmbedder(settings *domain.EmbeddingSettings) (driven.Embedder, error) {
	if f.embedderErr != nil {
		return nil, f.embedderErr
	}
	return f.embedder, nil
}

func (f *stubFactory) CreateGenerator(settings *domain.LLMSettings) (driven.Generator, error) {
	return f.generator, nil
}

var _ driven.AIServiceFactory = (*stubFactory)(nil)

func newSettingsFixture() (*mocks.MockSettingsStore, *stubFactory, *runtime.Services) {
	store := mocks.NewMockSettingsStore()
	factory := &stubFactory{
		embedder:  mocks.NewMockEmbedder(),
		generator: mocks.NewMockGenerator(),
	}
	services := runtime.NewServices(domain.NewRuntimeConfig("memory"))
	return store, factory, services
}

func TestGetAISettings_DefaultsWhenUnset(t *testing.T) {
	store, factory, services := newSettingsFixture()
	svc := NewSettingsService(store, factory, services)

	status, err := svc.GetAISettings(context.Background())
	require.NoError(t, err)

	assert.Equal(t, domain.AIProviderOllama, status.Settings.Embedding.Provider)
	assert.Equal(t, "nomic-embed-text", status.Settings.Embedding.Model)
	assert.Equal(t, "phi3.5:3.8b", status.Settings.LLM.Model)
	assert.False(t, status.EmbeddingAvailable)
	assert.False(t, status.GenerationAvailable)
}

func TestUpdateAISettings_HotSwapsAndPersists(t *testing.T) {
	store, factory, services := newSettingsFixture()
	svc := NewSettingsService(store, factory, services)

	status, err := svc.UpdateAISettings(context.Background(), driving.UpdateAISettingsRequest{
		Embedding: &domain.EmbeddingSettings{
			Provider: domain.AIProviderOllama,
			Model:    "mxbai-embed-large",
			BaseURL:  "http://localhost:11434",
		},
		LLM: &domain.LLMSettings{
			Provider: domain.AIProviderOllama,
			Model:    "phi3.5:3.8b",
			BaseURL:  "http://localhost:11434",
		},
	})
	require.NoError(t, err)

	assert.True(t, status.EmbeddingAvailable)
	assert.True(t, status.GenerationAvailable)
	assert.NotNil(t, services.Embedder())
	assert.NotNil(t, services.Generator())

	saved, err := store.GetAISettings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "mxbai-embed-large", saved.Embedding.Model)
}

func TestUpdateAISettings_PartialUpdateKeepsOtherHalf(t *testing.T) {
	store, factory, services := newSettingsFixture()
	svc := NewSettingsService(store, factory, services)

	// LLM-only update leaves the default embedding settings alone
	status, err := svc.UpdateAISettings(context.Background(), driving.UpdateAISettingsRequest{
		LLM: &domain.LLMSettings{
			Provider: domain.AIProviderOllama,
			Model:    "llama3.1:8b",
			BaseURL:  "http://localhost:11434",
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "llama3.1:8b", status.Settings.LLM.Model)
	assert.Equal(t, "nomic-embed-text", status.Settings.Embedding.Model)
	assert.False(t, status.EmbeddingAvailable)
	assert.True(t, status.GenerationAvailable)
}

func TestUpdateAISettings_EmptyKeyKeepsStoredKey(t *testing.T) {
	store, factory, services := newSettingsFixture()
	svc := NewSettingsService(store, factory, services)

	seed := domain.DefaultAISettings()
	seed.Embedding = domain.EmbeddingSettings{
		Provider: domain.AIProviderOpenAI,
		Model:    "text-embedding-3-small",
		APIKey:   "sk-original",
	}
	require.NoError(t, store.SaveAISettings(context.Background(), seed))

	_, err := svc.UpdateAISettings(context.Background(), driving.UpdateAISettingsRequest{
		Embedding: &domain.EmbeddingSettings{
			Provider: domain.AIProviderOpenAI,
			Model:    "text-embedding-3-large",
			APIKey:   "",
		},
	})
	require.NoError(t, err)

	saved, err := store.GetAISettings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "sk-original", saved.Embedding.APIKey)
	assert.Equal(t, "text-embedding-3-large", saved.Embedding.Model)
}

func TestUpdateAISettings_InvalidProvider(t *testing.T) {
	store, factory, services := newSettingsFixture()
	svc := NewSettingsService(store, factory, services)

	_, err := svc.UpdateAISettings(context.Background(), driving.UpdateAISettingsRequest{
		Embedding: &domain.EmbeddingSettings{Provider: "gemini", Model: "whatever"},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidProvider)
}

func TestUpdateAISettings_FactoryFailureLeavesServicesAlone(t *testing.T) {
	store, factory, services := newSettingsFixture()
	factory.embedderErr = errors.New("unsupported model")
	svc := NewSettingsService(store, factory, services)

	_, err := svc.UpdateAISettings(context.Background(), driving.UpdateAISettingsRequest{
		Embedding: &domain.EmbeddingSettings{
			Provider: domain.AIProviderOllama,
			Model:    "bogus",
			BaseURL:  "http://localhost:11434",
		},
	})
	require.Error(t, err)

	assert.Nil(t, services.Embedder())
	_, getErr := store.GetAISettings(context.Background())
	assert.ErrorIs(t, getErr, domain.ErrNotFound)
}
