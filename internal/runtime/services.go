package runtime

import (
	"context"
	"sync"

	"github.com/hardline-labs/scanwise-core/internal/core/domain"
	"github.com/hardline-labs/scanwise-core/internal/core/ports/driven"
)

// Services holds references to dynamically configurable AI services.
// The embedder and generator can be swapped at runtime via the settings API.
// Thread-safe for concurrent access.
type Services struct {
	mu sync.RWMutex

	// Config tracks capability flags
	config *domain.RuntimeConfig

	// Dynamic services (can be nil, updated at runtime)
	embedder  driven.Embedder
	generator driven.Generator
}

// NewServices creates a new Services registry
func NewServices(config *domain.RuntimeConfig) *Services {
	return &Services{
		config: config,
	}
}

// Config returns the runtime configuration
func (s *Services) Config() *domain.RuntimeConfig {
	return s.config
}

// Embedder returns the current embedder (may be nil)
func (s *Services) Embedder() driven.Embedder {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.embedder
}

// Generator returns the current generator (may be nil)
func (s *Services) Generator() driven.Generator {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generator
}

// SetEmbedder updates the embedder.
// Closes the old service if present. Updates config flags.
func (s *Services) SetEmbedder(svc driven.Embedder) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.embedder != nil {
		_ = s.embedder.Close()
	}

	s.embedder = svc
	s.config.SetEmbeddingAvailable(svc != nil)
}

// SetGenerator updates the generator.
// Closes the old service if present. Updates config flags.
func (s *Services) SetGenerator(svc driven.Generator) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.generator != nil {
		_ = s.generator.Close()
	}

	s.generator = svc
	s.config.SetGenerationAvailable(svc != nil)
}

// Close shuts down all services
func (s *Services) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.embedder != nil {
		_ = s.embedder.Close()
		s.embedder = nil
	}
	if s.generator != nil {
		_ = s.generator.Close()
		s.generator = nil
	}

	s.config.SetEmbeddingAvailable(false)
	s.config.SetGenerationAvailable(false)

	return nil
}

// ValidateAndSetEmbedder validates connectivity before setting the embedder
func (s *Services) ValidateAndSetEmbedder(ctx context.Context, svc driven.Embedder) error {
	if svc == nil {
		s.SetEmbedder(nil)
		return nil
	}

	if err := svc.HealthCheck(ctx); err != nil {
		_ = svc.Close()
		return err
	}

	s.SetEmbedder(svc)
	return nil
}

// ValidateAndSetGenerator validates connectivity before setting the generator
func (s *Services) ValidateAndSetGenerator(ctx context.Context, svc driven.Generator) error {
	if svc == nil {
		s.SetGenerator(nil)
		return nil
	}

	if err := svc.Ping(ctx); err != nil {
		_ = svc.Close()
		return err
	}

	s.SetGenerator(svc)
	return nil
}
