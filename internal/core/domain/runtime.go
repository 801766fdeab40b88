package domain

import "sync"

// RuntimeConfig tracks which AI services are available at runtime.
// Providers can be reconfigured while the process is serving, so the flags
// are guarded for concurrent access.
type RuntimeConfig struct {
	mu sync.RWMutex

	// Static (set at startup, read-only)
	SessionBackend string // "redis" or "memory"

	// Dynamic capability flags (updated when AI services change)
	embeddingAvailable  bool
	generationAvailable bool
}

// NewRuntimeConfig creates a new RuntimeConfig with initial values
func NewRuntimeConfig(sessionBackend string) *RuntimeConfig {
	return &RuntimeConfig{
		SessionBackend: sessionBackend,
	}
}

// EmbeddingAvailable returns whether the embedder is available
func (c *RuntimeConfig) EmbeddingAvailable() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.embeddingAvailable
}

// GenerationAvailable returns whether the language model is available
func (c *RuntimeConfig) GenerationAvailable() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.generationAvailable
}

// SetEmbeddingAvailable updates the embedding availability flag
func (c *RuntimeConfig) SetEmbeddingAvailable(available bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.embeddingAvailable = available
}

// SetGenerationAvailable updates the generation availability flag
func (c *RuntimeConfig) SetGenerationAvailable(available bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generationAvailable = available
}

// CanAnswer returns true if the full ask path (embed + generate) is possible
func (c *RuntimeConfig) CanAnswer() bool {
	return c.EmbeddingAvailable() && c.GenerationAvailable()
}
