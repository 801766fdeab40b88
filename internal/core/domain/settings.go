package domain

import "time"

// AIProvider identifies the AI/embedding provider
type AIProvider string

const (
	AIProviderOllama AIProvider = "ollama"
	AIProviderOpenAI AIProvider = "openai"
)

// RequiresAPIKey returns true if this provider requires an API key
func (p AIProvider) RequiresAPIKey() bool {
	switch p {
	case AIProviderOllama:
		return false // Self-hosted, no API key needed
	default:
		return true
	}
}

// IsValid returns true if this is a known provider
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI:
		return true
	default:
		return false
	}
}

// AISettings holds AI service configuration (embedding and LLM).
// This can be updated at runtime via API.
type AISettings struct {
	Embedding EmbeddingSettings `json:"embedding"`
	LLM       LLMSettings       `json:"llm"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// EmbeddingSettings configures the embedding service
type EmbeddingSettings struct {
	Provider AIProvider `json:"provider"`
	Model    string     `json:"model"`
	APIKey   string     `json:"-"` // Never serialize to JSON
	BaseURL  string     `json:"base_url,omitempty"`
}

// IsConfigured returns true if embedding settings are properly configured
func (e *EmbeddingSettings) IsConfigured() bool {
	if e.Provider == "" {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings configures the LLM service
type LLMSettings struct {
	Provider AIProvider `json:"provider"`
	Model    string     `json:"model"`
	APIKey   string     `json:"-"` // Never serialize to JSON
	BaseURL  string     `json:"base_url,omitempty"`
}

// IsConfigured returns true if LLM settings are properly configured
func (l *LLMSettings) IsConfigured() bool {
	if l.Provider == "" {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// Validate checks if AISettings are valid
func (s *AISettings) Validate() error {
	if s.Embedding.Provider != "" && !s.Embedding.Provider.IsValid() {
		return ErrInvalidProvider
	}
	if s.LLM.Provider != "" && !s.LLM.Provider.IsValid() {
		return ErrInvalidProvider
	}
	return nil
}

// DefaultAISettings returns a local Ollama setup that works out of the box.
func DefaultAISettings() *AISettings {
	return &AISettings{
		Embedding: EmbeddingSettings{
			Provider: AIProviderOllama,
			Model:    "nomic-embed-text",
			BaseURL:  "http://localhost:11434",
		},
		LLM: LLMSettings{
			Provider: AIProviderOllama,
			Model:    "phi3.5:3.8b",
			BaseURL:  "http://localhost:11434",
		},
		UpdatedAt: time.Now(),
	}
}
