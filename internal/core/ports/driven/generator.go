package driven

import (
	"context"
)

// GenerateOptions bound a single language model invocation.
type GenerateOptions struct {
	// Temperature is the sampling temperature (0 for deterministic output)
	Temperature float64

	// MaxTokens caps the length of the generated completion
	MaxTokens int
}

// Generator provides text completion from a language model
type Generator interface {
	// Generate produces a completion for the given prompt.
	// The returned text is raw model output; callers trim it.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// Model returns the model name being used
	Model() string

	// Ping verifies the language model service is available
	Ping(ctx context.Context) error

	// Close releases resources held by the generator
	Close() error
}
