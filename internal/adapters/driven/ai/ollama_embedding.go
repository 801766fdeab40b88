package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hardline-labs/scanwise-core/internal/core/ports/driven"
)

// Ensure OllamaEmbedding implements Embedder
var _ driven.Embedder = (*OllamaEmbedding)(nil)

// Known dimensions for common Ollama embedding models
var ollamaModelDimensions = map[string]int{
	"nomic-embed-text":  768,
	"mxbai-embed-large": 1024,
	"all-minilm":        384,
}

// OllamaEmbedding implements Embedder against a local Ollama server.
type OllamaEmbedding struct {
	model      string
	baseURL    string
	dimensions int
	client     *http.Client
}

// NewOllamaEmbedding creates an embedding service backed by Ollama.
// No API key is needed; Ollama runs locally.
func NewOllamaEmbedding(model, baseURL string) (driven.Embedder, error) {
	if model == "" {
		model = "nomic-embed-text"
	}
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}

	dimensions, ok := ollamaModelDimensions[model]
	if !ok {
		dimensions = 768
	}

	return &OllamaEmbedding{
		model:      model,
		baseURL:    baseURL,
		dimensions: dimensions,
		client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}, nil
}

// ollamaEmbedRequest is the request body for the Ollama embed API
type ollamaEmbedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

// ollamaEmbedResponse is the response from the Ollama embed API
type ollamaEmbedResponse struct {
	Model      string      `json:"model"`
	Embeddings [][]float32 `json:"embeddings"`
	Error      string      `json:"error,omitempty"`
}

// Embed generates embeddings for multiple texts
func (e *OllamaEmbedding) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	reqBody := ollamaEmbedRequest{
		Model: e.model,
		Input: texts,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", e.baseURL+"/api/embed", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var embResp ollamaEmbedResponse
	if err := json.Unmarshal(respBody, &embResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if embResp.Error != "" {
		return nil, fmt.Errorf("Ollama API error: %s", embResp.Error)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Ollama API returned status %d", resp.StatusCode)
	}
	if len(embResp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(embResp.Embeddings))
	}

	return embResp.Embeddings, nil
}

// EmbedQuery generates an embedding for a search query
func (e *OllamaEmbedding) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	embeddings, err := e.Embed(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("no embedding returned for query")
	}
	return embeddings[0], nil
}

// Dimensions returns the embedding dimension size
func (e *OllamaEmbedding) Dimensions() int {
	return e.dimensions
}

// Model returns the model name being used
func (e *OllamaEmbedding) Model() string {
	return e.model
}

// HealthCheck verifies the Ollama server is reachable and the model loads
func (e *OllamaEmbedding) HealthCheck(ctx context.Context) error {
	_, err := e.EmbedQuery(ctx, "health check")
	return err
}

// Close releases resources held by the embedding service
func (e *OllamaEmbedding) Close() error {
	e.client.CloseIdleConnections()
	return nil
}
