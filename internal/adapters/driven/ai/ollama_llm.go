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

// Ensure OllamaLLM implements Generator
var _ driven.Generator = (*OllamaLLM)(nil)

// OllamaLLM implements Generator against a local Ollama server.
type OllamaLLM struct {
	model   string
	baseURL string
	client  *http.Client
}

// NewOllamaLLM creates a text generation service backed by Ollama.
func NewOllamaLLM(model, baseURL string) (driven.Generator, error) {
	if model == "" {
		model = "phi3.5:3.8b"
	}
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}

	return &OllamaLLM{
		model:   model,
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 300 * time.Second,
		},
	}, nil
}

// ollamaGenerateRequest is the request body for the Ollama generate API
type ollamaGenerateRequest struct {
	Model   string                 `json:"model"`
	Prompt  string                 `json:"prompt"`
	Stream  bool                   `json:"stream"`
	Options map[string]interface{} `json:"options,omitempty"`
}

// ollamaGenerateResponse is the (non-streaming) response from the Ollama
// generate API
type ollamaGenerateResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
	Error    string `json:"error,omitempty"`
}

// Generate produces a completion for the prompt
func (g *OllamaLLM) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	reqBody := ollamaGenerateRequest{
		Model:  g.model,
		Prompt: prompt,
		Stream: false,
		Options: map[string]interface{}{
			"temperature": opts.Temperature,
		},
	}
	if opts.MaxTokens > 0 {
		reqBody.Options["num_predict"] = opts.MaxTokens
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", g.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	var genResp ollamaGenerateResponse
	if err := json.Unmarshal(respBody, &genResp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	if genResp.Error != "" {
		return "", fmt.Errorf("Ollama API error: %s", genResp.Error)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("Ollama API returned status %d", resp.StatusCode)
	}

	return genResp.Response, nil
}

// Model returns the model name being used
func (g *OllamaLLM) Model() string {
	return g.model
}

// Ping verifies the Ollama server is reachable
func (g *OllamaLLM) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "GET", g.baseURL+"/api/tags", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("Ollama server unreachable: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("Ollama server returned status %d", resp.StatusCode)
	}
	return nil
}

// Close releases resources held by the generation service
func (g *OllamaLLM) Close() error {
	g.client.CloseIdleConnections()
	return nil
}
