package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hardline-labs/scanwise-core/internal/core/domain"
	"github.com/hardline-labs/scanwise-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.SettingsStore = (*SettingsStore)(nil)

// SettingsStore implements driven.SettingsStore using PostgreSQL.
// API keys are sealed before they touch the database.
type SettingsStore struct {
	db     *DB
	sealer *APIKeySealer
}

// NewSettingsStore creates a new SettingsStore.
// The sealer guards API keys at rest.
func NewSettingsStore(db *DB, sealer *APIKeySealer) *SettingsStore {
	return &SettingsStore{db: db, sealer: sealer}
}

// GetAISettings retrieves the stored AI settings.
// Returns domain.ErrNotFound if none have been saved yet.
func (s *SettingsStore) GetAISettings(ctx context.Context) (*domain.AISettings, error) {
	query := `
		SELECT embedding_provider, embedding_model, embedding_api_key_enc, embedding_base_url,
			   llm_provider, llm_model, llm_api_key_enc, llm_base_url, updated_at
		FROM ai_settings
		WHERE id = 1
	`

	var settings domain.AISettings
	var embProvider, embModel, embBaseURL sql.NullString
	var llmProvider, llmModel, llmBaseURL sql.NullString
	var embKeyBlob, llmKeyBlob []byte

	err := s.db.QueryRowContext(ctx, query).Scan(
		&embProvider,
		&embModel,
		&embKeyBlob,
		&embBaseURL,
		&llmProvider,
		&llmModel,
		&llmKeyBlob,
		&llmBaseURL,
		&settings.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get ai settings: %w", err)
	}

	settings.Embedding.Provider = domain.AIProvider(embProvider.String)
	settings.Embedding.Model = embModel.String
	settings.Embedding.BaseURL = embBaseURL.String

	settings.LLM.Provider = domain.AIProvider(llmProvider.String)
	settings.LLM.Model = llmModel.String
	settings.LLM.BaseURL = llmBaseURL.String

	if len(embKeyBlob) > 0 {
		key, err := s.sealer.Open(embKeyBlob)
		if err != nil {
			return nil, fmt.Errorf("unseal embedding api key: %w", err)
		}
		settings.Embedding.APIKey = key
	}
	if len(llmKeyBlob) > 0 {
		key, err := s.sealer.Open(llmKeyBlob)
		if err != nil {
			return nil, fmt.Errorf("unseal llm api key: %w", err)
		}
		settings.LLM.APIKey = key
	}

	return &settings, nil
}

// SaveAISettings persists AI settings, sealing API keys first
func (s *SettingsStore) SaveAISettings(ctx context.Context, settings *domain.AISettings) error {
	var embKeyBlob, llmKeyBlob []byte
	var err error

	if settings.Embedding.APIKey != "" {
		embKeyBlob, err = s.sealer.Seal(settings.Embedding.APIKey)
		if err != nil {
			return fmt.Errorf("seal embedding api key: %w", err)
		}
	}
	if settings.LLM.APIKey != "" {
		llmKeyBlob, err = s.sealer.Seal(settings.LLM.APIKey)
		if err != nil {
			return fmt.Errorf("seal llm api key: %w", err)
		}
	}

	query := `
		INSERT INTO ai_settings (id, embedding_provider, embedding_model, embedding_api_key_enc, embedding_base_url,
								 llm_provider, llm_model, llm_api_key_enc, llm_base_url, updated_at)
		VALUES (1, $1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			embedding_provider = EXCLUDED.embedding_provider,
			embedding_model = EXCLUDED.embedding_model,
			embedding_api_key_enc = EXCLUDED.embedding_api_key_enc,
			embedding_base_url = EXCLUDED.embedding_base_url,
			llm_provider = EXCLUDED.llm_provider,
			llm_model = EXCLUDED.llm_model,
			llm_api_key_enc = EXCLUDED.llm_api_key_enc,
			llm_base_url = EXCLUDED.llm_base_url,
			updated_at = EXCLUDED.updated_at
	`

	if settings.UpdatedAt.IsZero() {
		settings.UpdatedAt = time.Now()
	}

	_, err = s.db.ExecContext(ctx, query,
		string(settings.Embedding.Provider),
		settings.Embedding.Model,
		embKeyBlob,
		settings.Embedding.BaseURL,
		string(settings.LLM.Provider),
		settings.LLM.Model,
		llmKeyBlob,
		settings.LLM.BaseURL,
		settings.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save ai settings: %w", err)
	}
	return nil
}
