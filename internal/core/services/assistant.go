package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hardline-labs/scanwise-core/internal/core/domain"
	"github.com/hardline-labs/scanwise-core/internal/core/ports/driven"
	"github.com/hardline-labs/scanwise-core/internal/core/ports/driving"
	"github.com/hardline-labs/scanwise-core/internal/runtime"
)

const (
	// retrievalK is how many documents are retrieved per question
	retrievalK = 2

	// contextCharLimit truncates each retrieved document before the
	// context is assembled
	contextCharLimit = 1500

	// askMaxTokens bounds the assistant-path completion
	askMaxTokens = 150

	// queryMaxTokens bounds the standalone-path completion
	queryMaxTokens = 120
)

// assistantSystemPrompt grounds the assistant path: no answer outside the
// retrieved findings, absence stated explicitly, no speculation.
const assistantSystemPrompt = `You are a security analysis assistant.

Answer ONLY using the provided scan findings.
If the information is not present, say: "Not detected in the scans."
Do not speculate or introduce hypothetical scenarios.`

// querySystemPrompt is the standalone variant: same grounding contract,
// framed for a non-technical audience.
const querySystemPrompt = `You are a security analysis assistant.

Answer ONLY using the provided scan findings.
If the information is not present, say: "Not detected in the scans."
Explain clearly for a non-technical audience.
Do not exaggerate risks.`

// Ensure assistantService implements AssistantService
var _ driving.AssistantService = (*assistantService)(nil)

// assistantService is the query orchestrator: retrieve, steer, generate,
// score. Session state decides whether a turn is the neutral baseline.
type assistantService struct {
	index    driven.VectorIndex
	sessions driven.SessionStore
	history  driven.HistoryStore // optional, may be nil
	services *runtime.Services   // Dynamic AI services
	logger   *slog.Logger
}

// NewAssistantService creates a new AssistantService.
// AI services (embedder, generator) are accessed dynamically via
// runtime.Services. The history store is optional.
func NewAssistantService(
	index driven.VectorIndex,
	sessions driven.SessionStore,
	history driven.HistoryStore,
	services *runtime.Services,
	logger *slog.Logger,
) driving.AssistantService {
	if logger == nil {
		logger = slog.Default()
	}
	return &assistantService{
		index:    index,
		sessions: sessions,
		history:  history,
		services: services,
		logger:   logger,
	}
}

// OpenSession creates a fresh session in the first-turn state.
func (s *assistantService) OpenSession(ctx context.Context) (*domain.Session, error) {
	session := domain.NewSession("")
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return session, nil
}

// Ask answers a question within a session.
func (s *assistantService) Ask(ctx context.Context, sessionID string, question string) (*domain.AnswerResult, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: empty question", domain.ErrInvalidInput)
	}

	session, err := s.sessions.Get(ctx, sessionID)
	if errors.Is(err, domain.ErrSessionNotFound) {
		// Unknown or expired session IDs start a fresh session rather than
		// failing the question.
		session = domain.NewSession(sessionID)
	} else if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	contextText, err := s.retrieveContext(ctx, question)
	if err != nil {
		return nil, err
	}

	firstTurn := session.FirstTurn

	var intent domain.Intent
	var instructions string
	if firstTurn {
		intent = domain.IntentBaseline
		instructions = ""
	} else {
		intent = ClassifyIntent(question)
		instructions, err = PolicyInstruction(intent)
		if err != nil {
			return nil, err
		}
	}

	prompt := buildAssistantPrompt(instructions, contextText, question)
	answer, err := s.generate(ctx, prompt, askMaxTokens)
	if err != nil {
		return nil, err
	}

	result := &domain.AnswerResult{
		Answer:       answer,
		Intent:       intent,
		Instructions: instructions,
	}
	if !firstTurn {
		reward, components := ScoreAnswer(answer, contextText)
		result.Reward = &reward
		result.Components = &components
	}

	// The first completed query flips the session out of the baseline state.
	session.FirstTurn = false
	session.LastSeenAt = time.Now()
	if err := s.sessions.Save(ctx, session); err != nil {
		s.logger.Warn("failed to save session state", "session", session.ID, "error", err)
	}

	s.recordTurn(ctx, session.ID, question, result)

	return result, nil
}

// Query is the standalone one-shot path: no session, no policy, no reward.
func (s *assistantService) Query(ctx context.Context, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", fmt.Errorf("%w: empty question", domain.ErrInvalidInput)
	}

	contextText, err := s.retrieveContext(ctx, question)
	if err != nil {
		return "", err
	}

	prompt := buildQueryPrompt(contextText, question)
	return s.generate(ctx, prompt, queryMaxTokens)
}

// retrieveContext embeds the question and assembles the retrieval context:
// top-k documents, each truncated to contextCharLimit characters, joined by
// a blank line. Zero retrieved documents is not an error; the grounding
// prompt handles the empty case.
func (s *assistantService) retrieveContext(ctx context.Context, question string) (string, error) {
	embedder := s.services.Embedder()
	if embedder == nil {
		return "", fmt.Errorf("%w: no embedder configured", domain.ErrServiceUnavailable)
	}

	vector, err := embedder.EmbedQuery(ctx, question)
	if err != nil {
		return "", fmt.Errorf("embed question: %w", err)
	}

	docs, err := s.index.Search(ctx, vector, retrievalK)
	if err != nil {
		return "", fmt.Errorf("retrieve context: %w", err)
	}

	parts := make([]string, 0, len(docs))
	for _, doc := range docs {
		parts = append(parts, truncateRunes(doc.Text, contextCharLimit))
	}
	return strings.Join(parts, "\n\n"), nil
}

// generate invokes the language model at temperature 0 and trims the output.
// Provider failures map to domain.ErrGeneration; no partial answer is ever
// returned.
func (s *assistantService) generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	generator := s.services.Generator()
	if generator == nil {
		return "", fmt.Errorf("%w: no language model configured", domain.ErrServiceUnavailable)
	}

	answer, err := generator.Generate(ctx, prompt, driven.GenerateOptions{
		Temperature: 0,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrGeneration, err)
	}
	return strings.TrimSpace(answer), nil
}

// recordTurn persists the exchange for offline reward analysis.
// Best-effort: a failed write is logged, never surfaced.
func (s *assistantService) recordTurn(ctx context.Context, sessionID, question string, result *domain.AnswerResult) {
	if s.history == nil {
		return
	}
	turn := &domain.Turn{
		ID:           domain.GenerateID(),
		SessionID:    sessionID,
		Question:     question,
		Answer:       result.Answer,
		Intent:       result.Intent,
		Instructions: result.Instructions,
		Reward:       result.Reward,
		Components:   result.Components,
		CreatedAt:    time.Now(),
	}
	if err := s.history.Record(ctx, turn); err != nil {
		s.logger.Warn("failed to record turn", "session", sessionID, "error", err)
	}
}

// buildAssistantPrompt assembles the four fixed prompt blocks in order.
func buildAssistantPrompt(instructions, context, question string) string {
	var b strings.Builder
	b.WriteString(assistantSystemPrompt)
	b.WriteString("\n\n[INSTRUCTIONS]\n")
	b.WriteString(instructions)
	b.WriteString("\n\n[SCAN FINDINGS]\n")
	b.WriteString(context)
	b.WriteString("\n\n[QUESTION]\n")
	b.WriteString(question)
	b.WriteString("\n\n[ANSWER]\n")
	return b.String()
}

func buildQueryPrompt(context, question string) string {
	var b strings.Builder
	b.WriteString(querySystemPrompt)
	b.WriteString("\n\nScan Findings:\n")
	b.WriteString(context)
	b.WriteString("\n\nQuestion:\n")
	b.WriteString(question)
	b.WriteString("\n\nAnswer:\n")
	return b.String()
}

// truncateRunes caps s at n characters, rune-safe.
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
