package driving

import (
	"context"

	"github.com/hardline-labs/scanwise-core/internal/core/domain"
)

// AssistantService answers natural-language questions about indexed scan
// findings.
type AssistantService interface {
	// Ask answers a question within a session. The first turn of a session
	// is the un-steered, un-scored baseline; later turns are classified,
	// policy-steered and reward-scored.
	Ask(ctx context.Context, sessionID string, question string) (*domain.AnswerResult, error)

	// Query is the standalone path: one-shot, no session, no policy
	// steering and no reward. Same grounding contract with a tighter
	// output budget and a non-technical audience framing.
	Query(ctx context.Context, question string) (string, error)

	// OpenSession creates a fresh session in the first-turn state.
	OpenSession(ctx context.Context) (*domain.Session, error)
}
