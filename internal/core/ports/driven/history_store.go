package driven

import (
	"context"

	"github.com/hardline-labs/scanwise-core/internal/core/domain"
)

// HistoryStore persists answered turns with their intent and reward
// diagnostics. The recorded reward distribution feeds offline policy tuning;
// losing a record is annoying but not fatal, so callers treat Record errors
// as non-fatal.
type HistoryStore interface {
	// Record persists a completed turn
	Record(ctx context.Context, turn *domain.Turn) error

	// ListBySession retrieves the turns of one session, oldest first
	ListBySession(ctx context.Context, sessionID string, limit int) ([]*domain.Turn, error)

	// Count returns the total number of recorded turns
	Count(ctx context.Context) (int, error)
}
