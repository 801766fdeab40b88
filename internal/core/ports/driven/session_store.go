package driven

import (
	"context"

	"github.com/hardline-labs/scanwise-core/internal/core/domain"
)

// SessionStore handles conversation session persistence (Redis or memory).
// A session's only behavioural state is the first-turn flag.
type SessionStore interface {
	// Save stores a session, refreshing its TTL
	Save(ctx context.Context, session *domain.Session) error

	// Get retrieves a session by ID.
	// Returns domain.ErrSessionNotFound when absent or expired.
	Get(ctx context.Context, id string) (*domain.Session, error)

	// Delete deletes a session
	Delete(ctx context.Context, id string) error
}
