package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hardline-labs/scanwise-core/internal/core/domain"
	"github.com/hardline-labs/scanwise-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.HistoryStore = (*HistoryStore)(nil)

// HistoryStore implements driven.HistoryStore using PostgreSQL.
// Recorded turns feed offline analysis of the reward distribution.
type HistoryStore struct {
	db *DB
}

// NewHistoryStore creates a new HistoryStore
func NewHistoryStore(db *DB) *HistoryStore {
	return &HistoryStore{db: db}
}

// Record persists a completed turn
func (s *HistoryStore) Record(ctx context.Context, turn *domain.Turn) error {
	query := `
		INSERT INTO turns (id, session_id, question, answer, intent, instructions,
						   reward, reward_c, reward_h, reward_v, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	var reward, c, h, v sql.NullFloat64
	if turn.Reward != nil {
		reward = sql.NullFloat64{Float64: *turn.Reward, Valid: true}
	}
	if turn.Components != nil {
		c = sql.NullFloat64{Float64: turn.Components.C, Valid: true}
		h = sql.NullFloat64{Float64: turn.Components.H, Valid: true}
		v = sql.NullFloat64{Float64: turn.Components.V, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, query,
		turn.ID,
		turn.SessionID,
		turn.Question,
		turn.Answer,
		string(turn.Intent),
		turn.Instructions,
		reward,
		c,
		h,
		v,
		turn.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("record turn: %w", err)
	}
	return nil
}

// ListBySession retrieves the turns of one session, oldest first
func (s *HistoryStore) ListBySession(ctx context.Context, sessionID string, limit int) ([]*domain.Turn, error) {
	query := `
		SELECT id, session_id, question, answer, intent, instructions,
			   reward, reward_c, reward_h, reward_v, created_at
		FROM turns
		WHERE session_id = $1
		ORDER BY created_at ASC
		LIMIT $2
	`
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx, query, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("list turns: %w", err)
	}
	defer rows.Close()

	var turns []*domain.Turn
	for rows.Next() {
		var turn domain.Turn
		var intent string
		var reward, c, h, v sql.NullFloat64

		err := rows.Scan(
			&turn.ID,
			&turn.SessionID,
			&turn.Question,
			&turn.Answer,
			&intent,
			&turn.Instructions,
			&reward,
			&c,
			&h,
			&v,
			&turn.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}

		turn.Intent = domain.Intent(intent)
		if reward.Valid {
			turn.Reward = &reward.Float64
		}
		if c.Valid {
			turn.Components = &domain.RewardComponents{
				C: c.Float64,
				H: h.Float64,
				V: v.Float64,
			}
		}
		turns = append(turns, &turn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate turns: %w", err)
	}

	return turns, nil
}

// Count returns the total number of recorded turns
func (s *HistoryStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM turns`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count turns: %w", err)
	}
	return count, nil
}
