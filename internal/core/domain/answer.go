package domain

import "time"

// RewardComponents breaks a reward down into its three signals.
// C is context adherence in [0,1], H is the hallucination flag (0 or 1),
// V is the verbosity penalty in [0,1].
type RewardComponents struct {
	C float64 `json:"C"`
	H float64 `json:"H"`
	V float64 `json:"V"`
}

// AnswerResult is the outcome of a single assistant query.
// Reward and Components are nil on the baseline (first) turn of a session.
type AnswerResult struct {
	Answer       string            `json:"answer"`
	Intent       Intent            `json:"intent"`
	Instructions string            `json:"instructions"`
	Reward       *float64          `json:"reward"`
	Components   *RewardComponents `json:"reward_components"`
}

// Turn is one recorded question/answer exchange. Turns are persisted by the
// history store so reward distributions can be analysed offline for policy
// tuning.
type Turn struct {
	ID           string            `json:"id"`
	SessionID    string            `json:"session_id"`
	Question     string            `json:"question"`
	Answer       string            `json:"answer"`
	Intent       Intent            `json:"intent"`
	Instructions string            `json:"instructions"`
	Reward       *float64          `json:"reward,omitempty"`
	Components   *RewardComponents `json:"reward_components,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
}
