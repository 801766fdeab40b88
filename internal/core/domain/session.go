package domain

import (
	"crypto/rand"
	"encoding/base64"
	"time"
)

// GenerateID creates a unique random ID.
func GenerateID() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}

// Session tracks per-session conversation state. The only behavioural state
// is the first-turn flag: the first query of a session is answered without
// policy steering and without a reward score, establishing a neutral
// baseline before adaptive behaviour kicks in.
//
// State is keyed by session ID rather than held in a process-wide flag, so
// concurrent sessions each get their own baseline turn.
type Session struct {
	ID         string    `json:"id"`
	FirstTurn  bool      `json:"first_turn"`
	CreatedAt  time.Time `json:"created_at"`
	LastSeenAt time.Time `json:"last_seen_at"`
}

// NewSession creates a fresh session in the first-turn state.
func NewSession(id string) *Session {
	if id == "" {
		id = GenerateID()
	}
	now := time.Now()
	return &Session{
		ID:         id,
		FirstTurn:  true,
		CreatedAt:  now,
		LastSeenAt: now,
	}
}
