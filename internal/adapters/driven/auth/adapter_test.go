package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/hardline-labs/scanwise-core/internal/core/domain"
)

func TestAdapter_PasswordRoundTrip(t *testing.T) {
	a := NewAdapter("secret", time.Hour)

	hash, err := a.HashPassword("hunter2")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "hunter2" {
		t.Error("hash should not equal plaintext")
	}

	if !a.VerifyPassword("hunter2", hash) {
		t.Error("expected correct password to verify")
	}
	if a.VerifyPassword("wrong", hash) {
		t.Error("expected wrong password to fail")
	}
}

func TestAdapter_TokenRoundTrip(t *testing.T) {
	a := NewAdapter("secret", time.Hour)

	token, err := a.GenerateToken("session-123")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	sessionID, err := a.ParseToken(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if sessionID != "session-123" {
		t.Errorf("expected session-123, got %s", sessionID)
	}
}

func TestAdapter_ParseToken_WrongSecret(t *testing.T) {
	a := NewAdapter("secret", time.Hour)
	b := NewAdapter("different", time.Hour)

	token, err := a.GenerateToken("session-123")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	_, err = b.ParseToken(token)
	if !errors.Is(err, domain.ErrTokenInvalid) {
		t.Errorf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestAdapter_ParseToken_Expired(t *testing.T) {
	a := NewAdapter("secret", -time.Hour)

	token, err := a.GenerateToken("session-123")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	_, err = a.ParseToken(token)
	if !errors.Is(err, domain.ErrTokenInvalid) {
		t.Errorf("expected ErrTokenInvalid for expired token, got %v", err)
	}
}

func TestAdapter_ParseToken_Garbage(t *testing.T) {
	a := NewAdapter("secret", time.Hour)

	_, err := a.ParseToken("not.a.token")
	if !errors.Is(err, domain.ErrTokenInvalid) {
		t.Errorf("expected ErrTokenInvalid, got %v", err)
	}
}
