package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/hardline-labs/scanwise-core/internal/core/domain"
)

// sessionClaims carries the session ID inside a signed JWT.
type sessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// Adapter mints and verifies session bearer tokens (HS256 JWT) and checks
// the optional operator password (bcrypt).
type Adapter struct {
	jwtSecret  []byte
	tokenTTL   time.Duration
	bcryptCost int
}

// NewAdapter creates an auth adapter with the given JWT secret and token
// lifetime.
func NewAdapter(jwtSecret string, tokenTTL time.Duration) *Adapter {
	if tokenTTL == 0 {
		tokenTTL = 24 * time.Hour
	}
	return &Adapter{
		jwtSecret:  []byte(jwtSecret),
		tokenTTL:   tokenTTL,
		bcryptCost: bcrypt.DefaultCost,
	}
}

// HashPassword generates a bcrypt hash from a plaintext password
func (a *Adapter) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), a.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword checks if a password matches a bcrypt hash
func (a *Adapter) VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// GenerateToken creates a signed JWT bound to a session ID
func (a *Adapter) GenerateToken(sessionID string) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.tokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.jwtSecret)
}

// ParseToken validates a JWT and extracts the session ID.
// Returns domain.ErrTokenInvalid for expired, malformed, or tampered tokens.
func (a *Adapter) ParseToken(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &sessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.jwtSecret, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrTokenInvalid, err)
	}

	claims, ok := token.Claims.(*sessionClaims)
	if !ok || !token.Valid || claims.SessionID == "" {
		return "", domain.ErrTokenInvalid
	}
	return claims.SessionID, nil
}
