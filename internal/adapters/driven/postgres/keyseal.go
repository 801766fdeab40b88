package postgres

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
)

// Sealed API keys are stored in ai_settings as version || nonce || ciphertext.
// The version byte is bound into the GCM additional data, so a blob written
// under a future format never opens under the v1 rules.
const (
	sealVersion  = 0x01
	sealNonceLen = 12
	sealKeyLen   = 32
)

var (
	// ErrSealKeySize is returned when the sealing key is not 32 bytes.
	ErrSealKeySize = errors.New("sealing key must be 32 bytes")

	// ErrSealedBlobMalformed is returned for blobs too short to carry a key.
	ErrSealedBlobMalformed = errors.New("sealed blob is malformed")

	// ErrSealedBlobVersion is returned for blobs with an unknown version byte.
	ErrSealedBlobVersion = errors.New("unsupported sealed blob version")

	// ErrUnsealFailed is returned when authentication fails: wrong sealing
	// key, tampered blob, or a version byte swapped after sealing.
	ErrUnsealFailed = errors.New("cannot unseal blob")
)

// APIKeySealer encrypts provider API keys with AES-256-GCM before they reach
// the ai_settings row. Only keys are sealed; the rest of the settings row is
// stored in the clear.
type APIKeySealer struct {
	aead cipher.AEAD
}

// NewAPIKeySealer creates a sealer from a 32-byte key.
func NewAPIKeySealer(key []byte) (*APIKeySealer, error) {
	if len(key) != sealKeyLen {
		return nil, fmt.Errorf("%w: got %d bytes", ErrSealKeySize, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("init cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("init GCM: %w", err)
	}

	return &APIKeySealer{aead: aead}, nil
}

// Seal encrypts an API key for storage. Each call draws a fresh nonce, so
// sealing the same key twice yields different blobs.
func (s *APIKeySealer) Seal(apiKey string) ([]byte, error) {
	blob := make([]byte, 1+sealNonceLen, 1+sealNonceLen+len(apiKey)+s.aead.Overhead())
	blob[0] = sealVersion
	if _, err := rand.Read(blob[1 : 1+sealNonceLen]); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}
	return s.aead.Seal(blob, blob[1:1+sealNonceLen], []byte(apiKey), blob[:1]), nil
}

// Open decrypts a sealed blob back to the API key.
func (s *APIKeySealer) Open(blob []byte) (string, error) {
	if len(blob) < 1+sealNonceLen+s.aead.Overhead() {
		return "", ErrSealedBlobMalformed
	}
	if blob[0] != sealVersion {
		return "", fmt.Errorf("%w: got version %d", ErrSealedBlobVersion, blob[0])
	}

	apiKey, err := s.aead.Open(nil, blob[1:1+sealNonceLen], blob[1+sealNonceLen:], blob[:1])
	if err != nil {
		return "", ErrUnsealFailed
	}
	return string(apiKey), nil
}
