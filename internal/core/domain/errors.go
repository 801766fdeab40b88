package domain

import "errors"

// Domain errors - used across all layers
var (
	// ErrNotFound indicates the requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates the input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmptyCorpus indicates indexing found no usable documents
	ErrEmptyCorpus = errors.New("no usable documents in corpus")

	// ErrIndexUnavailable indicates the persisted vector index is missing or unreadable
	ErrIndexUnavailable = errors.New("vector index unavailable")

	// ErrGeneration indicates the language model call failed or timed out
	ErrGeneration = errors.New("generation failed")

	// ErrUnknownIntent indicates a policy lookup for an intent outside the
	// enumeration. This is a programming error, not a runtime condition.
	ErrUnknownIntent = errors.New("unknown intent")

	// ErrSessionNotFound indicates the session does not exist or expired
	ErrSessionNotFound = errors.New("session not found")

	// ErrRebuildInProgress indicates another index rebuild holds the lock
	ErrRebuildInProgress = errors.New("index rebuild already in progress")

	// ErrUnauthorized indicates authentication failed or missing
	ErrUnauthorized = errors.New("unauthorized")

	// ErrTokenInvalid indicates the bearer token is malformed or invalid
	ErrTokenInvalid = errors.New("token invalid")

	// ErrInvalidProvider indicates an unknown AI provider was specified
	ErrInvalidProvider = errors.New("invalid provider")

	// ErrServiceUnavailable indicates the AI service could not be reached
	ErrServiceUnavailable = errors.New("service unavailable")
)
