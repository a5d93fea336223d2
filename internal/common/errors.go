// Package common defines shared constants and sentinel errors used across
// client and server layers of GophAuth. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Request validation errors. Wrapped with a detail the caller can act on.
	ErrorInvalidInput = errors.New("invalid input")

	// Repository-level errors.
	ErrorNotFound = errors.New("not found")
	ErrorConflict = errors.New("conflict")

	// Service-level errors.
	ErrorInternal      = errors.New("internal error")
	ErrorUnauthorized  = errors.New("unauthorized")
	ErrorStoreFailure  = errors.New("store failure")
	ErrorCryptoFailure = errors.New("crypto failure")

	// Auth errors (invalid or malformed token). The causes below are always
	// wrapped together with ErrInvalidToken.
	ErrInvalidToken   = errors.New("invalid token")
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenMalformed = errors.New("token malformed")
	ErrTokenSignature = errors.New("token signature mismatch")
	ErrTokenKind      = errors.New("unexpected token kind")

	// Refresh token presented a second time while reuse detection is on.
	ErrRefreshTokenReused = errors.New("refresh token reused")
)
