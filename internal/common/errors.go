// Package common defines shared constants and sentinel errors used across
// client and server layers of ExpenseKeeper. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Validation errors. Must be produced before any store mutation.
	ErrorValidation = errors.New("validation error")
	ErrorEmptyPatch = errors.New("empty patch")

	// Upload-choreography stage errors (see internal/client/upload).
	ErrSigning  = errors.New("signing failed")
	ErrTransfer = errors.New("transfer failed")
	ErrAttach   = errors.New("attach failed")

	// Auth errors (invalid or malformed session token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
