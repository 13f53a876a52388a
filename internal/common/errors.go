// Package common defines shared constants and sentinel errors used across
// client and server layers of CrewDesk. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrInternal      = errors.New("internal error")
	ErrAlreadyExists = errors.New("already exists")
	ErrValidation    = errors.New("validation error")

	// Session errors (no active user context, or the server rejected the token).
	ErrNotAuthenticated = errors.New("not authenticated")

	// Feed errors.
	ErrSendFailed       = errors.New("send failed")
	ErrLoadFailed       = errors.New("load failed")
	ErrConversionFailed = errors.New("conversion failed")
	ErrFeedClosed       = errors.New("feed closed")
)
