// Package common defines sentinel errors shared by the store, the drive API
// client and the sync services. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound    = errors.New("not found")
	ErrInvalidRecord = errors.New("invalid index record")

	// Store lifecycle errors.
	ErrStoreClosed       = errors.New("store is closed")
	ErrUnsupportedDriver = errors.New("unsupported database driver")

	// Batch-apply validation errors.
	ErrTagScope          = errors.New("tag record does not belong to the batch file")
	ErrStreamKeyRequired = errors.New("cursor supplied without a stream key")

	// Remote errors.
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
	ErrTokenExpired = errors.New("token expired")
	ErrInvalidToken = errors.New("invalid token")

	// Crypto errors.
	ErrNoSharedSecret   = errors.New("shared secret not available")
	ErrInvalidKeyHeader = errors.New("invalid key header")

	// Event bus errors.
	ErrBusClosed = errors.New("event bus is closed")
)
