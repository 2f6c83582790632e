package handler

import "time"

// Generic HTTP error messages for client responses.
// These messages do not expose internal error details.
const (
	ErrMsgInvalidRequestSummary = "Invalid request"
	ErrMsgInvalidQueryParam     = "Invalid %s query parameter"
	ErrMsgGenericServerError    = "Something went wrong"
	ErrMsgUnavailableError      = "Server is temporarily unavailable. Please try again later."
	ErrMsgDatabaseUnavailable   = "database connection failed"
)

// Health statuses
const (
	StatusOK          = "ok"
	StatusUnavailable = "unavailable"
)

// Log messages
const (
	LogMsgReadinessFailed  = "Readiness check failed"
	LogMsgEncodeFailed     = "Failed to encode JSON response"
	LogMsgWriteFailed      = "Failed to write response buffer"
	LogMsgListWorldsFailed = "Failed to list worlds"
)

// World listing paging
const (
	DefaultWorldsLimit = 20
	MaxWorldsLimit     = 100
	WorldsCacheSize    = 256
)

// ReadinessTimeout bounds the ledger ping in /readyz
const ReadinessTimeout = 2 * time.Second
