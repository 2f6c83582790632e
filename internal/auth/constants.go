package auth

import "time"

// Close code sent on the websocket when the join claim is rejected.
const CloseCodeAuthFailed = 4001

// Name limits
const (
	MaxNameRunes = 32
	MaxTokenLen  = 128
)

// Verified-token cache sizing
const (
	TokenCacheSize = 4096
	TokenCacheTTL  = 10 * time.Minute
)

// Error detail messages
const (
	ErrMsgMissingClaim  = "missing join claim"
	ErrMsgMalformedID   = "player id must be a 0x-prefixed 40 hex character address"
	ErrMsgMalformedJoin = "malformed join claim"
	ErrMsgTokenRequired = "auth token required"
	ErrMsgTokenMismatch = "auth token does not match player id"
	ErrMsgEmptySecret   = "auth secret must be set when tokens are required"
)
