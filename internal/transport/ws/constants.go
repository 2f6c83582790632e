package ws

import (
	"time"

	"github.com/osse101/HarvestRealm_Go/internal/protocol"
)

// Connection timing
const (
	HandshakeTimeout = 5 * time.Second
	WriteWait        = 5 * time.Second
	PongWait         = 60 * time.Second
	PingPeriod       = PongWait * 9 / 10
	CloseGrace       = time.Second
)

// Buffer sizes
const (
	ReadBufferSize  = 4 * 1024
	WriteBufferSize = 16 * 1024

	// ReadLimit leaves room for oversized frames to be rejected with a
	// game_error instead of a protocol close.
	ReadLimit = 4 * protocol.MaxFrameBytes

	// DefaultQueueSize bounds a session's outbound queue when the caller
	// does not set one.
	DefaultQueueSize = 256
	directQueueSize  = 8
)

// URLParamWorldID is the chi route parameter holding the world id
const URLParamWorldID = "worldId"

// Close reasons
const (
	ReasonExpectedJoin  = "first message must be join"
	ReasonAuthFailed    = "authentication failed"
	ReasonUnavailable   = "world unavailable"
	ReasonSessionClosed = "session closed"
)

// Log messages
const (
	LogMsgUpgradeFailed   = "WebSocket upgrade failed"
	LogMsgHandshakeFailed = "WebSocket handshake failed"
	LogMsgAuthFailed      = "Join claim rejected"
	LogMsgJoinFailed      = "Failed to join room"
	LogMsgConnected       = "Session connected"
	LogMsgDisconnected    = "Session disconnected"
	LogMsgWriteFailed     = "WebSocket write failed"
	LogMsgBadWorldID      = "Rejected world id"
	LogMsgOriginRejected  = "WebSocket origin rejected"
)
