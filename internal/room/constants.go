package room

import "errors"

// Channel sizes
const (
	joinQueueSize    = 64
	leaveQueueSize   = 64
	inboxSize        = 1024
	resultsQueueSize = 256
)

// Log messages
const (
	LogMsgRoomStarted       = "Room started"
	LogMsgRoomStopped       = "Room stopped"
	LogMsgRoomReaped        = "Idle room closed"
	LogMsgPlayerJoined      = "Player joined"
	LogMsgPlayerReconnected = "Player reconnected within grace window"
	LogMsgPlayerDisconnect  = "Player disconnected"
	LogMsgPlayerMoved       = "Player moved"
	LogMsgPlayerEvicted     = "Player evicted"
	LogMsgJoinFailed        = "Join hydration failed"
	LogMsgCropPlanted       = "Crop planted"
	LogMsgCropHarvested     = "Crop harvested"
	LogMsgVisitorMutation   = "Visitor attempted to mutate crops"
	LogMsgPersistenceFailed = "Ledger transaction failed"
	LogMsgJournalFailed     = "Failed to write economy journal"
	LogMsgJobRejected       = "Worker queue full, rejecting ledger job"
	LogMsgEncodeFailed      = "Failed to encode outbound message"
)

// Error messages
const (
	ErrMsgRoomClosed    = "room is closed"
	ErrMsgManagerClosed = "room manager is shut down"
	ErrMsgServerBusy    = "server is busy"
	ErrMsgOutOfBounds   = "position is outside the world"
	ErrMsgEmptyChat     = "chat text is empty"
	ErrMsgMissingLedger = "room dependencies require a ledger and a worker pool"
)

var (
	// ErrRoomClosed is returned to callers of a room that has stopped
	ErrRoomClosed = errors.New(ErrMsgRoomClosed)
	// ErrManagerClosed is returned by Open after Shutdown
	ErrManagerClosed = errors.New(ErrMsgManagerClosed)
	// ErrServerBusy is returned when the worker pool rejects a ledger job
	ErrServerBusy = errors.New(ErrMsgServerBusy)
)

// metricTypeUnknown labels inbound messages with an unrecognized type
const metricTypeUnknown = "unknown"
