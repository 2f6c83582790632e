package protocol

// Inbound message types
const (
	TypeJoin    = "join"
	TypeMove    = "move"
	TypeChat    = "chat"
	TypePlant   = "plant"
	TypeHarvest = "harvest"
	TypePing    = "ping"
)

// Outbound message types. TypeChat is used in both directions.
const (
	TypeWelcome       = "welcome"
	TypeState         = "state"
	TypeStatePatch    = "state_patch"
	TypeSeedPlanted   = "seed_planted"
	TypeCropHarvested = "crop_harvested"
	TypeGameError     = "game_error"
	TypePong          = "pong"
	TypePlayerJoined  = "player-joined"
	TypePlayerLeft    = "player-left"
	TypeCropPlanted   = "crop_planted"
	TypeHarvestEvent  = "harvest_event"
)

// Payload limits
const (
	MaxFrameBytes    = 16 * 1024
	MaxRawChatBytes  = 4096
	MaxCropIDLength  = 64
	MaxSeedTagLength = 32
)

// Error messages
const (
	ErrMsgMalformedEnvelope = "malformed message envelope"
	ErrMsgUnknownType       = "unknown message type"
	ErrMsgMalformedPayload  = "malformed message payload"
	ErrMsgFrameTooLarge     = "message exceeds maximum size"
)

// WelcomeMessage is the greeting text sent on join
const WelcomeMessage = "Welcome to HarvestRealm"
