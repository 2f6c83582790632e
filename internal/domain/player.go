package domain

import "time"

// Player is the durable record of a participant, keyed by address.
type Player struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	XP        int64     `json:"xp"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LivePlayer is the in-memory, replicated view of a player inside one room.
// It is keyed by session id; the same PlayerID may reappear under a new session.
type LivePlayer struct {
	SessionID string    `json:"sessionId"`
	PlayerID  string    `json:"playerId"`
	Name      string    `json:"name"`
	XP        int64     `json:"xp"`
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
	Connected bool      `json:"connected"`
	IsHost    bool      `json:"isHost"`
	LastSeen  time.Time `json:"lastSeen"`
}
