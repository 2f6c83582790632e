package protocol

import (
	"time"

	"github.com/osse101/HarvestRealm_Go/internal/crop"
	"github.com/osse101/HarvestRealm_Go/internal/domain"
)

// Inbound payloads. Coordinates are pointers so a missing field is a
// validation error rather than a silent zero.

type Move struct {
	X *float64 `json:"x" validate:"required"`
	Y *float64 `json:"y" validate:"required"`
}

type Chat struct {
	Text string `json:"text" validate:"required,max=4096"`
}

type Plant struct {
	SeedType   string   `json:"seedType" validate:"required,max=32"`
	X          *float64 `json:"x" validate:"required"`
	Y          *float64 `json:"y" validate:"required"`
	Investment *float64 `json:"investment" validate:"required,lte=1000000000000"`
}

type Harvest struct {
	CropID string `json:"cropId" validate:"required,max=64"`
}

type Ping struct{}

// Outbound payloads

type Welcome struct {
	Message      string `json:"message"`
	PlayerID     string `json:"playerId"`
	SessionID    string `json:"sessionId"`
	IsHost       bool   `json:"isHost"`
	WorldOwnerID string `json:"worldOwnerId"`
	ServerTime   int64  `json:"serverTime"`
}

// State is the full snapshot sent to a session when it joins
type State struct {
	Players    []domain.LivePlayer `json:"players"`
	Crops      []CropView          `json:"crops"`
	ServerTime int64               `json:"serverTime"`
}

// StatePatch carries only the entities that changed since the previous tick
type StatePatch struct {
	Players        []domain.LivePlayer `json:"players,omitempty"`
	Crops          []CropView          `json:"crops,omitempty"`
	RemovedPlayers []string            `json:"removedPlayers,omitempty"`
	RemovedCrops   []string            `json:"removedCrops,omitempty"`
	ServerTime     int64               `json:"serverTime"`
}

// Empty reports whether the patch carries no changes
func (p *StatePatch) Empty() bool {
	return len(p.Players) == 0 && len(p.Crops) == 0 && len(p.RemovedPlayers) == 0 && len(p.RemovedCrops) == 0
}

type SeedPlanted struct {
	CropID   string   `json:"cropId"`
	Crop     CropView `json:"crop"`
	XPGained int64    `json:"xpGained"`
	NewXP    int64    `json:"newXP"`
}

type CropHarvested struct {
	CropID      string  `json:"cropId"`
	YieldAmount float64 `json:"yieldAmount"`
	XPGained    int64   `json:"xpGained"`
	NewXP       int64   `json:"newXP"`
}

type Pong struct {
	Timestamp int64 `json:"timestamp"`
}

type PlayerLeft struct {
	SessionID string `json:"sessionId"`
	PlayerID  string `json:"playerId"`
}

type ChatEvent struct {
	SessionID string `json:"sessionId"`
	PlayerID  string `json:"playerId"`
	Name      string `json:"name"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`
}

type CropPlanted struct {
	PlayerID string   `json:"playerId"`
	Crop     CropView `json:"crop"`
}

type HarvestEvent struct {
	CropID      string          `json:"cropId"`
	PlayerID    string          `json:"playerId"`
	SeedType    domain.SeedType `json:"seedType"`
	YieldAmount float64         `json:"yieldAmount"`
}

// CropView is the replicated form of a crop with its derived stage.
// Times are unix milliseconds.
type CropView struct {
	ID               string          `json:"id"`
	PlayerID         string          `json:"playerId"`
	SeedType         domain.SeedType `json:"seedType"`
	X                float64         `json:"x"`
	Y                float64         `json:"y"`
	PlantedAt        int64           `json:"plantedAt"`
	GrowthTime       int64           `json:"growthTime"`
	InvestmentAmount float64         `json:"investmentAmount"`
	Harvested        bool            `json:"harvested"`
	YieldAmount      *float64        `json:"yieldAmount,omitempty"`
	HarvestedAt      *int64          `json:"harvestedAt,omitempty"`
	Stage            domain.Stage    `json:"stage"`
	Progress         float64         `json:"progress"`
}

// NewCropView derives the stage and progress of c as of now
func NewCropView(c *domain.Crop, now time.Time) CropView {
	v := CropView{
		ID:               c.ID,
		PlayerID:         c.PlayerID,
		SeedType:         c.SeedType,
		X:                c.X,
		Y:                c.Y,
		PlantedAt:        c.PlantedAt.UnixMilli(),
		GrowthTime:       c.GrowthTimeMs(),
		InvestmentAmount: c.InvestmentAmount,
		Harvested:        c.Harvested,
		YieldAmount:      c.YieldAmount,
		Stage:            crop.DeriveStage(c.PlantedAt, c.GrowthTime, now),
		Progress:         crop.Progress(c.PlantedAt, c.GrowthTime, now),
	}
	if c.HarvestedAt != nil {
		at := c.HarvestedAt.UnixMilli()
		v.HarvestedAt = &at
	}
	return v
}
