package domain

import (
	"fmt"
	"strings"
	"time"
)

// SeedType is the closed set of plantable seed kinds.
type SeedType string

const (
	SeedUSDCSprout SeedType = "usdc_sprout"
	SeedETHBean    SeedType = "eth_bean"
	SeedBTCTree    SeedType = "btc_tree"
)

// SeedTypes lists every seed type in display order.
var SeedTypes = []SeedType{SeedUSDCSprout, SeedETHBean, SeedBTCTree}

// ParseSeedType maps a client-supplied tag onto the closed seed set.
// Unknown tags are rejected rather than defaulted.
func ParseSeedType(tag string) (SeedType, error) {
	t := SeedType(strings.TrimSpace(tag))
	for _, known := range SeedTypes {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidSeedType, tag)
}

// Stage is the derived growth stage of a crop. It is never stored.
type Stage string

const (
	StageSeed    Stage = "seed"
	StageSprout  Stage = "sprout"
	StageGrowing Stage = "growing"
	StageMature  Stage = "mature"
	StageReady   Stage = "ready"
)

// stageOrder gives each stage its position in the growth sequence.
var stageOrder = map[Stage]int{
	StageSeed:    0,
	StageSprout:  1,
	StageGrowing: 2,
	StageMature:  3,
	StageReady:   4,
}

// Rank returns the position of s in the growth sequence, or -1 if unknown.
func (s Stage) Rank() int {
	if r, ok := stageOrder[s]; ok {
		return r
	}
	return -1
}

// Crop is a planted crop. Once Harvested is true the record is history and is not modified again.
type Crop struct {
	ID               string        `json:"id"`
	PlayerID         string        `json:"playerId"`
	WorldID          string        `json:"worldId"`
	SeedType         SeedType      `json:"seedType"`
	X                float64       `json:"x"`
	Y                float64       `json:"y"`
	PlantedAt        time.Time     `json:"plantedAt"`
	GrowthTime       time.Duration `json:"-"`
	InvestmentAmount float64       `json:"investmentAmount"`
	Harvested        bool          `json:"harvested"`
	YieldAmount      *float64      `json:"yieldAmount,omitempty"`
	HarvestedAt      *time.Time    `json:"harvestedAt,omitempty"`
	CreatedAt        time.Time     `json:"-"`
	UpdatedAt        time.Time     `json:"-"`
}

// GrowthTimeMs is the growth duration in milliseconds, the unit used on the wire and in storage.
func (c *Crop) GrowthTimeMs() int64 {
	return c.GrowthTime.Milliseconds()
}
