package domain

import "time"

// WorldSummary is one row of the world listing. A world is keyed by its owner.
type WorldSummary struct {
	OwnerID     string    `json:"ownerId"`
	OwnerName   string    `json:"ownerName"`
	OwnerXP     int64     `json:"ownerXp"`
	ActiveCrops int       `json:"activeCrops"`
	TotalCrops  int       `json:"totalCrops"`
	LastPlanted time.Time `json:"lastPlanted"`
}
