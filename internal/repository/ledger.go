package repository

import (
	"context"
	"time"

	"github.com/osse101/HarvestRealm_Go/internal/domain"
)

// Ledger is the durable store of Player and Crop facts.
//
// Every read-then-write sequence goes through RunAtomic. The plain read
// methods are for hydration and listings only.
type Ledger interface {
	// RunAtomic runs fn inside one transaction serialized against every other
	// atomic block on the same world. Store failures come back as
	// *domain.PersistenceError; errors returned by fn pass through unchanged.
	RunAtomic(ctx context.Context, worldID string, fn func(tx LedgerTx) error) error

	GetOrCreatePlayer(ctx context.Context, id, name string) (*domain.Player, error)
	GetCrop(ctx context.Context, id string) (*domain.Crop, error)
	ListCrops(ctx context.Context, worldID string, includeHarvested bool) ([]domain.Crop, error)
	ListWorlds(ctx context.Context, limit, offset int) ([]domain.WorldSummary, error)

	Ping(ctx context.Context) error
	Close()
}

// LedgerTx is the set of record operations available inside an atomic block.
type LedgerTx interface {
	GetOrCreatePlayer(ctx context.Context, id, name string) (*domain.Player, error)
	GetPlayerForUpdate(ctx context.Context, id string) (*domain.Player, error)
	// UpdateExperience adds delta and returns the new total. Negative deltas fail with ErrValidation.
	UpdateExperience(ctx context.Context, id string, delta int64) (int64, error)
	InsertCrop(ctx context.Context, crop *domain.Crop) error
	GetCropForUpdate(ctx context.Context, id string) (*domain.Crop, error)
	// MarkHarvested only touches unharvested rows; a second call fails with ErrCropAlreadyHarvested.
	MarkHarvested(ctx context.Context, id string, yield float64, at time.Time) error
	QueryOccupancy(ctx context.Context, worldID string, x, y, radius float64) (bool, error)
}
