package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/osse101/HarvestRealm_Go/internal/database"
	"github.com/osse101/HarvestRealm_Go/internal/domain"
)

// ledgerTx binds the record operations to one pgx transaction
type ledgerTx struct {
	tx pgx.Tx
}

func (t *ledgerTx) GetOrCreatePlayer(ctx context.Context, id, name string) (*domain.Player, error) {
	return getOrCreatePlayer(ctx, t.tx, id, name)
}

func (t *ledgerTx) GetPlayerForUpdate(ctx context.Context, id string) (*domain.Player, error) {
	var p domain.Player
	err := t.tx.QueryRow(ctx, SQLGetPlayerForUpdate, id).Scan(&p.ID, &p.Name, &p.XP, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrPlayerNotFound, id)
		}
		return nil, database.Translate(domain.OpGetPlayer, err)
	}
	return &p, nil
}

func (t *ledgerTx) UpdateExperience(ctx context.Context, id string, delta int64) (int64, error) {
	if delta < 0 {
		return 0, fmt.Errorf("%w: experience delta %d is negative", domain.ErrValidation, delta)
	}

	var xp int64
	if err := t.tx.QueryRow(ctx, SQLAddExperience, id, delta).Scan(&xp); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("%w: %s", domain.ErrPlayerNotFound, id)
		}
		return 0, database.Translate(domain.OpUpdateExperience, err)
	}
	return xp, nil
}

func (t *ledgerTx) InsertCrop(ctx context.Context, crop *domain.Crop) error {
	err := t.tx.QueryRow(ctx, SQLInsertCrop,
		crop.ID, crop.PlayerID, crop.WorldID, string(crop.SeedType), crop.X, crop.Y,
		crop.PlantedAt, crop.GrowthTimeMs(), crop.InvestmentAmount,
	).Scan(&crop.CreatedAt, &crop.UpdatedAt)
	if err != nil {
		return database.Translate(domain.OpInsertCrop, err)
	}
	return nil
}

func (t *ledgerTx) GetCropForUpdate(ctx context.Context, id string) (*domain.Crop, error) {
	return getCrop(ctx, t.tx, SQLGetCropForUpdate, id)
}

func (t *ledgerTx) MarkHarvested(ctx context.Context, id string, yield float64, at time.Time) error {
	tag, err := t.tx.Exec(ctx, SQLMarkHarvested, id, yield, at)
	if err != nil {
		return database.Translate(domain.OpMarkHarvested, err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	if err := t.tx.QueryRow(ctx, SQLCropExists, id).Scan(&exists); err != nil {
		return database.Translate(domain.OpMarkHarvested, err)
	}
	if !exists {
		return fmt.Errorf("%w: %s", domain.ErrCropNotFound, id)
	}
	return fmt.Errorf("%w: %s", domain.ErrCropAlreadyHarvested, id)
}

// QueryOccupancy must run inside the same atomic block as the insert it guards
func (t *ledgerTx) QueryOccupancy(ctx context.Context, worldID string, x, y, radius float64) (bool, error) {
	var occupied bool
	if err := t.tx.QueryRow(ctx, SQLQueryOccupancy, worldID, x, y, radius).Scan(&occupied); err != nil {
		return false, database.Translate(domain.OpQueryOccupancy, err)
	}
	return occupied, nil
}

func msToDuration(ms int64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
