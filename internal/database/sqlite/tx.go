package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/osse101/HarvestRealm_Go/internal/database"
	"github.com/osse101/HarvestRealm_Go/internal/domain"
	"github.com/osse101/HarvestRealm_Go/internal/occupancy"
)

type ledgerTx struct {
	tx *sql.Tx
}

func (t *ledgerTx) GetOrCreatePlayer(ctx context.Context, id, name string) (*domain.Player, error) {
	return getOrCreatePlayer(ctx, t.tx, id, name)
}

// GetPlayerForUpdate needs no row lock: the single connection already excludes other writers
func (t *ledgerTx) GetPlayerForUpdate(ctx context.Context, id string) (*domain.Player, error) {
	p, err := scanPlayer(t.tx.QueryRowContext(ctx, sqlGetPlayer, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrPlayerNotFound, id)
		}
		return nil, database.Translate(domain.OpGetPlayer, err)
	}
	return p, nil
}

func (t *ledgerTx) UpdateExperience(ctx context.Context, id string, delta int64) (int64, error) {
	if delta < 0 {
		return 0, fmt.Errorf("%w: experience delta %d is negative", domain.ErrValidation, delta)
	}

	var xp int64
	if err := t.tx.QueryRowContext(ctx, sqlAddExperience, id, delta, nowMillis()).Scan(&xp); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("%w: %s", domain.ErrPlayerNotFound, id)
		}
		return 0, database.Translate(domain.OpUpdateExperience, err)
	}
	return xp, nil
}

func (t *ledgerTx) InsertCrop(ctx context.Context, crop *domain.Crop) error {
	now := nowMillis()
	_, err := t.tx.ExecContext(ctx, sqlInsertCrop,
		crop.ID, crop.PlayerID, crop.WorldID, string(crop.SeedType), crop.X, crop.Y,
		crop.PlantedAt.UnixMilli(), crop.GrowthTimeMs(), crop.InvestmentAmount, now, now,
	)
	if err != nil {
		return database.Translate(domain.OpInsertCrop, err)
	}
	crop.CreatedAt = fromMillis(now)
	crop.UpdatedAt = crop.CreatedAt
	return nil
}

func (t *ledgerTx) GetCropForUpdate(ctx context.Context, id string) (*domain.Crop, error) {
	return getCrop(ctx, t.tx, id)
}

func (t *ledgerTx) MarkHarvested(ctx context.Context, id string, yield float64, at time.Time) error {
	res, err := t.tx.ExecContext(ctx, sqlMarkHarvested, id, yield, at.UnixMilli(), nowMillis())
	if err != nil {
		return database.Translate(domain.OpMarkHarvested, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return database.Translate(domain.OpMarkHarvested, err)
	}
	if n > 0 {
		return nil
	}

	var exists bool
	if err := t.tx.QueryRowContext(ctx, sqlCropExists, id).Scan(&exists); err != nil {
		return database.Translate(domain.OpMarkHarvested, err)
	}
	if !exists {
		return fmt.Errorf("%w: %s", domain.ErrCropNotFound, id)
	}
	return fmt.Errorf("%w: %s", domain.ErrCropAlreadyHarvested, id)
}

func (t *ledgerTx) QueryOccupancy(ctx context.Context, worldID string, x, y, radius float64) (bool, error) {
	rows, err := t.tx.QueryContext(ctx, sqlOccupancyCandidates, worldID, x, y, radius)
	if err != nil {
		return false, database.Translate(domain.OpQueryOccupancy, err)
	}
	defer rows.Close()

	for rows.Next() {
		var cx, cy float64
		if err := rows.Scan(&cx, &cy); err != nil {
			return false, database.Translate(domain.OpQueryOccupancy, err)
		}
		if occupancy.Within(x, y, cx, cy, radius) {
			return true, nil
		}
	}
	if err := rows.Err(); err != nil {
		return false, database.Translate(domain.OpQueryOccupancy, err)
	}
	return false, nil
}
