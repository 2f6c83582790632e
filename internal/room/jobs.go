package room

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/osse101/HarvestRealm_Go/internal/crop"
	"github.com/osse101/HarvestRealm_Go/internal/database"
	"github.com/osse101/HarvestRealm_Go/internal/domain"
	"github.com/osse101/HarvestRealm_Go/internal/journal"
	"github.com/osse101/HarvestRealm_Go/internal/logger"
	"github.com/osse101/HarvestRealm_Go/internal/metrics"
	"github.com/osse101/HarvestRealm_Go/internal/protocol"
	"github.com/osse101/HarvestRealm_Go/internal/repository"
)

// Ledger-bound work. These run on the worker pool and must not touch live
// state; they return a result the run loop applies.

type plantResult struct {
	sessionID string
	playerID  string
	crop      *domain.Crop
	xpGained  int64
	newXP     int64
	err       error
}

type harvestResult struct {
	sessionID string
	playerID  string
	crop      *domain.Crop
	yield     float64
	xpGained  int64
	newXP     int64
	err       error
}

// plant validates the seed, the investment and occupancy, inserts the crop
// and credits experience in one atomic block.
func (r *Room) plant(ctx context.Context, sessionID, playerID string, req protocol.Plant) plantResult {
	res := plantResult{sessionID: sessionID, playerID: playerID}
	now := r.deps.Clock().UTC().Truncate(time.Millisecond)
	x, y, investment := *req.X, *req.Y, *req.Investment

	var (
		planted *domain.Crop
		gained  int64
		total   int64
	)
	start := time.Now()
	err := r.deps.Ledger.RunAtomic(ctx, r.worldID, func(tx repository.LedgerTx) error {
		seed, err := r.deps.Seeds.ValidatePlant(req.SeedType, investment)
		if err != nil {
			return err
		}
		occupied, err := r.deps.Occupancy.IsOccupied(ctx, tx, r.worldID, x, y)
		if err != nil {
			return err
		}
		if occupied {
			return domain.ErrPositionOccupied
		}

		c := &domain.Crop{
			ID:               uuid.NewString(),
			PlayerID:         playerID,
			WorldID:          r.worldID,
			SeedType:         seed.Type,
			X:                x,
			Y:                y,
			PlantedAt:        now,
			GrowthTime:       seed.GrowthDuration,
			InvestmentAmount: investment,
		}
		if err := tx.InsertCrop(ctx, c); err != nil {
			return err
		}
		newXP, err := tx.UpdateExperience(ctx, playerID, seed.XPReward)
		if err != nil {
			return err
		}
		planted, gained, total = c, seed.XPReward, newXP
		return nil
	})
	r.observe(ctx, domain.OpPlant, start, err, playerID, x, y)
	if err != nil {
		res.err = err
		return res
	}

	res.crop, res.xpGained, res.newXP = planted, gained, total
	r.writeJournal(ctx, journal.Entry{
		TS:         now,
		World:      r.worldID,
		Player:     playerID,
		Kind:       journal.KindPlant,
		CropID:     planted.ID,
		SeedType:   planted.SeedType,
		X:          x,
		Y:          y,
		Investment: investment,
		XP:         total,
	})
	return res
}

// harvest checks ownership, state and growth, computes the yield, marks the
// crop harvested and credits experience in one atomic block.
func (r *Room) harvest(ctx context.Context, sessionID, playerID, cropID string) harvestResult {
	res := harvestResult{sessionID: sessionID, playerID: playerID}
	now := r.deps.Clock().UTC().Truncate(time.Millisecond)

	var (
		harvested *domain.Crop
		yield     float64
		gained    int64
		total     int64
	)
	start := time.Now()
	err := r.deps.Ledger.RunAtomic(ctx, r.worldID, func(tx repository.LedgerTx) error {
		c, err := tx.GetCropForUpdate(ctx, cropID)
		if err != nil {
			return err
		}
		if c.WorldID != r.worldID {
			return domain.ErrCropNotFound
		}
		if c.PlayerID != playerID {
			return domain.ErrNotOwner
		}
		if c.Harvested {
			return domain.ErrCropAlreadyHarvested
		}
		if err := crop.CheckHarvest(c.ID, c.PlantedAt, c.GrowthTime, now); err != nil {
			return err
		}
		seed, err := r.deps.Seeds.Lookup(string(c.SeedType))
		if err != nil {
			return err
		}

		amount := crop.ComputeYield(c.InvestmentAmount, c.PlantedAt, seed.BaseRate, now)
		if err := crop.FiniteYield(c.ID, amount); err != nil {
			return err
		}
		if err := tx.MarkHarvested(ctx, c.ID, amount, now); err != nil {
			return err
		}
		newXP, err := tx.UpdateExperience(ctx, playerID, seed.XPReward)
		if err != nil {
			return err
		}

		at := now
		c.Harvested, c.YieldAmount, c.HarvestedAt = true, &amount, &at
		harvested, yield, gained, total = c, amount, seed.XPReward, newXP
		return nil
	})
	var x, y float64
	if harvested != nil {
		x, y = harvested.X, harvested.Y
	}
	r.observe(ctx, domain.OpHarvest, start, err, playerID, x, y)
	if err != nil {
		res.err = err
		return res
	}

	res.crop, res.yield, res.xpGained, res.newXP = harvested, yield, gained, total
	r.writeJournal(ctx, journal.Entry{
		TS:         now,
		World:      r.worldID,
		Player:     playerID,
		Kind:       journal.KindHarvest,
		CropID:     harvested.ID,
		SeedType:   harvested.SeedType,
		X:          harvested.X,
		Y:          harvested.Y,
		Investment: harvested.InvestmentAmount,
		Yield:      yield,
		XP:         total,
	})
	return res
}

func (r *Room) observe(ctx context.Context, op string, start time.Time, err error, playerID string, x, y float64) {
	metrics.LedgerTxDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if !errors.Is(err, domain.ErrPersistence) {
		return
	}
	metrics.PersistenceErrors.WithLabelValues(op).Inc()
	logger.FromContext(ctx).Error(LogMsgPersistenceFailed,
		"op", op,
		"player", playerID,
		"x", x,
		"y", y,
		"contention", database.IsContention(err),
		"sqlstate", database.PgCode(err),
		"error", err)
}

func (r *Room) writeJournal(ctx context.Context, e journal.Entry) {
	if r.deps.Journal == nil {
		return
	}
	if err := r.deps.Journal.Write(e); err != nil {
		metrics.JournalRecords.WithLabelValues(metrics.OutcomeFailed).Inc()
		logger.FromContext(ctx).Error(LogMsgJournalFailed, "kind", e.Kind, "crop_id", e.CropID, "error", err)
		return
	}
	metrics.JournalRecords.WithLabelValues(metrics.OutcomeWritten).Inc()
}

// applyPlant runs on the room goroutine
func (r *Room) applyPlant(res plantResult) {
	m := r.members[res.sessionID]
	if m != nil {
		m.busy = false
		defer r.pump(m)
	}

	if res.err != nil {
		r.replyError(m, res.err)
		return
	}

	now := r.deps.Clock()
	c := res.crop
	r.crops[c.ID] = c
	r.stages[c.ID] = crop.DeriveStage(c.PlantedAt, c.GrowthTime, now)
	r.patch.markCrop(c.ID)
	r.setXP(res.playerID, res.newXP)

	view := protocol.NewCropView(c, now)
	r.send(m, protocol.TypeSeedPlanted, protocol.SeedPlanted{
		CropID:   c.ID,
		Crop:     view,
		XPGained: res.xpGained,
		NewXP:    res.newXP,
	})
	r.broadcast(protocol.TypeCropPlanted, protocol.CropPlanted{PlayerID: res.playerID, Crop: view})

	metrics.CropsPlanted.WithLabelValues(string(c.SeedType)).Inc()
	logger.FromContext(r.ctx).Info(LogMsgCropPlanted,
		"crop_id", c.ID, "player", res.playerID, "seed", c.SeedType, "x", c.X, "y", c.Y)
}

// applyHarvest runs on the room goroutine
func (r *Room) applyHarvest(res harvestResult) {
	m := r.members[res.sessionID]
	if m != nil {
		m.busy = false
		defer r.pump(m)
	}

	if res.err != nil {
		r.replyError(m, res.err)
		return
	}

	c := res.crop
	r.crops[c.ID] = c
	delete(r.stages, c.ID)
	r.patch.markCrop(c.ID)
	r.setXP(res.playerID, res.newXP)

	id := c.ID
	r.deadlines.Schedule(r.deps.Clock().Add(r.deps.Tuning.HarvestDisplayDelay), func() {
		delete(r.crops, id)
		r.patch.removeCrop(id)
	})

	r.send(m, protocol.TypeCropHarvested, protocol.CropHarvested{
		CropID:      c.ID,
		YieldAmount: res.yield,
		XPGained:    res.xpGained,
		NewXP:       res.newXP,
	})
	r.broadcast(protocol.TypeHarvestEvent, protocol.HarvestEvent{
		CropID:      c.ID,
		PlayerID:    res.playerID,
		SeedType:    c.SeedType,
		YieldAmount: res.yield,
	})

	metrics.CropsHarvested.WithLabelValues(string(c.SeedType)).Inc()
	logger.FromContext(r.ctx).Info(LogMsgCropHarvested,
		"crop_id", c.ID, "player", res.playerID, "yield", res.yield)
}
