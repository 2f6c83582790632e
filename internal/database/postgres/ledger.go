package postgres

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osse101/HarvestRealm_Go/internal/database"
	"github.com/osse101/HarvestRealm_Go/internal/domain"
	"github.com/osse101/HarvestRealm_Go/internal/logger"
	"github.com/osse101/HarvestRealm_Go/internal/repository"
)

// Ledger is the PostgreSQL implementation of repository.Ledger.
type Ledger struct {
	db *pgxpool.Pool
}

// NewLedger creates a new Postgres-backed ledger
func NewLedger(db *pgxpool.Pool) *Ledger {
	return &Ledger{db: db}
}

var _ repository.Ledger = (*Ledger)(nil)

// RunAtomic runs fn inside one transaction holding the world's advisory lock.
// The lock is transaction-scoped, so it is released by commit or rollback.
// Advisory locks work even when no crop row exists yet (unlike SELECT FOR UPDATE),
// which is what keeps occupancy check + insert from interleaving.
func (l *Ledger) RunAtomic(ctx context.Context, worldID string, fn func(tx repository.LedgerTx) error) error {
	tx, err := l.db.Begin(ctx)
	if err != nil {
		return database.Translate(domain.OpBegin, fmt.Errorf("%s: %w", database.ErrMsgFailedToBeginTransaction, err))
	}
	defer repository.SafeRollback(ctx, tx)

	if _, err := tx.Exec(ctx, SQLAdvisoryLock, worldLockKey(worldID)); err != nil {
		return database.Translate(domain.OpAdvisoryLock, err)
	}

	if err := fn(&ledgerTx{tx: tx}); err != nil {
		if errors.Is(err, domain.ErrPersistence) {
			logger.FromContext(ctx).Error(LogMsgAtomicBlockFailed, "world", worldID, "error", err)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return database.Translate(domain.OpCommit, err)
	}
	return nil
}

// GetOrCreatePlayer loads the player or creates it with zero experience.
// A non-empty name replaces the stored one.
func (l *Ledger) GetOrCreatePlayer(ctx context.Context, id, name string) (*domain.Player, error) {
	return getOrCreatePlayer(ctx, l.db, id, name)
}

// GetCrop fetches a crop without locking it
func (l *Ledger) GetCrop(ctx context.Context, id string) (*domain.Crop, error) {
	return getCrop(ctx, l.db, SQLGetCrop, id)
}

// ListCrops returns a world's crops ordered by planting time
func (l *Ledger) ListCrops(ctx context.Context, worldID string, includeHarvested bool) ([]domain.Crop, error) {
	query := SQLListLiveCrops
	if includeHarvested {
		query = SQLListAllCrops
	}

	rows, err := l.db.Query(ctx, query, worldID)
	if err != nil {
		return nil, database.Translate(domain.OpListCrops, err)
	}
	defer rows.Close()

	crops := make([]domain.Crop, 0)
	for rows.Next() {
		crop, err := scanCrop(rows)
		if err != nil {
			return nil, database.Translate(domain.OpListCrops, err)
		}
		crops = append(crops, *crop)
	}
	if err := rows.Err(); err != nil {
		return nil, database.Translate(domain.OpListCrops, err)
	}
	return crops, nil
}

// ListWorlds pages through worlds that have at least one crop, most recently planted first
func (l *Ledger) ListWorlds(ctx context.Context, limit, offset int) ([]domain.WorldSummary, error) {
	rows, err := l.db.Query(ctx, SQLListWorlds, limit, offset)
	if err != nil {
		return nil, database.Translate(domain.OpListWorlds, err)
	}
	defer rows.Close()

	worlds := make([]domain.WorldSummary, 0)
	for rows.Next() {
		var w domain.WorldSummary
		if err := rows.Scan(&w.OwnerID, &w.OwnerName, &w.OwnerXP, &w.ActiveCrops, &w.TotalCrops, &w.LastPlanted); err != nil {
			return nil, database.Translate(domain.OpListWorlds, err)
		}
		worlds = append(worlds, w)
	}
	if err := rows.Err(); err != nil {
		return nil, database.Translate(domain.OpListWorlds, err)
	}
	return worlds, nil
}

// Ping checks connectivity for readiness probes
func (l *Ledger) Ping(ctx context.Context) error {
	return l.db.Ping(ctx)
}

// Close releases the pool
func (l *Ledger) Close() {
	l.db.Close()
}

// worldLockKey derives a stable positive advisory lock key for a world
func worldLockKey(worldID string) int64 {
	h := sha256.Sum256([]byte(LockNamespace + worldID))
	return int64(binary.BigEndian.Uint64(h[:8]) & HashMaskPositiveInt64)
}

// querier is satisfied by both *pgxpool.Pool and pgx.Tx
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func getOrCreatePlayer(ctx context.Context, q querier, id, name string) (*domain.Player, error) {
	var p domain.Player
	err := q.QueryRow(ctx, SQLUpsertPlayer, id, name).Scan(&p.ID, &p.Name, &p.XP, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, database.Translate(domain.OpGetOrCreatePlayer, err)
	}
	return &p, nil
}

func getCrop(ctx context.Context, q querier, query, id string) (*domain.Crop, error) {
	crop, err := scanCrop(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrCropNotFound, id)
		}
		return nil, database.Translate(domain.OpGetCrop, err)
	}
	return crop, nil
}

func scanCrop(row pgx.Row) (*domain.Crop, error) {
	var (
		c            domain.Crop
		seed         string
		growthTimeMs int64
	)
	err := row.Scan(
		&c.ID, &c.PlayerID, &c.WorldID, &seed, &c.X, &c.Y, &c.PlantedAt, &growthTimeMs,
		&c.InvestmentAmount, &c.Harvested, &c.YieldAmount, &c.HarvestedAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.SeedType = domain.SeedType(seed)
	c.GrowthTime = msToDuration(growthTimeMs)
	return &c, nil
}
