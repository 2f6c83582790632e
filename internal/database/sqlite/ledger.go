// Package sqlite is the embedded ledger backend used in dev mode and for
// in-process tests. It holds a single connection, so atomic blocks run one
// at a time.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/osse101/HarvestRealm_Go/internal/database"
	"github.com/osse101/HarvestRealm_Go/internal/database/schema"
	"github.com/osse101/HarvestRealm_Go/internal/domain"
	"github.com/osse101/HarvestRealm_Go/internal/repository"
)

// Ledger is the SQLite implementation of repository.Ledger.
type Ledger struct {
	db *sql.DB
}

var _ repository.Ledger = (*Ledger)(nil)

// Open opens (or creates) the ledger at path and applies the schema.
// Use MemoryPath for a throwaway database.
func Open(path string) (*Ledger, error) {
	if path == "" {
		return nil, errors.New(ErrMsgEmptyPath)
	}
	if path != MemoryPath && !strings.HasPrefix(path, "file:") {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open(database.DriverSQLite, path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := execAll(db, schema.SQLitePragmas); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite pragmas: %w", err)
	}
	if err := execAll(db, schema.SQLiteStatements); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite schema: %w", err)
	}
	return &Ledger{db: db}, nil
}

func execAll(db *sql.DB, stmts []string) error {
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// RunAtomic runs fn inside one transaction. The pool holds a single
// connection, so no other block can start until this one commits or rolls back.
func (l *Ledger) RunAtomic(ctx context.Context, worldID string, fn func(tx repository.LedgerTx) error) error {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return database.Translate(domain.OpBegin, fmt.Errorf("%s: %w", database.ErrMsgFailedToBeginTransaction, err))
	}
	wrapped := &sqlTx{Tx: tx}
	defer repository.SafeRollback(ctx, wrapped)

	if err := fn(&ledgerTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return database.Translate(domain.OpCommit, err)
	}
	return nil
}

func (l *Ledger) GetOrCreatePlayer(ctx context.Context, id, name string) (*domain.Player, error) {
	return getOrCreatePlayer(ctx, l.db, id, name)
}

func (l *Ledger) GetCrop(ctx context.Context, id string) (*domain.Crop, error) {
	return getCrop(ctx, l.db, id)
}

func (l *Ledger) ListCrops(ctx context.Context, worldID string, includeHarvested bool) ([]domain.Crop, error) {
	query := sqlListLiveCrops
	if includeHarvested {
		query = sqlListAllCrops
	}

	rows, err := l.db.QueryContext(ctx, query, worldID)
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

func (l *Ledger) ListWorlds(ctx context.Context, limit, offset int) ([]domain.WorldSummary, error) {
	rows, err := l.db.QueryContext(ctx, sqlListWorlds, limit, offset)
	if err != nil {
		return nil, database.Translate(domain.OpListWorlds, err)
	}
	defer rows.Close()

	worlds := make([]domain.WorldSummary, 0)
	for rows.Next() {
		var (
			w           domain.WorldSummary
			lastPlanted int64
		)
		if err := rows.Scan(&w.OwnerID, &w.OwnerName, &w.OwnerXP, &w.ActiveCrops, &w.TotalCrops, &lastPlanted); err != nil {
			return nil, database.Translate(domain.OpListWorlds, err)
		}
		w.LastPlanted = fromMillis(lastPlanted)
		worlds = append(worlds, w)
	}
	if err := rows.Err(); err != nil {
		return nil, database.Translate(domain.OpListWorlds, err)
	}
	return worlds, nil
}

func (l *Ledger) Ping(ctx context.Context) error {
	return l.db.PingContext(ctx)
}

func (l *Ledger) Close() {
	_ = l.db.Close()
}

// sqlTx adapts *sql.Tx to repository.Tx for SafeRollback
type sqlTx struct {
	*sql.Tx
}

func (t *sqlTx) Commit(context.Context) error {
	return t.Tx.Commit()
}

func (t *sqlTx) Rollback(context.Context) error {
	return t.Tx.Rollback()
}

// queryer is satisfied by *sql.DB and *sql.Tx
type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getOrCreatePlayer(ctx context.Context, q queryer, id, name string) (*domain.Player, error) {
	p, err := scanPlayer(q.QueryRowContext(ctx, sqlUpsertPlayer, id, name, nowMillis()))
	if err != nil {
		return nil, database.Translate(domain.OpGetOrCreatePlayer, err)
	}
	return p, nil
}

func getCrop(ctx context.Context, q queryer, id string) (*domain.Crop, error) {
	crop, err := scanCrop(q.QueryRowContext(ctx, sqlGetCrop, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrCropNotFound, id)
		}
		return nil, database.Translate(domain.OpGetCrop, err)
	}
	return crop, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPlayer(row scanner) (*domain.Player, error) {
	var (
		p                domain.Player
		created, updated int64
	)
	if err := row.Scan(&p.ID, &p.Name, &p.XP, &created, &updated); err != nil {
		return nil, err
	}
	p.CreatedAt = fromMillis(created)
	p.UpdatedAt = fromMillis(updated)
	return &p, nil
}

func scanCrop(row scanner) (*domain.Crop, error) {
	var (
		c                   domain.Crop
		seed                string
		plantedAt, growthMs int64
		harvested           int64
		yield               sql.NullFloat64
		harvestedAt         sql.NullInt64
		created, updated    int64
	)
	err := row.Scan(
		&c.ID, &c.PlayerID, &c.WorldID, &seed, &c.X, &c.Y, &plantedAt, &growthMs,
		&c.InvestmentAmount, &harvested, &yield, &harvestedAt, &created, &updated,
	)
	if err != nil {
		return nil, err
	}

	c.SeedType = domain.SeedType(seed)
	c.PlantedAt = fromMillis(plantedAt)
	c.GrowthTime = time.Duration(growthMs) * time.Millisecond
	c.Harvested = harvested != 0
	if yield.Valid {
		v := yield.Float64
		c.YieldAmount = &v
	}
	if harvestedAt.Valid {
		at := fromMillis(harvestedAt.Int64)
		c.HarvestedAt = &at
	}
	c.CreatedAt = fromMillis(created)
	c.UpdatedAt = fromMillis(updated)
	return &c, nil
}

func nowMillis() int64 {
	return time.Now().UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
