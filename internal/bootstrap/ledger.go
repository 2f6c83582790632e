package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/osse101/HarvestRealm_Go/internal/config"
	"github.com/osse101/HarvestRealm_Go/internal/database"
	"github.com/osse101/HarvestRealm_Go/internal/database/postgres"
	"github.com/osse101/HarvestRealm_Go/internal/database/sqlite"
	"github.com/osse101/HarvestRealm_Go/internal/repository"
)

// OpenLedger opens the ledger selected by cfg.DBDriver. Postgres is migrated
// to the latest schema before use; SQLite applies its schema on open.
func OpenLedger(ctx context.Context, cfg *config.Config) (repository.Ledger, error) {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		pool, err := database.NewPool(ctx, cfg.GetDBConnString(), cfg.DBMaxConns, cfg.DBMaxConnIdleTime, cfg.DBMaxConnLifetime)
		if err != nil {
			return nil, err
		}
		if err := database.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("%s: %w", ErrMsgFailedMigrations, err)
		}
		slog.Info(LogMsgLedgerOpened, "driver", cfg.DBDriver, "db", cfg.DBName)
		return postgres.NewLedger(pool), nil

	case config.DriverSQLite:
		ledger, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		slog.Info(LogMsgLedgerOpened, "driver", cfg.DBDriver, "path", cfg.SQLitePath)
		return ledger, nil

	default:
		return nil, fmt.Errorf("%s: %q", ErrMsgUnknownDriver, cfg.DBDriver)
	}
}
