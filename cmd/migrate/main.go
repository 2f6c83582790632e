package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/osse101/HarvestRealm_Go/internal/config"
	"github.com/osse101/HarvestRealm_Go/internal/database"
)

const usage = "usage: migrate <up|down|status|version>"

func main() {
	if len(os.Args) < 2 {
		log.Fatal(usage)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.DBDriver != config.DriverPostgres {
		log.Fatalf("Migrations only apply to the %s driver; %s applies its schema on open", config.DriverPostgres, cfg.DBDriver)
	}

	ctx := context.Background()
	pool, err := database.NewPool(ctx, cfg.GetDBConnString(), cfg.DBMaxConns, cfg.DBMaxConnIdleTime, cfg.DBMaxConnLifetime)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	switch os.Args[1] {
	case "up":
		err = database.Migrate(ctx, pool)
	case "down":
		err = database.MigrateDown(ctx, pool)
	case "status":
		err = database.MigrationStatus(ctx, pool)
	case "version":
		var v int64
		if v, err = database.MigrationVersion(ctx, pool); err == nil {
			fmt.Println(v)
		}
	default:
		log.Fatal(usage)
	}

	if err != nil {
		log.Fatalf("Migration %s failed: %v", os.Args[1], err)
	}
}
