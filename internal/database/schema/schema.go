package schema

// SQLiteStatements creates the embedded ledger schema. It mirrors
// migrations/00001_init.sql with SQLite types: timestamps are unix
// milliseconds and booleans are 0/1.
var SQLiteStatements = []string{
	`CREATE TABLE IF NOT EXISTS players (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL,
		xp          INTEGER NOT NULL DEFAULT 0 CHECK (xp >= 0),
		created_at  INTEGER NOT NULL,
		updated_at  INTEGER NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS crops (
		id                 TEXT PRIMARY KEY,
		player_id          TEXT NOT NULL REFERENCES players(id),
		world_id           TEXT NOT NULL,
		seed_type          TEXT NOT NULL CHECK (seed_type IN ('usdc_sprout', 'eth_bean', 'btc_tree')),
		x                  REAL NOT NULL,
		y                  REAL NOT NULL,
		planted_at         INTEGER NOT NULL,
		growth_time_ms     INTEGER NOT NULL CHECK (growth_time_ms > 0),
		investment_amount  REAL NOT NULL CHECK (investment_amount >= 0),
		harvested          INTEGER NOT NULL DEFAULT 0,
		yield_amount       REAL,
		harvested_at       INTEGER,
		created_at         INTEGER NOT NULL,
		updated_at         INTEGER NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS idx_crops_world_unharvested ON crops (world_id) WHERE harvested = 0;`,
	`CREATE INDEX IF NOT EXISTS idx_crops_player ON crops (player_id);`,
}

// SQLitePragmas tune the single-connection embedded database.
var SQLitePragmas = []string{
	"PRAGMA journal_mode=WAL;",
	"PRAGMA synchronous=NORMAL;",
	"PRAGMA foreign_keys=ON;",
	"PRAGMA busy_timeout=5000;",
	"PRAGMA temp_store=MEMORY;",
}
