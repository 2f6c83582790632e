package postgres

// SQL statements for the ledger. Columns are selected in cropColumns order.
const (
	// SQLAdvisoryLock acquires a PostgreSQL advisory transaction lock
	SQLAdvisoryLock = "SELECT pg_advisory_xact_lock($1)"

	SQLUpsertPlayer = `
		INSERT INTO players (id, name)
		VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE
		SET name = CASE WHEN EXCLUDED.name <> '' THEN EXCLUDED.name ELSE players.name END,
		    updated_at = CASE WHEN EXCLUDED.name <> '' AND EXCLUDED.name <> players.name THEN NOW() ELSE players.updated_at END
		RETURNING id, name, xp, created_at, updated_at`

	SQLGetPlayerForUpdate = `
		SELECT id, name, xp, created_at, updated_at
		FROM players
		WHERE id = $1
		FOR UPDATE`

	SQLAddExperience = `
		UPDATE players
		SET xp = xp + $2, updated_at = NOW()
		WHERE id = $1
		RETURNING xp`

	SQLInsertCrop = `
		INSERT INTO crops (id, player_id, world_id, seed_type, x, y, planted_at, growth_time_ms, investment_amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::float8)
		RETURNING created_at, updated_at`

	cropColumns = `id, player_id, world_id, seed_type, x, y, planted_at, growth_time_ms,
		investment_amount::float8, harvested, yield_amount::float8, harvested_at, created_at, updated_at`

	SQLGetCrop          = "SELECT " + cropColumns + " FROM crops WHERE id = $1"
	SQLGetCropForUpdate = SQLGetCrop + " FOR UPDATE"

	SQLListLiveCrops = "SELECT " + cropColumns + " FROM crops WHERE world_id = $1 AND NOT harvested ORDER BY planted_at, id"
	SQLListAllCrops  = "SELECT " + cropColumns + " FROM crops WHERE world_id = $1 ORDER BY planted_at, id"

	SQLMarkHarvested = `
		UPDATE crops
		SET harvested = TRUE, yield_amount = $2::float8, harvested_at = $3, updated_at = NOW()
		WHERE id = $1 AND NOT harvested`

	SQLCropExists = "SELECT EXISTS (SELECT 1 FROM crops WHERE id = $1)"

	// SQLQueryOccupancy compares squared distances so the partial index on
	// unharvested crops can serve the world filter.
	SQLQueryOccupancy = `
		SELECT EXISTS (
			SELECT 1 FROM crops
			WHERE world_id = $1
			  AND NOT harvested
			  AND (x - $2::float8) * (x - $2::float8) + (y - $3::float8) * (y - $3::float8) <= $4::float8 * $4::float8
		)`

	SQLListWorlds = `
		SELECT c.world_id,
		       COALESCE(p.name, ''),
		       COALESCE(p.xp, 0),
		       COUNT(*) FILTER (WHERE NOT c.harvested),
		       COUNT(*),
		       MAX(c.planted_at)
		FROM crops c
		LEFT JOIN players p ON p.id = c.world_id
		GROUP BY c.world_id, p.name, p.xp
		ORDER BY MAX(c.planted_at) DESC, c.world_id
		LIMIT $1 OFFSET $2`
)

// Advisory lock key derivation
const (
	// HashMaskPositiveInt64 masks the most significant bit to keep lock keys positive
	HashMaskPositiveInt64 = 0x7FFFFFFFFFFFFFFF
	// LockNamespace separates world locks from any other advisory lock users
	LockNamespace = "world:"
)

// Log Messages
const (
	LogMsgAtomicBlockFailed = "Atomic ledger block failed"
)
