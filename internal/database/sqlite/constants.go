package sqlite

// MemoryPath opens a private in-memory ledger
const MemoryPath = ":memory:"

// SQL statements. Timestamps are unix milliseconds, booleans 0/1.
const (
	sqlUpsertPlayer = `
		INSERT INTO players (id, name, xp, created_at, updated_at)
		VALUES (?1, ?2, 0, ?3, ?3)
		ON CONFLICT (id) DO UPDATE
		SET name = CASE WHEN excluded.name <> '' THEN excluded.name ELSE players.name END,
		    updated_at = CASE WHEN excluded.name <> '' AND excluded.name <> players.name THEN ?3 ELSE players.updated_at END
		RETURNING id, name, xp, created_at, updated_at`

	sqlGetPlayer = `SELECT id, name, xp, created_at, updated_at FROM players WHERE id = ?`

	sqlAddExperience = `UPDATE players SET xp = xp + ?2, updated_at = ?3 WHERE id = ?1 RETURNING xp`

	sqlInsertCrop = `
		INSERT INTO crops (id, player_id, world_id, seed_type, x, y, planted_at, growth_time_ms,
		                   investment_amount, harvested, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?)`

	cropColumns = `id, player_id, world_id, seed_type, x, y, planted_at, growth_time_ms,
		investment_amount, harvested, yield_amount, harvested_at, created_at, updated_at`

	sqlGetCrop       = "SELECT " + cropColumns + " FROM crops WHERE id = ?"
	sqlListLiveCrops = "SELECT " + cropColumns + " FROM crops WHERE world_id = ? AND harvested = 0 ORDER BY planted_at, id"
	sqlListAllCrops  = "SELECT " + cropColumns + " FROM crops WHERE world_id = ? ORDER BY planted_at, id"

	sqlMarkHarvested = `
		UPDATE crops
		SET harvested = 1, yield_amount = ?2, harvested_at = ?3, updated_at = ?4
		WHERE id = ?1 AND harvested = 0`

	sqlCropExists = "SELECT EXISTS (SELECT 1 FROM crops WHERE id = ?)"

	// sqlOccupancyCandidates narrows to the bounding box; the exact distance test runs in Go
	sqlOccupancyCandidates = `
		SELECT x, y FROM crops
		WHERE world_id = ?1 AND harvested = 0
		  AND x BETWEEN ?2 - ?4 AND ?2 + ?4
		  AND y BETWEEN ?3 - ?4 AND ?3 + ?4`

	sqlListWorlds = `
		SELECT c.world_id,
		       COALESCE(p.name, ''),
		       COALESCE(p.xp, 0),
		       SUM(CASE WHEN c.harvested = 0 THEN 1 ELSE 0 END),
		       COUNT(*),
		       MAX(c.planted_at)
		FROM crops c
		LEFT JOIN players p ON p.id = c.world_id
		GROUP BY c.world_id
		ORDER BY MAX(c.planted_at) DESC, c.world_id
		LIMIT ? OFFSET ?`
)

// Error Messages
const (
	ErrMsgEmptyPath = "empty sqlite path"
)
