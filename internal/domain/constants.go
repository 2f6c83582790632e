package domain

// Transaction errors surfaced by the drivers
const (
	ErrMsgTxClosed = "tx is closed"
)

// Ledger operation names, used for PersistenceError.Op and metric labels
const (
	OpBegin             = "begin"
	OpCommit            = "commit"
	OpAdvisoryLock      = "advisory_lock"
	OpGetOrCreatePlayer = "get_or_create_player"
	OpGetPlayer         = "get_player"
	OpUpdateExperience  = "update_experience"
	OpInsertCrop        = "insert_crop"
	OpGetCrop           = "get_crop"
	OpMarkHarvested     = "mark_harvested"
	OpQueryOccupancy    = "query_occupancy"
	OpListCrops         = "list_crops"
	OpListWorlds        = "list_worlds"
	OpPlant             = "plant"
	OpHarvest           = "harvest"
	OpJoin              = "join"
)

// DefaultWorldID is the fallback world identity when a client does not name one.
const DefaultWorldID = "default"
