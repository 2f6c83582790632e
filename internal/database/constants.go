package database

import "time"

// Database Connection Pool Constants
const (
	// DefaultMinConnections is the minimum number of connections to maintain in the pool
	DefaultMinConnections = 2
	DefaultMaxConnIdle    = 5 * time.Minute
	DefaultMaxConnLife    = time.Hour
)

// Supported ledger drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Postgres SQLSTATE codes that indicate contention or constraint conflicts
const (
	PgCodeUniqueViolation      = "23505"
	PgCodeForeignKeyViolation  = "23503"
	PgCodeCheckViolation       = "23514"
	PgCodeSerializationFailure = "40001"
	PgCodeDeadlockDetected     = "40P01"
	PgCodeLockNotAvailable     = "55P03"
)

// Error Messages - Database Operations
const (
	ErrMsgFailedToParseConnString     = "failed to parse connection string"
	ErrMsgFailedToCreatePool          = "failed to create connection pool"
	ErrMsgFailedToPingDatabase        = "failed to ping database"
	ErrMsgFailedToBeginTransaction    = "failed to begin transaction"
	ErrMsgFailedToRollbackTransaction = "Failed to rollback transaction"
	ErrMsgFailedToMigrate             = "failed to apply migrations"
)

// Log Messages
const (
	LogMsgSuccessfullyConnectedToDatabase = "Successfully connected to the database"
	LogMsgMigrationsApplied               = "Database migrations applied"
	LogMsgPersistenceFailure              = "Ledger operation failed"
)

// Goose settings
const (
	GooseDialect = "postgres"
	GooseDir     = "."
)
