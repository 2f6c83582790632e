package config

import "time"

// Default configuration file paths
const (
	ConfigPathWorldTuning = "configs/world.yaml"
)

// Environment defaults
const (
	DefaultPort              = 8080
	DefaultDBMaxConns        = 20
	DefaultDBMaxConnIdleTime = 5 * time.Minute
	DefaultDBMaxConnLifetime = 30 * time.Minute
	DefaultSQLitePath        = "data/harvestrealm.db"
	DefaultWorkerCount       = 8
	DefaultWorkerQueueSize   = 1024
	DefaultShutdownTimeout   = 15 * time.Second
	DefaultWorldCacheTTL     = 5 * time.Second
	DefaultRateLimitRequests = 1000
	DefaultRateLimitWindow   = 5 * time.Minute
)

// Tuning defaults
const (
	DefaultWorldMinX           = 0.0
	DefaultWorldMinY           = 0.0
	DefaultWorldMaxX           = 2000.0
	DefaultWorldMaxY           = 2000.0
	DefaultPlayerGrace         = 10 * time.Second
	DefaultHarvestDisplayDelay = 3 * time.Second
	DefaultRoomIdleTimeout     = 5 * time.Minute
	DefaultTickRateHz          = 10
	DefaultChatMaxRunes        = 280
	DefaultOutboundQueueSize   = 256
)

// Supported ledger drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)
