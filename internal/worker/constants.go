package worker

import "time"

// DefaultJobTimeout bounds a single job, including any ledger transaction it runs
const DefaultJobTimeout = 10 * time.Second

// Log messages for worker pool operations
const (
	// LogMsgWorkerJobFailed is logged when a worker fails to process a job
	LogMsgWorkerJobFailed   = "Worker job failed"
	LogMsgWorkerJobPanicked = "Worker job panicked"
	LogMsgPoolDraining      = "Worker pool draining queued jobs"
)

// Test pool configuration values used in pool_test.go
const (
	TestWorkerCount      = 2
	TestQueueSize        = 10
	TestExpectedJobCount = 2
)
