package scheduler

// Log messages
const (
	LogMsgTickSkipped = "Scheduled job skipped, worker queue full"
)
