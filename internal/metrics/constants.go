package metrics

// ============================================================================
// Metric Names
// ============================================================================

// HTTP metric names
const (
	MetricNameHTTPRequestsTotal    = "http_requests_total"
	MetricNameHTTPRequestDuration  = "http_request_duration_seconds"
	MetricNameHTTPRequestsInFlight = "http_requests_in_flight"
)

// Realm metric names
const (
	MetricNameSessionsActive       = "realm_sessions_active"
	MetricNameRoomsActive          = "realm_rooms_active"
	MetricNameMessagesTotal        = "realm_messages_total"
	MetricNameGameErrorsTotal      = "realm_game_errors_total"
	MetricNameOutboundDropped      = "realm_outbound_dropped_total"
	MetricNameCropsPlanted         = "realm_crops_planted_total"
	MetricNameCropsHarvested       = "realm_crops_harvested_total"
	MetricNameLedgerTxDuration     = "realm_ledger_tx_duration_seconds"
	MetricNamePersistenceErrors    = "realm_persistence_errors_total"
	MetricNameJournalRecordsTotal  = "realm_journal_records_total"
	MetricNameWorkerQueueRejection = "realm_worker_queue_rejections_total"
)

// ============================================================================
// Metric Help Text
// ============================================================================

// HTTP metric help text
const (
	HelpTextHTTPRequestsTotal    = "Total number of HTTP requests"
	HelpTextHTTPRequestDuration  = "HTTP request latency in seconds"
	HelpTextHTTPRequestsInFlight = "Current number of HTTP requests being served"
)

// Realm metric help text
const (
	HelpTextSessionsActive       = "Current number of joined sessions across all rooms"
	HelpTextRoomsActive          = "Current number of open rooms"
	HelpTextMessagesTotal        = "Total number of inbound session messages by type"
	HelpTextGameErrorsTotal      = "Total number of game_error replies by code"
	HelpTextOutboundDropped      = "Total number of outbound frames dropped because a session queue was full"
	HelpTextCropsPlanted         = "Total number of crops planted by seed type"
	HelpTextCropsHarvested       = "Total number of crops harvested by seed type"
	HelpTextLedgerTxDuration     = "Ledger atomic block latency in seconds"
	HelpTextPersistenceErrors    = "Total number of ledger persistence errors by operation"
	HelpTextJournalRecordsTotal  = "Total number of economy journal records by outcome"
	HelpTextWorkerQueueRejection = "Total number of ledger jobs rejected because the worker queue was full"
)

// ============================================================================
// Metric Label Names
// ============================================================================

// Common label names used across metrics
const (
	LabelMethod  = "method"
	LabelPath    = "path"
	LabelStatus  = "status"
	LabelType    = "type"
	LabelCode    = "code"
	LabelSeed    = "seed"
	LabelOp      = "op"
	LabelOutcome = "outcome"
)

// Label values
const (
	OutcomeWritten = "written"
	OutcomeFailed  = "failed"
	PathUnmatched  = "unmatched"
)

// HTTPLatencyBuckets are histogram buckets for request latency (seconds)
var HTTPLatencyBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}

// LedgerLatencyBuckets are histogram buckets for atomic block latency (seconds)
var LedgerLatencyBuckets = []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5}
