package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP Metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameHTTPRequestsTotal,
			Help: HelpTextHTTPRequestsTotal,
		},
		[]string{LabelMethod, LabelPath, LabelStatus},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    MetricNameHTTPRequestDuration,
			Help:    HelpTextHTTPRequestDuration,
			Buckets: HTTPLatencyBuckets,
		},
		[]string{LabelMethod, LabelPath},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricNameHTTPRequestsInFlight,
			Help: HelpTextHTTPRequestsInFlight,
		},
	)
)

// Session Metrics
var (
	SessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricNameSessionsActive,
			Help: HelpTextSessionsActive,
		},
	)

	RoomsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricNameRoomsActive,
			Help: HelpTextRoomsActive,
		},
	)

	MessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameMessagesTotal,
			Help: HelpTextMessagesTotal,
		},
		[]string{LabelType},
	)

	GameErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameGameErrorsTotal,
			Help: HelpTextGameErrorsTotal,
		},
		[]string{LabelCode},
	)

	OutboundDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameOutboundDropped,
			Help: HelpTextOutboundDropped,
		},
	)
)

// Economy Metrics
var (
	CropsPlanted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameCropsPlanted,
			Help: HelpTextCropsPlanted,
		},
		[]string{LabelSeed},
	)

	CropsHarvested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameCropsHarvested,
			Help: HelpTextCropsHarvested,
		},
		[]string{LabelSeed},
	)

	JournalRecords = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameJournalRecordsTotal,
			Help: HelpTextJournalRecordsTotal,
		},
		[]string{LabelOutcome},
	)
)

// Ledger Metrics
var (
	LedgerTxDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    MetricNameLedgerTxDuration,
			Help:    HelpTextLedgerTxDuration,
			Buckets: LedgerLatencyBuckets,
		},
		[]string{LabelOp},
	)

	PersistenceErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNamePersistenceErrors,
			Help: HelpTextPersistenceErrors,
		},
		[]string{LabelOp},
	)

	WorkerQueueRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameWorkerQueueRejection,
			Help: HelpTextWorkerQueueRejection,
		},
	)
)
