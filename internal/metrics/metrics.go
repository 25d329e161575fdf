package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PacksProcessed tracks processed packs per queue and final result
	PacksProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "requeue_packs_processed_total",
			Help: "Total number of message packs processed",
		},
		[]string{"queue", "result"},
	)

	// MessagesProcessed tracks per-message handler results
	MessagesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "requeue_messages_processed_total",
			Help: "Total number of messages processed",
		},
		[]string{"queue", "status"},
	)

	// MessagesReprocessed tracks messages resubmitted by a retry decision
	MessagesReprocessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "requeue_messages_reprocessed_total",
			Help: "Total number of messages resubmitted for another pass",
		},
		[]string{"queue"},
	)

	// MessagesAbandoned tracks messages given up on, per reason
	MessagesAbandoned = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "requeue_messages_abandoned_total",
			Help: "Total number of messages abandoned to the dead letter store",
		},
		[]string{"queue", "reason"},
	)

	// PackDuration tracks end-to-end pack processing time, retries included
	PackDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "requeue_pack_duration_seconds",
			Help:    "Pack processing duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"queue"},
	)

	// QueueDepth tracks the number of messages waiting in the broker
	QueueDepth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "requeue_queue_depth",
			Help: "Number of messages waiting in the queue",
		},
		[]string{"queue"},
	)

	// DeadLetters tracks the number of stored dead letters
	DeadLetters = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "requeue_dead_letters",
			Help: "Number of dead letters currently stored",
		},
		[]string{"queue"},
	)

	// DBConnectionPoolUsage tracks database connection pool utilization
	DBConnectionPoolUsage = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "requeue_db_pool_usage_percent",
			Help: "Database connection pool usage percentage",
		},
	)
)
