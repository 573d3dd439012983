// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	StorageOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storage_operations_total",
			Help: "Partition reads and writes by backend and outcome",
		},
		[]string{"backend", "partition", "op", "outcome"},
	)

	StorageLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storage_operation_duration_seconds",
			Help:    "Latency of partition reads and writes",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
		},
		[]string{"backend", "op"},
	)

	StorageHeals = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storage_partition_heals_total",
			Help: "Partitions rewritten in canonical form after a read",
		},
		[]string{"partition", "reason"},
	)

	FeedbackMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedback_mutations_total",
			Help: "Feedback engine operations by name and whether a record changed",
		},
		[]string{"op", "mutated"},
	)

	ReviewEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "review_events_recorded_total",
			Help: "Scan, redirect and internal events appended",
		},
		[]string{"type"},
	)

	RatingDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rating_decisions_total",
			Help: "Ratings routed to the review platform or intercepted",
		},
		[]string{"outcome"},
	)

	Deliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_deliveries_total",
			Help: "Customer replies and operator alerts by channel and result",
		},
		[]string{"channel", "result"},
	)

	PendingDeletes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "feedback_pending_deletes",
			Help: "Records held in the delete undo window",
		},
	)
)

// Bool renders a label value for boolean outcomes.
func Bool(v bool) string {
	if v {
		return "true"
	}
	return "false"
}
