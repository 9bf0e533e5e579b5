package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics for monitoring
var (
	BatchesSettled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "settler_batches_settled_total",
		Help: "The total number of settled payroll batches by outcome",
	}, []string{"status"})

	IntentsSettled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "settler_intents_settled_total",
		Help: "The total number of employee payment intents by terminal state",
	}, []string{"state"})

	SettlementDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "settler_settlement_seconds",
		Help:    "Wall-clock time from submission to receipt",
		Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
	})

	GasUsed = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "settler_gas_used",
		Help:    "Gas used by settlement transactions",
		Buckets: prometheus.ExponentialBuckets(21000, 2, 10),
	})

	GasPrice = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "settler_gas_price_gwei",
		Help: "Current gas price in gwei",
	})

	CallSteps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "settler_call_steps_total",
		Help: "Call steps emitted by the call builder by role",
	}, []string{"role"})

	SwapGroups = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "settler_swap_groups",
		Help:    "Number of swap groups per auto-swap batch",
		Buckets: prometheus.LinearBuckets(0, 1, 8),
	})

	UserCancellations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "settler_user_cancellations_total",
		Help: "Settlements aborted by wallet rejection",
	})

	SubmissionErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "settler_submission_errors_total",
		Help: "Total number of submission errors by type",
	}, []string{"error_type"})

	RecordBatchErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "settler_record_batch_errors_total",
		Help: "Best-effort batch-record calls that failed",
	})

	NotificationErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "settler_notification_errors_total",
		Help: "Best-effort email notifications that failed",
	})

	ImportRows = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "settler_import_rows_total",
		Help: "CSV import rows by validation result",
	}, []string{"result"})
)
