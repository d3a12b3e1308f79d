package store

import (
	"time"

	"github.com/goran-ethernal/FlashBatcher/internal/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	operationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "flashbatcher_store_operation_duration_seconds",
			Help:    "Duration of batch store operations",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"operation"},
	)

	operationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flashbatcher_store_operation_errors_total",
			Help: "Total number of failed batch store operations",
		},
		[]string{"operation"},
	)

	batchesInserted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "flashbatcher_store_batches_inserted_total",
			Help: "Total number of batches persisted",
		},
	)

	statusTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flashbatcher_store_status_transitions_total",
			Help: "Total number of batch status writes by target status",
		},
		[]string{"status"},
	)

	storePoisoned = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "flashbatcher_store_poisoned",
			Help: "1 if the batch store lock has been poisoned by a panic",
		},
	)
)

func OperationDurationLog(op string, d time.Duration) {
	operationDuration.WithLabelValues(op).Observe(d.Seconds())
}

func OperationErrorInc(op string) {
	operationErrors.WithLabelValues(op).Inc()
}

func BatchesInsertedInc() {
	batchesInserted.Inc()
}

func StatusTransitionInc(status types.BatchStatus) {
	statusTransitions.WithLabelValues(status.String()).Inc()
}

func StorePoisonedSet() {
	storePoisoned.Set(1)
}
