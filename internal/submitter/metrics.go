package submitter

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	deliverySuccess = "success"
	deliveryFailure = "failure"
)

var (
	deliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flashbatcher_submitter_deliveries_total",
			Help: "Total number of sink delivery attempts by outcome",
		},
		[]string{"outcome"},
	)

	sweepDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "flashbatcher_submitter_sweep_duration_seconds",
			Help:    "Duration of completed sweeps",
			Buckets: prometheus.DefBuckets,
		},
	)

	sweepErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "flashbatcher_submitter_sweep_errors_total",
			Help: "Total number of sweeps aborted by a store error",
		},
	)
)

func DeliveryInc(outcome string) {
	deliveries.WithLabelValues(outcome).Inc()
}

func SweepDurationLog(d time.Duration) {
	sweepDuration.Observe(d.Seconds())
}

func SweepErrorInc() {
	sweepErrors.Inc()
}
