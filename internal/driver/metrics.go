package driver

import (
	"github.com/goran-ethernal/FlashBatcher/pkg/notification"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	notificationsReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flashbatcher_driver_notifications_total",
			Help: "Total number of notifications received by kind",
		},
		[]string{"kind"},
	)

	blocksSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "flashbatcher_driver_blocks_skipped_total",
			Help: "Total number of committed blocks skipped because they could not be encoded",
		},
	)

	batchFlushErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "flashbatcher_driver_flush_errors_total",
			Help: "Total number of batch writes that failed and were left for the next block",
		},
	)

	ackedHeight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "flashbatcher_driver_acked_height",
			Help: "Last block height acknowledged to the notification source",
		},
	)
)

func NotificationInc(kind notification.Kind) {
	notificationsReceived.WithLabelValues(kind.String()).Inc()
}

func BlockSkippedInc() {
	blocksSkipped.Inc()
}

func FlushErrorInc() {
	batchFlushErrors.Inc()
}

func AckedHeightSet(height uint64) {
	ackedHeight.Set(float64(height))
}
