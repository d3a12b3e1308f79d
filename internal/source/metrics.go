package source

import (
	"github.com/goran-ethernal/FlashBatcher/pkg/notification"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	headBlock = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "flashbatcher_source_head_block",
			Help: "Latest head block number seen for the configured finality",
		},
	)

	finishedHeight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "flashbatcher_source_finished_height",
			Help: "Last block height acknowledged by the driver",
		},
	)

	emitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flashbatcher_source_notifications_total",
			Help: "Total number of notifications emitted by kind",
		},
		[]string{"kind"},
	)

	reorgs = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "flashbatcher_source_reorgs_total",
			Help: "Total number of detected reorgs",
		},
	)
)

func HeadSet(n uint64) {
	headBlock.Set(float64(n))
}

func FinishedHeightSet(n uint64) {
	finishedHeight.Set(float64(n))
}

func NotificationInc(kind notification.Kind) {
	emitted.WithLabelValues(kind.String()).Inc()
}

func ReorgInc() {
	reorgs.Inc()
}
