package batcher

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	pendingBlocks = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "flashbatcher_accumulator_pending_blocks",
			Help: "Number of blocks waiting in the accumulator",
		},
	)

	batchThreshold = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "flashbatcher_accumulator_threshold_blocks",
			Help: "Configured number of blocks per batch",
		},
	)

	overLimit = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "flashbatcher_accumulator_over_soft_limit",
			Help: "1 if the pending block count exceeds the configured soft limit",
		},
	)

	blocksAdded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "flashbatcher_accumulator_blocks_added_total",
			Help: "Total number of blocks added to the accumulator",
		},
	)

	batchesWritten = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "flashbatcher_batches_written_total",
			Help: "Total number of batches written",
		},
	)

	batchWriteErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "flashbatcher_batch_write_errors_total",
			Help: "Total number of failed batch writes",
		},
	)

	batchBlocks = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "flashbatcher_batch_blocks",
			Help:    "Number of blocks per written batch",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		},
	)

	batchBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "flashbatcher_batch_bytes",
			Help:    "Size of batch data in bytes",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 10),
		},
	)

	batchWriteDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "flashbatcher_batch_write_duration_seconds",
			Help:    "Time spent persisting a batch",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func PendingBlocksSet(n uint64) {
	pendingBlocks.Set(float64(n))
}

func ThresholdSet(n uint64) {
	batchThreshold.Set(float64(n))
}

func OverLimitSet(over bool) {
	if over {
		overLimit.Set(1)
		return
	}
	overLimit.Set(0)
}

func BlocksAddedInc() {
	blocksAdded.Inc()
}

func BatchWrittenLog(blocks, bytes int, d time.Duration) {
	batchesWritten.Inc()
	batchBlocks.Observe(float64(blocks))
	batchBytes.Observe(float64(bytes))
	batchWriteDuration.Observe(d.Seconds())
}

func BatchWriteErrorInc() {
	batchWriteErrors.Inc()
}
