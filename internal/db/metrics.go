package db

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeSuccess = "success"
	outcomeError   = "error"

	stepWALCheckpoint = "wal_checkpoint"
	stepVacuum        = "vacuum"
)

var (
	maintenanceRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flashbatcher_maintenance_runs_total",
			Help: "Maintenance runs of the batch store by outcome",
		},
		[]string{"outcome"},
	)

	maintenanceSteps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flashbatcher_maintenance_steps_total",
			Help: "Completed maintenance steps (wal_checkpoint, vacuum)",
		},
		[]string{"step"},
	)

	maintenanceDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "flashbatcher_maintenance_duration_seconds",
			Help:    "Time the batch store was locked for maintenance",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60},
		},
	)

	maintenanceLastRun = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "flashbatcher_maintenance_last_run_timestamp_seconds",
			Help: "Unix time of the last maintenance run",
		},
	)

	maintenanceReclaimed = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "flashbatcher_maintenance_reclaimed_bytes",
			Help: "Bytes reclaimed by the last maintenance run",
		},
	)

	walFrames = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "flashbatcher_wal_checkpoint_frames",
			Help: "Frames reported by the last WAL checkpoint",
		},
		[]string{"kind"},
	)

	operationLockWait = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "flashbatcher_store_lock_wait_seconds",
			Help:    "Time batch store operations waited for running maintenance",
			Buckets: []float64{0.0001, 0.001, 0.01, 0.1, 1, 10},
		},
	)
)

func maintenanceRunLog(outcome string, duration time.Duration) {
	maintenanceRuns.WithLabelValues(outcome).Inc()
	maintenanceDuration.Observe(duration.Seconds())
	maintenanceLastRun.SetToCurrentTime()
}

func maintenanceStepInc(step string) {
	maintenanceSteps.WithLabelValues(step).Inc()
}

func reclaimedBytesSet(n uint64) {
	maintenanceReclaimed.Set(float64(n))
}

func walFramesSet(logFrames, checkpointed int) {
	walFrames.WithLabelValues("log").Set(float64(logFrames))
	walFrames.WithLabelValues("checkpointed").Set(float64(checkpointed))
}

func operationLockWaitLog(d time.Duration) {
	operationLockWait.Observe(d.Seconds())
}
