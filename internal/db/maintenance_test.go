package db

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goran-ethernal/FlashBatcher/internal/common"
	"github.com/goran-ethernal/FlashBatcher/internal/logger"
	"github.com/goran-ethernal/FlashBatcher/pkg/config"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func setupMaintenanceTestDB(t *testing.T) (*sql.DB, string) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "maintenance.db")

	dbConfig := config.DatabaseConfig{Path: dbPath, Synchronous: "NORMAL"}
	dbConfig.ApplyDefaults()

	db, err := NewSQLiteDBFromConfig(dbConfig)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS test_data (id INTEGER PRIMARY KEY, data TEXT)`)
	require.NoError(t, err)

	return db, dbPath
}

func TestNewMaintenanceCoordinator_NilConfig(t *testing.T) {
	db, dbPath := setupMaintenanceTestDB(t)

	m := NewMaintenanceCoordinator(dbPath, db, nil, logger.NewNopLogger())
	require.IsType(t, &NoOpMaintenance{}, m)

	require.NoError(t, m.Start(context.Background()))
	unlock := m.AcquireOperationLock()
	unlock()
	require.NoError(t, m.RunMaintenance(context.Background()))
	require.Equal(t, MaintenanceMetrics{}, m.GetMetrics())
	require.NoError(t, m.Stop())
}

func TestMaintenanceCoordinator_RunMaintenance(t *testing.T) {
	db, dbPath := setupMaintenanceTestDB(t)

	for range 1000 {
		_, err := db.Exec("INSERT INTO test_data (data) VALUES (?)", "test data")
		require.NoError(t, err)
	}

	walInfo, err := os.Stat(dbPath + "-wal")
	require.NoError(t, err)
	require.Positive(t, walInfo.Size())

	cfg := config.MaintenanceConfig{WALCheckpointMode: "TRUNCATE"}
	coordinator := newMaintenanceCoordinator(dbPath, db, cfg, logger.NewNopLogger())

	require.NoError(t, coordinator.RunMaintenance(context.Background()))

	metrics := coordinator.GetMetrics()
	require.Equal(t, uint64(1), metrics.MaintenanceCount)
	require.False(t, metrics.LastMaintenanceTime.IsZero())
	require.NoError(t, metrics.LastMaintenanceError)

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM test_data").Scan(&count))
	require.Equal(t, 1000, count)
}

func TestMaintenanceCoordinator_RecordsMetrics(t *testing.T) {
	db, dbPath := setupMaintenanceTestDB(t)

	for range 100 {
		_, err := db.Exec("INSERT INTO test_data (data) VALUES (?)", "batch payload")
		require.NoError(t, err)
	}

	cfg := config.MaintenanceConfig{WALCheckpointMode: "TRUNCATE"}
	coordinator := newMaintenanceCoordinator(dbPath, db, cfg, logger.NewNopLogger())

	successBefore := testutil.ToFloat64(maintenanceRuns.WithLabelValues(outcomeSuccess))
	checkpointsBefore := testutil.ToFloat64(maintenanceSteps.WithLabelValues(stepWALCheckpoint))
	vacuumsBefore := testutil.ToFloat64(maintenanceSteps.WithLabelValues(stepVacuum))

	require.NoError(t, coordinator.RunMaintenance(context.Background()))

	require.InDelta(t, successBefore+1, testutil.ToFloat64(maintenanceRuns.WithLabelValues(outcomeSuccess)), 0)
	require.InDelta(t, checkpointsBefore+1, testutil.ToFloat64(maintenanceSteps.WithLabelValues(stepWALCheckpoint)), 0)
	require.InDelta(t, vacuumsBefore+1, testutil.ToFloat64(maintenanceSteps.WithLabelValues(stepVacuum)), 0)
	require.Positive(t, testutil.ToFloat64(maintenanceLastRun))
	require.GreaterOrEqual(t, testutil.ToFloat64(walFrames.WithLabelValues("checkpointed")), float64(0))
	require.Equal(t, 1, testutil.CollectAndCount(operationLockWait))
}

func TestMaintenanceCoordinator_MaintenanceWaitsForOperations(t *testing.T) {
	db, dbPath := setupMaintenanceTestDB(t)

	cfg := config.MaintenanceConfig{WALCheckpointMode: "PASSIVE"}
	coordinator := newMaintenanceCoordinator(dbPath, db, cfg, logger.NewNopLogger())

	unlock := coordinator.AcquireOperationLock()

	var done atomic.Bool
	go func() {
		_ = coordinator.RunMaintenance(context.Background())
		done.Store(true)
	}()

	time.Sleep(100 * time.Millisecond)
	require.False(t, done.Load(), "maintenance must wait for in-flight operations")

	unlock()
	require.Eventually(t, done.Load, 5*time.Second, 10*time.Millisecond)
}

func TestMaintenanceCoordinator_BackgroundMaintenance(t *testing.T) {
	db, dbPath := setupMaintenanceTestDB(t)

	cfg := config.MaintenanceConfig{
		Enabled:           true,
		CheckInterval:     common.NewDuration(50 * time.Millisecond),
		WALCheckpointMode: "PASSIVE",
	}
	coordinator := newMaintenanceCoordinator(dbPath, db, cfg, logger.NewNopLogger())

	require.NoError(t, coordinator.Start(context.Background()))
	require.Eventually(t, func() bool {
		return coordinator.GetMetrics().MaintenanceCount >= 2
	}, 5*time.Second, 10*time.Millisecond)
	require.NoError(t, coordinator.Stop())
}

func TestMaintenanceCoordinator_StartupMaintenance(t *testing.T) {
	db, dbPath := setupMaintenanceTestDB(t)

	cfg := config.MaintenanceConfig{
		Enabled:           true,
		CheckInterval:     common.NewDuration(time.Hour),
		VacuumOnStartup:   true,
		WALCheckpointMode: "TRUNCATE",
	}
	coordinator := newMaintenanceCoordinator(dbPath, db, cfg, logger.NewNopLogger())

	require.NoError(t, coordinator.Start(context.Background()))
	defer coordinator.Stop()

	require.Equal(t, uint64(1), coordinator.GetMetrics().MaintenanceCount)
}

func TestMaintenanceCoordinator_Disabled(t *testing.T) {
	db, dbPath := setupMaintenanceTestDB(t)

	coordinator := newMaintenanceCoordinator(dbPath, db, config.MaintenanceConfig{}, logger.NewNopLogger())

	require.NoError(t, coordinator.Start(context.Background()))
	require.NoError(t, coordinator.Stop())
	require.Zero(t, coordinator.GetMetrics().MaintenanceCount)
}

func TestMaintenanceCoordinator_ContextCancelled(t *testing.T) {
	db, dbPath := setupMaintenanceTestDB(t)

	cfg := config.MaintenanceConfig{WALCheckpointMode: "TRUNCATE"}
	coordinator := newMaintenanceCoordinator(dbPath, db, cfg, logger.NewNopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, coordinator.RunMaintenance(ctx), context.Canceled)
}
