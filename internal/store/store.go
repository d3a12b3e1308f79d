package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goran-ethernal/FlashBatcher/internal/common"
	"github.com/goran-ethernal/FlashBatcher/internal/db"
	"github.com/goran-ethernal/FlashBatcher/internal/logger"
	"github.com/goran-ethernal/FlashBatcher/internal/migrations"
	"github.com/goran-ethernal/FlashBatcher/internal/types"
	"github.com/goran-ethernal/FlashBatcher/pkg/config"
	"github.com/russross/meddler"
)

const batchesTable = "batches"

// BatchStore is the durable, sqlite backed store of batches.
// Every operation runs under one mutex; sqlite does not tolerate concurrent writers.
type BatchStore struct {
	db          *sql.DB
	maintenance db.Maintenance
	log         *logger.Logger

	mu       sync.Mutex
	poisoned bool

	ownsDB bool
}

// New wraps an already open database. The caller must run Init before first use.
func New(sqlDB *sql.DB, maintenance db.Maintenance, log *logger.Logger) *BatchStore {
	if maintenance == nil {
		maintenance = &db.NoOpMaintenance{}
	}

	return &BatchStore{
		db:          sqlDB,
		maintenance: maintenance,
		log:         log.WithComponent(common.ComponentBatchStore),
	}
}

// Open opens the database at cfg.Path, applies the schema and returns a store that owns the connection.
func Open(cfg config.DatabaseConfig, maintenance db.Maintenance, log *logger.Logger) (*BatchStore, error) {
	sqlDB, err := db.NewSQLiteDBFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	s := New(sqlDB, maintenance, log)
	s.ownsDB = true

	if err := s.Init(); err != nil {
		sqlDB.Close()
		return nil, err
	}

	return s, nil
}

// DB returns the underlying database handle.
func (s *BatchStore) DB() *sql.DB {
	return s.db
}

// Init creates the batches schema. Safe to call on every startup.
func (s *BatchStore) Init() error {
	return s.withLock("init", func() error {
		if err := migrations.RunMigrationsDB(s.log, s.db); err != nil {
			return fmt.Errorf("failed to initialize batch store schema: %w", err)
		}
		return nil
	})
}

// Close closes the database if the store opened it.
func (s *BatchStore) Close() error {
	if !s.ownsDB {
		return nil
	}
	return s.db.Close()
}

// withLock runs fn holding the maintenance operation lock and the store mutex.
// A panic in fn poisons the store: fn's call and every later call fail with ErrStorePoisoned.
func (s *BatchStore) withLock(op string, fn func() error) (err error) {
	unlock := s.maintenance.AcquireOperationLock()
	defer unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.poisoned {
		OperationErrorInc(op)
		return fmt.Errorf("%s: %w", op, ErrStorePoisoned)
	}

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			s.poisoned = true
			StorePoisonedSet()
			s.log.Errorf("panic during %s, store is now poisoned: %v", op, r)
			err = fmt.Errorf("%s: panic while holding store lock: %v: %w", op, r, ErrStorePoisoned)
		}

		OperationDurationLog(op, time.Since(start))
		if err != nil && !errors.Is(err, ErrNotFound) {
			OperationErrorInc(op)
		}
	}()

	return fn()
}

// InsertBatch persists a new batch in a single insert.
// A batch with no block numbers is ignored with a warning.
func (s *BatchStore) InsertBatch(ctx context.Context, batch *types.Batch) error {
	if batch == nil {
		return fmt.Errorf("insert batch: nil batch")
	}
	if len(batch.BlockNumbers) == 0 {
		s.log.Warnf("ignoring insert of batch %s with no blocks", batch.ID)
		return nil
	}
	if batch.ID == "" {
		return fmt.Errorf("insert batch: empty id")
	}
	if batch.Status == "" {
		batch.Status = types.BatchStatusPending
	}
	if batch.Data == nil {
		batch.Data = []byte{}
	}

	return s.withLock("insert_batch", func() error {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := meddler.Insert(s.db, batchesTable, batch); err != nil {
			if db.IsUniqueViolation(err) {
				return fmt.Errorf("insert batch %s: %w", batch.ID, ErrDuplicateBatch)
			}
			return fmt.Errorf("insert batch %s: %w", batch.ID, err)
		}

		BatchesInsertedInc()
		s.log.Debugf("inserted batch %s with %d blocks", batch.ID, len(batch.BlockNumbers))

		return nil
	})
}

// GetBatch returns the batch with the given id.
func (s *BatchStore) GetBatch(ctx context.Context, id string) (*types.Batch, error) {
	var batch types.Batch

	err := s.withLock("get_batch", func() error {
		err := meddler.QueryRow(s.db, &batch, `SELECT * FROM batches WHERE id = ?`, id)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("batch %s: %w", id, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to load batch %s: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &batch, nil
}

// ListByStatus returns all batches with the given status, oldest first.
// Batches created in the same second keep their insertion order.
func (s *BatchStore) ListByStatus(ctx context.Context, status types.BatchStatus) ([]*types.Batch, error) {
	var batches []*types.Batch

	err := s.withLock("list_by_status", func() error {
		const query = `
			SELECT * FROM batches
			WHERE status = ?
			ORDER BY created_at ASC, rowid ASC
		`
		if err := meddler.QueryAll(s.db, &batches, query, status); err != nil {
			return fmt.Errorf("failed to list %s batches: %w", status, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return batches, nil
}

// ListBatches returns a page of batches, oldest first. An empty status lists every batch.
// A non-positive limit returns all remaining rows.
func (s *BatchStore) ListBatches(ctx context.Context, status types.BatchStatus, limit, offset int) ([]*types.Batch, error) {
	var batches []*types.Batch

	if limit <= 0 {
		limit = -1
	}
	if offset < 0 {
		offset = 0
	}

	err := s.withLock("list_batches", func() error {
		const query = `
			SELECT * FROM batches
			WHERE (? = '' OR status = ?)
			ORDER BY created_at ASC, rowid ASC
			LIMIT ? OFFSET ?
		`
		if err := meddler.QueryAll(s.db, &batches, query, status, status, limit, offset); err != nil {
			return fmt.Errorf("failed to list batches: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return batches, nil
}

// UpdateStatus unconditionally sets the status of a batch.
// It returns ErrNotFound when no batch has the given id.
func (s *BatchStore) UpdateStatus(ctx context.Context, id string, status types.BatchStatus) error {
	if !status.IsValid() {
		return fmt.Errorf("update status of batch %s: invalid status %q", id, status)
	}

	return s.withLock("update_status", func() error {
		res, err := s.db.ExecContext(ctx, `UPDATE batches SET status = ? WHERE id = ?`, status, id)
		if err != nil {
			return fmt.Errorf("failed to update status of batch %s: %w", id, err)
		}
		if err := requireOneRow(res, id); err != nil {
			return err
		}

		StatusTransitionInc(status)
		return nil
	})
}

// MarkSubmitted records a successful delivery: status Submitted, the submission time and the sink's reference.
func (s *BatchStore) MarkSubmitted(ctx context.Context, id string, submittedAt, externalRef uint64) error {
	return s.withLock("mark_submitted", func() error {
		const query = `
			UPDATE batches
			SET status = ?, submitted_at = ?, celestia_height = ?
			WHERE id = ?
		`
		res, err := s.db.ExecContext(ctx, query, types.BatchStatusSubmitted, submittedAt, externalRef, id)
		if err != nil {
			return fmt.Errorf("failed to mark batch %s submitted: %w", id, err)
		}
		if err := requireOneRow(res, id); err != nil {
			return err
		}

		StatusTransitionInc(types.BatchStatusSubmitted)
		return nil
	})
}

// RecordFailedAttempt increments the retry count of a batch.
// With maxRetries > 0 the batch moves to Failed once the count reaches it; zero means unlimited.
// It returns the new retry count and status.
func (s *BatchStore) RecordFailedAttempt(
	ctx context.Context,
	id string,
	maxRetries uint32,
) (uint32, types.BatchStatus, error) {
	var (
		retryCount uint32
		status     types.BatchStatus
	)

	err := s.withLock("record_failed_attempt", func() error {
		const query = `
			UPDATE batches
			SET retry_count = COALESCE(retry_count, 0) + 1,
			    status = CASE
			        WHEN ? > 0 AND COALESCE(retry_count, 0) + 1 >= ? THEN ?
			        ELSE status
			    END
			WHERE id = ?
			RETURNING retry_count, status
		`
		err := s.db.QueryRowContext(ctx, query, maxRetries, maxRetries, types.BatchStatusFailed, id).
			Scan(&retryCount, &status)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("batch %s: %w", id, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to record failed attempt for batch %s: %w", id, err)
		}

		if status == types.BatchStatusFailed {
			StatusTransitionInc(types.BatchStatusFailed)
		}
		return nil
	})
	if err != nil {
		return 0, "", err
	}

	return retryCount, status, nil
}

// CountByStatus returns the number of batches with the given status.
func (s *BatchStore) CountByStatus(ctx context.Context, status types.BatchStatus) (uint64, error) {
	var count uint64

	err := s.withLock("count_by_status", func() error {
		if err := s.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM batches WHERE status = ?`, status).Scan(&count); err != nil {
			return fmt.Errorf("failed to count %s batches: %w", status, err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return count, nil
}

// StatusCounts returns the number of batches for every known status, including zero counts.
func (s *BatchStore) StatusCounts(ctx context.Context) (map[types.BatchStatus]uint64, error) {
	counts := make(map[types.BatchStatus]uint64, len(types.AllBatchStatuses))
	for _, status := range types.AllBatchStatuses {
		counts[status] = 0
	}

	err := s.withLock("status_counts", func() error {
		rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM batches GROUP BY status`)
		if err != nil {
			return fmt.Errorf("failed to count batches: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var (
				status types.BatchStatus
				count  uint64
			)
			if err := rows.Scan(&status, &count); err != nil {
				return fmt.Errorf("failed to scan batch count: %w", err)
			}
			counts[status] = count
		}

		return rows.Err()
	})
	if err != nil {
		return nil, err
	}

	return counts, nil
}

// LastBatchedBlock returns the highest block number contained in any batch.
// The second return value is false when the store holds no batches.
func (s *BatchStore) LastBatchedBlock(ctx context.Context) (uint64, bool, error) {
	var last sql.NullInt64

	err := s.withLock("last_batched_block", func() error {
		const query = `
			SELECT MAX(CAST(j.value AS INTEGER))
			FROM batches, json_each(batches.block_numbers) AS j
		`
		if err := s.db.QueryRowContext(ctx, query).Scan(&last); err != nil {
			return fmt.Errorf("failed to query last batched block: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, false, err
	}

	if !last.Valid {
		return 0, false, nil
	}

	return uint64(last.Int64), true, nil
}

func requireOneRow(res sql.Result, id string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows for batch %s: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("batch %s: %w", id, ErrNotFound)
	}
	return nil
}
