package batcher

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/goran-ethernal/FlashBatcher/internal/logger"
	"github.com/goran-ethernal/FlashBatcher/internal/store"
	"github.com/goran-ethernal/FlashBatcher/internal/types"
	"github.com/goran-ethernal/FlashBatcher/pkg/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type failingInserter struct {
	err   error
	calls int
}

func (f *failingInserter) InsertBatch(context.Context, *types.Batch) error {
	f.calls++
	return f.err
}

func newTestStore(t *testing.T) *store.BatchStore {
	t.Helper()

	cfg := config.DatabaseConfig{Path: filepath.Join(t.TempDir(), "batches.db")}
	cfg.ApplyDefaults()

	s, err := store.Open(cfg, nil, logger.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	return s
}

func TestWriter_Build(t *testing.T) {
	w := NewWriter(&failingInserter{}, logger.NewNopLogger())
	w.now = func() time.Time { return time.Unix(1700000000, 0) }

	batch, err := w.Build([]types.BlockRecord{
		{Number: 10, Payload: []byte("ab")},
		{Number: 11, Payload: []byte("cde")},
		{Number: 12, Payload: nil},
	})
	require.NoError(t, err)

	_, err = uuid.Parse(batch.ID)
	require.NoError(t, err)
	require.Equal(t, []uint64{10, 11, 12}, batch.BlockNumbers)
	require.Equal(t, []byte("abcde"), batch.Data)
	require.Equal(t, uint64(1700000000), batch.CreatedAt)
	require.Equal(t, types.BatchStatusPending, batch.Status)
	require.Zero(t, batch.RetryCount)
	require.Nil(t, batch.SubmittedAt)
	require.Nil(t, batch.ExternalRef)

	_, err = w.Build(nil)
	require.ErrorIs(t, err, ErrEmptyBatch)
}

func TestWriter_UniqueIDs(t *testing.T) {
	w := NewWriter(&failingInserter{}, logger.NewNopLogger())

	seen := make(map[string]struct{})
	for range 100 {
		batch, err := w.Build([]types.BlockRecord{record(1)})
		require.NoError(t, err)
		_, dup := seen[batch.ID]
		require.False(t, dup)
		seen[batch.ID] = struct{}{}
	}
}

func TestWriter_CommitPersistsBatch(t *testing.T) {
	s := newTestStore(t)
	w := NewWriter(s, logger.NewNopLogger())
	ctx := context.Background()

	records := []types.BlockRecord{
		{Number: 1, Payload: []byte{0xaa}},
		{Number: 2, Payload: []byte{0xbb, 0xcc}},
	}

	id, err := w.Commit(ctx, records)
	require.NoError(t, err)

	batch, err := s.GetBatch(ctx, id)
	require.NoError(t, err)
	require.Equal(t, []uint64{1, 2}, batch.BlockNumbers)
	require.True(t, bytes.Equal([]byte{0xaa, 0xbb, 0xcc}, batch.Data))
	require.Equal(t, types.BatchStatusPending, batch.Status)
	require.InDelta(t, time.Now().Unix(), int64(batch.CreatedAt), 5)

	_, err = w.Commit(ctx, nil)
	require.ErrorIs(t, err, ErrEmptyBatch)
}

func TestWriter_FlushBatchSizeThree(t *testing.T) {
	s := newTestStore(t)
	w := NewWriter(s, logger.NewNopLogger())
	acc := NewAccumulator(3, 0, logger.NewNopLogger())
	ctx := context.Background()

	var ids []string
	for n := uint64(1); n <= 5; n++ {
		acc.Add(record(n))
		if acc.IsReady() {
			id, err := w.Flush(ctx, acc)
			require.NoError(t, err)
			ids = append(ids, id)
		}
	}

	require.Len(t, ids, 1)
	require.Equal(t, 2, acc.Size())
	require.Equal(t, []uint64{4, 5}, numbers(acc.Snapshot()))

	batch, err := s.GetBatch(ctx, ids[0])
	require.NoError(t, err)
	require.Equal(t, []uint64{1, 2, 3}, batch.BlockNumbers)
	require.Equal(t, []byte{1, 2, 3}, batch.Data)
}

func TestWriter_StoreFailureLeavesAccumulatorUntouched(t *testing.T) {
	failing := &failingInserter{err: errors.New("disk I/O error")}
	w := NewWriter(failing, logger.NewNopLogger())
	acc := NewAccumulator(2, 0, logger.NewNopLogger())
	ctx := context.Background()

	acc.Add(record(1))
	acc.Add(record(2))

	_, err := w.Flush(ctx, acc)
	require.ErrorIs(t, err, failing.err)
	require.Equal(t, 1, failing.calls)
	require.Equal(t, []uint64{1, 2}, numbers(acc.Snapshot()))

	s := newTestStore(t)
	w.store = s

	id, err := w.Flush(ctx, acc)
	require.NoError(t, err)
	require.Zero(t, acc.Size())

	count, err := s.CountByStatus(ctx, types.BatchStatusPending)
	require.NoError(t, err)
	require.Equal(t, uint64(1), count)

	batch, err := s.GetBatch(ctx, id)
	require.NoError(t, err)
	require.Equal(t, []uint64{1, 2}, batch.BlockNumbers)
}

func TestWriter_FlushEmpty(t *testing.T) {
	w := NewWriter(&failingInserter{}, logger.NewNopLogger())
	acc := NewAccumulator(1, 0, logger.NewNopLogger())

	_, err := w.Flush(context.Background(), acc)
	require.ErrorIs(t, err, ErrEmptyBatch)
}

func TestWriter_CommitStampsBatchID(t *testing.T) {
	w := NewWriter(newTestStore(t), logger.NewNopLogger())
	records := []types.BlockRecord{record(1), record(2)}

	id, err := w.Commit(context.Background(), records)
	require.NoError(t, err)

	for _, r := range records {
		require.NotNil(t, r.BatchID)
		require.Equal(t, id, *r.BatchID)
	}

	failed := []types.BlockRecord{record(3)}
	failing := NewWriter(&failingInserter{err: errors.New("disk full")}, logger.NewNopLogger())
	_, err = failing.Commit(context.Background(), failed)
	require.Error(t, err)
	require.Nil(t, failed[0].BatchID)
}
