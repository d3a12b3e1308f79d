package batcher

import (
	"errors"
	"sync"
	"testing"

	"github.com/goran-ethernal/FlashBatcher/internal/logger"
	"github.com/goran-ethernal/FlashBatcher/internal/types"
	"github.com/stretchr/testify/require"
)

func record(n uint64) types.BlockRecord {
	return types.BlockRecord{Number: n, Payload: []byte{byte(n)}, Timestamp: 1000 + n}
}

func numbers(records []types.BlockRecord) []uint64 {
	out := make([]uint64, 0, len(records))
	for _, r := range records {
		out = append(out, r.Number)
	}
	return out
}

func TestAccumulator_ThresholdClamp(t *testing.T) {
	require.Equal(t, uint64(1), NewAccumulator(0, 0, logger.NewNopLogger()).Threshold())
	require.Equal(t, uint64(1), NewAccumulator(1, 0, logger.NewNopLogger()).Threshold())
	require.Equal(t, uint64(25), NewAccumulator(25, 0, logger.NewNopLogger()).Threshold())
}

func TestAccumulator_IsReady(t *testing.T) {
	acc := NewAccumulator(3, 0, logger.NewNopLogger())

	require.Zero(t, acc.Size())
	require.False(t, acc.IsReady())

	acc.Add(record(1))
	acc.Add(record(2))
	require.Equal(t, 2, acc.Size())
	require.False(t, acc.IsReady())

	acc.Add(record(3))
	require.True(t, acc.IsReady())

	acc.Add(record(4))
	require.True(t, acc.IsReady())
}

func TestAccumulator_ZeroThresholdReadyAfterOneBlock(t *testing.T) {
	acc := NewAccumulator(0, 0, logger.NewNopLogger())

	require.False(t, acc.IsReady())
	acc.Add(record(1))
	require.True(t, acc.IsReady())
}

func TestAccumulator_DrainAllPreservesOrder(t *testing.T) {
	acc := NewAccumulator(10, 0, logger.NewNopLogger())
	for _, n := range []uint64{7, 3, 9, 1} {
		acc.Add(record(n))
	}

	drained := acc.DrainAll()
	require.Equal(t, []uint64{7, 3, 9, 1}, numbers(drained))
	require.Zero(t, acc.Size())
	require.Empty(t, acc.DrainAll())
}

func TestAccumulator_Snapshot(t *testing.T) {
	acc := NewAccumulator(10, 0, logger.NewNopLogger())
	acc.Add(record(1))

	snap := acc.Snapshot()
	snap[0].Number = 99

	require.Equal(t, 1, acc.Size())
	require.Equal(t, []uint64{1}, numbers(acc.Snapshot()))
}

func TestAccumulator_DrainKeepsRecordsOnFailure(t *testing.T) {
	acc := NewAccumulator(2, 0, logger.NewNopLogger())
	acc.Add(record(1))
	acc.Add(record(2))

	errWrite := errors.New("write failed")
	err := acc.Drain(func(records []types.BlockRecord) error {
		require.Equal(t, []uint64{1, 2}, numbers(records))
		return errWrite
	})
	require.ErrorIs(t, err, errWrite)
	require.Equal(t, 2, acc.Size())

	acc.Add(record(3))

	var got []uint64
	require.NoError(t, acc.Drain(func(records []types.BlockRecord) error {
		got = numbers(records)
		return nil
	}))
	require.Equal(t, []uint64{1, 2, 3}, got)
	require.Zero(t, acc.Size())
}

func TestAccumulator_SoftLimitNeverDrops(t *testing.T) {
	acc := NewAccumulator(100, 2, logger.NewNopLogger())
	for i := range uint64(5) {
		acc.Add(record(i))
	}

	require.Equal(t, 5, acc.Size())
	require.True(t, acc.overLimit)

	acc.DrainAll()
	require.False(t, acc.overLimit)
}

func TestAccumulator_ConcurrentAddDuringDrain(t *testing.T) {
	acc := NewAccumulator(1, 0, logger.NewNopLogger())

	var (
		wg      sync.WaitGroup
		drained int
		mu      sync.Mutex
	)

	for i := range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			acc.Add(record(uint64(i)))
			_ = acc.Drain(func(records []types.BlockRecord) error {
				mu.Lock()
				drained += len(records)
				mu.Unlock()
				return nil
			})
		}()
	}
	wg.Wait()

	require.Equal(t, 100, drained+acc.Size())
}
