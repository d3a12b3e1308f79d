package types

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/stretchr/testify/require"
)

func TestParseBlockFinality(t *testing.T) {
	tests := []struct {
		input     string
		want      BlockFinality
		wantBlock *big.Int
		wantError bool
	}{
		{input: "finalized", want: FinalityFinalized, wantBlock: big.NewInt(int64(rpc.FinalizedBlockNumber))},
		{input: "safe", want: FinalitySafe, wantBlock: big.NewInt(int64(rpc.SafeBlockNumber))},
		{input: "latest", want: FinalityLatest},
		{input: "pending", wantError: true},
		{input: "", wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseBlockFinality(tt.input)
			if tt.wantError {
				require.Error(t, err)
				require.False(t, BlockFinality(tt.input).IsValid())
				return
			}

			require.NoError(t, err)
			require.Equal(t, tt.want, got)
			require.Equal(t, tt.input, got.String())
			require.Equal(t, tt.wantBlock, got.BlockNumber())
		})
	}
}

func TestParseBatchStatus(t *testing.T) {
	for _, status := range AllBatchStatuses {
		got, err := ParseBatchStatus(status.String())
		require.NoError(t, err)
		require.Equal(t, status, got)
		require.True(t, got.IsValid())
	}

	got, err := ParseBatchStatus("pending")
	require.NoError(t, err)
	require.Equal(t, BatchStatusPending, got)

	_, err = ParseBatchStatus("Done")
	require.Error(t, err)
	require.False(t, BatchStatus("Done").IsValid())
}

func TestBatch_BlockRange(t *testing.T) {
	b := &Batch{BlockNumbers: []uint64{10, 11, 12}}
	require.Equal(t, uint64(10), b.FirstBlock())
	require.Equal(t, uint64(12), b.LastBlock())

	empty := &Batch{}
	require.Zero(t, empty.FirstBlock())
	require.Zero(t, empty.LastBlock())
}
