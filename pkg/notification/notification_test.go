package notification

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/require"
)

func ref(n uint64) BlockRef {
	return BlockRef{Number: n, BlockHash: common.BigToHash(big.NewInt(int64(n))), Timestamp: 1000 + n}
}

func TestChain_RangeAndTip(t *testing.T) {
	c := NewChain(ref(5), ref(6), ref(7))

	first, last := c.Range()
	require.Equal(t, uint64(5), first)
	require.Equal(t, uint64(7), last)
	require.Equal(t, 3, c.Len())
	require.Equal(t, BlockNumHash{Number: 7, Hash: ref(7).BlockHash}, c.Tip())
	require.Equal(t, "[5..=7]", c.String())

	var empty *Chain
	require.Zero(t, empty.Len())
	require.Equal(t, BlockNumHash{}, empty.Tip())
	require.Equal(t, "[]", empty.String())
}

func TestNotification_CommittedChain(t *testing.T) {
	commit := Commit(ref(1))
	require.Equal(t, KindCommit, commit.Kind)
	require.Same(t, commit.New, commit.CommittedChain())

	old, replacement := NewChain(ref(2)), NewChain(ref(2), ref(3))
	reorg := Reorg(old, replacement)
	require.Same(t, replacement, reorg.CommittedChain())

	revert := Revert(old)
	require.Nil(t, revert.CommittedChain())

	require.Equal(t, "commit", KindCommit.String())
	require.Equal(t, "reorg", KindReorg.String())
	require.Equal(t, "revert", KindRevert.String())
	require.Equal(t, "unknown(9)", Kind(9).String())
}

func TestGethBlockSatisfiesBlock(t *testing.T) {
	header := &types.Header{Number: big.NewInt(12), Time: 99}
	var b Block = types.NewBlockWithHeader(header)

	require.Equal(t, uint64(12), b.NumberU64())
	require.Equal(t, uint64(99), b.Time())
	require.Equal(t, header.Hash(), b.Hash())
}

func TestChannelSource(t *testing.T) {
	ch := make(chan *Notification, 2)
	var acked []BlockNumHash
	src := NewChannelSource(ch, func(_ context.Context, h BlockNumHash) error {
		acked = append(acked, h)
		return nil
	})

	ch <- Commit(ref(1))
	close(ch)

	ctx := context.Background()

	n, err := src.Next(ctx)
	require.NoError(t, err)
	require.Equal(t, KindCommit, n.Kind)

	require.NoError(t, src.Ack(ctx, n.New.Tip()))
	require.Equal(t, []BlockNumHash{n.New.Tip()}, acked)

	_, err = src.Next(ctx)
	require.ErrorIs(t, err, ErrStreamClosed)
}

func TestChannelSource_ContextCancelled(t *testing.T) {
	src := NewChannelSource(make(chan *Notification), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := src.Next(ctx)
	require.True(t, errors.Is(err, context.Canceled))
	require.NoError(t, src.Ack(ctx, BlockNumHash{}))
}
