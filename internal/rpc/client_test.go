package rpc

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rpc"
	pkgrpc "github.com/goran-ethernal/FlashBatcher/pkg/rpc"
	"github.com/stretchr/testify/require"
)

// fakeEth serves eth_getBlockByNumber for a chain of empty blocks up to head.
type fakeEth struct {
	head  uint64
	calls atomic.Int64
}

func testHeader(n uint64) *ethtypes.Header {
	return &ethtypes.Header{
		Number:      new(big.Int).SetUint64(n),
		Time:        1700000000 + n,
		Difficulty:  big.NewInt(0),
		GasLimit:    30_000_000,
		UncleHash:   ethtypes.EmptyUncleHash,
		TxHash:      ethtypes.EmptyTxsHash,
		ReceiptHash: ethtypes.EmptyReceiptsHash,
		Extra:       []byte{},
	}
}

func (f *fakeEth) GetBlockByNumber(_ context.Context, number rpc.BlockNumber, _ bool) (json.RawMessage, error) {
	f.calls.Add(1)

	n := f.head
	switch {
	case number >= 0:
		n = uint64(number)
	case number == rpc.FinalizedBlockNumber:
		n = f.head - 2
	case number == rpc.SafeBlockNumber:
		n = f.head - 1
	}

	if n > f.head {
		return json.RawMessage("null"), nil
	}

	encoded, err := json.Marshal(testHeader(n))
	if err != nil {
		return nil, err
	}

	var fields map[string]any
	if err := json.Unmarshal(encoded, &fields); err != nil {
		return nil, err
	}
	fields["transactions"] = []any{}
	fields["uncles"] = []any{}

	return json.Marshal(fields)
}

func setupTestClient(t *testing.T, head uint64) (*Client, *fakeEth) {
	t.Helper()

	eth := &fakeEth{head: head}
	server := rpc.NewServer()
	require.NoError(t, server.RegisterName("eth", eth))

	httpServer := httptest.NewServer(server)
	t.Cleanup(httpServer.Close)
	t.Cleanup(server.Stop)

	client, err := NewClient(context.Background(), httpServer.URL, fastRetry(2))
	require.NoError(t, err)
	t.Cleanup(client.Close)

	return client, eth
}

func TestClientImplementsInterface(t *testing.T) {
	var _ pkgrpc.EthClient = (*Client)(nil)
}

func TestToBlockNumArg(t *testing.T) {
	require.Equal(t, "0x0", toBlockNumArg(0))
	require.Equal(t, "0x64", toBlockNumArg(100))
	require.Equal(t, "0x112a880", toBlockNumArg(18000000))
}

func TestClient_Headers(t *testing.T) {
	client, _ := setupTestClient(t, 20)
	ctx := context.Background()

	latest, err := client.GetLatestBlockHeader(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(20), latest.Number.Uint64())

	safe, err := client.GetSafeBlockHeader(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(19), safe.Number.Uint64())

	finalized, err := client.GetFinalizedBlockHeader(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(18), finalized.Number.Uint64())

	header, err := client.GetBlockHeader(ctx, 7)
	require.NoError(t, err)
	require.Equal(t, testHeader(7).Hash(), header.Hash())

	_, err = client.GetBlockHeader(ctx, 21)
	require.True(t, IsNotFound(err))
}

func TestClient_GetBlockByNumber(t *testing.T) {
	client, eth := setupTestClient(t, 5)
	ctx := context.Background()

	block, err := client.GetBlockByNumber(ctx, 3)
	require.NoError(t, err)
	require.Equal(t, uint64(3), block.NumberU64())
	require.Equal(t, testHeader(3).Hash(), block.Hash())
	require.Empty(t, block.Transactions())

	before := eth.calls.Load()
	_, err = client.GetBlockByNumber(ctx, 6)
	require.True(t, IsNotFound(err))
	require.Equal(t, before+1, eth.calls.Load(), "not found must not be retried")
}

func TestClient_BatchGetBlockHeaders(t *testing.T) {
	client, _ := setupTestClient(t, 300)
	ctx := context.Background()

	nums := make([]uint64, 0, 250)
	for n := uint64(1); n <= 250; n++ {
		nums = append(nums, n)
	}

	headers, err := client.BatchGetBlockHeaders(ctx, nums)
	require.NoError(t, err)
	require.Len(t, headers, 250)
	for i, h := range headers {
		require.Equal(t, nums[i], h.Number.Uint64())
	}

	headers, err = client.BatchGetBlockHeaders(ctx, []uint64{299, 300, 301})
	require.NoError(t, err)
	require.Len(t, headers, 3)
	require.NotNil(t, headers[1])
	require.Nil(t, headers[2])
}
