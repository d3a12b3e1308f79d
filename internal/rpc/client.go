package rpc

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/goran-ethernal/FlashBatcher/pkg/config"
	pkgrpc "github.com/goran-ethernal/FlashBatcher/pkg/rpc"
)

var _ pkgrpc.EthClient = (*Client)(nil)

const maxHeadersPerBatch = 100

// Client wraps the go-ethereum RPC client. Every call is retried according to
// the retry configuration and reported in the RPC metrics.
type Client struct {
	eth   *ethclient.Client
	rpc   *rpc.Client
	retry *config.RetryConfig
}

// NewClient dials endpoint. A nil retryCfg disables retries.
func NewClient(ctx context.Context, endpoint string, retryCfg *config.RetryConfig) (*Client, error) {
	rpcClient, err := rpc.DialContext(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", endpoint, err)
	}

	return &Client{
		eth:   ethclient.NewClient(rpcClient),
		rpc:   rpcClient,
		retry: retryCfg,
	}, nil
}

// Close closes the RPC client connection.
func (c *Client) Close() {
	c.eth.Close()
}

// GetBlockByNumber retrieves the full block at the given height.
func (c *Client) GetBlockByNumber(ctx context.Context, blockNum uint64) (*types.Block, error) {
	var block *types.Block
	err := c.call(ctx, "eth_getBlockByNumber", func() error {
		var err error
		block, err = c.eth.BlockByNumber(ctx, new(big.Int).SetUint64(blockNum))
		return err
	})
	return block, err
}

// GetBlockHeader retrieves the header for a specific block number.
func (c *Client) GetBlockHeader(ctx context.Context, blockNum uint64) (*types.Header, error) {
	return c.header(ctx, new(big.Int).SetUint64(blockNum))
}

// GetLatestBlockHeader retrieves the latest block header.
func (c *Client) GetLatestBlockHeader(ctx context.Context) (*types.Header, error) {
	return c.header(ctx, nil)
}

// GetFinalizedBlockHeader retrieves the finalized block header.
func (c *Client) GetFinalizedBlockHeader(ctx context.Context) (*types.Header, error) {
	return c.header(ctx, big.NewInt(int64(rpc.FinalizedBlockNumber)))
}

// GetSafeBlockHeader retrieves the safe block header.
func (c *Client) GetSafeBlockHeader(ctx context.Context) (*types.Header, error) {
	return c.header(ctx, big.NewInt(int64(rpc.SafeBlockNumber)))
}

func (c *Client) header(ctx context.Context, number *big.Int) (*types.Header, error) {
	var header *types.Header
	err := c.call(ctx, "eth_getBlockByNumber", func() error {
		var err error
		header, err = c.eth.HeaderByNumber(ctx, number)
		return err
	})
	return header, err
}

// BatchGetBlockHeaders retrieves headers for multiple block numbers, at most
// maxHeadersPerBatch per JSON-RPC batch request. A missing block yields a nil entry.
func (c *Client) BatchGetBlockHeaders(ctx context.Context, blockNums []uint64) ([]*types.Header, error) {
	headers := make([]*types.Header, 0, len(blockNums))

	for start := 0; start < len(blockNums); start += maxHeadersPerBatch {
		chunk := blockNums[start:min(start+maxHeadersPerBatch, len(blockNums))]
		results := make([]*types.Header, len(chunk))

		err := c.call(ctx, "eth_getBlockByNumber_batch", func() error {
			batch := make([]rpc.BatchElem, len(chunk))
			for i, n := range chunk {
				batch[i] = rpc.BatchElem{
					Method: "eth_getBlockByNumber",
					Args:   []any{toBlockNumArg(n), false},
					Result: &results[i],
				}
			}

			if err := c.rpc.BatchCallContext(ctx, batch); err != nil {
				return err
			}

			for _, elem := range batch {
				if elem.Error != nil {
					return elem.Error
				}
			}
			return nil
		})
		if err != nil {
			return nil, err
		}

		headers = append(headers, results...)
	}

	return headers, nil
}

func (c *Client) call(ctx context.Context, method string, fn func() error) error {
	start := time.Now()
	RPCMethodInc(method)

	err := retryWithBackoff(ctx, c.retry, method, fn)

	RPCMethodDuration(method, time.Since(start))
	if err != nil {
		RPCMethodError(method, errorType(err))
	}

	return err
}

func toBlockNumArg(blockNum uint64) string {
	return fmt.Sprintf("0x%x", blockNum)
}
