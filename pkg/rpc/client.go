package rpc

import (
	"context"

	"github.com/ethereum/go-ethereum/core/types"
)

// EthClient defines the Ethereum JSON-RPC operations the notification source relies on.
type EthClient interface {
	// Close closes the RPC client connection.
	Close()

	// GetBlockByNumber retrieves the full block at the given height.
	GetBlockByNumber(ctx context.Context, blockNum uint64) (*types.Block, error)

	// GetBlockHeader retrieves the header for a specific block number.
	GetBlockHeader(ctx context.Context, blockNum uint64) (*types.Header, error)

	// GetLatestBlockHeader retrieves the latest block header.
	GetLatestBlockHeader(ctx context.Context) (*types.Header, error)

	// GetFinalizedBlockHeader retrieves the finalized block header.
	GetFinalizedBlockHeader(ctx context.Context) (*types.Header, error)

	// GetSafeBlockHeader retrieves the safe block header.
	GetSafeBlockHeader(ctx context.Context) (*types.Header, error)

	// BatchGetBlockHeaders retrieves headers for multiple block numbers in a single batch call.
	BatchGetBlockHeaders(ctx context.Context, blockNums []uint64) ([]*types.Header, error)
}
