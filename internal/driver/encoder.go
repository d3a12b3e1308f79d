package driver

import (
	"errors"
	"fmt"

	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/goran-ethernal/FlashBatcher/pkg/notification"
)

// ErrUnsupportedBlock is returned by RLPEncoder for blocks that are not go-ethereum blocks.
var ErrUnsupportedBlock = errors.New("unsupported block type")

// Encoder serializes a committed block into the payload stored in a batch.
type Encoder func(block notification.Block) ([]byte, error)

// RLPEncoder encodes a *types.Block with its consensus RLP encoding.
func RLPEncoder(block notification.Block) ([]byte, error) {
	b, ok := block.(*ethtypes.Block)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedBlock, block)
	}

	payload, err := rlp.EncodeToBytes(b)
	if err != nil {
		return nil, fmt.Errorf("failed to rlp encode block %d: %w", b.NumberU64(), err)
	}

	return payload, nil
}
