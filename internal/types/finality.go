package types

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/rpc"
)

// BlockFinality selects which chain head the RPC source follows.
type BlockFinality string

const (
	FinalityFinalized BlockFinality = "finalized"
	FinalitySafe      BlockFinality = "safe"
	FinalityLatest    BlockFinality = "latest"
)

func (f BlockFinality) String() string {
	return string(f)
}

// IsValid checks if the BlockFinality value is one of the known tags.
func (f BlockFinality) IsValid() bool {
	switch f {
	case FinalityFinalized, FinalitySafe, FinalityLatest:
		return true
	default:
		return false
	}
}

// BlockNumber returns the JSON-RPC block tag for the finality level as a big.Int
// suitable for ethclient header requests.
func (f BlockFinality) BlockNumber() *big.Int {
	switch f {
	case FinalityFinalized:
		return big.NewInt(int64(rpc.FinalizedBlockNumber))
	case FinalitySafe:
		return big.NewInt(int64(rpc.SafeBlockNumber))
	default:
		return nil // latest
	}
}

// ParseBlockFinality parses a string into a BlockFinality.
func ParseBlockFinality(s string) (BlockFinality, error) {
	f := BlockFinality(s)
	if !f.IsValid() {
		return "", fmt.Errorf("invalid block finality: %s (must be one of: finalized, safe, latest)", s)
	}
	return f, nil
}
