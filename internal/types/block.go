package types

import "github.com/ethereum/go-ethereum/common"

// BlockRecord is one committed block waiting in the accumulator.
type BlockRecord struct {
	Number    uint64
	Hash      common.Hash
	Payload   []byte
	Timestamp uint64
	// BatchID is set by the batch writer on the records it persisted.
	// The accumulator discards its queue after the write, so queued records never carry it.
	BatchID *string
}
