package types

import (
	"fmt"
	"strings"
)

// BatchStatus is the lifecycle state of a persisted batch.
type BatchStatus string

const (
	// BatchStatusPending is the state of every newly written batch.
	BatchStatusPending BatchStatus = "Pending"
	// BatchStatusSubmitting is reserved for an in-flight delivery. Nothing writes it today.
	BatchStatusSubmitting BatchStatus = "Submitting"
	// BatchStatusSubmitted means the sink accepted the batch.
	BatchStatusSubmitted BatchStatus = "Submitted"
	// BatchStatusFailed means the batch exhausted its delivery attempts.
	BatchStatusFailed BatchStatus = "Failed"
)

// AllBatchStatuses lists every status in lifecycle order.
var AllBatchStatuses = []BatchStatus{
	BatchStatusPending,
	BatchStatusSubmitting,
	BatchStatusSubmitted,
	BatchStatusFailed,
}

func (s BatchStatus) String() string {
	return string(s)
}

// IsValid checks if the status is one of the four known values.
func (s BatchStatus) IsValid() bool {
	switch s {
	case BatchStatusPending, BatchStatusSubmitting, BatchStatusSubmitted, BatchStatusFailed:
		return true
	default:
		return false
	}
}

// ParseBatchStatus parses a status name case-insensitively.
func ParseBatchStatus(s string) (BatchStatus, error) {
	for _, status := range AllBatchStatuses {
		if strings.EqualFold(s, string(status)) {
			return status, nil
		}
	}
	return "", fmt.Errorf("invalid batch status: %s (must be one of: Pending, Submitting, Submitted, Failed)", s)
}

// Batch is a durable, ordered group of consecutive committed blocks.
// Data is the in-order concatenation of the blocks' encoded payloads.
type Batch struct {
	ID           string      `meddler:"id" json:"id"`
	BlockNumbers []uint64    `meddler:"block_numbers,jsontext" json:"block_numbers"`
	Data         []byte      `meddler:"data" json:"data"`
	CreatedAt    uint64      `meddler:"created_at" json:"created_at"`
	SubmittedAt  *uint64     `meddler:"submitted_at" json:"submitted_at,omitempty"`
	ExternalRef  *uint64     `meddler:"celestia_height" json:"external_ref,omitempty"`
	RetryCount   uint32      `meddler:"retry_count" json:"retry_count"`
	Status       BatchStatus `meddler:"status" json:"status"`
}

// FirstBlock returns the lowest block number in the batch, or zero for an empty batch.
func (b *Batch) FirstBlock() uint64 {
	if len(b.BlockNumbers) == 0 {
		return 0
	}
	return b.BlockNumbers[0]
}

// LastBlock returns the highest block number in the batch, or zero for an empty batch.
func (b *Batch) LastBlock() uint64 {
	if len(b.BlockNumbers) == 0 {
		return 0
	}
	return b.BlockNumbers[len(b.BlockNumbers)-1]
}
