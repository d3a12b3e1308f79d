package api

import (
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/goran-ethernal/FlashBatcher/internal/types"
)

// BatchResponse is the API view of a stored batch.
type BatchResponse struct {
	ID           string        `json:"id"`
	BlockNumbers []uint64      `json:"block_numbers"`
	FirstBlock   uint64        `json:"first_block"`
	LastBlock    uint64        `json:"last_block"`
	SizeBytes    int           `json:"size_bytes"`
	Data         hexutil.Bytes `json:"data,omitempty" swaggertype:"string"`
	CreatedAt    uint64        `json:"created_at"`
	SubmittedAt  *uint64       `json:"submitted_at,omitempty"`
	ExternalRef  *uint64       `json:"external_ref,omitempty"`
	RetryCount   uint32        `json:"retry_count"`
	Status       string        `json:"status"`
}

// BatchListResponse is a page of batches.
type BatchListResponse struct {
	Batches    []BatchResponse  `json:"batches"`
	Pagination PaginationResult `json:"pagination"`
}

// PaginationResult contains pagination metadata.
type PaginationResult struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	Count   int  `json:"count"`
	HasMore bool `json:"has_more"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code"`
}

// HealthResponse represents a health check response.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Store     string    `json:"store"`
}

// StatsResponse summarizes the pipeline state.
type StatsResponse struct {
	Batches          map[string]uint64 `json:"batches"`
	TotalBatches     uint64            `json:"total_batches"`
	PendingBlocks    int               `json:"pending_blocks"`
	BatchSize        uint64            `json:"batch_size"`
	LastBatchedBlock *uint64           `json:"last_batched_block,omitempty"`
}

func newBatchResponse(b *types.Batch, withData bool) BatchResponse {
	resp := BatchResponse{
		ID:           b.ID,
		BlockNumbers: b.BlockNumbers,
		FirstBlock:   b.FirstBlock(),
		LastBlock:    b.LastBlock(),
		SizeBytes:    len(b.Data),
		CreatedAt:    b.CreatedAt,
		SubmittedAt:  b.SubmittedAt,
		ExternalRef:  b.ExternalRef,
		RetryCount:   b.RetryCount,
		Status:       string(b.Status),
	}

	if withData {
		resp.Data = b.Data
	}

	return resp
}
