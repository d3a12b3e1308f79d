package sink

import (
	"context"

	"github.com/goran-ethernal/FlashBatcher/internal/types"
)

// Sink delivers batch data to an external data availability layer.
type Sink interface {
	// Deliver submits the batch and returns the external reference
	// (for example the DA layer height) under which it was included.
	Deliver(ctx context.Context, batch *types.Batch) (uint64, error)
}
