package batcher

import (
	"sync"

	"github.com/goran-ethernal/FlashBatcher/internal/common"
	"github.com/goran-ethernal/FlashBatcher/internal/logger"
	"github.com/goran-ethernal/FlashBatcher/internal/types"
)

// Accumulator is the in-memory FIFO of committed blocks waiting to be batched.
// It is unbounded; maxPending only triggers a warning and a gauge.
type Accumulator struct {
	mu    sync.Mutex
	queue []types.BlockRecord

	threshold  uint64
	maxPending uint64
	overLimit  bool

	log *logger.Logger
}

// NewAccumulator creates an accumulator that is ready once it holds batchSize blocks.
// A batchSize of zero is treated as 1.
func NewAccumulator(batchSize, maxPending uint64, log *logger.Logger) *Accumulator {
	log = log.WithComponent(common.ComponentAccumulator)

	if batchSize == 0 {
		log.Warn("batch size 0 is invalid, using 1")
		batchSize = 1
	}

	ThresholdSet(batchSize)

	return &Accumulator{
		threshold:  batchSize,
		maxPending: maxPending,
		log:        log,
	}
}

// Add appends a record to the tail of the queue.
func (a *Accumulator) Add(record types.BlockRecord) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.queue = append(a.queue, record)
	size := uint64(len(a.queue))

	BlocksAddedInc()
	PendingBlocksSet(size)

	a.log.Debugf("added block %d, pending: %d/%d", record.Number, size, a.threshold)

	if a.maxPending > 0 && size > a.maxPending && !a.overLimit {
		a.overLimit = true
		OverLimitSet(true)
		a.log.Warnf("pending blocks %d exceed soft limit %d, batches are not being written", size, a.maxPending)
	}
}

// Size returns the number of queued records.
func (a *Accumulator) Size() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	return len(a.queue)
}

// Threshold returns the effective batch size, always at least 1.
func (a *Accumulator) Threshold() uint64 {
	return a.threshold
}

// IsReady reports whether Size() >= Threshold().
func (a *Accumulator) IsReady() bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	return uint64(len(a.queue)) >= a.threshold
}

// Snapshot returns a copy of the queued records without removing them.
func (a *Accumulator) Snapshot() []types.BlockRecord {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]types.BlockRecord, len(a.queue))
	copy(out, a.queue)
	return out
}

// DrainAll returns the full queue in order and empties it.
func (a *Accumulator) DrainAll() []types.BlockRecord {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := a.queue
	a.clear()
	return out
}

// Drain passes the queued records to fn and empties the queue only if fn succeeds.
// Add calls block until fn returns, so no record can slip in between the write and the clear.
func (a *Accumulator) Drain(fn func(records []types.BlockRecord) error) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	records := make([]types.BlockRecord, len(a.queue))
	copy(records, a.queue)

	if err := fn(records); err != nil {
		return err
	}

	a.clear()
	return nil
}

func (a *Accumulator) clear() {
	a.queue = nil
	PendingBlocksSet(0)
	if a.overLimit {
		a.overLimit = false
		OverLimitSet(false)
	}
}
