package batcher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goran-ethernal/FlashBatcher/internal/common"
	"github.com/goran-ethernal/FlashBatcher/internal/logger"
	"github.com/goran-ethernal/FlashBatcher/internal/types"
	"github.com/google/uuid"
)

// ErrEmptyBatch is returned when Commit is called without records.
var ErrEmptyBatch = errors.New("cannot commit an empty batch")

// BatchInserter persists a batch in a single atomic write.
type BatchInserter interface {
	InsertBatch(ctx context.Context, batch *types.Batch) error
}

// Writer turns an ordered run of block records into a persisted Pending batch.
type Writer struct {
	store BatchInserter
	log   *logger.Logger

	now   func() time.Time
	newID func() string
}

// NewWriter creates a Writer backed by store.
func NewWriter(store BatchInserter, log *logger.Logger) *Writer {
	return &Writer{
		store: store,
		log:   log.WithComponent(common.ComponentBatchWriter),
		now:   time.Now,
		newID: func() string { return uuid.New().String() },
	}
}

// Build assembles a Pending batch from records without persisting it.
// Block numbers keep the input order and Data is the payloads concatenated in the same order.
func (w *Writer) Build(records []types.BlockRecord) (*types.Batch, error) {
	if len(records) == 0 {
		return nil, ErrEmptyBatch
	}

	size := 0
	for _, r := range records {
		size += len(r.Payload)
	}

	numbers := make([]uint64, 0, len(records))
	data := make([]byte, 0, size)
	for _, r := range records {
		numbers = append(numbers, r.Number)
		data = append(data, r.Payload...)
	}

	return &types.Batch{
		ID:           w.newID(),
		BlockNumbers: numbers,
		Data:         data,
		CreatedAt:    uint64(w.now().Unix()),
		Status:       types.BatchStatusPending,
	}, nil
}

// Commit builds a batch from records and inserts it, returning the new batch id.
// On success every record's BatchID points at the new batch.
// On error nothing is persisted and records are left untouched for another attempt.
func (w *Writer) Commit(ctx context.Context, records []types.BlockRecord) (string, error) {
	batch, err := w.Build(records)
	if err != nil {
		return "", err
	}

	start := time.Now()
	if err := w.store.InsertBatch(ctx, batch); err != nil {
		BatchWriteErrorInc()
		return "", fmt.Errorf("failed to persist batch %s: %w", batch.ID, err)
	}

	BatchWrittenLog(len(records), len(batch.Data), time.Since(start))

	for i := range records {
		records[i].BatchID = &batch.ID
	}

	w.log.Infof("created batch %s with %d blocks: %s",
		batch.ID, len(batch.BlockNumbers), common.FormatBlockNumbers(batch.BlockNumbers))

	return batch.ID, nil
}

// Flush commits the accumulator's queue as one batch and clears it on success.
// It returns ErrEmptyBatch when nothing is queued.
func (w *Writer) Flush(ctx context.Context, acc *Accumulator) (string, error) {
	var id string

	err := acc.Drain(func(records []types.BlockRecord) error {
		var err error
		id, err = w.Commit(ctx, records)
		return err
	})
	if err != nil {
		return "", err
	}

	return id, nil
}
