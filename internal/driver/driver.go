package driver

import (
	"context"
	"errors"
	"fmt"

	"github.com/goran-ethernal/FlashBatcher/internal/batcher"
	"github.com/goran-ethernal/FlashBatcher/internal/common"
	"github.com/goran-ethernal/FlashBatcher/internal/logger"
	"github.com/goran-ethernal/FlashBatcher/internal/store"
	"github.com/goran-ethernal/FlashBatcher/internal/submitter"
	"github.com/goran-ethernal/FlashBatcher/internal/types"
	"github.com/goran-ethernal/FlashBatcher/pkg/notification"
)

// Sweeper runs one submission pass over pending batches.
type Sweeper interface {
	Sweep(ctx context.Context) (submitter.SweepReport, error)
}

// Option configures a Driver.
type Option func(*Driver)

// WithEncoder replaces the default RLP block encoder.
func WithEncoder(encode Encoder) Option {
	return func(d *Driver) {
		d.encode = encode
	}
}

// Driver is the single consumer of the notification stream.
// It owns the accumulator, writes a batch whenever the threshold is reached,
// sweeps after every written batch and acknowledges each commit once all its blocks are queued.
type Driver struct {
	source  notification.Source
	acc     *batcher.Accumulator
	writer  *batcher.Writer
	sweeper Sweeper
	encode  Encoder
	log     *logger.Logger
}

// New creates a Driver. sweeper may be nil, in which case no sweep follows a batch write.
func New(
	source notification.Source,
	acc *batcher.Accumulator,
	writer *batcher.Writer,
	sweeper Sweeper,
	log *logger.Logger,
	opts ...Option,
) *Driver {
	d := &Driver{
		source:  source,
		acc:     acc,
		writer:  writer,
		sweeper: sweeper,
		encode:  RLPEncoder,
		log:     log.WithComponent(common.ComponentDriver),
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Run consumes notifications until the source closes, which is a normal return.
// Source errors, acknowledgement errors and a poisoned store end the loop with an error.
func (d *Driver) Run(ctx context.Context) error {
	d.log.Infof("driver started - batch size: %d", d.acc.Threshold())

	for {
		n, err := d.source.Next(ctx)
		if errors.Is(err, notification.ErrStreamClosed) {
			d.log.Infof("notification stream closed, %d blocks left unbatched", d.acc.Size())
			return nil
		}
		if err != nil {
			return fmt.Errorf("notification stream failed: %w", err)
		}

		if err := d.Handle(ctx, n); err != nil {
			return err
		}
	}
}

// Handle processes one notification to completion.
// Only commits are acknowledged; reorgs and reverts are logged.
func (d *Driver) Handle(ctx context.Context, n *notification.Notification) error {
	if n == nil {
		d.log.Warn("ignoring nil notification")
		return nil
	}

	NotificationInc(n.Kind)

	switch n.Kind {
	case notification.KindCommit:
		return d.handleCommit(ctx, n.CommittedChain())

	case notification.KindReorg:
		// accumulated and batched blocks from the old segment are not reconciled
		d.log.Infof("received reorg: old %s, new %s", n.Old, n.New)

	case notification.KindRevert:
		d.log.Infof("received revert: old %s", n.Old)

	default:
		d.log.Warnf("ignoring notification of unknown kind %s", n.Kind)
	}

	return nil
}

func (d *Driver) handleCommit(ctx context.Context, chain *notification.Chain) error {
	if chain.Len() == 0 {
		d.log.Warn("received commit without blocks")
		return nil
	}

	d.log.Debugf("received commit %s", chain)

	for _, block := range chain.Blocks {
		payload, err := d.encode(block)
		if err != nil {
			BlockSkippedInc()
			d.log.Warnf("skipping block %d: %v", block.NumberU64(), err)
			continue
		}

		d.acc.Add(types.BlockRecord{
			Number:    block.NumberU64(),
			Hash:      block.Hash(),
			Payload:   payload,
			Timestamp: block.Time(),
		})

		if d.acc.IsReady() {
			if err := d.flush(ctx); err != nil {
				return err
			}
		}
	}

	tip := chain.Tip()
	if err := d.source.Ack(ctx, tip); err != nil {
		return fmt.Errorf("failed to acknowledge height %s: %w", tip, err)
	}

	AckedHeightSet(tip.Number)
	d.log.Debugf("acknowledged height %s", tip)

	return nil
}

// flush writes the accumulator as one batch and sweeps on success.
// Write failures keep the accumulator intact and are retried on the next block.
func (d *Driver) flush(ctx context.Context) error {
	pending := d.acc.Size()

	if _, err := d.writer.Flush(ctx, d.acc); err != nil {
		if errors.Is(err, store.ErrStorePoisoned) {
			return fmt.Errorf("batch store unusable: %w", err)
		}

		FlushErrorInc()
		d.log.Errorf("failed to write batch, keeping %d blocks for the next attempt: %v", pending, err)
		return nil
	}

	if d.sweeper == nil {
		return nil
	}

	if _, err := d.sweeper.Sweep(ctx); err != nil {
		if errors.Is(err, store.ErrStorePoisoned) {
			return fmt.Errorf("batch store unusable: %w", err)
		}
		d.log.Errorf("sweep after batch write failed: %v", err)
	}

	return nil
}
