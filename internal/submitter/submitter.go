package submitter

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goran-ethernal/FlashBatcher/internal/common"
	"github.com/goran-ethernal/FlashBatcher/internal/logger"
	"github.com/goran-ethernal/FlashBatcher/internal/store"
	"github.com/goran-ethernal/FlashBatcher/internal/types"
	"github.com/goran-ethernal/FlashBatcher/pkg/config"
	"github.com/goran-ethernal/FlashBatcher/pkg/sink"
	"go.uber.org/ratelimit"
)

// BatchStore is the subset of the batch store the submitter needs.
type BatchStore interface {
	ListByStatus(ctx context.Context, status types.BatchStatus) ([]*types.Batch, error)
	MarkSubmitted(ctx context.Context, id string, submittedAt, externalRef uint64) error
	RecordFailedAttempt(ctx context.Context, id string, maxRetries uint32) (uint32, types.BatchStatus, error)
}

// SweepReport summarizes one pass over the pending batches.
type SweepReport struct {
	// Pending is the number of batches that were Pending when the sweep started.
	Pending int
	// Submitted batches were accepted by the sink.
	Submitted int
	// Retried batches failed delivery and stay Pending.
	Retried int
	// Failed batches failed delivery and reached the retry ceiling.
	Failed int
	// Skipped batches disappeared from the store during the sweep.
	Skipped int
}

// Submitter delivers Pending batches to the sink and records the outcome.
// Sweeps are serialized, so a batch is never delivered twice at the same time.
type Submitter struct {
	store   BatchStore
	sink    sink.Sink
	limiter ratelimit.Limiter
	log     *logger.Logger

	interval   time.Duration
	maxRetries uint32
	now        func() time.Time

	sweepMu sync.Mutex

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a Submitter.
func New(batchStore BatchStore, target sink.Sink, cfg config.SubmitterConfig, log *logger.Logger) *Submitter {
	limiter := ratelimit.NewUnlimited()
	if cfg.DeliveriesPerSecond > 0 {
		limiter = ratelimit.New(cfg.DeliveriesPerSecond)
	}

	return &Submitter{
		store:      batchStore,
		sink:       target,
		limiter:    limiter,
		log:        log.WithComponent(common.ComponentSubmitter),
		interval:   cfg.Interval.Duration,
		maxRetries: cfg.MaxRetries,
		now:        time.Now,
	}
}

// Sweep attempts delivery of every Pending batch, oldest first.
// Delivery failures are per batch and never abort the sweep. Store errors other
// than a vanished batch abort it and are returned together with the partial report.
func (s *Submitter) Sweep(ctx context.Context) (SweepReport, error) {
	s.sweepMu.Lock()
	defer s.sweepMu.Unlock()

	start := time.Now()
	var report SweepReport

	pending, err := s.store.ListByStatus(ctx, types.BatchStatusPending)
	if err != nil {
		SweepErrorInc()
		return report, fmt.Errorf("failed to list pending batches: %w", err)
	}

	report.Pending = len(pending)

	for _, batch := range pending {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		if err := s.submit(ctx, batch, &report); err != nil {
			SweepErrorInc()
			return report, err
		}
	}

	SweepDurationLog(time.Since(start))

	if report.Pending > 0 {
		s.log.Infof("sweep done in %v - pending: %d, submitted: %d, retried: %d, failed: %d, skipped: %d",
			time.Since(start), report.Pending, report.Submitted, report.Retried, report.Failed, report.Skipped)
	}

	return report, nil
}

func (s *Submitter) submit(ctx context.Context, batch *types.Batch, report *SweepReport) error {
	s.limiter.Take()

	ref, deliverErr := s.sink.Deliver(ctx, batch)
	if deliverErr != nil {
		DeliveryInc(deliveryFailure)

		retries, status, err := s.store.RecordFailedAttempt(ctx, batch.ID, s.maxRetries)
		if errors.Is(err, store.ErrNotFound) {
			s.log.Warnf("batch %s vanished before its failed attempt could be recorded", batch.ID)
			report.Skipped++
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to record failed delivery of batch %s: %w", batch.ID, err)
		}

		if status == types.BatchStatusFailed {
			report.Failed++
			s.log.Errorf("batch %s failed after %d attempts: %v", batch.ID, retries, deliverErr)
			return nil
		}

		report.Retried++
		s.log.Warnf("delivery of batch %s failed (attempt %d), will retry: %v", batch.ID, retries, deliverErr)
		return nil
	}

	DeliveryInc(deliverySuccess)

	// a delivered batch that cannot be marked stays Pending and is delivered again by the next sweep
	err := s.store.MarkSubmitted(ctx, batch.ID, uint64(s.now().Unix()), ref)
	if errors.Is(err, store.ErrNotFound) {
		s.log.Warnf("batch %s vanished before it could be marked submitted", batch.ID)
		report.Skipped++
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to mark batch %s submitted: %w", batch.ID, err)
	}

	report.Submitted++
	s.log.Debugf("batch %s submitted with external ref %d", batch.ID, ref)

	return nil
}

// Start runs Sweep every interval until ctx is cancelled or Stop is called.
// With a zero interval it does nothing; sweeps then only follow batch writes.
func (s *Submitter) Start(ctx context.Context) {
	if s.interval <= 0 {
		s.log.Info("periodic sweep disabled, sweeping after each batch only")
		return
	}

	ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := s.Sweep(ctx); err != nil && ctx.Err() == nil {
					s.log.Errorf("periodic sweep failed: %v", err)
				}
			}
		}
	}()

	s.log.Infof("periodic sweep started - interval: %v", s.interval)
}

// Stop stops the periodic sweep and waits for an in-flight sweep to finish.
func (s *Submitter) Stop() {
	if s.cancel == nil {
		return
	}

	s.cancel()
	s.wg.Wait()
}
