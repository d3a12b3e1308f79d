package submitter

import (
	"context"
	"fmt"
	"sync"

	"github.com/goran-ethernal/FlashBatcher/internal/logger"
	"github.com/goran-ethernal/FlashBatcher/internal/types"
	"github.com/goran-ethernal/FlashBatcher/pkg/config"
	"github.com/goran-ethernal/FlashBatcher/pkg/sink"
)

var _ sink.Sink = (*StubSink)(nil)

// StubSink accepts every batch without any network call.
// It hands out increasing heights starting at the configured start height.
type StubSink struct {
	mu   sync.Mutex
	next uint64
	log  *logger.Logger
}

// NewStubSink creates a stub sink whose first reference is startHeight.
func NewStubSink(startHeight uint64, log *logger.Logger) *StubSink {
	return &StubSink{next: startHeight, log: log}
}

// Deliver implements sink.Sink.
func (s *StubSink) Deliver(ctx context.Context, batch *types.Batch) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	height := s.next
	s.next++
	s.mu.Unlock()

	s.log.Debugf("stub delivery of batch %s (%d blocks, %d bytes) at height %d",
		batch.ID, len(batch.BlockNumbers), len(batch.Data), height)

	return height, nil
}

// NewSink builds the sink selected by cfg.
func NewSink(cfg config.SinkConfig, log *logger.Logger) (sink.Sink, error) {
	switch cfg.Type {
	case config.SinkTypeStub, "":
		return NewStubSink(cfg.StartHeight, log), nil
	default:
		return nil, fmt.Errorf("unsupported sink type %q", cfg.Type)
	}
}
