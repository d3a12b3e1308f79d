package source

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	icommon "github.com/goran-ethernal/FlashBatcher/internal/common"
	"github.com/goran-ethernal/FlashBatcher/internal/logger"
	"github.com/goran-ethernal/FlashBatcher/internal/rpc"
	"github.com/goran-ethernal/FlashBatcher/internal/types"
	"github.com/goran-ethernal/FlashBatcher/pkg/config"
	"github.com/goran-ethernal/FlashBatcher/pkg/notification"
	pkgrpc "github.com/goran-ethernal/FlashBatcher/pkg/rpc"
)

var _ notification.Source = (*RPCSource)(nil)

// RPCSource produces chain notifications by polling a JSON-RPC node.
// It follows the head selected by the finality mode, keeps the last reorgWindow
// emitted blocks to detect reorgs via parent hashes, and emits a revert when the head moves backwards.
type RPCSource struct {
	client       pkgrpc.EthClient
	finality     types.BlockFinality
	pollInterval time.Duration
	maxBlocks    uint64
	window       uint64
	log          *logger.Logger

	next   uint64
	recent []notification.BlockRef

	finished atomic.Uint64
}

// New creates a source that emits blocks starting at startBlock.
func New(client pkgrpc.EthClient, cfg config.SourceConfig, startBlock uint64, log *logger.Logger) (*RPCSource, error) {
	finality, err := types.ParseBlockFinality(cfg.Finality)
	if err != nil {
		return nil, err
	}

	maxBlocks := max(cfg.MaxBlocksPerPoll, 1)
	window := max(cfg.ReorgWindow, 1)

	return &RPCSource{
		client:       client,
		finality:     finality,
		pollInterval: cfg.PollInterval.Duration,
		maxBlocks:    maxBlocks,
		window:       window,
		log:          log.WithComponent(icommon.ComponentSource),
		next:         startBlock,
	}, nil
}

// ResolveStartBlock picks the first block to ingest. With resume enabled and a
// non-empty store it continues one block past the highest batched block.
func ResolveStartBlock(cfg config.SourceConfig, lastBatched uint64, hasBatches bool) uint64 {
	if cfg.ResumeFromStore && hasBatches && lastBatched+1 > cfg.StartBlock {
		return lastBatched + 1
	}
	return cfg.StartBlock
}

// FinishedHeight returns the last height acknowledged by the consumer.
func (s *RPCSource) FinishedHeight() uint64 {
	return s.finished.Load()
}

// Next blocks until the followed head produces a notification or ctx is done.
func (s *RPCSource) Next(ctx context.Context) (*notification.Notification, error) {
	for {
		n, err := s.poll(ctx)
		if err != nil {
			return nil, err
		}
		if n != nil {
			NotificationInc(n.Kind)
			return n, nil
		}

		timer := time.NewTimer(s.pollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

// Ack records the consumer's finished height.
func (s *RPCSource) Ack(_ context.Context, height notification.BlockNumHash) error {
	s.finished.Store(height.Number)
	FinishedHeightSet(height.Number)
	s.log.Debugf("consumer finished height %s", height)
	return nil
}

func (s *RPCSource) poll(ctx context.Context) (*notification.Notification, error) {
	head, err := s.headHeader(ctx)
	if rpc.IsNotFound(err) {
		s.log.Debugf("no %s block available yet", s.finality)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s head: %w", s.finality, err)
	}

	headNum := head.Number.Uint64()
	HeadSet(headNum)

	if tip, ok := s.tip(); ok {
		if headNum < tip.Number {
			return s.revertTo(headNum), nil
		}
		if headNum == tip.Number && head.Hash() != tip.BlockHash {
			return s.reorg(ctx, headNum)
		}
	}

	if headNum < s.next {
		return nil, nil
	}

	to := min(headNum, s.next+s.maxBlocks-1)

	var parent *common.Hash
	if tip, ok := s.tip(); ok {
		parent = &tip.BlockHash
	}

	blocks, mismatch, err := s.fetchRange(ctx, s.next, to, parent)
	if err != nil {
		return nil, err
	}
	if mismatch {
		return s.reorg(ctx, headNum)
	}
	if len(blocks) == 0 {
		return nil, nil
	}

	s.remember(blocks)

	chain := toChain(blocks)
	first, last := chain.Range()
	s.log.Debugf("emitting commit of blocks %d..%d (head %d)", first, last, headNum)

	return &notification.Notification{Kind: notification.KindCommit, New: chain}, nil
}

func (s *RPCSource) headHeader(ctx context.Context) (*ethtypes.Header, error) {
	switch s.finality {
	case types.FinalityFinalized:
		return s.client.GetFinalizedBlockHeader(ctx)
	case types.FinalitySafe:
		return s.client.GetSafeBlockHeader(ctx)
	default:
		return s.client.GetLatestBlockHeader(ctx)
	}
}

// fetchRange downloads blocks from..to and stops early at a block that does not exist yet.
// mismatch is true when a block does not build on parent or on the block before it.
func (s *RPCSource) fetchRange(
	ctx context.Context,
	from, to uint64,
	parent *common.Hash,
) (blocks []*ethtypes.Block, mismatch bool, err error) {
	for n := from; n <= to; n++ {
		block, err := s.client.GetBlockByNumber(ctx, n)
		if rpc.IsNotFound(err) {
			break
		}
		if err != nil {
			return nil, false, fmt.Errorf("failed to get block %d: %w", n, err)
		}

		if parent != nil && block.ParentHash() != *parent {
			return nil, true, nil
		}

		hash := block.Hash()
		parent = &hash
		blocks = append(blocks, block)
	}

	return blocks, false, nil
}

// reorg finds the newest remembered block that is still canonical and replaces everything above it.
func (s *RPCSource) reorg(ctx context.Context, headNum uint64) (*notification.Notification, error) {
	numbers := make([]uint64, len(s.recent))
	for i, ref := range s.recent {
		numbers[i] = ref.Number
	}

	headers, err := s.client.BatchGetBlockHeaders(ctx, numbers)
	if err != nil {
		return nil, fmt.Errorf("failed to get headers for reorg check: %w", err)
	}

	ancestor := -1
	for i := len(s.recent) - 1; i >= 0; i-- {
		if i < len(headers) && headers[i] != nil && headers[i].Hash() == s.recent[i].BlockHash {
			ancestor = i
			break
		}
	}

	old := append([]notification.BlockRef(nil), s.recent[ancestor+1:]...)

	var (
		from   uint64
		parent *common.Hash
	)
	if ancestor >= 0 {
		from = s.recent[ancestor].Number + 1
		parent = &s.recent[ancestor].BlockHash
	} else {
		from = s.recent[0].Number
		s.log.Warnf("reorg deeper than the %d block window, replacing all remembered blocks", s.window)
	}

	s.recent = s.recent[:ancestor+1]
	s.next = from

	blocks, mismatch, err := s.fetchRange(ctx, from, min(headNum, from+s.maxBlocks-1), parent)
	if err != nil {
		return nil, err
	}
	if mismatch {
		// the chain moved again while we were fetching; the next poll starts over from the ancestor
		blocks = nil
	}

	if len(old) == 0 {
		// the tip is still canonical, the mismatch came from a node that had not caught up
		if len(blocks) == 0 {
			return nil, nil
		}

		s.remember(blocks)
		chain := toChain(blocks)
		s.log.Debugf("tip %d still canonical after parent mismatch, emitting commit %s", from-1, chain)

		return &notification.Notification{Kind: notification.KindCommit, New: chain}, nil
	}

	ReorgInc()
	oldChain := refsToChain(old)
	if len(blocks) == 0 {
		s.log.Infof("reorg removed blocks %s without a replacement yet", oldChain)
		return notification.Revert(oldChain), nil
	}

	s.remember(blocks)
	newChain := toChain(blocks)
	s.log.Infof("reorg detected: old %s, new %s", oldChain, newChain)

	return notification.Reorg(oldChain, newChain), nil
}

// revertTo forgets every remembered block above headNum.
func (s *RPCSource) revertTo(headNum uint64) *notification.Notification {
	cut := len(s.recent)
	for cut > 0 && s.recent[cut-1].Number > headNum {
		cut--
	}

	old := append([]notification.BlockRef(nil), s.recent[cut:]...)
	s.recent = s.recent[:cut]
	s.next = headNum + 1

	oldChain := refsToChain(old)
	s.log.Infof("head moved back to %d, reverting %s", headNum, oldChain)

	return notification.Revert(oldChain)
}

func (s *RPCSource) remember(blocks []*ethtypes.Block) {
	for _, b := range blocks {
		s.recent = append(s.recent, notification.BlockRef{
			Number:    b.NumberU64(),
			BlockHash: b.Hash(),
			Timestamp: b.Time(),
		})
	}

	if extra := len(s.recent) - int(s.window); extra > 0 {
		s.recent = append([]notification.BlockRef(nil), s.recent[extra:]...)
	}

	s.next = blocks[len(blocks)-1].NumberU64() + 1
}

func (s *RPCSource) tip() (notification.BlockRef, bool) {
	if len(s.recent) == 0 {
		return notification.BlockRef{}, false
	}
	return s.recent[len(s.recent)-1], true
}

func toChain(blocks []*ethtypes.Block) *notification.Chain {
	out := make([]notification.Block, len(blocks))
	for i, b := range blocks {
		out[i] = b
	}
	return notification.NewChain(out...)
}

func refsToChain(refs []notification.BlockRef) *notification.Chain {
	out := make([]notification.Block, len(refs))
	for i, r := range refs {
		out[i] = r
	}
	return notification.NewChain(out...)
}
