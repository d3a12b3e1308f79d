package notification

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// ErrStreamClosed is returned by Source.Next when the upstream producer has no more notifications.
var ErrStreamClosed = errors.New("notification stream closed")

// Kind is the type of a chain notification.
type Kind int

const (
	// KindCommit carries newly committed canonical blocks.
	KindCommit Kind = iota
	// KindReorg replaces the Old chain segment with the New one.
	KindReorg
	// KindRevert removes the Old chain segment without a replacement.
	KindRevert
)

func (k Kind) String() string {
	switch k {
	case KindCommit:
		return "commit"
	case KindReorg:
		return "reorg"
	case KindRevert:
		return "revert"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// Block is the view of a committed block the pipeline needs.
// *github.com/ethereum/go-ethereum/core/types.Block satisfies it.
type Block interface {
	NumberU64() uint64
	Hash() common.Hash
	Time() uint64
}

// BlockRef identifies a block without carrying its body.
// Sources use it for blocks that were reorged out or reverted.
type BlockRef struct {
	Number    uint64
	BlockHash common.Hash
	Timestamp uint64
}

func (b BlockRef) NumberU64() uint64 { return b.Number }
func (b BlockRef) Hash() common.Hash { return b.BlockHash }
func (b BlockRef) Time() uint64      { return b.Timestamp }

// BlockNumHash is a block number and hash pair, used to acknowledge processed heights.
type BlockNumHash struct {
	Number uint64
	Hash   common.Hash
}

func (n BlockNumHash) String() string {
	return fmt.Sprintf("#%d (%s)", n.Number, n.Hash.Hex())
}

// Chain is a contiguous segment of blocks in ascending order.
type Chain struct {
	Blocks []Block
}

// NewChain builds a chain from blocks that are already in ascending order.
func NewChain(blocks ...Block) *Chain {
	return &Chain{Blocks: blocks}
}

// Len returns the number of blocks in the segment.
func (c *Chain) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Blocks)
}

// Range returns the first and last block numbers of the segment.
func (c *Chain) Range() (uint64, uint64) {
	if c.Len() == 0 {
		return 0, 0
	}
	return c.Blocks[0].NumberU64(), c.Blocks[len(c.Blocks)-1].NumberU64()
}

// Tip returns the number and hash of the last block in the segment.
func (c *Chain) Tip() BlockNumHash {
	if c.Len() == 0 {
		return BlockNumHash{}
	}
	tip := c.Blocks[len(c.Blocks)-1]
	return BlockNumHash{Number: tip.NumberU64(), Hash: tip.Hash()}
}

func (c *Chain) String() string {
	if c.Len() == 0 {
		return "[]"
	}
	first, last := c.Range()
	return fmt.Sprintf("[%d..=%d]", first, last)
}

// Notification is one event from the upstream chain producer.
// Commit carries only New, Revert only Old, Reorg both.
type Notification struct {
	Kind Kind
	Old  *Chain
	New  *Chain
}

// Commit returns a commit notification for the given blocks.
func Commit(blocks ...Block) *Notification {
	return &Notification{Kind: KindCommit, New: NewChain(blocks...)}
}

// Reorg returns a reorg notification replacing oldChain with newChain.
func Reorg(oldChain, newChain *Chain) *Notification {
	return &Notification{Kind: KindReorg, Old: oldChain, New: newChain}
}

// Revert returns a revert notification for oldChain.
func Revert(oldChain *Chain) *Notification {
	return &Notification{Kind: KindRevert, Old: oldChain}
}

// CommittedChain returns the chain that is canonical after the notification, or nil for a revert.
func (n *Notification) CommittedChain() *Chain {
	switch n.Kind {
	case KindCommit, KindReorg:
		return n.New
	default:
		return nil
	}
}

// Source is the upstream producer of chain notifications.
type Source interface {
	// Next blocks until the next notification is available.
	// It returns ErrStreamClosed when the stream ends normally.
	Next(ctx context.Context) (*Notification, error)
	// Ack tells the producer that every block up to and including height is durably handled.
	Ack(ctx context.Context, height BlockNumHash) error
}
