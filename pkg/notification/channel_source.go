package notification

import "context"

// AckFunc receives acknowledgements sent through a ChannelSource.
type AckFunc func(ctx context.Context, height BlockNumHash) error

// ChannelSource is an in-process Source fed by a channel.
// Closing the channel ends the stream.
type ChannelSource struct {
	ch    <-chan *Notification
	onAck AckFunc
}

// NewChannelSource creates a source reading from ch. onAck may be nil.
func NewChannelSource(ch <-chan *Notification, onAck AckFunc) *ChannelSource {
	return &ChannelSource{ch: ch, onAck: onAck}
}

// Next implements Source.
func (s *ChannelSource) Next(ctx context.Context) (*Notification, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case n, ok := <-s.ch:
		if !ok {
			return nil, ErrStreamClosed
		}
		return n, nil
	}
}

// Ack implements Source.
func (s *ChannelSource) Ack(ctx context.Context, height BlockNumHash) error {
	if s.onAck == nil {
		return nil
	}
	return s.onAck(ctx, height)
}
