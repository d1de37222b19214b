package audiocore

import (
	"errors"

	"github.com/smallnest/ringbuffer"
)

// EncodeFeed stages raw PCM between the chunk consumer and the encoder pump.
// The consumer writes whole chunk payloads; the pump reads whatever is
// available and lets the encoder's own accumulator handle codec-frame
// alignment.
//
// The feed is lossy on overflow: if the encoder falls behind, excess PCM is
// dropped and counted rather than stalling the consumer. Drops are truncated
// to whole audio frames so the byte stream never loses sample alignment.
type EncodeFeed struct {
	streamID   string
	frameBytes int
	ring       *ringbuffer.RingBuffer
}

// NewEncodeFeed creates a feed with the given byte capacity for a stream
// whose frames are frameBytes wide.
func NewEncodeFeed(streamID string, capacity, frameBytes int) *EncodeFeed {
	if frameBytes <= 0 {
		frameBytes = 2
	}
	return &EncodeFeed{
		streamID:   streamID,
		frameBytes: frameBytes,
		ring:       ringbuffer.New(capacity),
	}
}

// Write stages PCM bytes for encoding. Bytes that do not fit are dropped
// and recorded in the feed-drop counter; Write itself never fails.
func (f *EncodeFeed) Write(pcm []byte) {
	if free := f.ring.Free(); len(pcm) > free {
		keep := free - free%f.frameBytes
		GetMetrics().FeedDropped(f.streamID, len(pcm)-keep)
		if keep == 0 {
			return
		}
		pcm = pcm[:keep]
	}
	if n, err := f.ring.Write(pcm); err != nil {
		GetMetrics().FeedDropped(f.streamID, len(pcm)-n)
	}
}

// Read fills p with staged PCM and returns the byte count. An empty feed
// returns 0 with no error.
func (f *EncodeFeed) Read(p []byte) (int, error) {
	if f.ring.Length() == 0 {
		return 0, nil
	}
	n, err := f.ring.Read(p)
	if err != nil && errors.Is(err, ringbuffer.ErrIsEmpty) {
		return n, nil
	}
	return n, err
}

// Buffered returns the number of staged bytes.
func (f *EncodeFeed) Buffered() int {
	return f.ring.Length()
}

// Capacity returns the fixed byte capacity.
func (f *EncodeFeed) Capacity() int {
	return f.ring.Capacity()
}
