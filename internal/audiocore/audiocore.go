package audiocore

import (
	"time"
)

// AudioFormat represents the format of captured audio data. It is fixed for
// the lifetime of a stream.
type AudioFormat struct {
	SampleRate int    // Sample rate in Hz (e.g., 48000)
	Channels   int    // Number of channels (1 for mono, 2 for stereo)
	BitDepth   int    // Bits per sample (16 for pcm_s16le)
	Encoding   string // Encoding format (e.g., "pcm_s16le")
}

// BytesPerFrame returns the size in bytes of one frame (all channels).
func (f AudioFormat) BytesPerFrame() int {
	return f.Channels * f.BitDepth / 8
}

// AudioChunk is a timestamped slice of captured audio.
//
// Payload holds raw interleaved little-endian samples; its length is
// frames * channels * sample width. An empty payload is legal (degenerate
// chunk). Timestamps are absolute wall-clock nanoseconds since the Unix
// epoch, with EndNs > StartNs for any chunk holding samples.
//
// A chunk is created by the capture callback, moved through the ChunkQueue
// to the consumer and optionally copied into the HistoryLedger; no component
// beyond the current owner holds a mutable alias.
type AudioChunk struct {
	Format  AudioFormat
	StartNs int64  // wall-clock ns of the first sample
	EndNs   int64  // wall-clock ns just past the last sample
	Payload []byte // interleaved sample bytes
}

// Frames returns the number of frames in the chunk payload.
func (c *AudioChunk) Frames() int {
	bpf := c.Format.BytesPerFrame()
	if bpf == 0 {
		return 0
	}
	return len(c.Payload) / bpf
}

// Duration returns the nominal duration of the chunk.
func (c *AudioChunk) Duration() time.Duration {
	return time.Duration(c.EndNs - c.StartNs)
}

// StreamConfig is the one-time configuration of a capture stream.
type StreamConfig struct {
	ID          string      // stream identifier used in logs and metrics
	Format      AudioFormat // fixed sample format
	ChunkFrames int         // frames per emitted chunk
	QueueSize   int         // chunk queue capacity
	HistorySize int         // history ledger capacity in chunks
}

// DefaultQueueSize is the chunk queue capacity used when none is configured.
const DefaultQueueSize = 100
