package audiocore

import (
	"math"
	"sync/atomic"
	"time"

	"github.com/oliviamiller/audiostream/internal/errors"
)

// StreamContext is the aggregate root of one capture stream. It owns the
// working accumulator filled by the device callback, the chunk queue, the
// time anchor and the history ledger.
//
// OnFrames is the producer side and runs on the device's real-time thread;
// GetNewChunks, Query and AvailableRange are the consumer side. See the
// package documentation for the threading contract.
type StreamContext struct {
	id          string
	format      AudioFormat
	chunkFrames int

	queue   *ChunkQueue
	history *HistoryLedger
	anchor  *TimeAnchor

	// Producer-side state, touched only by the callback thread. The
	// accumulator never holds more than one chunk's worth of samples and
	// is reset to empty immediately after a chunk is emitted.
	accumulator  []byte
	accBytes     int
	chunkStartNs int64

	recording atomic.Bool
}

// NewStreamContext creates a stream from its one-time configuration.
func NewStreamContext(config StreamConfig) (*StreamContext, error) {
	if config.Format.SampleRate <= 0 || config.Format.Channels <= 0 || config.Format.BitDepth <= 0 {
		return nil, errors.Newf("invalid audio format: %d Hz, %d channels, %d bit",
			config.Format.SampleRate, config.Format.Channels, config.Format.BitDepth).
			Component(ComponentAudioCore).
			Category(errors.CategoryValidation).
			Build()
	}
	if config.ChunkFrames <= 0 {
		return nil, errors.Newf("invalid chunk size: %d frames", config.ChunkFrames).
			Component(ComponentAudioCore).
			Category(errors.CategoryValidation).
			Build()
	}
	if config.HistorySize <= 0 {
		return nil, errors.Newf("invalid history size: %d", config.HistorySize).
			Component(ComponentAudioCore).
			Category(errors.CategoryValidation).
			Build()
	}

	s := &StreamContext{
		id:          config.ID,
		format:      config.Format,
		chunkFrames: config.ChunkFrames,
		queue:       NewChunkQueue(config.QueueSize),
		history:     NewHistoryLedger(config.HistorySize),
		anchor:      NewTimeAnchor(config.Format.SampleRate),
		accumulator: make([]byte, config.ChunkFrames*config.Format.BytesPerFrame()),
	}
	s.recording.Store(true)
	return s, nil
}

// ID returns the stream identifier.
func (s *StreamContext) ID() string {
	return s.id
}

// Format returns the fixed stream format.
func (s *StreamContext) Format() AudioFormat {
	return s.format
}

// Anchor returns the stream's time anchor.
func (s *StreamContext) Anchor() *TimeAnchor {
	return s.anchor
}

// Queue returns the stream's chunk queue.
func (s *StreamContext) Queue() *ChunkQueue {
	return s.queue
}

// SetRecording pauses or resumes ingestion without tearing the pipeline
// down. While false, OnFrames is a no-op; resuming continues from the
// existing accumulator state.
func (s *StreamContext) SetRecording(enabled bool) {
	s.recording.Store(enabled)
}

// IsRecording reports whether ingestion is enabled.
func (s *StreamContext) IsRecording() bool {
	return s.recording.Load()
}

// OnFrames is invoked once per hardware buffer delivery with interleaved
// little-endian samples, the frame count, and the device-clock time of the
// buffer's first sample in seconds.
//
// It runs on the real-time callback thread: it takes no locks, never blocks,
// and its only allocation is the payload of a chunk being emitted. Absent
// input or disabled recording is a no-op, not an error. A single invocation
// may emit zero, one or several chunks depending on the hardware buffer size
// relative to the configured chunk size; accumulator state persists across
// invocations.
func (s *StreamContext) OnFrames(pcm []byte, frameCount int, deviceTimeSec float64) {
	if len(pcm) == 0 || frameCount <= 0 || !s.recording.Load() {
		return
	}

	// First callback of the stream's lifetime anchors the device clock to
	// the wall clock. The single clock query happens here, never again.
	if !s.anchor.Captured() {
		s.anchor.Capture(deviceTimeSec, time.Now())
	}
	secondsSinceStart := deviceTimeSec - s.anchor.DeviceTime()

	metrics := GetMetrics()
	metrics.FramesReceived(s.id, frameCount)

	bpf := s.format.BytesPerFrame()
	chunkBytes := s.chunkFrames * bpf
	if len(pcm) > frameCount*bpf {
		pcm = pcm[:frameCount*bpf]
	}

	consumedFrames := 0
	for len(pcm) > 0 {
		// A fresh accumulator marks the start of a new chunk; its start
		// timestamp is the absolute time of the next input frame.
		if s.accBytes == 0 {
			s.chunkStartNs = s.anchor.TimestampFor(secondsSinceStart, consumedFrames)
		}

		n := copy(s.accumulator[s.accBytes:], pcm)
		s.accBytes += n
		consumedFrames += n / bpf
		pcm = pcm[n:]

		if s.accBytes == chunkBytes {
			s.emitChunk(metrics)
		}
	}
}

// emitChunk materializes the filled accumulator as an AudioChunk and pushes
// it onto the queue. Runs on the callback thread.
func (s *StreamContext) emitChunk(metrics *MetricsCollector) {
	chunkSec := float64(s.chunkFrames) / float64(s.format.SampleRate)
	endNs := s.chunkStartNs + int64(math.Round(chunkSec*float64(time.Second)))

	payload := make([]byte, s.accBytes)
	copy(payload, s.accumulator[:s.accBytes])

	chunk := AudioChunk{
		Format:  s.format,
		StartNs: s.chunkStartNs,
		EndNs:   endNs,
		Payload: payload,
	}

	if s.queue.Push(chunk) {
		metrics.ChunkCaptured(s.id)
	} else {
		// Queue full: drop the chunk. The producer must never wait for
		// space; the loss is observable through the dropped counter.
		metrics.ChunkDropped(s.id)
	}

	s.accBytes = 0
}

// GetNewChunks drains every pending chunk from the queue, appends each to
// the history ledger and returns the batch in capture order. Consumer-side
// only; an empty queue yields an empty batch.
func (s *StreamContext) GetNewChunks() []AudioChunk {
	metrics := GetMetrics()
	metrics.QueueDepth(s.id, s.queue.Len())

	chunks := s.queue.DrainAll()
	for i := range chunks {
		s.history.Append(chunks[i])
		metrics.HistoryAppend(s.id)
	}
	return chunks
}

// Query returns the retained chunks whose start timestamp falls in
// [startNs, endNs). Consumer-side only.
func (s *StreamContext) Query(startNs, endNs int64) []AudioChunk {
	return s.history.Query(startNs, endNs)
}

// QueryFrom returns the retained chunks starting at or after startNs.
func (s *StreamContext) QueryFrom(startNs int64) []AudioChunk {
	return s.history.QueryFrom(startNs)
}

// AvailableRange returns the time span covered by the retained history, or
// (0, 0) when nothing has been retained yet.
func (s *StreamContext) AvailableRange() (oldestNs, newestNs int64) {
	return s.history.AvailableRange()
}
