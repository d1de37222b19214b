package audiocore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStreamConfig(chunkFrames int) StreamConfig {
	return StreamConfig{
		ID: "test-stream",
		Format: AudioFormat{
			SampleRate: 48000,
			Channels:   1,
			BitDepth:   16,
			Encoding:   "pcm_s16le",
		},
		ChunkFrames: chunkFrames,
		QueueSize:   16,
		HistorySize: 16,
	}
}

// pcmFrames builds frameCount mono S16LE frames with a recognizable ramp.
func pcmFrames(frameCount int, seed byte) []byte {
	b := make([]byte, frameCount*2)
	for i := 0; i < frameCount; i++ {
		b[i*2] = seed + byte(i)
		b[i*2+1] = byte(i >> 8)
	}
	return b
}

func TestNewStreamContextValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*StreamConfig)
	}{
		{"zero_sample_rate", func(c *StreamConfig) { c.Format.SampleRate = 0 }},
		{"zero_channels", func(c *StreamConfig) { c.Format.Channels = 0 }},
		{"zero_bit_depth", func(c *StreamConfig) { c.Format.BitDepth = 0 }},
		{"zero_chunk_frames", func(c *StreamConfig) { c.ChunkFrames = 0 }},
		{"zero_history", func(c *StreamConfig) { c.HistorySize = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			config := testStreamConfig(480)
			tt.mutate(&config)
			_, err := NewStreamContext(config)
			require.Error(t, err)
		})
	}
}

func TestStreamContextAccumulatesAcrossCallbacks(t *testing.T) {
	t.Parallel()

	s, err := NewStreamContext(testStreamConfig(480))
	require.NoError(t, err)

	// Three deliveries short of one chunk, then the one that completes it.
	s.OnFrames(pcmFrames(160, 0), 160, 0)
	s.OnFrames(pcmFrames(160, 1), 160, 160.0/48000)
	s.OnFrames(pcmFrames(100, 2), 100, 320.0/48000)
	require.Empty(t, s.GetNewChunks())

	s.OnFrames(pcmFrames(60, 3), 60, 420.0/48000)
	chunks := s.GetNewChunks()
	require.Len(t, chunks, 1)
	assert.Equal(t, 480, chunks[0].Frames())
	assert.Len(t, chunks[0].Payload, 480*2)
}

func TestStreamContextEmitsMultipleChunksPerCallback(t *testing.T) {
	t.Parallel()

	s, err := NewStreamContext(testStreamConfig(480))
	require.NoError(t, err)

	// One delivery holding 2.5 chunks.
	s.OnFrames(pcmFrames(1200, 0), 1200, 0)

	chunks := s.GetNewChunks()
	require.Len(t, chunks, 2)

	// Consecutive chunks tile the timeline: each starts where the
	// previous one ends, 10 ms apart at 480 frames / 48 kHz.
	assert.Equal(t, chunks[0].EndNs, chunks[1].StartNs)
	assert.Equal(t, int64(10*time.Millisecond), chunks[1].StartNs-chunks[0].StartNs)

	// The remaining 240 frames complete on the next delivery.
	s.OnFrames(pcmFrames(240, 9), 240, 1200.0/48000)
	require.Len(t, s.GetNewChunks(), 1)
}

func TestStreamContextChunkTimestamps(t *testing.T) {
	t.Parallel()

	s, err := NewStreamContext(testStreamConfig(480))
	require.NoError(t, err)

	before := time.Now().UnixNano()
	s.OnFrames(pcmFrames(480, 0), 480, 0)
	after := time.Now().UnixNano()

	chunks := s.GetNewChunks()
	require.Len(t, chunks, 1)

	// The first chunk starts at the anchor instant.
	assert.GreaterOrEqual(t, chunks[0].StartNs, before)
	assert.LessOrEqual(t, chunks[0].StartNs, after)
	assert.Equal(t, chunks[0].StartNs+int64(10*time.Millisecond), chunks[0].EndNs)
}

func TestStreamContextAnchorFromFirstCallback(t *testing.T) {
	t.Parallel()

	s, err := NewStreamContext(testStreamConfig(480))
	require.NoError(t, err)
	require.False(t, s.Anchor().Captured())

	// Device clock did not start at zero; the anchor absorbs the offset.
	s.OnFrames(pcmFrames(480, 0), 480, 123.456)
	require.True(t, s.Anchor().Captured())
	assert.Equal(t, 123.456, s.Anchor().DeviceTime())

	anchorNs := s.Anchor().WallClockNs()
	chunks := s.GetNewChunks()
	require.Len(t, chunks, 1)
	assert.Equal(t, anchorNs, chunks[0].StartNs)
}

func TestStreamContextRecordingToggle(t *testing.T) {
	t.Parallel()

	s, err := NewStreamContext(testStreamConfig(480))
	require.NoError(t, err)
	require.True(t, s.IsRecording())

	s.SetRecording(false)
	s.OnFrames(pcmFrames(480, 0), 480, 0)
	assert.Empty(t, s.GetNewChunks())
	assert.False(t, s.Anchor().Captured(), "paused callbacks must not anchor the clock")

	s.SetRecording(true)
	s.OnFrames(pcmFrames(480, 0), 480, 0.01)
	assert.Len(t, s.GetNewChunks(), 1)
}

func TestStreamContextNilInputIsNoop(t *testing.T) {
	t.Parallel()

	s, err := NewStreamContext(testStreamConfig(480))
	require.NoError(t, err)

	s.OnFrames(nil, 0, 0)
	s.OnFrames([]byte{}, 480, 0)
	assert.Empty(t, s.GetNewChunks())
	assert.False(t, s.Anchor().Captured())
}

func TestStreamContextHistoryFlow(t *testing.T) {
	t.Parallel()

	s, err := NewStreamContext(testStreamConfig(480))
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		s.OnFrames(pcmFrames(480, byte(i)), 480, float64(i)*480/48000)
	}

	chunks := s.GetNewChunks()
	require.Len(t, chunks, 4)

	oldest, newest := s.AvailableRange()
	assert.Equal(t, chunks[0].StartNs, oldest)
	assert.Equal(t, chunks[3].EndNs, newest)

	// Query for the middle two chunks only.
	got := s.Query(chunks[1].StartNs, chunks[3].StartNs)
	require.Len(t, got, 2)
	assert.Equal(t, chunks[1].StartNs, got[0].StartNs)
	assert.Equal(t, chunks[2].StartNs, got[1].StartNs)
}

func TestStreamContextQueueOverflowDrops(t *testing.T) {
	t.Parallel()

	config := testStreamConfig(480)
	config.QueueSize = 4
	s, err := NewStreamContext(config)
	require.NoError(t, err)

	// Eight chunks into a queue of four without draining.
	for i := 0; i < 8; i++ {
		s.OnFrames(pcmFrames(480, byte(i)), 480, float64(i)*480/48000)
	}

	chunks := s.GetNewChunks()
	assert.Len(t, chunks, 4, "overflow must drop, not grow the queue")
}
