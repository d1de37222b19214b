package audiocore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chunkAt(startNs, durNs int64) AudioChunk {
	return AudioChunk{
		Format:  AudioFormat{SampleRate: 48000, Channels: 1, BitDepth: 16, Encoding: "pcm_s16le"},
		StartNs: startNs,
		EndNs:   startNs + durNs,
		Payload: []byte{1, 2},
	}
}

func TestHistoryLedgerEmpty(t *testing.T) {
	t.Parallel()

	h := NewHistoryLedger(10)
	oldest, newest := h.AvailableRange()
	assert.Zero(t, oldest)
	assert.Zero(t, newest)
	assert.Empty(t, h.Query(0, int64(time.Hour)))
	assert.Equal(t, 0, h.Len())
}

func TestHistoryLedgerAvailableRange(t *testing.T) {
	t.Parallel()

	h := NewHistoryLedger(10)
	dur := int64(100 * time.Millisecond)
	h.Append(chunkAt(int64(1*time.Second), dur))
	h.Append(chunkAt(int64(2*time.Second), dur))
	h.Append(chunkAt(int64(3*time.Second), dur))

	oldest, newest := h.AvailableRange()
	assert.Equal(t, int64(1*time.Second), oldest)
	assert.Equal(t, int64(3*time.Second)+dur, newest)
}

func TestHistoryLedgerQueryHalfOpen(t *testing.T) {
	t.Parallel()

	h := NewHistoryLedger(10)
	dur := int64(100 * time.Millisecond)
	for s := int64(1); s <= 3; s++ {
		h.Append(chunkAt(s*int64(time.Second), dur))
	}

	// Interval selection keys on chunk start time only.
	got := h.Query(int64(1500*time.Millisecond), int64(2500*time.Millisecond))
	require.Len(t, got, 1)
	assert.Equal(t, int64(2*time.Second), got[0].StartNs)

	// Start boundary is inclusive, end boundary exclusive.
	got = h.Query(int64(2*time.Second), int64(3*time.Second))
	require.Len(t, got, 1)
	assert.Equal(t, int64(2*time.Second), got[0].StartNs)
}

func TestHistoryLedgerQueryFrom(t *testing.T) {
	t.Parallel()

	h := NewHistoryLedger(10)
	for s := int64(1); s <= 4; s++ {
		h.Append(chunkAt(s*int64(time.Second), int64(time.Second)))
	}

	got := h.QueryFrom(int64(3 * time.Second))
	require.Len(t, got, 2)
}

func TestHistoryLedgerWraparound(t *testing.T) {
	t.Parallel()

	const capacity = 5
	h := NewHistoryLedger(capacity)
	for i := int64(0); i < 12; i++ {
		h.Append(chunkAt(i*int64(time.Second), int64(time.Second)))
	}

	assert.Equal(t, capacity, h.Len())

	// Only the most recent capacity chunks survive.
	oldest, newest := h.AvailableRange()
	assert.Equal(t, int64(7*time.Second), oldest)
	assert.Equal(t, int64(12*time.Second), newest)

	assert.Empty(t, h.Query(0, int64(7*time.Second)))
}

func TestHistoryLedgerEpochChunkIsQueryable(t *testing.T) {
	t.Parallel()

	h := NewHistoryLedger(3)
	h.Append(chunkAt(0, int64(time.Second)))

	got := h.Query(0, int64(time.Second))
	require.Len(t, got, 1)

	oldest, newest := h.AvailableRange()
	assert.Equal(t, int64(0), oldest)
	assert.Equal(t, int64(time.Second), newest)
}
