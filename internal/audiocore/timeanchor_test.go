package audiocore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeAnchorCaptureOnce(t *testing.T) {
	t.Parallel()

	a := NewTimeAnchor(48000)
	require.False(t, a.Captured())

	first := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	a.Capture(10.5, first)
	require.True(t, a.Captured())
	assert.Equal(t, 10.5, a.DeviceTime())
	assert.Equal(t, first.UnixNano(), a.WallClockNs())

	// A second capture must not move the anchor.
	a.Capture(99.0, first.Add(time.Hour))
	assert.Equal(t, 10.5, a.DeviceTime())
	assert.Equal(t, first.UnixNano(), a.WallClockNs())
}

func TestTimeAnchorTimestampFor(t *testing.T) {
	t.Parallel()

	anchor := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("first_sample_is_the_anchor", func(t *testing.T) {
		t.Parallel()
		a := NewTimeAnchor(48000)
		a.Capture(0, anchor)
		assert.Equal(t, anchor.UnixNano(), a.TimestampFor(0, 0))
	})

	t.Run("one_second_of_buffer_time", func(t *testing.T) {
		t.Parallel()
		a := NewTimeAnchor(48000)
		a.Capture(0, anchor)
		assert.Equal(t, anchor.UnixNano()+int64(time.Second), a.TimestampFor(1.0, 0))
	})

	t.Run("one_second_of_samples", func(t *testing.T) {
		t.Parallel()
		a := NewTimeAnchor(44100)
		a.Capture(0, anchor)
		got := a.TimestampFor(0, 44100)
		want := anchor.UnixNano() + int64(time.Second)
		assert.InDelta(t, want, got, float64(time.Microsecond))
	})

	t.Run("monotonic_over_sample_index", func(t *testing.T) {
		t.Parallel()
		a := NewTimeAnchor(48000)
		a.Capture(0, anchor)
		prev := a.TimestampFor(0.25, 0)
		for idx := 1; idx <= 4800; idx += 480 {
			ts := a.TimestampFor(0.25, idx)
			require.Greater(t, ts, prev)
			prev = ts
		}
	})
}
