package encoder

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sine builds n mono samples of a 440 Hz tone so the codec has real signal
// to chew on.
func sine(n int) []int16 {
	samples := make([]int16, n)
	for i := range samples {
		samples[i] = int16(8000 * math.Sin(2*math.Pi*440*float64(i)/48000))
	}
	return samples
}

func newTestEncoder(t *testing.T) *OpusEncoder {
	t.Helper()
	e := NewOpusEncoder()
	require.NoError(t, e.Initialize(48000, 1))
	return e
}

func TestInitializeRejectsUnsupportedRates(t *testing.T) {
	t.Parallel()

	e := NewOpusEncoder()
	assert.Error(t, e.Initialize(44100, 1), "44.1 kHz is not an opus rate")
	assert.Error(t, e.Initialize(0, 1))
	assert.Error(t, e.Initialize(48000, 0))
	assert.Error(t, e.Initialize(48000, 3))
	assert.False(t, e.Initialized())
}

func TestEncodeBeforeInitialize(t *testing.T) {
	t.Parallel()

	e := NewOpusEncoder()
	var out bytes.Buffer
	_, err := e.Encode(sine(960), &out)
	assert.ErrorIs(t, err, ErrNotInitialized)
	_, err = e.Flush(&out)
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestEncodeBuffersSubFrameInput(t *testing.T) {
	t.Parallel()

	e := newTestEncoder(t)
	require.Equal(t, 960, e.FrameSize(), "20 ms at 48 kHz")

	var out bytes.Buffer
	packets, err := e.Encode(sine(480), &out)
	require.NoError(t, err)
	assert.Zero(t, packets)
	assert.Zero(t, out.Len())
	assert.Equal(t, 480, e.BufferedSamples())
}

func TestEncodeConsumesWholeFrames(t *testing.T) {
	t.Parallel()

	e := newTestEncoder(t)
	var out bytes.Buffer
	packets, err := e.Encode(sine(960*2), &out)
	require.NoError(t, err)
	assert.Equal(t, 2, packets)
	assert.Positive(t, out.Len())
	assert.Zero(t, e.BufferedSamples())
}

func TestEncodeCarriesLeftoverAcrossCalls(t *testing.T) {
	t.Parallel()

	e := newTestEncoder(t)
	var out bytes.Buffer

	// 3.5 frames: three packets out, half a frame retained.
	packets, err := e.Encode(sine(960*3+480), &out)
	require.NoError(t, err)
	assert.Equal(t, 3, packets)
	assert.Equal(t, 480, e.BufferedSamples())

	// The other half completes the fourth frame.
	packets, err = e.Encode(sine(480), &out)
	require.NoError(t, err)
	assert.Equal(t, 1, packets)
	assert.Zero(t, e.BufferedSamples())
}

func TestFlushDrainsPartialFrame(t *testing.T) {
	t.Parallel()

	e := newTestEncoder(t)
	var out bytes.Buffer
	_, err := e.Encode(sine(300), &out)
	require.NoError(t, err)
	require.Equal(t, 300, e.BufferedSamples())

	packets, err := e.Flush(&out)
	require.NoError(t, err)
	assert.Equal(t, 1, packets)
	assert.Positive(t, out.Len())
	assert.Zero(t, e.BufferedSamples())
}

func TestFlushEmptyIsNoop(t *testing.T) {
	t.Parallel()

	e := newTestEncoder(t)
	var out bytes.Buffer
	packets, err := e.Flush(&out)
	require.NoError(t, err)
	assert.Zero(t, packets)
	assert.Zero(t, out.Len())
}

func TestCleanupIsIdempotent(t *testing.T) {
	t.Parallel()

	e := newTestEncoder(t)
	var out bytes.Buffer
	_, err := e.Encode(sine(100), &out)
	require.NoError(t, err)

	e.Cleanup()
	assert.False(t, e.Initialized())
	assert.Zero(t, e.BufferedSamples())
	e.Cleanup()

	_, err = e.Encode(sine(960), &out)
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestStereoFrameAccounting(t *testing.T) {
	t.Parallel()

	e := NewOpusEncoder()
	require.NoError(t, e.Initialize(48000, 2))

	var out bytes.Buffer
	// 960 interleaved samples is only half a stereo frame.
	packets, err := e.Encode(sine(960), &out)
	require.NoError(t, err)
	assert.Zero(t, packets)

	packets, err = e.Encode(sine(960), &out)
	require.NoError(t, err)
	assert.Equal(t, 1, packets)
}

func TestSampleByteConversionRoundTrip(t *testing.T) {
	t.Parallel()

	in := []int16{0, 1, -1, 32767, -32768, 12345, -12345}
	got := BytesToInt16s(Int16sToBytes(in))
	assert.Equal(t, in, got)
}
