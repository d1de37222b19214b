// Package encoder compresses the captured PCM stream with Opus.
//
// The encoder consumes only whole codec frames: input of any length is
// accepted and the remainder short of a frame boundary carries over to the
// next call. Flush drains that remainder at end of stream by padding the
// final partial frame with silence.
package encoder

import (
	"bytes"
	"log/slog"

	"layeh.com/gopus"

	"github.com/oliviamiller/audiostream/internal/errors"
	"github.com/oliviamiller/audiostream/internal/logging"
)

// Opus accepts exactly these input sample rates.
var opusSampleRates = map[int]bool{
	8000:  true,
	12000: true,
	16000: true,
	24000: true,
	48000: true,
}

// frameSizeMs is the Opus frame duration used throughout the pipeline.
const frameSizeMs = 20

// ErrNotInitialized is returned when Encode or Flush is called before
// Initialize, or after Cleanup.
var ErrNotInitialized = errors.Newf("opus encoder not initialized").
	Component("encoder").
	Category(errors.CategoryState).
	Build()

// OpusEncoder is a streaming Opus encoder with internal sample carry-over.
// It is not safe for concurrent use; the pump goroutine owns it.
type OpusEncoder struct {
	enc        *gopus.Encoder
	sampleRate int
	channels   int
	frameSize  int // samples per channel per frame
	leftover   []int16
	logger     *slog.Logger
}

// NewOpusEncoder returns an encoder in the uninitialized state.
func NewOpusEncoder() *OpusEncoder {
	logger := logging.ForService("encoder")
	if logger == nil {
		logger = slog.Default()
	}
	return &OpusEncoder{logger: logger}
}

// Initialize configures the encoder for the given stream parameters.
// Calling it on an initialized encoder reconfigures from scratch,
// discarding any carried-over samples.
func (e *OpusEncoder) Initialize(sampleRate, channels int) error {
	if !opusSampleRates[sampleRate] {
		return errors.Newf("sample rate %d Hz not supported by opus (need 8, 12, 16, 24 or 48 kHz)", sampleRate).
			Component("encoder").
			Category(errors.CategoryCodec).
			Context("sample_rate", sampleRate).
			Build()
	}
	if channels < 1 || channels > 2 {
		return errors.Newf("channel count %d not supported by opus", channels).
			Component("encoder").
			Category(errors.CategoryCodec).
			Context("channels", channels).
			Build()
	}

	enc, err := gopus.NewEncoder(sampleRate, channels, gopus.Audio)
	if err != nil {
		return errors.New(err).
			Component("encoder").
			Category(errors.CategoryCodec).
			Context("operation", "create_encoder").
			Build()
	}

	e.enc = enc
	e.sampleRate = sampleRate
	e.channels = channels
	e.frameSize = sampleRate * frameSizeMs / 1000
	e.leftover = e.leftover[:0]

	e.logger.Info("opus encoder initialized",
		"sample_rate", sampleRate,
		"channels", channels,
		"frame_size", e.frameSize)
	return nil
}

// SetBitrate sets the target bitrate in bits per second.
func (e *OpusEncoder) SetBitrate(bitrate int) error {
	if e.enc == nil {
		return ErrNotInitialized
	}
	e.enc.SetBitrate(bitrate)
	return nil
}

// Initialized reports whether the encoder is ready to accept samples.
func (e *OpusEncoder) Initialized() bool {
	return e.enc != nil
}

// FrameSize returns the samples per channel consumed per packet.
func (e *OpusEncoder) FrameSize() int {
	return e.frameSize
}

// BufferedSamples returns the interleaved sample count carried over from
// previous Encode calls.
func (e *OpusEncoder) BufferedSamples() int {
	return len(e.leftover)
}

// Encode appends interleaved samples to the carry-over buffer, encodes every
// complete frame it now holds, writes the packets to out, and returns the
// packet count. Samples short of a frame boundary are retained for the next
// call. A failing frame is logged, dropped, and does not abort the stream.
func (e *OpusEncoder) Encode(samples []int16, out *bytes.Buffer) (int, error) {
	if e.enc == nil {
		return 0, ErrNotInitialized
	}

	e.leftover = append(e.leftover, samples...)

	frameSamples := e.frameSize * e.channels
	packets := 0
	for len(e.leftover) >= frameSamples {
		packet, err := e.enc.Encode(e.leftover[:frameSamples], e.frameSize, frameSamples*2)
		if err != nil {
			e.logger.Warn("opus frame encode failed, dropping frame", "error", err)
		} else {
			if out != nil {
				out.Write(packet)
			}
			packets++
		}
		n := copy(e.leftover, e.leftover[frameSamples:])
		e.leftover = e.leftover[:n]
	}
	return packets, nil
}

// Flush encodes any carried-over samples as a final frame, padding the tail
// with silence to reach the frame boundary. It returns the number of packets
// written: zero when nothing was buffered, otherwise one.
func (e *OpusEncoder) Flush(out *bytes.Buffer) (int, error) {
	if e.enc == nil {
		return 0, ErrNotInitialized
	}
	if len(e.leftover) == 0 {
		return 0, nil
	}

	frameSamples := e.frameSize * e.channels
	for len(e.leftover) < frameSamples {
		e.leftover = append(e.leftover, 0)
	}

	packet, err := e.enc.Encode(e.leftover[:frameSamples], e.frameSize, frameSamples*2)
	e.leftover = e.leftover[:0]
	if err != nil {
		return 0, errors.New(err).
			Component("encoder").
			Category(errors.CategoryCodec).
			Context("operation", "flush").
			Build()
	}
	if out != nil {
		out.Write(packet)
	}
	return 1, nil
}

// Cleanup releases the encoder and discards buffered samples. Safe to call
// repeatedly and on an uninitialized encoder.
func (e *OpusEncoder) Cleanup() {
	e.enc = nil
	e.leftover = nil
	e.sampleRate = 0
	e.channels = 0
	e.frameSize = 0
}

// Int16sToBytes converts interleaved samples to little-endian bytes.
func Int16sToBytes(pcm []int16) []byte {
	b := make([]byte, len(pcm)*2)
	for i, s := range pcm {
		b[i*2] = byte(s)
		b[i*2+1] = byte(s >> 8)
	}
	return b
}

// BytesToInt16s converts little-endian bytes to interleaved samples.
func BytesToInt16s(b []byte) []int16 {
	pcm := make([]int16, len(b)/2)
	for i := range pcm {
		pcm[i] = int16(b[i*2]) | int16(b[i*2+1])<<8
	}
	return pcm
}
