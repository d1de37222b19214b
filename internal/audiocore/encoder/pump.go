package encoder

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/oliviamiller/audiostream/internal/audiocore"
	"github.com/oliviamiller/audiostream/internal/errors"
	"github.com/oliviamiller/audiostream/internal/logging"
)

// readChunkBytes bounds a single feed read. One read never pulls more than
// this much PCM, so a backlogged feed drains over several pump iterations
// instead of one giant encode burst.
const readChunkBytes = 64 * 1024

// Pump moves PCM from the feed through the encoder into w until the context
// is cancelled, then flushes the encoder tail. It is the single goroutine
// that touches enc after initialization.
func Pump(ctx context.Context, feed *audiocore.EncodeFeed, enc *OpusEncoder, w io.Writer, interval time.Duration, streamID string) error {
	if !enc.Initialized() {
		return ErrNotInitialized
	}
	if interval <= 0 {
		interval = audiocore.DefaultPollInterval
	}

	logger := logging.ForService("encoder")
	if logger == nil {
		logger = slog.Default()
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	pcm := make([]byte, readChunkBytes)
	var out bytes.Buffer

	encodeAvailable := func() error {
		for {
			n, err := feed.Read(pcm)
			if err != nil {
				return errors.New(err).
					Component("encoder").
					Category(errors.CategoryBuffer).
					Context("operation", "feed_read").
					Build()
			}
			if n == 0 {
				return nil
			}

			out.Reset()
			packets, err := enc.Encode(BytesToInt16s(pcm[:n]), &out)
			if err != nil {
				return err
			}
			if out.Len() > 0 {
				if _, err := w.Write(out.Bytes()); err != nil {
					return errors.New(err).
						Component("encoder").
						Category(errors.CategoryFileIO).
						Context("operation", "write_output").
						Build()
				}
			}
			audiocore.GetMetrics().EncoderOutput(streamID, packets, out.Len())
		}
	}

	for {
		select {
		case <-ctx.Done():
			// Drain what is staged, then flush the partial tail frame.
			if err := encodeAvailable(); err != nil {
				logger.Error("final drain failed", "stream_id", streamID, "error", err)
			}
			out.Reset()
			packets, err := enc.Flush(&out)
			if err != nil {
				return err
			}
			if out.Len() > 0 {
				if _, err := w.Write(out.Bytes()); err != nil {
					return errors.New(err).
						Component("encoder").
						Category(errors.CategoryFileIO).
						Context("operation", "write_output").
						Build()
				}
			}
			audiocore.GetMetrics().EncoderOutput(streamID, packets, out.Len())
			return nil
		case <-ticker.C:
			if err := encodeAvailable(); err != nil {
				logger.Error("encode failed", "stream_id", streamID, "error", err)
			}
		}
	}
}
