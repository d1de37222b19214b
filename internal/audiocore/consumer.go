package audiocore

import (
	"context"
	"log/slog"
	"time"
)

// DefaultPollInterval is how often the consumer drains the chunk queue when
// no interval is configured. At the default chunk size this keeps queue
// occupancy well below one chunk per poll.
const DefaultPollInterval = 100 * time.Millisecond

// Consumer periodically drains a stream's chunk queue, promotes the drained
// chunks into history, and hands each batch to a callback. It is the single
// consumer-side goroutine the queue and ledger contracts require.
type Consumer struct {
	stream   *StreamContext
	interval time.Duration
	onBatch  func([]AudioChunk)
	logger   *slog.Logger
}

// NewConsumer creates a consumer polling the stream at the given interval.
// onBatch may be nil when only history retention is wanted. An interval of
// zero or less falls back to DefaultPollInterval.
func NewConsumer(stream *StreamContext, interval time.Duration, onBatch func([]AudioChunk), logger *slog.Logger) *Consumer {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Consumer{
		stream:   stream,
		interval: interval,
		onBatch:  onBatch,
		logger:   logger,
	}
}

// Run polls the stream until the context is cancelled, performing one final
// drain on shutdown so chunks queued after the last tick are not lost.
func (c *Consumer) Run(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	c.logger.Debug("consumer started",
		"stream_id", c.stream.ID(),
		"interval", c.interval)

	for {
		select {
		case <-ctx.Done():
			c.deliver(c.stream.GetNewChunks())
			c.logger.Debug("consumer stopped", "stream_id", c.stream.ID())
			return
		case <-ticker.C:
			c.deliver(c.stream.GetNewChunks())
		}
	}
}

func (c *Consumer) deliver(chunks []AudioChunk) {
	if len(chunks) == 0 || c.onBatch == nil {
		return
	}
	c.onBatch(chunks)
}
