package audiocore

import (
	"sync/atomic"

	"github.com/oliviamiller/audiostream/internal/observability/metrics"
)

// MetricsCollector forwards pipeline events to the Prometheus metric set.
// A collector with no metric set is a no-op, so instrumented code never has
// to check whether metrics are enabled.
type MetricsCollector struct {
	metrics *metrics.AudioStreamMetrics
	enabled bool
}

var globalMetrics atomic.Pointer[MetricsCollector]

// InitMetrics installs the global metrics collector. Passing nil disables
// metric recording.
func InitMetrics(m *metrics.AudioStreamMetrics) {
	globalMetrics.Store(&MetricsCollector{metrics: m, enabled: m != nil})
}

// GetMetrics returns the global metrics collector, or a no-op collector if
// InitMetrics has not been called.
func GetMetrics() *MetricsCollector {
	if mc := globalMetrics.Load(); mc != nil {
		return mc
	}
	return &MetricsCollector{}
}

// ChunkCaptured records a chunk emitted by the capture callback.
func (mc *MetricsCollector) ChunkCaptured(streamID string) {
	if !mc.enabled {
		return
	}
	mc.metrics.IncChunksCaptured(streamID)
}

// ChunkDropped records a chunk dropped on queue overflow.
func (mc *MetricsCollector) ChunkDropped(streamID string) {
	if !mc.enabled {
		return
	}
	mc.metrics.IncChunksDropped(streamID)
}

// FramesReceived records hardware frames delivered to the callback.
func (mc *MetricsCollector) FramesReceived(streamID string, frames int) {
	if !mc.enabled {
		return
	}
	mc.metrics.AddFramesReceived(streamID, frames)
}

// QueueDepth records the chunk queue depth observed at drain time.
func (mc *MetricsCollector) QueueDepth(streamID string, depth int) {
	if !mc.enabled {
		return
	}
	mc.metrics.SetQueueDepth(streamID, depth)
}

// HistoryAppend records a chunk appended to the history ledger.
func (mc *MetricsCollector) HistoryAppend(streamID string) {
	if !mc.enabled {
		return
	}
	mc.metrics.IncHistoryAppends(streamID)
}

// EncoderOutput records compressed packets and bytes produced.
func (mc *MetricsCollector) EncoderOutput(streamID string, packets, bytes int) {
	if !mc.enabled {
		return
	}
	mc.metrics.AddEncoderOutput(streamID, packets, bytes)
}

// FeedDropped records PCM bytes dropped at the encoder feed.
func (mc *MetricsCollector) FeedDropped(streamID string, bytes int) {
	if !mc.enabled {
		return
	}
	mc.metrics.AddFeedDroppedBytes(streamID, bytes)
}
