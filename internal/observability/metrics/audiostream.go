// Package metrics provides Prometheus metrics for the audiostream pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// AudioStreamMetrics contains Prometheus metrics for the capture pipeline.
type AudioStreamMetrics struct {
	registry *prometheus.Registry

	// Capture metrics
	chunksCaptured *prometheus.CounterVec
	chunksDropped  *prometheus.CounterVec
	framesReceived *prometheus.CounterVec
	queueDepth     *prometheus.GaugeVec

	// History metrics
	historyAppends *prometheus.CounterVec

	// Encoder metrics
	encoderPackets *prometheus.CounterVec
	encoderBytes   *prometheus.CounterVec
	feedDrops      *prometheus.CounterVec

	// collectors is a slice of all collectors for registration
	collectors []prometheus.Collector
}

// NewAudioStreamMetrics creates and registers new pipeline metrics.
func NewAudioStreamMetrics(registry *prometheus.Registry) (*AudioStreamMetrics, error) {
	m := &AudioStreamMetrics{registry: registry}
	m.initMetrics()
	for _, collector := range m.collectors {
		if err := registry.Register(collector); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *AudioStreamMetrics) initMetrics() {
	m.chunksCaptured = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audiostream_chunks_captured_total",
			Help: "Total number of audio chunks emitted by the capture callback",
		},
		[]string{"stream_id"},
	)

	m.chunksDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audiostream_chunks_dropped_total",
			Help: "Total number of chunks dropped because the chunk queue was full",
		},
		[]string{"stream_id"},
	)

	m.framesReceived = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audiostream_frames_received_total",
			Help: "Total number of hardware frames delivered to the capture callback",
		},
		[]string{"stream_id"},
	)

	m.queueDepth = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "audiostream_queue_depth",
			Help: "Number of chunks currently waiting in the chunk queue",
		},
		[]string{"stream_id"},
	)

	m.historyAppends = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audiostream_history_appends_total",
			Help: "Total number of chunks appended to the history ledger",
		},
		[]string{"stream_id"},
	)

	m.encoderPackets = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audiostream_encoder_packets_total",
			Help: "Total number of compressed packets produced by the streaming encoder",
		},
		[]string{"stream_id"},
	)

	m.encoderBytes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audiostream_encoder_bytes_total",
			Help: "Total compressed bytes produced by the streaming encoder",
		},
		[]string{"stream_id"},
	)

	m.feedDrops = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audiostream_feed_dropped_bytes_total",
			Help: "Total PCM bytes dropped because the encoder feed ring was full",
		},
		[]string{"stream_id"},
	)

	m.collectors = []prometheus.Collector{
		m.chunksCaptured,
		m.chunksDropped,
		m.framesReceived,
		m.queueDepth,
		m.historyAppends,
		m.encoderPackets,
		m.encoderBytes,
		m.feedDrops,
	}
}

// IncChunksCaptured increments the captured chunk counter.
func (m *AudioStreamMetrics) IncChunksCaptured(streamID string) {
	m.chunksCaptured.WithLabelValues(streamID).Inc()
}

// IncChunksDropped increments the dropped chunk counter.
func (m *AudioStreamMetrics) IncChunksDropped(streamID string) {
	m.chunksDropped.WithLabelValues(streamID).Inc()
}

// AddFramesReceived adds to the received frame counter.
func (m *AudioStreamMetrics) AddFramesReceived(streamID string, frames int) {
	m.framesReceived.WithLabelValues(streamID).Add(float64(frames))
}

// SetQueueDepth sets the current chunk queue depth.
func (m *AudioStreamMetrics) SetQueueDepth(streamID string, depth int) {
	m.queueDepth.WithLabelValues(streamID).Set(float64(depth))
}

// IncHistoryAppends increments the history append counter.
func (m *AudioStreamMetrics) IncHistoryAppends(streamID string) {
	m.historyAppends.WithLabelValues(streamID).Inc()
}

// AddEncoderOutput records compressed packets and bytes produced.
func (m *AudioStreamMetrics) AddEncoderOutput(streamID string, packets, bytes int) {
	m.encoderPackets.WithLabelValues(streamID).Add(float64(packets))
	m.encoderBytes.WithLabelValues(streamID).Add(float64(bytes))
}

// AddFeedDroppedBytes records PCM bytes dropped at the encoder feed.
func (m *AudioStreamMetrics) AddFeedDroppedBytes(streamID string, bytes int) {
	m.feedDrops.WithLabelValues(streamID).Add(float64(bytes))
}
