package conf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	settings, err := Load()
	require.NoError(t, err)
	require.NotNil(t, settings)

	assert.Equal(t, 48000, settings.Audio.SampleRate)
	assert.Equal(t, 1, settings.Audio.Channels)
	assert.Equal(t, 4800, settings.Audio.ChunkFrames)
	assert.Equal(t, 100, settings.Audio.QueueSize)
	assert.Equal(t, 100, settings.Audio.HistorySize)
	assert.True(t, settings.Audio.Encoder.Enabled)
	assert.Equal(t, 192000, settings.Audio.Encoder.Bitrate)
	assert.False(t, settings.Metrics.Enabled)

	// Defaults must validate as-is.
	assert.NoError(t, ValidateSettings(settings))

	// Load stores the global instance.
	assert.Same(t, settings, Setting())
}

func TestValidateSettings(t *testing.T) {
	t.Parallel()

	valid := func() *Settings {
		return &Settings{
			Audio: AudioSettings{
				Source:      "default",
				SampleRate:  48000,
				Channels:    2,
				ChunkFrames: 4800,
				QueueSize:   100,
				HistorySize: 100,
				Encoder: EncoderSettings{
					Enabled:  true,
					Bitrate:  192000,
					FeedSize: 1 << 20,
				},
			},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Settings)
		wantErr bool
	}{
		{"valid", func(s *Settings) {}, false},
		{"nil_settings", nil, true},
		{"zero_sample_rate", func(s *Settings) { s.Audio.SampleRate = 0 }, true},
		{"negative_channels", func(s *Settings) { s.Audio.Channels = -1 }, true},
		{"zero_chunk_frames", func(s *Settings) { s.Audio.ChunkFrames = 0 }, true},
		{"zero_queue_size", func(s *Settings) { s.Audio.QueueSize = 0 }, true},
		{"zero_history_size", func(s *Settings) { s.Audio.HistorySize = 0 }, true},
		{"encoder_zero_bitrate", func(s *Settings) { s.Audio.Encoder.Bitrate = 0 }, true},
		{"encoder_disabled_zero_bitrate", func(s *Settings) {
			s.Audio.Encoder.Enabled = false
			s.Audio.Encoder.Bitrate = 0
		}, false},
		{"export_without_path", func(s *Settings) {
			s.Audio.Export.Enabled = true
			s.Audio.Export.Path = ""
		}, true},
		{"metrics_without_listen", func(s *Settings) {
			s.Metrics.Enabled = true
			s.Metrics.Listen = ""
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var settings *Settings
			if tt.mutate != nil {
				settings = valid()
				tt.mutate(settings)
			}

			err := ValidateSettings(settings)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
