package conf

import (
	"github.com/oliviamiller/audiostream/internal/errors"
)

// ValidateSettings checks that the loaded settings describe a stream the
// pipeline can actually run.
func ValidateSettings(settings *Settings) error {
	if settings == nil {
		return errors.Newf("settings is nil").
			Component("conf").
			Category(errors.CategoryConfiguration).
			Build()
	}

	audio := &settings.Audio

	if audio.SampleRate <= 0 {
		return errors.Newf("invalid sample rate: %d Hz, must be greater than 0", audio.SampleRate).
			Component("conf").
			Category(errors.CategoryValidation).
			Context("samplerate", audio.SampleRate).
			Build()
	}

	if audio.Channels <= 0 {
		return errors.Newf("invalid channel count: %d, must be greater than 0", audio.Channels).
			Component("conf").
			Category(errors.CategoryValidation).
			Context("channels", audio.Channels).
			Build()
	}

	if audio.ChunkFrames <= 0 {
		return errors.Newf("invalid chunk size: %d frames, must be greater than 0", audio.ChunkFrames).
			Component("conf").
			Category(errors.CategoryValidation).
			Context("chunkframes", audio.ChunkFrames).
			Build()
	}

	if audio.QueueSize <= 0 {
		return errors.Newf("invalid queue size: %d, must be greater than 0", audio.QueueSize).
			Component("conf").
			Category(errors.CategoryValidation).
			Context("queuesize", audio.QueueSize).
			Build()
	}

	if audio.HistorySize <= 0 {
		return errors.Newf("invalid history size: %d, must be greater than 0", audio.HistorySize).
			Component("conf").
			Category(errors.CategoryValidation).
			Context("historysize", audio.HistorySize).
			Build()
	}

	if audio.Encoder.Enabled {
		if audio.Encoder.Bitrate <= 0 {
			return errors.Newf("invalid encoder bitrate: %d", audio.Encoder.Bitrate).
				Component("conf").
				Category(errors.CategoryValidation).
				Context("bitrate", audio.Encoder.Bitrate).
				Build()
		}
		if audio.Encoder.FeedSize <= 0 {
			return errors.Newf("invalid encoder feed size: %d bytes", audio.Encoder.FeedSize).
				Component("conf").
				Category(errors.CategoryValidation).
				Context("feedsize", audio.Encoder.FeedSize).
				Build()
		}
	}

	if audio.Export.Enabled && audio.Export.Path == "" {
		return errors.Newf("export enabled but export path is empty").
			Component("conf").
			Category(errors.CategoryValidation).
			Build()
	}

	if settings.Metrics.Enabled && settings.Metrics.Listen == "" {
		return errors.Newf("metrics enabled but listen address is empty").
			Component("conf").
			Category(errors.CategoryValidation).
			Build()
	}

	return nil
}
