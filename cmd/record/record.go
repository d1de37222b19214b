// Package record implements the subcommand running the capture pipeline.
package record

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/oliviamiller/audiostream/internal/audiocore"
	"github.com/oliviamiller/audiostream/internal/audiocore/encoder"
	"github.com/oliviamiller/audiostream/internal/audiocore/export"
	malgosource "github.com/oliviamiller/audiostream/internal/audiocore/sources/malgo"
	"github.com/oliviamiller/audiostream/internal/conf"
	"github.com/oliviamiller/audiostream/internal/logging"
	"github.com/oliviamiller/audiostream/internal/observability"
)

// Command returns the record subcommand.
func Command(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "record",
		Short: "Capture timestamped audio from a device",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecord(cmd.Context(), settings)
		},
	}
}

// runRecord wires the whole pipeline together: device source, stream
// context, consumer, optional encoder pump and metrics endpoint, then runs
// until interrupted.
func runRecord(ctx context.Context, settings *conf.Settings) error {
	if err := conf.ValidateSettings(settings); err != nil {
		return err
	}

	logger := logging.ForService("record")
	if settings.Main.Log.Enabled {
		level := slog.LevelInfo
		if settings.Debug {
			level = slog.LevelDebug
		}
		fileLogger, closeLog, err := logging.NewFileLogger(
			settings.Main.Log.Path, settings.Main.Name, level,
			logging.FileLoggerOptions{
				MaxSizeMB:  settings.Main.Log.MaxSize,
				MaxBackups: settings.Main.Log.MaxBackups,
				MaxAgeDays: settings.Main.Log.MaxAge,
			})
		if err != nil {
			return err
		}
		defer func() { _ = closeLog() }()
		logger = fileLogger
	}

	// Optional Prometheus endpoint. Without it the pipeline metric calls
	// are no-ops.
	var endpoint *observability.Endpoint
	if settings.Metrics.Enabled {
		var err error
		endpoint, err = observability.NewEndpoint(settings.Metrics.Listen)
		if err != nil {
			return err
		}
		audiocore.InitMetrics(endpoint.Metrics)
		endpoint.Start()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = endpoint.Stop(shutdownCtx)
		}()
	}

	streamID := uuid.New().String()
	format := audiocore.AudioFormat{
		SampleRate: settings.Audio.SampleRate,
		Channels:   settings.Audio.Channels,
		BitDepth:   16,
		Encoding:   "pcm_s16le",
	}

	stream, err := audiocore.NewStreamContext(audiocore.StreamConfig{
		ID:          streamID,
		Format:      format,
		ChunkFrames: settings.Audio.ChunkFrames,
		QueueSize:   settings.Audio.QueueSize,
		HistorySize: settings.Audio.HistorySize,
	})
	if err != nil {
		return err
	}

	runCtx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Consumer batch sink: feed the encoder when enabled.
	var feed *audiocore.EncodeFeed
	var onBatch func([]audiocore.AudioChunk)
	if settings.Audio.Encoder.Enabled {
		feed = audiocore.NewEncodeFeed(streamID, settings.Audio.Encoder.FeedSize, format.BytesPerFrame())
		onBatch = func(chunks []audiocore.AudioChunk) {
			for i := range chunks {
				feed.Write(chunks[i].Payload)
			}
		}
	}

	consumer := audiocore.NewConsumer(stream, audiocore.DefaultPollInterval, onBatch, logger)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		consumer.Run(runCtx)
	}()

	if settings.Audio.Encoder.Enabled {
		opus := encoder.NewOpusEncoder()
		if err := opus.Initialize(format.SampleRate, format.Channels); err != nil {
			cancel()
			wg.Wait()
			return err
		}
		if err := opus.SetBitrate(settings.Audio.Encoder.Bitrate); err != nil {
			cancel()
			wg.Wait()
			return err
		}

		outPath := settings.Audio.Encoder.OutputPath
		if dir := filepath.Dir(outPath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				cancel()
				wg.Wait()
				return fmt.Errorf("creating encoder output directory: %w", err)
			}
		}
		outFile, err := os.Create(outPath)
		if err != nil {
			cancel()
			wg.Wait()
			return fmt.Errorf("creating encoder output file: %w", err)
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer outFile.Close()
			defer opus.Cleanup()
			if err := encoder.Pump(runCtx, feed, opus, outFile, audiocore.DefaultPollInterval, streamID); err != nil {
				logger.Error("encoder pump failed", "stream_id", streamID, "error", err)
			}
		}()
	}

	source := malgosource.NewSource(streamID, malgosource.Config{
		Device:     settings.Audio.Source,
		SampleRate: uint32(settings.Audio.SampleRate),
		Channels:   uint32(settings.Audio.Channels),
	}, stream)

	if err := source.Start(runCtx); err != nil {
		cancel()
		wg.Wait()
		return err
	}

	logger.Info("recording",
		"stream_id", streamID,
		"source", settings.Audio.Source,
		"sample_rate", format.SampleRate,
		"channels", format.Channels)

	<-runCtx.Done()
	logger.Info("shutting down", "stream_id", streamID)

	if source.IsActive() {
		_ = source.Stop()
	}
	wg.Wait()

	if settings.Audio.Export.Enabled {
		if err := exportHistory(stream, format, settings); err != nil {
			logger.Error("export failed", "stream_id", streamID, "error", err)
		}
	}

	return nil
}

// exportHistory writes everything still retained in the history ledger as a
// WAV clip named after the capture end time.
func exportHistory(stream *audiocore.StreamContext, format audiocore.AudioFormat, settings *conf.Settings) error {
	oldest, newest := stream.AvailableRange()
	if oldest == 0 && newest == 0 {
		return nil
	}

	chunks := stream.Query(oldest, newest)
	if len(chunks) == 0 {
		return nil
	}

	name := fmt.Sprintf("capture_%s.wav", time.Unix(0, newest).Format("20060102_150405"))
	path := filepath.Join(settings.Audio.Export.Path, name)

	if settings.Audio.Export.Debug {
		logging.Debug("exporting history",
			"path", path,
			"chunks", len(chunks),
			"oldest_ns", oldest,
			"newest_ns", newest)
	}

	return export.WriteWAV(path, format, chunks)
}
