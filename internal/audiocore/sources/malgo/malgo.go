// Package malgo captures audio from a soundcard via miniaudio and feeds it
// into a stream context.
package malgo

import (
	"context"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gen2brain/malgo"

	"github.com/oliviamiller/audiostream/internal/audiocore"
	"github.com/oliviamiller/audiostream/internal/errors"
	"github.com/oliviamiller/audiostream/internal/logging"
)

// Config selects and shapes the capture device.
type Config struct {
	// Device matches a capture device by name or ID substring; empty or
	// "default" selects the system default.
	Device       string
	SampleRate   uint32
	Channels     uint32
	BufferFrames uint32
}

// Source drives a malgo capture device and forwards its buffers to a
// StreamContext. The data callback runs on miniaudio's capture thread.
type Source struct {
	id     string
	config Config
	stream *audiocore.StreamContext

	ctx    *malgo.AllocatedContext
	device *malgo.Device

	// framesDelivered is the device clock: cumulative frames since Start,
	// divided by the sample rate to get the buffer time in seconds. Only
	// the capture thread writes it.
	framesDelivered uint64

	mu      sync.Mutex
	running atomic.Bool
	cancel  context.CancelFunc
	logger  *slog.Logger
}

// NewSource creates a capture source bound to a stream context.
func NewSource(id string, config Config, stream *audiocore.StreamContext) *Source {
	if config.SampleRate == 0 {
		config.SampleRate = 48000
	}
	if config.Channels == 0 {
		config.Channels = 1
	}
	logger := logging.ForService("capture")
	if logger == nil {
		logger = slog.Default()
	}
	return &Source{
		id:     id,
		config: config,
		stream: stream,
		logger: logger,
	}
}

// ID returns the source identifier.
func (s *Source) ID() string {
	return s.id
}

// IsActive reports whether the device is capturing.
func (s *Source) IsActive() bool {
	return s.running.Load()
}

// Start opens the device and begins capture. Buffers flow into the stream
// context until Stop is called or the context is cancelled.
func (s *Source) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running.Load() {
		return errors.New(nil).
			Component("capture").
			Category(errors.CategoryState).
			Context("source_id", s.id).
			Context("error", "source already running").
			Build()
	}

	backend := platformBackend()
	malgoCtx, err := malgo.InitContext([]malgo.Backend{backend}, malgo.ContextConfig{}, nil)
	if err != nil {
		return errors.New(err).
			Component("capture").
			Category(errors.CategoryAudio).
			Context("source_id", s.id).
			Context("backend", runtime.GOOS).
			Context("operation", "init_context").
			Build()
	}
	s.ctx = malgoCtx

	deviceInfo, err := selectDevice(malgoCtx, s.config.Device)
	if err != nil {
		_ = malgoCtx.Uninit()
		s.ctx = nil
		return err
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.Capture.Format = malgo.FormatS16
	deviceConfig.Capture.Channels = s.config.Channels
	deviceConfig.Capture.DeviceID = deviceInfo.ID.Pointer()
	deviceConfig.SampleRate = s.config.SampleRate
	deviceConfig.PeriodSizeInFrames = s.config.BufferFrames
	deviceConfig.Alsa.NoMMap = 1

	captureCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	callbacks := malgo.DeviceCallbacks{
		Data: s.onRecvFrames,
		Stop: s.onDeviceStop,
	}

	device, err := malgo.InitDevice(malgoCtx.Context, deviceConfig, callbacks)
	if err != nil {
		cancel()
		_ = malgoCtx.Uninit()
		s.ctx = nil
		return errors.New(err).
			Component("capture").
			Category(errors.CategoryAudio).
			Context("source_id", s.id).
			Context("device", s.config.Device).
			Context("operation", "init_device").
			Build()
	}
	s.device = device

	if err := device.Start(); err != nil {
		device.Uninit()
		cancel()
		_ = malgoCtx.Uninit()
		s.ctx = nil
		s.device = nil
		return errors.New(err).
			Component("capture").
			Category(errors.CategoryAudio).
			Context("source_id", s.id).
			Context("operation", "start_device").
			Build()
	}

	s.framesDelivered = 0
	s.running.Store(true)

	s.logger.Info("capture started",
		"source_id", s.id,
		"device", deviceInfo.Name(),
		"sample_rate", s.config.SampleRate,
		"channels", s.config.Channels)

	go s.monitor(captureCtx)
	return nil
}

// Stop halts capture and releases the device.
func (s *Source) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running.Load() {
		return errors.New(nil).
			Component("capture").
			Category(errors.CategoryState).
			Context("source_id", s.id).
			Context("error", "source not running").
			Build()
	}
	s.running.Store(false)

	if s.cancel != nil {
		s.cancel()
	}
	if s.device != nil {
		_ = s.device.Stop()
		s.device.Uninit()
		s.device = nil
	}
	if s.ctx != nil {
		_ = s.ctx.Uninit()
		s.ctx = nil
	}

	s.logger.Info("capture stopped", "source_id", s.id)
	return nil
}

// onRecvFrames runs on the miniaudio capture thread. It derives the device
// clock from the cumulative frame count and hands the buffer to the stream.
func (s *Source) onRecvFrames(pOutputSample, pInputSamples []byte, framecount uint32) {
	deviceTimeSec := float64(s.framesDelivered) / float64(s.config.SampleRate)
	s.framesDelivered += uint64(framecount)

	s.stream.OnFrames(pInputSamples, int(framecount), deviceTimeSec)
}

// onDeviceStop fires when the device stops outside of Stop, for example on
// an unplugged USB interface. One restart attempt is made after a grace
// period.
func (s *Source) onDeviceStop() {
	if !s.running.Load() {
		return
	}
	s.logger.Warn("capture device stopped unexpectedly", "source_id", s.id)

	go func() {
		time.Sleep(time.Second)
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.running.Load() && s.device != nil {
			if err := s.device.Start(); err != nil {
				s.logger.Error("device restart failed",
					"source_id", s.id,
					"error", err)
			} else {
				s.logger.Info("capture device restarted", "source_id", s.id)
			}
		}
	}()
}

func (s *Source) monitor(ctx context.Context) {
	<-ctx.Done()
	if s.running.Load() {
		_ = s.Stop()
	}
}

func platformBackend() malgo.Backend {
	switch runtime.GOOS {
	case "linux":
		return malgo.BackendAlsa
	case "windows":
		return malgo.BackendWasapi
	case "darwin":
		return malgo.BackendCoreaudio
	default:
		return malgo.BackendNull
	}
}
