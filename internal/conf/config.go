// config.go: settings struct and functions to load the audiostream configuration.
package conf

import (
	"errors"
	"fmt"
	"sync"

	"github.com/spf13/viper"
)

// LogConfig holds file logging settings.
type LogConfig struct {
	Enabled    bool   // true to enable file logging
	Path       string // path to log file
	MaxSize    int    // max log file size in MB before rotation
	MaxBackups int    // number of rotated files to keep
	MaxAge     int    // days to retain rotated files
}

// EncoderSettings holds streaming encoder settings.
type EncoderSettings struct {
	Enabled    bool   // true to produce a compressed stream while recording
	Bitrate    int    // encoder bitrate in bits per second
	FeedSize   int    // capacity in bytes of the PCM staging ring feeding the encoder
	OutputPath string // path of the compressed stream output file
}

// ExportSettings holds audio clip export settings.
type ExportSettings struct {
	Enabled bool   // export captured audio as WAV clips
	Path    string // directory for exported clips
	Debug   bool   // true to enable export debug logging
}

// AudioSettings contains the capture stream configuration.
type AudioSettings struct {
	Source      string // capture device name or ID, "default" for system default
	SampleRate  int    // sample rate in Hz
	Channels    int    // channel count
	ChunkFrames int    // frames per emitted chunk
	QueueSize   int    // chunk queue capacity
	HistorySize int    // history ledger capacity in chunks
	Encoder     EncoderSettings
	Export      ExportSettings
}

// MetricsSettings controls the optional Prometheus endpoint.
type MetricsSettings struct {
	Enabled bool
	Listen  string // listen address, e.g. "0.0.0.0:8090"
}

// MainSettings contains application level settings.
type MainSettings struct {
	Name string // instance name
	Log  LogConfig
}

// Settings is the root configuration for audiostream.
type Settings struct {
	Debug   bool // true to enable debug logging
	Main    MainSettings
	Audio   AudioSettings
	Metrics MetricsSettings
}

var (
	settingsInstance *Settings
	settingsMutex    sync.RWMutex
)

// Load reads the configuration from file and environment, applying defaults
// for anything unset, and stores it as the global settings instance.
func Load() (*Settings, error) {
	settings := &Settings{}

	if err := initViper(); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	settingsMutex.Lock()
	settingsInstance = settings
	settingsMutex.Unlock()

	return settings, nil
}

// Setting returns the current global settings instance, or nil before Load.
func Setting() *Settings {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}

// initViper initializes viper with default values and reads the configuration file.
func initViper() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}
	for _, path := range configPaths {
		viper.AddConfigPath(path)
	}

	setDefaultConfig()

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// No config file found, run on defaults.
	}

	return nil
}
