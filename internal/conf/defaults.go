// conf/defaults.go default values for settings
package conf

import (
	"github.com/spf13/viper"
)

// Sets default values for the configuration.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("main.name", "audiostream")
	viper.SetDefault("main.log.enabled", true)
	viper.SetDefault("main.log.path", "audiostream.log")
	viper.SetDefault("main.log.maxsize", 100)
	viper.SetDefault("main.log.maxbackups", 3)
	viper.SetDefault("main.log.maxage", 28)

	viper.SetDefault("audio.source", "default")
	viper.SetDefault("audio.samplerate", 48000)
	viper.SetDefault("audio.channels", 1)
	viper.SetDefault("audio.chunkframes", 4800)
	viper.SetDefault("audio.queuesize", 100)
	viper.SetDefault("audio.historysize", 100)

	viper.SetDefault("audio.encoder.enabled", true)
	viper.SetDefault("audio.encoder.bitrate", 192000)
	viper.SetDefault("audio.encoder.feedsize", 1<<20)
	viper.SetDefault("audio.encoder.outputpath", "capture.opus")

	viper.SetDefault("audio.export.enabled", false)
	viper.SetDefault("audio.export.path", "clips/")
	viper.SetDefault("audio.export.debug", false)

	viper.SetDefault("metrics.enabled", false)
	viper.SetDefault("metrics.listen", "0.0.0.0:8090")
}
