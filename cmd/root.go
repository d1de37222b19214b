package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/oliviamiller/audiostream/cmd/devices"
	"github.com/oliviamiller/audiostream/cmd/record"
	"github.com/oliviamiller/audiostream/internal/conf"
)

// RootCommand creates and returns the root command with all subcommands
// attached.
func RootCommand(settings *conf.Settings) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "audiostream",
		Short: "Timestamped audio capture pipeline",
	}

	if err := setupFlags(rootCmd, settings); err != nil {
		cobra.CheckErr(err)
	}

	rootCmd.AddCommand(
		record.Command(settings),
		devices.Command(),
	)

	return rootCmd
}

// setupFlags defines the global flags and binds them to viper so command
// line arguments override the configuration file.
func setupFlags(rootCmd *cobra.Command, settings *conf.Settings) error {
	rootCmd.PersistentFlags().BoolVarP(&settings.Debug, "debug", "d", viper.GetBool("debug"), "Enable debug output")
	rootCmd.PersistentFlags().StringVar(&settings.Audio.Source, "source", viper.GetString("audio.source"), "Capture device name or ID, \"default\" for the system default")
	rootCmd.PersistentFlags().IntVar(&settings.Audio.SampleRate, "samplerate", viper.GetInt("audio.samplerate"), "Capture sample rate in Hz")
	rootCmd.PersistentFlags().IntVar(&settings.Audio.Channels, "channels", viper.GetInt("audio.channels"), "Capture channel count")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}

	return nil
}
