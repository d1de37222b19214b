package main

import (
	"os"

	"github.com/oliviamiller/audiostream/cmd"
	"github.com/oliviamiller/audiostream/internal/conf"
	"github.com/oliviamiller/audiostream/internal/logging"
)

func main() {
	logging.Init()

	settings, err := conf.Load()
	if err != nil {
		logging.Fatal("error loading configuration", "error", err)
	}

	rootCmd := cmd.RootCommand(settings)
	if err := rootCmd.Execute(); err != nil {
		logging.Error("command failed", "error", err)
		os.Exit(1)
	}
}
