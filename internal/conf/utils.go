package conf

import (
	"fmt"
	"os"
	"path/filepath"
)

// GetDefaultConfigPaths returns the directories searched for a config file,
// in priority order: working directory, user config dir, system dir.
func GetDefaultConfigPaths() ([]string, error) {
	paths := []string{"."}

	configDir, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("error resolving user config dir: %w", err)
	}
	paths = append(paths, filepath.Join(configDir, "audiostream"))

	paths = append(paths, "/etc/audiostream")

	return paths, nil
}
