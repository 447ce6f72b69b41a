package config

import (
	"os"

	"github.com/nibzard/taskman/internal/taskdir"
)

// findProjectConfigFile looks for a config file in the current directory.
func findProjectConfigFile() string {
	for _, name := range taskdir.ProjectConfigFiles {
		if fileExists(name) {
			return name
		}
	}
	return ""
}

// findUserConfigFile looks for a user-level config file.
// Checks ~/.taskman/taskman.toml first, then falls back to the OS-specific
// config directory.
func findUserConfigFile() string {
	for _, path := range []string{taskdir.UserConfigPath(), taskdir.OSConfigPath()} {
		if path != "" && fileExists(path) {
			return path
		}
	}
	return ""
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// GetConfigFile returns the config file with the highest priority that
// was read (project before user), or "" if none was.
func (cws *ConfigWithSources) GetConfigFile() string {
	if len(cws.Files) == 0 {
		return ""
	}
	return cws.Files[len(cws.Files)-1]
}
