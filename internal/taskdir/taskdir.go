// Package taskdir provides constants and utilities for taskman's file layout.
package taskdir

import (
	"os"
	"path/filepath"
)

const (
	// Dir is the name of the per-user taskman directory.
	Dir = ".taskman"

	// DefaultTaskFile is the default task file name, relative to the
	// project root.
	DefaultTaskFile = "tasks.json"

	// DefaultConfigFile is the config file name inside Dir and inside the
	// OS config directory.
	DefaultConfigFile = "taskman.toml"

	// appName names the taskman folder inside the OS config directory.
	appName = "taskman"
)

// ProjectConfigFiles lists the project-level config file names, in lookup
// order.
var ProjectConfigFiles = []string{"taskman.toml", ".taskman.toml"}

// DirPath returns the full path to the .taskman directory within a base
// directory (usually the home directory).
func DirPath(baseDir string) string {
	if baseDir == "." || baseDir == "" {
		return Dir
	}
	return filepath.Join(baseDir, Dir)
}

// ConfigPath returns the full path to the config file in the .taskman
// directory within a base directory.
func ConfigPath(baseDir string) string {
	return filepath.Join(DirPath(baseDir), DefaultConfigFile)
}

// UserConfigPath returns ~/.taskman/taskman.toml, or "" if the home
// directory is unknown.
func UserConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return ConfigPath(home)
}

// OSConfigPath returns the taskman config file inside the OS-specific
// user config directory, or "" if it cannot be determined.
func OSConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return ""
	}
	return filepath.Join(dir, appName, DefaultConfigFile)
}
