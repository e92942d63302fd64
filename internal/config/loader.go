package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default settings file name.
const DefaultConfigFile = ".phyloreport"

// XDGConfigFile is the settings file name inside XDGConfigDir.
const XDGConfigFile = "config.yaml"

// ErrConfigNotFound is returned when the settings file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// LoadConfigFile loads the settings file at path.
// If the file does not exist, it returns ErrConfigNotFound.
// Callers should handle this error appropriately based on whether
// the path was explicitly specified by the user.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}
	if err := cf.Validate(); err != nil {
		return nil, err
	}
	return &cf, nil
}

// FindConfigFile searches for the settings file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .phyloreport in the current directory
// 3. Look for config.yaml in the XDG config directory
// 4. Look for .phyloreport in the user's home directory
//
// Returns the path to the settings file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		return firstExisting([]string{configPath})
	}
	return firstExisting(searchPaths())
}

// searchPaths returns the implicit settings file locations in priority order.
func searchPaths() []string {
	var paths []string
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, DefaultConfigFile))
	}
	paths = append(paths, filepath.Join(XDGConfigDir(), XDGConfigFile))
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, DefaultConfigFile))
	}
	return paths
}

// firstExisting returns the first path that exists, or empty string.
func firstExisting(paths []string) string {
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
