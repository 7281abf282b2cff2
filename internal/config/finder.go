package config

import (
	"os"
	"path/filepath"
)

// ConfigExtensions are the config file formats viper is asked to read
var ConfigExtensions = []string{"yml", "yaml", "json", "toml"}

// FindLocalConfig finds local config file by walking up directories
func FindLocalConfig(dir string) string {
	for {
		for _, ext := range ConfigExtensions {
			path := filepath.Join(dir, ".hdf5pkg."+ext)

			if _, err := os.Stat(path); err == nil {
				return path
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}

		dir = parent
	}

	return ""
}

// GlobalConfigDir returns the per-user config directory.
// HDF5PKG_HOME takes precedence over the OS default.
func GlobalConfigDir() string {
	if home := os.Getenv("HDF5PKG_HOME"); home != "" {
		return home
	}

	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}

	return filepath.Join(dir, "hdf5pkg")
}
