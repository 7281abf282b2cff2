package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Loader handles configuration loading from various sources
type Loader struct{}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	return &Loader{}
}

// LoadForCommand loads configuration for any hdf5pkg command.
// Precedence: flags > explicit --config file > local config > global config > defaults.
func (l *Loader) LoadForCommand(cmd *cobra.Command) (*Config, error) {
	l.setupViperDefaults()
	l.loadGlobalConfig()

	startDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	if f := cmd.Flags().Lookup("recipe-dir"); f != nil && f.Value.String() != "" {
		startDir = f.Value.String()
	}

	l.loadLocalConfig(startDir)

	if f := cmd.Flags().Lookup("config"); f != nil && f.Value.String() != "" {
		if err := l.loadExplicitConfig(f.Value.String()); err != nil {
			return nil, err
		}
	}

	l.bindCommandFlags(cmd)

	return Load()
}

// setupViperDefaults sets up default values for viper
func (l *Loader) setupViperDefaults() {
	viper.SetDefault("cmake_path", DefaultCMakePath)
	viper.SetDefault("conan_path", DefaultConanPath)
	viper.SetDefault("work_dir", DefaultWorkDir)
	viper.SetDefault("jobs", DefaultJobs)
	viper.SetDefault("download.retries", DefaultDownloadRetries)
	viper.SetDefault("verbose", DefaultVerbose)
	viper.SetDefault("quiet", DefaultQuiet)
	viper.SetDefault("no_cache", DefaultNoCache)
}

// loadGlobalConfig loads global configuration from the user config directory
func (l *Loader) loadGlobalConfig() {
	globalDir := GlobalConfigDir()
	if globalDir == "" {
		return
	}

	for _, ext := range ConfigExtensions {
		globalPath := filepath.Join(globalDir, "config."+ext)

		if _, err := os.Stat(globalPath); err == nil {
			viper.SetConfigFile(globalPath)

			if err := viper.MergeInConfig(); err == nil {
				break
			}
		}
	}
}

// loadLocalConfig merges the nearest .hdf5pkg.* file above dir
func (l *Loader) loadLocalConfig(dir string) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return // silently ignore, config.Load() will handle validation
	}

	localPath := FindLocalConfig(absDir)
	if localPath != "" {
		viper.SetConfigFile(localPath)
		_ = viper.MergeInConfig()
	}
}

// loadExplicitConfig merges a config file named on the command line. Unlike
// the discovered files, a broken explicit file is an error.
func (l *Loader) loadExplicitConfig(path string) error {
	viper.SetConfigFile(path)

	if err := viper.MergeInConfig(); err != nil {
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}

	return nil
}

// flagKeys maps command flags to viper keys
var flagKeys = map[string]string{
	"work-dir":     "work_dir",
	"recipe-dir":   "recipe_dir",
	"output":       "output",
	"option":       "option",
	"setting":      "setting",
	"verbose":      "verbose",
	"quiet":        "quiet",
	"no-cache":     "no_cache",
	"generator":    "generator",
	"jobs":         "jobs",
	"hdf5-version": "version",
}

// bindCommandFlags binds command flags to viper
func (l *Loader) bindCommandFlags(cmd *cobra.Command) {
	for flag, key := range flagKeys {
		if f := cmd.Flags().Lookup(flag); f != nil {
			_ = viper.BindPFlag(key, f)
		}
	}
}
