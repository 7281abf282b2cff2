package config

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/biovault/hdf5pkg/internal/codes"
	"github.com/biovault/hdf5pkg/internal/recipe"
	"github.com/biovault/hdf5pkg/internal/utils"
)

// Default configuration values
const (
	DefaultCMakePath       = "cmake"
	DefaultConanPath       = "conan"
	DefaultWorkDir         = "."
	DefaultJobs            = 0
	DefaultDownloadRetries = 0
	DefaultVerbose         = false
	DefaultQuiet           = false
	DefaultNoCache         = false
)

// Holds the configuration options for hdf5pkg
type Config struct {
	// Upstream HDF5 release
	Version     string
	PatchSuffix string

	// Directory holding the source, build trees and staging dir
	WorkDir string

	// Directory holding libpath_dict.json and libpath_debug_dict.json
	RecipeDir string

	// Final package directory, defaults to <WorkDir>/package
	OutputDir string

	// External tools
	CMakePath string
	ConanPath string

	// CMake generator override, empty selects the platform default
	Generator string

	// Parallel compile jobs passed to cmake --build, 0 leaves it to the generator
	Jobs int

	DownloadRetries int

	// Download cache location, defaults to <WorkDir>/.hdf5pkg-cache
	CacheDir string
	NoCache  bool

	Options  recipe.Options
	Settings recipe.Settings

	Verbose bool
	Quiet   bool
}

func Load() (*Config, error) {
	cfg := &Config{
		Version:         viper.GetString("version"),
		PatchSuffix:     viper.GetString("patch_suffix"),
		WorkDir:         viper.GetString("work_dir"),
		RecipeDir:       viper.GetString("recipe_dir"),
		OutputDir:       viper.GetString("output"),
		CMakePath:       viper.GetString("cmake_path"),
		ConanPath:       viper.GetString("conan_path"),
		Generator:       viper.GetString("generator"),
		Jobs:            viper.GetInt("jobs"),
		DownloadRetries: viper.GetInt("download.retries"),
		CacheDir:        viper.GetString("cache_dir"),
		NoCache:         viper.GetBool("no_cache"),
		Verbose:         viper.GetBool("verbose"),
		Quiet:           viper.GetBool("quiet"),
		Options:         recipe.DefaultOptions(),
		Settings:        recipe.DetectSettings(),
	}

	// Apply defaults if not set
	if cfg.Version == "" {
		cfg.Version = recipe.DefaultVersion
	}

	if cfg.WorkDir == "" {
		cfg.WorkDir = DefaultWorkDir
	}

	if cfg.CMakePath == "" {
		cfg.CMakePath = DefaultCMakePath
	}

	if cfg.ConanPath == "" {
		cfg.ConanPath = DefaultConanPath
	}

	// Config file maps first, then repeated command line pairs
	if err := cfg.Options.Apply(viper.GetStringMapString("options")); err != nil {
		return nil, err
	}

	optionFlags, err := utils.ParseKeyValues(viper.GetStringSlice("option"))
	if err != nil {
		return nil, codes.NewConfigError("option: %v", err)
	}

	if err := cfg.Options.Apply(optionFlags); err != nil {
		return nil, err
	}

	if err := cfg.Settings.Apply(viper.GetStringMapString("settings")); err != nil {
		return nil, err
	}

	settingFlags, err := utils.ParseKeyValues(viper.GetStringSlice("setting"))
	if err != nil {
		return nil, codes.NewConfigError("setting: %v", err)
	}

	if err := cfg.Settings.Apply(settingFlags); err != nil {
		return nil, err
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if _, err := recipe.New(c.Version, c.PatchSuffix); err != nil {
		return err
	}

	abs, err := filepath.Abs(c.WorkDir)
	if err != nil {
		return fmt.Errorf("invalid work directory: %v", err)
	}

	c.WorkDir = abs

	if c.RecipeDir == "" {
		c.RecipeDir = c.WorkDir
	}

	if c.RecipeDir, err = filepath.Abs(c.RecipeDir); err != nil {
		return fmt.Errorf("invalid recipe directory: %v", err)
	}

	if c.OutputDir == "" {
		c.OutputDir = filepath.Join(c.WorkDir, "package")
	}

	if c.OutputDir, err = filepath.Abs(c.OutputDir); err != nil {
		return fmt.Errorf("invalid output directory: %v", err)
	}

	if c.CacheDir == "" {
		c.CacheDir = filepath.Join(c.WorkDir, ".hdf5pkg-cache")
	}

	if c.CacheDir, err = filepath.Abs(c.CacheDir); err != nil {
		return fmt.Errorf("invalid cache directory: %v", err)
	}

	if c.Jobs < 0 {
		return codes.NewConfigError("invalid jobs: %d", c.Jobs)
	}

	if c.DownloadRetries < 0 {
		return codes.NewConfigError("invalid download retries: %d", c.DownloadRetries)
	}

	if err := c.Settings.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}

	return c.Options.Validate()
}

// Recipe returns the recipe for the configured version
func (c *Config) Recipe() (*recipe.Recipe, error) {
	return recipe.New(c.Version, c.PatchSuffix)
}
