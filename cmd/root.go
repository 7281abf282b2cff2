package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/biovault/hdf5pkg/internal/cache"
	"github.com/biovault/hdf5pkg/internal/codes"
	"github.com/biovault/hdf5pkg/internal/config"
	"github.com/biovault/hdf5pkg/internal/logging"
	"github.com/biovault/hdf5pkg/internal/runner"
	"github.com/biovault/hdf5pkg/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "hdf5pkg",
	Short: "HDF5 packaging recipe",
	Long: `Build HDF5 from the upstream CMake source distribution in Debug and
Release, merge both into one install tree and emit it as a package.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits with the code matching the error
func Execute() {
	os.Exit(run(context.Background(), os.Args[1:]))
}

func run(ctx context.Context, args []string) int {
	rootCmd.SetArgs(args)

	err := rootCmd.ExecuteContext(ctx)

	code := codes.ExitCode(err)
	if !codes.IsSuccess(code) {
		printer := logging.NewWithWriters(rootCmd.OutOrStdout(), rootCmd.ErrOrStderr(), false, false)
		printer.Errorf("%s (exit code %d): %v", codes.GetErrorMessage(code), code, err)
	}

	return code
}

func init() {
	rootCmd.Version = fmt.Sprintf("%s (%s) %s", version.Version, version.Commit, version.BuildTime)

	flags := rootCmd.PersistentFlags()
	flags.StringP("work-dir", "w", "", "Directory for the source, build trees and staging")
	flags.String("recipe-dir", "", "Directory holding the dependency tables")
	flags.String("output", "", "Package output directory (default <work-dir>/package)")
	flags.StringSliceP("option", "o", []string{}, "Recipe option as key=value (repeatable)")
	flags.StringSliceP("setting", "s", []string{}, "Build setting as key=value (repeatable)")
	flags.String("generator", "", "CMake generator (default depends on the platform)")
	flags.Int("jobs", 0, "Parallel build jobs")
	flags.String("hdf5-version", "", "HDF5 version to package")
	flags.String("config", "", "Explicit config file")
	flags.BoolP("verbose", "v", false, "Verbose output")
	flags.BoolP("quiet", "q", false, "Only print warnings and errors")
	flags.Bool("no-cache", false, "Disable the download cache")

	rootCmd.AddCommand(sourceCmd, configureCmd, buildCmd, packageCmd, createCmd)
	rootCmd.AddCommand(depsCmd, testPackageCmd, packageIDCmd, statusCmd, exportCmd)

	viper.SetDefault("verbose", false)
	viper.SetDefault("quiet", false)
}

// env is what every command needs after loading the configuration
type env struct {
	cfg     *config.Config
	printer *logging.Printer
	exec    runner.Executor
	cache   *cache.Cache
}

func (e *env) Close() {
	if e.cache != nil {
		_ = e.cache.Close()
	}
}

// setup loads the configuration for cmd and opens the cache
func setup(cmd *cobra.Command) (*env, error) {
	cfg, err := config.NewLoader().LoadForCommand(cmd)
	if err != nil {
		return nil, err
	}

	printer := logging.NewWithWriters(cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg.Verbose, cfg.Quiet)

	c, err := cache.New(cfg.CacheDir)
	if err != nil {
		return nil, err
	}

	return &env{
		cfg:     cfg,
		printer: printer,
		exec:    newExecutor(printer),
		cache:   c,
	}, nil
}

// newExecutor is replaced in tests
var newExecutor = func(p *logging.Printer) runner.Executor {
	return runner.New(p.Writer(), p.Err)
}
