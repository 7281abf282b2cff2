package cmd

import (
	"github.com/spf13/cobra"

	"github.com/biovault/hdf5pkg/internal/cmake"
	"github.com/biovault/hdf5pkg/internal/pipeline"
	"github.com/biovault/hdf5pkg/internal/smoke"
)

var sourceCmd = &cobra.Command{
	Use:   "source",
	Short: "Download and unpack the HDF5 source distribution",
	Args:  cobra.NoArgs,
	RunE:  stepCommand(func(p *pipeline.Pipeline) []pipeline.Step { return []pipeline.Step{p.Source} }),
}

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Configure the Debug and Release build trees",
	Args:  cobra.NoArgs,
	RunE:  stepCommand(func(p *pipeline.Pipeline) []pipeline.Step { return []pipeline.Step{p.Configure} }),
}

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Compile the configured build trees",
	Args:  cobra.NoArgs,
	RunE:  stepCommand(func(p *pipeline.Pipeline) []pipeline.Step { return []pipeline.Step{p.Build} }),
}

var packageCmd = &cobra.Command{
	Use:   "package",
	Short: "Install both variants, merge them and emit the package",
	Args:  cobra.NoArgs,
	RunE:  stepCommand(func(p *pipeline.Pipeline) []pipeline.Step { return []pipeline.Step{p.Package} }),
}

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Run the whole pipeline from source to package",
	Long: `Run source, configure, build and package in order. The dependency tables
written by "hdf5pkg deps" must exist in the recipe directory.`,
	Args: cobra.NoArgs,
	RunE: runCreate,
}

func init() {
	createCmd.Flags().Bool("test", false, "Build and run the example against the package afterwards")
}

// stepCommand runs the steps chosen by pick through one pipeline
func stepCommand(pick func(p *pipeline.Pipeline) []pipeline.Step) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		p, err := pipeline.New(e.cfg, e.exec, e.printer, e.cache)
		if err != nil {
			return err
		}

		return p.Execute(cmd.Context(), pick(p)...)
	}
}

func runCreate(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	p, err := pipeline.New(e.cfg, e.exec, e.printer, e.cache)
	if err != nil {
		return err
	}

	if err := p.Run(cmd.Context()); err != nil {
		return err
	}

	e.printer.Infof("Package %s written to %s", p.PackageID(), e.cfg.OutputDir)

	if test, _ := cmd.Flags().GetBool("test"); !test {
		return nil
	}

	tester := smoke.NewTester(e.exec, e.printer, cmake.NewCommandBuilder(e.cfg.CMakePath, e.cfg.Jobs))

	return tester.Run(cmd.Context(), e.cfg.OutputDir, e.cfg.WorkDir, e.cfg.Settings, e.cfg.Generator)
}
