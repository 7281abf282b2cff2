package cmd

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/biovault/hdf5pkg/internal/cmake"
	"github.com/biovault/hdf5pkg/internal/smoke"
)

var testPackageCmd = &cobra.Command{
	Use:   "test-package [package-dir]",
	Short: "Build the example against a package and run it",
	Long: `Configure and build a small CMake consumer against the package, write a
test HDF5 file and run the example on it. The package defaults to the
configured output directory.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTestPackage,
}

func runTestPackage(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	packageDir := e.cfg.OutputDir
	if len(args) == 1 {
		if packageDir, err = filepath.Abs(args[0]); err != nil {
			return err
		}
	}

	tester := smoke.NewTester(e.exec, e.printer, cmake.NewCommandBuilder(e.cfg.CMakePath, e.cfg.Jobs))

	return tester.Run(cmd.Context(), packageDir, e.cfg.WorkDir, e.cfg.Settings, e.cfg.Generator)
}
