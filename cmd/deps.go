package cmd

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/biovault/hdf5pkg/internal/deps"
	"github.com/biovault/hdf5pkg/internal/recipe"
)

// DepsScratchDir holds the conanfile and conan output inside the work dir
const DepsScratchDir = "_deps"

var depsCmd = &cobra.Command{
	Use:   "deps <build_profile> <host_profile>",
	Short: "Resolve the dependencies and write the dependency tables",
	Long: `Install zlib (and szip or openmpi when enabled) with conan for Release and
Debug, then write libpath_dict.json and libpath_debug_dict.json to the recipe
directory.`,
	Args: cobra.ExactArgs(2),
	RunE: runDeps,
}

func runDeps(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	if err := e.cfg.Options.Validate(); err != nil {
		return err
	}

	reqs := recipe.Requirements(e.cfg.Options)
	for _, req := range reqs {
		e.printer.Debugf("Requires %s", req.Reference())
	}

	resolver := deps.NewResolver(e.cfg.ConanPath, e.exec, e.printer)

	release, debug, err := resolver.Resolve(cmd.Context(), filepath.Join(e.cfg.WorkDir, DepsScratchDir), reqs, e.cfg.Settings, args[0], args[1])
	if err != nil {
		return err
	}

	if err := deps.SaveTables(e.cfg.RecipeDir, release, debug); err != nil {
		return err
	}

	e.printer.Infof("Wrote %s and %s to %s", deps.ReleaseFile, deps.DebugFile, e.cfg.RecipeDir)

	return nil
}
