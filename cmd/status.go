package cmd

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/biovault/hdf5pkg/internal/deps"
	"github.com/biovault/hdf5pkg/internal/pipeline"
)

// ExportDir is the default export destination inside the work dir
const ExportDir = "export"

var packageIDCmd = &cobra.Command{
	Use:   "package-id",
	Short: "Print the binary package identity for the current options and settings",
	Args:  cobra.NoArgs,
	RunE:  runPackageID,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the most recent pipeline run and the cache usage",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Copy the dependency tables into an export directory",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

func init() {
	statusCmd.Flags().Bool("clear-cache", false, "Remove every cached download first")
	exportCmd.Flags().String("dest", "", "Export directory (default <work-dir>/export)")
}

func runPackageID(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	p, err := pipeline.New(e.cfg, e.exec, e.printer, e.cache)
	if err != nil {
		return err
	}

	if err := p.Validate(); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), p.PackageID())

	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	out := cmd.OutOrStdout()

	if clear, _ := cmd.Flags().GetBool("clear-cache"); clear {
		if err := e.cache.Clear(); err != nil {
			return err
		}
	}

	run, err := e.cache.LatestRun()
	if err != nil {
		return err
	}

	if run == nil {
		fmt.Fprintln(out, "No runs recorded")
	} else {
		fmt.Fprintf(out, "Run %s\nPackage: %s\n", run.ID, run.PackageID)
		for _, s := range run.States {
			fmt.Fprintf(out, "  %-20s %s\n", s.State, s.At.Local().Format(time.DateTime))
		}

		if run.Error != "" {
			fmt.Fprintf(out, "Error: %s\n", run.Error)
		}
	}

	count, size, err := e.cache.Stats()
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Cache: %d archives, %d bytes in %s\n", count, size, e.cache.Root())

	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	dest, _ := cmd.Flags().GetString("dest")
	if dest == "" {
		dest = filepath.Join(e.cfg.WorkDir, ExportDir)
	}

	if err := deps.CopyTables(e.cfg.RecipeDir, dest); err != nil {
		return err
	}

	e.printer.Infof("Exported %s and %s to %s", deps.ReleaseFile, deps.DebugFile, dest)

	return nil
}
