// Package pipeline drives the packaging run: source, configure, build,
// install and merge, then emit. Steps run strictly one after another and
// every state reached is written to the run journal.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/go-git/go-billy/v5"

	"github.com/biovault/hdf5pkg/internal/cache"
	"github.com/biovault/hdf5pkg/internal/cmake"
	"github.com/biovault/hdf5pkg/internal/codes"
	"github.com/biovault/hdf5pkg/internal/config"
	"github.com/biovault/hdf5pkg/internal/deps"
	"github.com/biovault/hdf5pkg/internal/logging"
	"github.com/biovault/hdf5pkg/internal/recipe"
	"github.com/biovault/hdf5pkg/internal/runner"
	"github.com/biovault/hdf5pkg/internal/source"
	"github.com/biovault/hdf5pkg/internal/stage"
	"github.com/biovault/hdf5pkg/internal/toolchain"
)

// StagingDir is the merged install tree inside the work dir
const StagingDir = "staging"

// Step is one unit of the pipeline
type Step func(ctx context.Context) error

// Pipeline packages one recipe configuration
type Pipeline struct {
	cfg     *config.Config
	recipe  *recipe.Recipe
	exec    runner.Executor
	printer *logging.Printer
	cache   *cache.Cache
	fetcher *source.Fetcher
	builder *cmake.CommandBuilder

	run *cache.Run
}

// New creates a pipeline. c holds the download cache and the run journal and
// may be nil.
func New(cfg *config.Config, exec runner.Executor, printer *logging.Printer, c *cache.Cache) (*Pipeline, error) {
	r, err := cfg.Recipe()
	if err != nil {
		return nil, err
	}

	if printer == nil {
		printer = logging.Discard()
	}

	downloads := c
	if cfg.NoCache {
		downloads = nil
	}

	return &Pipeline{
		cfg:     cfg,
		recipe:  r,
		exec:    exec,
		printer: printer,
		cache:   c,
		fetcher: source.NewFetcher(cfg.DownloadRetries, downloads, printer),
		builder: cmake.NewCommandBuilder(cfg.CMakePath, cfg.Jobs),
	}, nil
}

// PackageID identifies the binary package this configuration produces
func (p *Pipeline) PackageID() string {
	return recipe.PackageID(p.recipe, p.cfg.Options, p.cfg.Settings)
}

// Run executes the full pipeline
func (p *Pipeline) Run(ctx context.Context) error {
	return p.Execute(ctx, p.RequireTables, p.Source, p.Configure, p.Build, p.Package)
}

// Execute validates the configuration, then runs steps in order. The first
// failure is recorded in the journal and returned. Nothing is rolled back.
func (p *Pipeline) Execute(ctx context.Context, steps ...Step) error {
	if err := p.Validate(); err != nil {
		return err
	}

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return p.fail(err)
		}

		if err := step(ctx); err != nil {
			return p.fail(err)
		}
	}

	return nil
}

// Validate checks options and settings. It runs before any download or
// external process.
func (p *Pipeline) Validate() error {
	if err := p.cfg.Options.Validate(); err != nil {
		return err
	}

	return p.cfg.Settings.Validate()
}

// RequireTables fails unless both dependency tables exist in the recipe dir
func (p *Pipeline) RequireTables(_ context.Context) error {
	return deps.RequireTables(p.cfg.RecipeDir)
}

// Source downloads and unpacks the source distribution
func (p *Pipeline) Source(ctx context.Context) error {
	p.printer.Stage("Fetching %s", p.recipe.SourceURL(p.platform()))

	dir, err := source.Acquire(ctx, p.fetcher, p.recipe, p.platform(), p.cfg.WorkDir)
	if err != nil {
		return err
	}

	p.printer.Infof("Source: %s", dir)
	p.reach(StateSourceFetched)

	return nil
}

// Configure generates the build trees. Multi-config generators get one tree,
// single-config generators one tree per variant.
func (p *Pipeline) Configure(ctx context.Context) error {
	sourceDir, err := source.SourceDir(p.recipe, p.cfg.WorkDir)
	if err != nil {
		return err
	}

	release, debug, err := deps.LoadTables(p.cfg.RecipeDir)
	if err != nil {
		return err
	}

	// one configure covers both variants of a multi-config tree
	variants := recipe.Variants
	if toolchain.IsMultiConfig(p.generator()) {
		variants = []string{recipe.Release}
	}

	for _, variant := range variants {
		table := release
		if variant == recipe.Debug {
			table = debug
		}

		tc, tree, err := p.toolchain(variant, table)
		if err != nil {
			return err
		}

		p.printer.Stage("Configuring %s", p.describe(tc, variant))
		p.builder.PrintBuildInfo(p.printer, tc, sourceDir, p.cfg.WorkDir)

		cacheFile, err := toolchain.WriteCacheFile(tree, tc.Variables)
		if err != nil {
			return err
		}

		cmd, err := p.builder.Configure(sourceDir, tree, cacheFile, tc, variant)
		if err != nil {
			return err
		}

		if err := p.runTool(ctx, cmd); err != nil {
			return err
		}
	}

	p.reach(StateConfigured)

	return nil
}

// Build compiles Debug then Release
func (p *Pipeline) Build(ctx context.Context) error {
	for _, variant := range recipe.Variants {
		tc, tree, err := p.toolchain(variant, nil)
		if err != nil {
			return err
		}

		p.printer.Stage("Building %s", variant)

		cmd, err := p.builder.Build(tree, variant, tc.Env)
		if err != nil {
			return err
		}

		if err := p.runTool(ctx, cmd); err != nil {
			return err
		}

		p.reach(builtState(variant))
	}

	return nil
}

// Package installs both variants into a fresh staging tree, merges the
// bundled dependencies and emits the result
func (p *Pipeline) Package(ctx context.Context) error {
	stagingDir := filepath.Join(p.cfg.WorkDir, StagingDir)

	staging, err := stage.Reset(stagingDir)
	if err != nil {
		return err
	}

	p.printer.Infof("Packaging install dir: %s", stagingDir)

	for _, variant := range recipe.Variants {
		if err := p.install(ctx, variant, stagingDir); err != nil {
			return err
		}
	}

	if p.platform() == recipe.PlatformMacos {
		fixed, err := stage.FixMacOSSDKPaths(staging)
		if err != nil {
			return fmt.Errorf("failed to fix SDK paths: %w", err)
		}

		for _, f := range fixed {
			p.printer.Debugf("Removed SDK include path from %s", f)
		}
	}

	if err := p.merge(staging); err != nil {
		return err
	}

	p.reach(StateMerged)

	output, err := stage.Dir(p.cfg.OutputDir)
	if err != nil {
		return err
	}

	p.printer.Stage("Emitting package to %s", p.cfg.OutputDir)
	if err := stage.Emit(staging, output); err != nil {
		return err
	}

	p.reach(StatePackaged)

	return nil
}

func (p *Pipeline) install(ctx context.Context, variant, stagingDir string) error {
	tree := p.tree(variant)

	p.printer.Stage("Installing %s", variant)

	cmd, err := p.builder.Install(tree, variant, stagingDir)
	if err != nil {
		return err
	}

	if err := p.runTool(ctx, cmd); err != nil {
		return err
	}

	// pdb files need to be next to the libraries
	if variant == recipe.Debug && p.cfg.Settings.IsVisualStudio() {
		treeFS, err := stage.Dir(tree)
		if err != nil {
			return err
		}

		staging, err := stage.Dir(stagingDir)
		if err != nil {
			return err
		}

		n, err := stage.CopyPDBs(treeFS, staging)
		if err != nil {
			return fmt.Errorf("failed to copy pdb files: %w", err)
		}

		p.printer.Debugf("Copied %d pdb files", n)
	}

	p.reach(installedState(variant))

	return nil
}

// merge bundles zlib when it came from a resolved dependency
func (p *Pipeline) merge(staging billy.Filesystem) error {
	if !p.cfg.Options.UsesZlibPackage() {
		return nil
	}

	release, debug, err := deps.LoadTables(p.cfg.RecipeDir)
	if err != nil {
		return err
	}

	releaseDir, ok := release.Path("zlib")
	if !ok {
		p.printer.Warnf("zlib not found in %s, package will not bundle zlib", deps.ReleaseFile)
		return nil
	}

	debugDir, ok := debug.Path("zlib")
	if !ok {
		return &codes.MissingArtifactError{
			Paths: []string{deps.DebugFile + ": zlib"},
			Hint:  deps.RequireHint,
		}
	}

	p.printer.Infof("Packaging release zlib from %s", releaseDir)
	p.printer.Infof("Packaging debug zlib binaries from %s", debugDir)

	releaseFS, err := existingDir(releaseDir)
	if err != nil {
		return err
	}

	debugFS, err := existingDir(debugDir)
	if err != nil {
		return err
	}

	fragment, err := stage.BundleZlib(releaseFS, debugFS, staging)
	if err != nil {
		return err
	}

	p.printer.Debugf("Wrote %s", fragment)

	return nil
}

// toolchain resolves the toolchain and build tree for a variant. table
// supplies dependency paths and may be nil when only the tree is needed.
func (p *Pipeline) toolchain(variant string, table deps.Table) (*toolchain.Toolchain, string, error) {
	tree := p.tree(variant)

	tc, err := toolchain.Resolve(p.cfg.Options, p.cfg.Settings, tree, p.generator(), table)
	if err != nil {
		return nil, "", err
	}

	return tc, tree, nil
}

func (p *Pipeline) tree(variant string) string {
	return cmake.BuildTree(p.cfg.WorkDir, toolchain.IsMultiConfig(p.generator()), variant)
}

func (p *Pipeline) generator() string {
	if p.cfg.Generator != "" {
		return p.cfg.Generator
	}

	return toolchain.DefaultGenerator(p.platform())
}

func (p *Pipeline) platform() recipe.Platform {
	return p.cfg.Settings.Platform()
}

func (p *Pipeline) describe(tc *toolchain.Toolchain, variant string) string {
	if tc.MultiConfig {
		return fmt.Sprintf("%s (Debug;Release)", tc.Generator)
	}

	return fmt.Sprintf("%s (%s)", tc.Generator, variant)
}

func (p *Pipeline) runTool(ctx context.Context, cmd runner.ShellCommand) error {
	p.printer.Debugf("Command: %s", cmd)
	return p.exec.Run(ctx, cmd)
}
