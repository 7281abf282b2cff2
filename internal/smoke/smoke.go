// Package smoke builds a small CMake consumer against a finished package and
// runs it on a freshly written HDF5 file.
package smoke

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/biovault/hdf5pkg/internal/cmake"
	"github.com/biovault/hdf5pkg/internal/logging"
	"github.com/biovault/hdf5pkg/internal/recipe"
	"github.com/biovault/hdf5pkg/internal/runner"
	"github.com/biovault/hdf5pkg/internal/toolchain"
)

//go:embed example/CMakeLists.txt example/hdf5example.cpp
var example embed.FS

// Layout of the test work directory
const (
	TestDir     = "test_package"
	DatasetFile = "dataset.hdf5"
	ExampleName = "hdf5example"
)

// Seed for the generated dataset values
const datasetSeed = 1

// WriteExample copies the embedded example sources into dir
func WriteExample(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	return fs.WalkDir(example, "example", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}

		data, err := example.ReadFile(path)
		if err != nil {
			return err
		}

		return os.WriteFile(filepath.Join(dir, d.Name()), data, 0o644)
	})
}

// Tester runs the example against a package
type Tester struct {
	Exec    runner.Executor
	Printer *logging.Printer
	Builder *cmake.CommandBuilder
	// Datasets written to the test file, DefaultDatasets when nil
	Datasets []Dataset
}

// NewTester creates a tester
func NewTester(exec runner.Executor, p *logging.Printer, builder *cmake.CommandBuilder) *Tester {
	return &Tester{Exec: exec, Printer: p, Builder: builder}
}

// Run configures and builds the example against packageDir in
// <workDir>/test_package, writes the dataset file and runs the example on
// it unless s targets another machine.
func (t *Tester) Run(ctx context.Context, packageDir, workDir string, s recipe.Settings, generator string) error {
	if _, err := os.Stat(packageDir); err != nil {
		return fmt.Errorf("package directory %s: %w", packageDir, err)
	}

	testDir := filepath.Join(workDir, TestDir)
	srcDir := filepath.Join(testDir, "src")
	buildDir := filepath.Join(testDir, "build")

	t.Printer.Stage("Testing package %s", packageDir)

	if err := WriteExample(srcDir); err != nil {
		return err
	}

	tc, err := t.toolchain(packageDir, s, generator)
	if err != nil {
		return err
	}

	cacheFile, err := toolchain.WriteCacheFile(buildDir, tc.Variables)
	if err != nil {
		return err
	}

	configure, err := t.Builder.Configure(srcDir, buildDir, cacheFile, tc, recipe.Release)
	if err != nil {
		return err
	}

	if err := t.Exec.Run(ctx, configure); err != nil {
		return err
	}

	build, err := t.Builder.Build(buildDir, recipe.Release, tc.Env)
	if err != nil {
		return err
	}

	if err := t.Exec.Run(ctx, build); err != nil {
		return err
	}

	datasets := t.Datasets
	if datasets == nil {
		datasets = DefaultDatasets
	}

	datasetPath := filepath.Join(testDir, DatasetFile)
	if err := WriteDatasets(datasetPath, datasets, datasetSeed); err != nil {
		return err
	}

	if err := VerifyDatasets(datasetPath, datasets); err != nil {
		return err
	}

	t.Printer.Infof("Wrote %d datasets to %s", len(datasets), datasetPath)

	if CrossBuilding(s) {
		t.Printer.Warnf("Cross building for %s %s, not running %s", s.OS, s.Arch, ExampleName)
		return nil
	}

	return t.Exec.Run(ctx, runner.ShellCommand{
		Path: ExecutablePath(buildDir, s, tc.MultiConfig),
		Args: []string{DatasetFile, datasets[0].Name},
		Dir:  testDir,
		Env:  tc.Env,
	})
}

func (t *Tester) toolchain(packageDir string, s recipe.Settings, generator string) (*toolchain.Toolchain, error) {
	if generator == "" {
		generator = toolchain.DefaultGenerator(s.Platform())
	}

	platform, err := toolchain.GeneratorPlatform(generator, s.Arch)
	if err != nil {
		return nil, err
	}

	pkg := filepath.ToSlash(packageDir)
	tc := &toolchain.Toolchain{
		Generator:         generator,
		MultiConfig:       toolchain.IsMultiConfig(generator),
		GeneratorPlatform: platform,
		Variables: toolchain.Variables{
			"CMAKE_PREFIX_PATH": strings.Join([]string{pkg + "/share", pkg}, ";"),
		},
		Env: map[string]string{},
	}

	if s.IsVisualStudio() {
		tc.Variables["CMAKE_MSVC_RUNTIME_LIBRARY"] = "MultiThreaded$<$<CONFIG:Debug>:Debug>DLL"
	}

	if s.Platform() == recipe.PlatformMacos {
		tc.Env["DYLD_LIBRARY_PATH"] = pkg + "/lib"
	}

	return tc, nil
}

// ExecutablePath locates the built example
func ExecutablePath(buildDir string, s recipe.Settings, multiConfig bool) string {
	name := ExampleName
	if s.Platform() == recipe.PlatformWindows {
		name += ".exe"
	}

	if multiConfig {
		return filepath.Join(buildDir, recipe.Release, name)
	}

	return filepath.Join(buildDir, name)
}

// CrossBuilding reports whether s targets a different OS or arch than the host
func CrossBuilding(s recipe.Settings) bool {
	host := recipe.DetectSettings()

	return !strings.EqualFold(host.OS, s.OS) || host.Arch != s.Arch
}
