// Package cmake builds the cmake command lines for configuring, building and
// installing the HDF5 source tree.
package cmake

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/biovault/hdf5pkg/internal/logging"
	"github.com/biovault/hdf5pkg/internal/recipe"
	"github.com/biovault/hdf5pkg/internal/runner"
	"github.com/biovault/hdf5pkg/internal/toolchain"
)

// CommandBuilder handles building cmake commands
type CommandBuilder struct {
	CMakePath string
	// Parallel build jobs, 0 lets the generator decide
	Jobs int
}

// NewCommandBuilder creates a new command builder
func NewCommandBuilder(cmakePath string, jobs int) *CommandBuilder {
	if cmakePath == "" {
		cmakePath = "cmake"
	}

	return &CommandBuilder{CMakePath: cmakePath, Jobs: jobs}
}

// BuildTree returns the build directory for a variant. Multi-config
// generators share one tree.
func BuildTree(workDir string, multiConfig bool, variant string) string {
	if multiConfig {
		return filepath.Join(workDir, "build")
	}

	return filepath.Join(workDir, "build", variant)
}

// ConfigureArgs builds the configure arguments. variant is ignored for
// multi-config generators.
func (cb *CommandBuilder) ConfigureArgs(sourceDir, tree, cacheFile string, tc *toolchain.Toolchain, variant string) ([]string, error) {
	if tc == nil || tc.Generator == "" {
		return nil, fmt.Errorf("no generator resolved")
	}

	if sourceDir == "" || tree == "" {
		return nil, fmt.Errorf("source and build directories are required")
	}

	cmdArgs := []string{"-S", sourceDir, "-B", tree, "-G", tc.Generator}

	if tc.GeneratorPlatform != "" {
		cmdArgs = append(cmdArgs, "-A", tc.GeneratorPlatform)
	}

	if cacheFile != "" {
		cmdArgs = append(cmdArgs, "-C", cacheFile)
	}

	if !tc.MultiConfig {
		if err := checkVariant(variant); err != nil {
			return nil, err
		}

		cmdArgs = append(cmdArgs, "-DCMAKE_BUILD_TYPE="+variant)
	}

	return cmdArgs, nil
}

// BuildArgs builds the arguments compiling one variant
func (cb *CommandBuilder) BuildArgs(tree, variant string) ([]string, error) {
	if err := checkVariant(variant); err != nil {
		return nil, err
	}

	cmdArgs := []string{"--build", tree, "--config", variant, "--verbose"}

	if cb.Jobs > 0 {
		cmdArgs = append(cmdArgs, "--parallel", strconv.Itoa(cb.Jobs))
	}

	return cmdArgs, nil
}

// InstallArgs builds the arguments installing one variant into prefix
func (cb *CommandBuilder) InstallArgs(tree, variant, prefix string) ([]string, error) {
	if err := checkVariant(variant); err != nil {
		return nil, err
	}

	if prefix == "" {
		return nil, fmt.Errorf("install prefix is required")
	}

	return []string{"--install", tree, "--config", variant, "--prefix", prefix}, nil
}

// Configure returns the configure command for a variant
func (cb *CommandBuilder) Configure(sourceDir, tree, cacheFile string, tc *toolchain.Toolchain, variant string) (runner.ShellCommand, error) {
	args, err := cb.ConfigureArgs(sourceDir, tree, cacheFile, tc, variant)
	if err != nil {
		return runner.ShellCommand{}, err
	}

	return runner.ShellCommand{Path: cb.CMakePath, Args: args, Env: tc.Env}, nil
}

// Build returns the build command for a variant
func (cb *CommandBuilder) Build(tree, variant string, env map[string]string) (runner.ShellCommand, error) {
	args, err := cb.BuildArgs(tree, variant)
	if err != nil {
		return runner.ShellCommand{}, err
	}

	return runner.ShellCommand{Path: cb.CMakePath, Args: args, Env: env}, nil
}

// Install returns the install command for a variant
func (cb *CommandBuilder) Install(tree, variant, prefix string) (runner.ShellCommand, error) {
	args, err := cb.InstallArgs(tree, variant, prefix)
	if err != nil {
		return runner.ShellCommand{}, err
	}

	return runner.ShellCommand{Path: cb.CMakePath, Args: args}, nil
}

// PrintBuildInfo prints verbose build information
func (cb *CommandBuilder) PrintBuildInfo(p *logging.Printer, tc *toolchain.Toolchain, sourceDir, workDir string) {
	p.Debugf("CMake: %s\nGenerator: %s\nMulti-config: %v\nSource: %s\nBuild: %s\nJobs: %d",
		cb.CMakePath, tc.Generator, tc.MultiConfig, sourceDir, filepath.Join(workDir, "build"), cb.Jobs)

	for _, k := range tc.Variables.Keys() {
		p.Debugf("  %s=%s", k, tc.Variables[k])
	}

	if len(tc.Env) > 0 {
		env := make([]string, 0, len(tc.Env))
		for _, k := range toolchain.Variables(tc.Env).Keys() {
			env = append(env, k+"="+tc.Env[k])
		}
		p.Debugf("Environment: %s", strings.Join(env, " "))
	}
}

func checkVariant(variant string) error {
	for _, v := range recipe.Variants {
		if v == variant {
			return nil
		}
	}

	return fmt.Errorf("invalid build variant %q", variant)
}
