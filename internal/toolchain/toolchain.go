// Package toolchain turns recipe options and settings into the flat set of
// CMake cache variables, the generator and the environment a build uses.
package toolchain

import (
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/biovault/hdf5pkg/internal/recipe"
	"github.com/biovault/hdf5pkg/internal/utils"
)

// Variables are CMake cache entries
type Variables map[string]string

// Keys returns the variable names in sorted order
func (v Variables) Keys() []string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return keys
}

// Toolchain is everything configure needs besides the source and build paths
type Toolchain struct {
	Generator   string
	MultiConfig bool
	// Generator platform (-A), only set for Visual Studio generators
	GeneratorPlatform string
	Variables         Variables
	// Environment for configure and build
	Env map[string]string
}

// Upstream location used when HDF5 downloads zlib itself
const (
	zlibTGZOrigPath = "https://github.com/madler/zlib/releases/download/v" + recipe.ZlibVersion
	zlibTGZName     = "zlib-" + recipe.ZlibVersion + ".tar.gz"
)

// Resolve computes the toolchain. It is a pure function of its inputs;
// depPaths maps dependency names to their install directories and may be nil.
func Resolve(opts recipe.Options, s recipe.Settings, buildDir, generator string, depPaths map[string]string) (*Toolchain, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	if generator == "" {
		generator = DefaultGenerator(s.Platform())
	}

	tc := &Toolchain{
		Generator:   generator,
		MultiConfig: IsMultiConfig(generator),
		Variables:   Variables{},
		Env:         map[string]string{},
	}

	platform, err := GeneratorPlatform(generator, s.Arch)
	if err != nil {
		return nil, err
	}

	tc.GeneratorPlatform = platform

	v := tc.Variables

	// ensure CMake config generation
	v["HDF5_EXTERNALLY_CONFIGURED"] = "OFF"
	v["BUILD_TESTING"] = "OFF"
	v["BUILD_EXAMPLES"] = "OFF"
	v["BUILD_SHARED_LIBS"] = utils.OnOff(opts.Shared)

	// HDF5 options
	v["HDF5_BUILD_CPP_LIB"] = utils.OnOff(opts.CXX)
	v["HDF5_BUILD_FORTRAN"] = "OFF"
	v["HDF5_ENABLE_PARALLEL"] = utils.OnOff(opts.Parallel)
	v["HDF5_BUILD_HL_LIB"] = utils.OnOff(opts.BuildHL)
	v["HDF5_BUILDHL_TOOLS"] = utils.OnOff(opts.BuildHL)
	v["HDF5_ENABLE_SZIP_SUPPORT"] = utils.OnOff(opts.SzipSupport)
	v["HDF5_ENABLE_DEBUG_APIS"] = "OFF"
	v["HDF5_ENABLE_Z_LIB_SUPPORT"] = utils.OnOff(opts.WithZlib)
	v["HDF5_BUILD_EXAMPLES"] = "OFF"
	v["HDF5_BUILD_UTILS"] = "OFF"
	v["HDF5_BUILD_TOOLS"] = "OFF"
	v["HDF5_ENABLE_EMBEDDED_LIBINFO"] = "OFF"
	v["HDF5_ENABLE_HSIZET"] = "OFF"

	resolveZlib(v, opts, depPaths)

	if opts.SzipSupport {
		if p, ok := depPaths["szip"]; ok && p != "" {
			v["SZIP_ROOT"] = posix(p)
		}
	}

	if opts.Parallel {
		if p, ok := depPaths["openmpi"]; ok && p != "" {
			v["MPI_HOME"] = posix(p)
		}
	}

	if s.IsVisualStudio() {
		v["CMAKE_DEBUG_POSTFIX"] = "_d"
		v["CMAKE_MSVC_RUNTIME_LIBRARY"] = "MultiThreaded$<$<CONFIG:Debug>:Debug>DLL"
	} else {
		// Debug and Release are installed into one tree
		v["CMAKE_DEBUG_POSTFIX"] = "_debug"
	}

	// Make sure all paths are Posix to avoid escape character issues
	if s.Platform() == recipe.PlatformMacos {
		tc.Env["DYLD_LIBRARY_PATH"] = posix(filepath.Join(buildDir, "lib"))
	}

	v["CMAKE_INSTALL_PREFIX"] = posix(filepath.Join(buildDir, "install"))
	v["CMAKE_CONFIGURATION_TYPES"] = recipe.Debug + ";" + recipe.Release

	return tc, nil
}

// resolveZlib applies exactly one zlib strategy
func resolveZlib(v Variables, opts recipe.Options, depPaths map[string]string) {
	if !opts.WithZlib {
		return
	}

	switch opts.ZlibSource {
	case recipe.ZlibDownload:
		v["HDF5_ALLOW_EXTERNAL_SUPPORT"] = "TGZ"
		v["ZLIB_USE_EXTERNAL"] = "ON"
		v["ZLIB_TGZ_ORIGPATH"] = zlibTGZOrigPath
		v["ZLIB_TGZ_NAME"] = zlibTGZName
	default:
		v["ZLIB_USE_EXTERNAL"] = "OFF"
		if p, ok := depPaths["zlib"]; ok && p != "" {
			v["ZLIB_ROOT"] = posix(p)
		}
	}
}

// DefaultGenerator selects the CMake generator for a platform family
func DefaultGenerator(p recipe.Platform) string {
	switch p {
	case recipe.PlatformWindows:
		return "Visual Studio 17 2022"
	case recipe.PlatformMacos:
		return "Xcode"
	default:
		return "Unix Makefiles"
	}
}

// IsMultiConfig reports whether one build tree can hold Debug and Release
func IsMultiConfig(generator string) bool {
	return strings.HasPrefix(generator, "Visual Studio") ||
		generator == "Xcode" ||
		generator == "Ninja Multi-Config"
}

// GeneratorPlatform returns the -A value for Visual Studio generators and ""
// for every other generator
func GeneratorPlatform(generator, arch string) (string, error) {
	if !strings.HasPrefix(generator, "Visual Studio") {
		return "", nil
	}

	switch arch {
	case "x86_64":
		return "x64", nil
	case "x86":
		return "Win32", nil
	case "armv8":
		return "ARM64", nil
	}

	return "", fmt.Errorf("unsupported arch %q for Visual Studio", arch)
}

// posix converts an OS path to forward slashes
func posix(p string) string {
	return path.Clean(filepath.ToSlash(p))
}
