package stage

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
)

const (
	// ZlibDir is where the bundled zlib lives inside the package
	ZlibDir = "zlib"

	// ZlibFragment is the CMake fragment pointing consumers at the bundled zlib
	ZlibFragment = "hdf5-targets-zlib.cmake"

	// DebugLibSuffix is injected into debug zlib file names
	DebugLibSuffix = "d"

	zlibFragmentContent = "set(HDF5_ZLIB_ROOT \"${_IMPORT_PREFIX}/zlib\")\n"
	targetsFile         = "hdf5-targets.cmake"
)

// BundleZlib copies the release zlib tree into the staging tree, adds the
// debug libraries under suffixed names and writes the CMake fragment. It
// returns the fragment path inside staging.
func BundleZlib(release, debug, staging billy.Filesystem) (string, error) {
	if err := CopyTree(release, "/", staging, ZlibDir); err != nil {
		return "", fmt.Errorf("failed to copy release zlib: %w", err)
	}

	if err := MergeDebugLibs(debug, staging); err != nil {
		return "", err
	}

	return WriteZlibFragment(staging)
}

// MergeDebugLibs copies every file with an extension from the debug zlib lib
// directory into the bundled lib directory, injecting DebugLibSuffix into
// each name so no release file is overwritten
func MergeDebugLibs(debug, staging billy.Filesystem) error {
	files, err := util.Glob(debug, path.Join("lib", "*.*"))
	if err != nil {
		return err
	}

	dest := path.Join(ZlibDir, "lib")
	if err := staging.MkdirAll(dest, 0o755); err != nil {
		return err
	}

	for _, f := range files {
		info, err := debug.Stat(f)
		if err != nil {
			return err
		}

		if info.IsDir() {
			continue
		}

		target := path.Join(dest, InjectStemSuffix(f, DebugLibSuffix))
		if ok, err := exists(staging, target); err != nil {
			return err
		} else if ok {
			return fmt.Errorf("debug zlib file %s would overwrite %s", filepath.Base(f), target)
		}

		if err := CopyFile(debug, f, staging, target, info.Mode()); err != nil {
			return err
		}
	}

	return nil
}

// WriteZlibFragment writes the zlib fragment next to the installed
// hdf5-targets.cmake, or into cmake/ when no targets file is found
func WriteZlibFragment(staging billy.Filesystem) (string, error) {
	dir := "cmake"

	targets, err := findFile(staging, targetsFile)
	if err != nil {
		return "", err
	}

	if targets != "" {
		dir = path.Dir(targets)
	}

	fragment := path.Join(dir, ZlibFragment)
	if err := staging.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	if err := util.WriteFile(staging, fragment, []byte(zlibFragmentContent), 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", ZlibFragment, err)
	}

	return fragment, nil
}

// findFile returns the slash separated path of the first file named name
func findFile(fs billy.Filesystem, name string) (string, error) {
	found := ""

	err := util.Walk(fs, "/", func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if !info.IsDir() && info.Name() == name {
			found = strings.TrimPrefix(filepath.ToSlash(p), "/")
			return filepath.SkipAll
		}

		return nil
	})
	if err != nil && !errors.Is(err, filepath.SkipAll) {
		return "", err
	}

	return found, nil
}
