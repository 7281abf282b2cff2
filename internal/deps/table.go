// Package deps resolves the recipe's external dependencies through conan
// and persists their install folders as the two libpath tables.
package deps

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/biovault/hdf5pkg/internal/codes"
)

// Table file names, one per variant
const (
	ReleaseFile = "libpath_dict.json"
	DebugFile   = "libpath_debug_dict.json"
)

// RequireHint tells the operator how to produce the tables
const RequireHint = "Check that: hdf5pkg deps <build_profile> <host_profile> was first run successfully in this directory"

// Table maps a dependency name (the reference up to the first "/") to its
// install folder
type Table map[string]string

// Path returns the install folder of a dependency
func (t Table) Path(name string) (string, bool) {
	p, ok := t[name]
	return p, ok && p != ""
}

// SaveTables writes both tables into dir
func SaveTables(dir string, release, debug Table) error {
	if err := writeTable(filepath.Join(dir, ReleaseFile), release); err != nil {
		return err
	}

	return writeTable(filepath.Join(dir, DebugFile), debug)
}

// LoadTable reads one table. A missing file is reported as fs.ErrNotExist.
func LoadTable(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	t := Table{}
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}

	return t, nil
}

// LoadTables reads both tables from dir. Missing files yield empty tables.
func LoadTables(dir string) (release, debug Table, err error) {
	release, err = loadOptional(filepath.Join(dir, ReleaseFile))
	if err != nil {
		return nil, nil, err
	}

	debug, err = loadOptional(filepath.Join(dir, DebugFile))
	if err != nil {
		return nil, nil, err
	}

	return release, debug, nil
}

// RequireTables fails with a missing artifact error unless both tables exist in dir
func RequireTables(dir string) error {
	var missing []string

	for _, name := range []string{ReleaseFile, DebugFile} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			missing = append(missing, name)
		}
	}

	if len(missing) > 0 {
		return &codes.MissingArtifactError{Paths: missing, Hint: RequireHint}
	}

	return nil
}

// CopyTables copies both tables from src to dst
func CopyTables(src, dst string) error {
	if err := RequireTables(src); err != nil {
		return err
	}

	if err := os.MkdirAll(dst, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}

	for _, name := range []string{ReleaseFile, DebugFile} {
		data, err := os.ReadFile(filepath.Join(src, name))
		if err != nil {
			return err
		}

		if err := os.WriteFile(filepath.Join(dst, name), data, 0o644); err != nil {
			return fmt.Errorf("failed to copy %s: %w", name, err)
		}
	}

	return nil
}

func loadOptional(path string) (Table, error) {
	t, err := LoadTable(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Table{}, nil
	}

	return t, err
}

func writeTable(path string, t Table) error {
	if t == nil {
		t = Table{}
	}

	data, err := json.Marshal(t)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}

	return nil
}
