package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/biovault/hdf5pkg/internal/recipe"
)

// ExtractDir is the scratch directory archives are unpacked into
const ExtractDir = "_extract"

// Acquire downloads and unpacks the source distribution for r into workDir
// and returns the CMake source directory
func Acquire(ctx context.Context, f *Fetcher, r *recipe.Recipe, p recipe.Platform, workDir string) (string, error) {
	archive := filepath.Join(workDir, r.ArchiveName(p))
	if err := f.Fetch(ctx, r.SourceURL(p), archive); err != nil {
		return "", err
	}

	return Unpack(r, archive, workDir)
}

// Unpack extracts archive and renames its root directory to the source subfolder.
// The archive and the scratch directory are removed on success.
func Unpack(r *recipe.Recipe, archive, workDir string) (string, error) {
	scratch := filepath.Join(workDir, ExtractDir)
	if err := os.RemoveAll(scratch); err != nil {
		return "", fmt.Errorf("failed to clean %s: %w", scratch, err)
	}

	if err := Extract(archive, scratch); err != nil {
		return "", err
	}

	root, ok := findRoot(scratch, r.SourceFolder())
	if !ok {
		return "", fmt.Errorf("archive %s has no %s directory", filepath.Base(archive), r.SourceFolder())
	}

	target := filepath.Join(workDir, recipe.SourceSubfolder)
	if err := os.RemoveAll(target); err != nil {
		return "", fmt.Errorf("failed to clean %s: %w", target, err)
	}

	if err := os.Rename(root, target); err != nil {
		return "", fmt.Errorf("failed to rename %s: %w", r.SourceFolder(), err)
	}

	if err := os.RemoveAll(scratch); err != nil {
		return "", err
	}

	if err := os.Remove(archive); err != nil {
		return "", err
	}

	return SourceDir(r, workDir)
}

// SourceDir returns the CMake source directory of an unpacked tree, failing
// when it does not exist
func SourceDir(r *recipe.Recipe, workDir string) (string, error) {
	dir := filepath.Join(workDir, filepath.FromSlash(r.BuildScriptFolder()))
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return "", fmt.Errorf("source directory %s not found, run hdf5pkg source first", dir)
	}

	return dir, nil
}

// findRoot locates folder at the top of dir, or one level down when dir
// holds a single wrapping directory (the Windows zip layout)
func findRoot(dir, folder string) (string, bool) {
	root := filepath.Join(dir, folder)
	if isDir(root) {
		return root, true
	}

	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) != 1 || !entries[0].IsDir() {
		return "", false
	}

	root = filepath.Join(dir, entries[0].Name(), folder)

	return root, isDir(root)
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
