// Package stage assembles the merged install tree and emits it as the
// package. Every location is a billy filesystem rooted at that location.
package stage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
)

// Dir opens a directory on disk as a filesystem, creating it if needed
func Dir(dir string) (billy.Filesystem, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", dir, err)
	}

	return osfs.New(dir), nil
}

// Reset empties dir and opens it
func Reset(dir string) (billy.Filesystem, error) {
	if err := os.RemoveAll(dir); err != nil {
		return nil, fmt.Errorf("failed to remove %s: %w", dir, err)
	}

	return Dir(dir)
}

// InjectStemSuffix inserts suffix between the stem and the last extension
// of a file name and drops any leading directories: zlib.lib -> zlibd.lib
func InjectStemSuffix(name, suffix string) string {
	base := path.Base(strings.ReplaceAll(name, `\`, "/"))

	ext := path.Ext(base)
	if ext == base {
		// dot files have no extension
		ext = ""
	}

	return strings.TrimSuffix(base, ext) + suffix + ext
}

// CopyTree copies srcDir of src into dstDir of dst, overwriting existing files
func CopyTree(src billy.Filesystem, srcDir string, dst billy.Filesystem, dstDir string) error {
	return util.Walk(src, srcDir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(srcDir, p)
		if err != nil {
			return err
		}

		target := path.Join(dstDir, filepath.ToSlash(rel))

		if info.IsDir() {
			return dst.MkdirAll(target, 0o755)
		}

		return CopyFile(src, p, dst, target, info.Mode())
	})
}

// CopyFile copies a single file between filesystems
func CopyFile(src billy.Filesystem, from string, dst billy.Filesystem, to string, mode os.FileMode) error {
	in, err := src.Open(from)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", from, err)
	}
	defer in.Close()

	if err := dst.MkdirAll(path.Dir(to), 0o755); err != nil {
		return err
	}

	if mode.Perm() == 0 {
		mode = 0o644
	}

	out, err := dst.OpenFile(to, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode.Perm())
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", to, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("failed to copy %s: %w", from, err)
	}

	return out.Close()
}

// CopyPDBs copies the debug symbol files of a Visual Studio build tree next
// to the installed libraries and returns how many were copied
func CopyPDBs(tree, staging billy.Filesystem) (int, error) {
	matches, err := util.Glob(tree, path.Join("bin", "Debug", "*.pdb"))
	if err != nil {
		return 0, err
	}

	for _, m := range matches {
		info, err := tree.Stat(m)
		if err != nil {
			return 0, err
		}

		if err := CopyFile(tree, m, staging, path.Join("lib", path.Base(m)), info.Mode()); err != nil {
			return 0, err
		}
	}

	return len(matches), nil
}

// Emit copies the whole staging tree into the package output
func Emit(staging, output billy.Filesystem) error {
	if err := CopyTree(staging, "/", output, "/"); err != nil {
		return fmt.Errorf("failed to emit package: %w", err)
	}

	return nil
}

func exists(fs billy.Filesystem, p string) (bool, error) {
	_, err := fs.Stat(p)
	if err == nil {
		return true, nil
	}

	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}

	return false, err
}
