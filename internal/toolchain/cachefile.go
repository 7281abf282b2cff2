package toolchain

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// CacheFileName is the initial-cache script passed to cmake -C
const CacheFileName = "hdf5pkg_toolchain.cmake"

// RenderCacheFile renders the variables as an initial-cache script
func RenderCacheFile(v Variables) string {
	var b strings.Builder

	b.WriteString("# Generated by hdf5pkg. Do not edit.\n")
	for _, k := range v.Keys() {
		fmt.Fprintf(&b, "set(%s \"%s\" CACHE STRING \"\" FORCE)\n", k, escape(v[k]))
	}

	return b.String()
}

// WriteCacheFile writes the initial-cache script into dir and returns its path
func WriteCacheFile(dir string, v Variables) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create build directory: %w", err)
	}

	path := filepath.Join(dir, CacheFileName)
	if err := os.WriteFile(path, []byte(RenderCacheFile(v)), 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", CacheFileName, err)
	}

	return path, nil
}

func escape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}
