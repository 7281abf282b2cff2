package cache

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyArtifact(t *testing.T) {
	tests := []struct {
		name string
		dst  string
	}{
		{
			name: "into existing directory",
			dst:  "CMake-hdf5-1.12.1.tar.gz",
		},
		{
			name: "creates parent directories",
			dst:  filepath.Join("artifacts", "0123abcd", "CMake-hdf5-1.12.1.tar.gz"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			src := filepath.Join(dir, "download.part")
			require.NoError(t, os.WriteFile(src, []byte("archive"), 0o644))

			dst := filepath.Join(dir, "cache", tt.dst)
			require.NoError(t, CopyArtifact(src, dst))

			data, err := os.ReadFile(dst)
			require.NoError(t, err)
			assert.Equal(t, "archive", string(data))
		})
	}
}

func TestCopyArtifact_MissingSource(t *testing.T) {
	dir := t.TempDir()

	err := CopyArtifact(filepath.Join(dir, "missing.tar.gz"), filepath.Join(dir, "out.tar.gz"))
	assert.ErrorContains(t, err, "failed to copy missing.tar.gz")
}

func TestRestoreArtifact_PreservesMode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("file modes are not preserved on Windows")
	}

	dir := t.TempDir()
	src := filepath.Join(dir, "CMake-hdf5-1.12.1.tar.gz")
	require.NoError(t, os.WriteFile(src, []byte("archive"), 0o600))

	dst := filepath.Join(dir, "work", "CMake-hdf5-1.12.1.tar.gz")
	require.NoError(t, RestoreArtifact(src, dst))

	info, err := os.Stat(dst)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}
