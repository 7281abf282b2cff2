package pipeline

import (
	"archive/tar"
	"os"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/require"
)

// writeSourceArchive writes a minimal CMake-hdf5 source distribution
func writeSourceArchive(t *testing.T, path string) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	gz := gzip.NewWriter(f)
	tw := tar.NewWriter(gz)

	content := []byte("cmake_minimum_required(VERSION 3.18)\nproject(HDF5 C CXX)\n")
	require.NoError(t, tw.WriteHeader(&tar.Header{Name: "CMake-hdf5-1.14.2/hdf5-1.14.2/", Mode: 0o755, Typeflag: tar.TypeDir}))
	require.NoError(t, tw.WriteHeader(&tar.Header{
		Name:     "CMake-hdf5-1.14.2/hdf5-1.14.2/CMakeLists.txt",
		Mode:     0o644,
		Size:     int64(len(content)),
		Typeflag: tar.TypeReg,
	}))
	_, err = tw.Write(content)
	require.NoError(t, err)

	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())
}
