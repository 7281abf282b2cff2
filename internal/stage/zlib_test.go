package stage

import (
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBundleZlib(t *testing.T) {
	release := memfs.New()
	writeFiles(t, release, map[string]string{
		"include/zlib.h": "header",
		"lib/zlib.lib":   "release zlib",
		"bin/zlib.dll":   "release dll",
	})

	debug := memfs.New()
	writeFiles(t, debug, map[string]string{
		"include/zlib.h": "header",
		"lib/zlib.lib":   "debug zlib",
		"lib/zlib.pdb":   "debug symbols",
	})

	staging := memfs.New()
	writeFiles(t, staging, map[string]string{
		"cmake/hdf5-targets.cmake": "# targets",
	})

	fragment, err := BundleZlib(release, debug, staging)
	require.NoError(t, err)
	assert.Equal(t, "cmake/hdf5-targets-zlib.cmake", fragment)

	// release artifact kept, debug artifact added beside it
	assert.Equal(t, "release zlib", read(t, staging, "zlib/lib/zlib.lib"))
	assert.Equal(t, "debug zlib", read(t, staging, "zlib/lib/zlibd.lib"))
	assert.Equal(t, "debug symbols", read(t, staging, "zlib/lib/zlibd.pdb"))
	assert.Equal(t, "release dll", read(t, staging, "zlib/bin/zlib.dll"))
	assert.Equal(t, "header", read(t, staging, "zlib/include/zlib.h"))

	assert.Equal(t, `set(HDF5_ZLIB_ROOT "${_IMPORT_PREFIX}/zlib")`+"\n", read(t, staging, fragment))
}

func TestMergeDebugLibs_RefusesOverwrite(t *testing.T) {
	debug := memfs.New()
	writeFiles(t, debug, map[string]string{"lib/libz.a": "debug"})

	staging := memfs.New()
	writeFiles(t, staging, map[string]string{"zlib/lib/libzd.a": "already there"})

	err := MergeDebugLibs(debug, staging)
	require.Error(t, err)
	assert.Equal(t, "already there", read(t, staging, "zlib/lib/libzd.a"))
}

func TestMergeDebugLibs_SkipsFilesWithoutExtension(t *testing.T) {
	debug := memfs.New()
	writeFiles(t, debug, map[string]string{
		"lib/libz.a":  "debug",
		"lib/LICENSE": "text",
	})

	staging := memfs.New()
	require.NoError(t, MergeDebugLibs(debug, staging))

	assert.Equal(t, "debug", read(t, staging, "zlib/lib/libzd.a"))
	_, err := staging.Stat("zlib/lib/LICENSEd")
	assert.Error(t, err)
}

func TestWriteZlibFragment(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
		want  string
	}{
		{
			name:  "next to the installed targets",
			files: map[string]string{"share/cmake/hdf5-targets.cmake": "# targets"},
			want:  "share/cmake/hdf5-targets-zlib.cmake",
		},
		{
			name:  "fallback directory",
			files: map[string]string{"lib/libhdf5.a": "lib"},
			want:  "cmake/hdf5-targets-zlib.cmake",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			staging := memfs.New()
			writeFiles(t, staging, tt.files)

			got, err := WriteZlibFragment(staging)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Contains(t, read(t, staging, got), "HDF5_ZLIB_ROOT")
		})
	}
}
