package toolchain

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biovault/hdf5pkg/internal/codes"
	"github.com/biovault/hdf5pkg/internal/recipe"
)

var (
	linux   = recipe.Settings{OS: "Linux", Compiler: "gcc", BuildType: recipe.Release, Arch: "x86_64"}
	macos   = recipe.Settings{OS: "Macos", Compiler: "apple-clang", BuildType: recipe.Release, Arch: "armv8"}
	windows = recipe.Settings{OS: "Windows", Compiler: recipe.CompilerVisualStudio, CompilerRuntime: "MD", BuildType: recipe.Release, Arch: "x86_64"}
)

func TestResolve_Defaults(t *testing.T) {
	tc, err := Resolve(recipe.DefaultOptions(), linux, "/work/build", "", map[string]string{"zlib": "/conan/zlib/pkg"})
	require.NoError(t, err)

	assert.Equal(t, "Unix Makefiles", tc.Generator)
	assert.False(t, tc.MultiConfig)
	assert.Empty(t, tc.GeneratorPlatform)
	assert.Empty(t, tc.Env)

	want := map[string]string{
		"HDF5_EXTERNALLY_CONFIGURED": "OFF",
		"BUILD_TESTING":              "OFF",
		"BUILD_SHARED_LIBS":          "OFF",
		"HDF5_BUILD_CPP_LIB":         "ON",
		"HDF5_BUILD_FORTRAN":         "OFF",
		"HDF5_ENABLE_PARALLEL":       "OFF",
		"HDF5_BUILD_HL_LIB":          "OFF",
		"HDF5_BUILDHL_TOOLS":         "OFF",
		"HDF5_ENABLE_SZIP_SUPPORT":   "OFF",
		"HDF5_ENABLE_Z_LIB_SUPPORT":  "ON",
		"ZLIB_USE_EXTERNAL":          "OFF",
		"ZLIB_ROOT":                  "/conan/zlib/pkg",
		"CMAKE_DEBUG_POSTFIX":        "_debug",
		"CMAKE_INSTALL_PREFIX":       "/work/build/install",
		"CMAKE_CONFIGURATION_TYPES":  "Debug;Release",
	}
	for k, v := range want {
		assert.Equal(t, v, tc.Variables[k], k)
	}

	assert.NotContains(t, tc.Variables, "HDF5_ALLOW_EXTERNAL_SUPPORT")
	assert.NotContains(t, tc.Variables, "CMAKE_MSVC_RUNTIME_LIBRARY")
}

func TestResolve_RejectsIncompatibleOptions(t *testing.T) {
	opts := recipe.DefaultOptions()
	opts.Parallel = true

	tc, err := Resolve(opts, linux, "/work/build", "", nil)
	require.Error(t, err)
	assert.Nil(t, tc)
	assert.Equal(t, codes.ExitConfigError, codes.ExitCode(err))
}

func TestResolve_Options(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*recipe.Options)
		deps    map[string]string
		want    map[string]string
		missing []string
	}{
		{
			name:   "shared with high level library",
			mutate: func(o *recipe.Options) { o.Shared = true; o.BuildHL = true },
			want:   map[string]string{"BUILD_SHARED_LIBS": "ON", "HDF5_BUILD_HL_LIB": "ON", "HDF5_BUILDHL_TOOLS": "ON"},
		},
		{
			name: "parallel with mpi path",
			mutate: func(o *recipe.Options) {
				o.CXX = false
				o.Parallel = true
			},
			deps: map[string]string{"openmpi": "/deps/openmpi"},
			want: map[string]string{"HDF5_ENABLE_PARALLEL": "ON", "HDF5_BUILD_CPP_LIB": "OFF", "MPI_HOME": "/deps/openmpi"},
		},
		{
			name:   "szip with path",
			mutate: func(o *recipe.Options) { o.SzipSupport = true },
			deps:   map[string]string{"szip": "/deps/szip"},
			want:   map[string]string{"HDF5_ENABLE_SZIP_SUPPORT": "ON", "SZIP_ROOT": "/deps/szip"},
		},
		{
			name:    "zlib package without resolved path",
			mutate:  func(o *recipe.Options) {},
			want:    map[string]string{"HDF5_ENABLE_Z_LIB_SUPPORT": "ON", "ZLIB_USE_EXTERNAL": "OFF"},
			missing: []string{"ZLIB_ROOT", "HDF5_ALLOW_EXTERNAL_SUPPORT"},
		},
		{
			name:   "zlib downloaded by the hdf5 build",
			mutate: func(o *recipe.Options) { o.ZlibSource = recipe.ZlibDownload },
			deps:   map[string]string{"zlib": "/deps/zlib"},
			want: map[string]string{
				"HDF5_ALLOW_EXTERNAL_SUPPORT": "TGZ",
				"ZLIB_USE_EXTERNAL":           "ON",
				"ZLIB_TGZ_NAME":               "zlib-1.2.13.tar.gz",
				"ZLIB_TGZ_ORIGPATH":           "https://github.com/madler/zlib/releases/download/v1.2.13",
			},
			missing: []string{"ZLIB_ROOT"},
		},
		{
			name:    "no zlib",
			mutate:  func(o *recipe.Options) { o.WithZlib = false },
			deps:    map[string]string{"zlib": "/deps/zlib"},
			want:    map[string]string{"HDF5_ENABLE_Z_LIB_SUPPORT": "OFF"},
			missing: []string{"ZLIB_ROOT", "ZLIB_USE_EXTERNAL", "HDF5_ALLOW_EXTERNAL_SUPPORT"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := recipe.DefaultOptions()
			tt.mutate(&opts)

			tc, err := Resolve(opts, linux, "/work/build", "", tt.deps)
			require.NoError(t, err)

			for k, v := range tt.want {
				assert.Equal(t, v, tc.Variables[k], k)
			}
			for _, k := range tt.missing {
				assert.NotContains(t, tc.Variables, k)
			}
		})
	}
}

func TestResolve_Platforms(t *testing.T) {
	t.Run("windows uses visual studio", func(t *testing.T) {
		tc, err := Resolve(recipe.DefaultOptions(), windows, `C:\work\build`, "", nil)
		require.NoError(t, err)

		assert.Equal(t, "Visual Studio 17 2022", tc.Generator)
		assert.True(t, tc.MultiConfig)
		assert.Equal(t, "x64", tc.GeneratorPlatform)
		assert.Equal(t, "_d", tc.Variables["CMAKE_DEBUG_POSTFIX"])
		assert.Equal(t, "MultiThreaded$<$<CONFIG:Debug>:Debug>DLL", tc.Variables["CMAKE_MSVC_RUNTIME_LIBRARY"])
	})

	t.Run("macos uses xcode and sets the library path", func(t *testing.T) {
		tc, err := Resolve(recipe.DefaultOptions(), macos, "/work/build", "", nil)
		require.NoError(t, err)

		assert.Equal(t, "Xcode", tc.Generator)
		assert.True(t, tc.MultiConfig)
		assert.Equal(t, "/work/build/lib", tc.Env["DYLD_LIBRARY_PATH"])
	})

	t.Run("generator override", func(t *testing.T) {
		tc, err := Resolve(recipe.DefaultOptions(), linux, "/work/build", "Ninja Multi-Config", nil)
		require.NoError(t, err)

		assert.Equal(t, "Ninja Multi-Config", tc.Generator)
		assert.True(t, tc.MultiConfig)
	})

	t.Run("unsupported visual studio arch", func(t *testing.T) {
		s := windows
		s.Arch = "sparc"
		_, err := Resolve(recipe.DefaultOptions(), s, `C:\work\build`, "", nil)
		assert.Error(t, err)
	})
}

func TestIsMultiConfig(t *testing.T) {
	tests := []struct {
		generator string
		want      bool
	}{
		{"Visual Studio 17 2022", true},
		{"Visual Studio 16 2019", true},
		{"Xcode", true},
		{"Ninja Multi-Config", true},
		{"Ninja", false},
		{"Unix Makefiles", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.generator, func(t *testing.T) {
			assert.Equal(t, tt.want, IsMultiConfig(tt.generator))
		})
	}
}

func TestRenderCacheFile(t *testing.T) {
	out := RenderCacheFile(Variables{
		"ZLIB_ROOT":     "/deps/zlib",
		"BUILD_TESTING": "OFF",
		"QUOTED":        `a "b" c\d`,
	})

	assert.Equal(t, "# Generated by hdf5pkg. Do not edit.\n"+
		"set(BUILD_TESTING \"OFF\" CACHE STRING \"\" FORCE)\n"+
		"set(QUOTED \"a \\\"b\\\" c\\\\d\" CACHE STRING \"\" FORCE)\n"+
		"set(ZLIB_ROOT \"/deps/zlib\" CACHE STRING \"\" FORCE)\n", out)
}

func TestWriteCacheFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "build")

	path, err := WriteCacheFile(dir, Variables{"BUILD_TESTING": "OFF"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, CacheFileName), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `set(BUILD_TESTING "OFF" CACHE STRING "" FORCE)`)
}

func TestGeneratorPlatform(t *testing.T) {
	tests := []struct {
		generator string
		arch      string
		want      string
		wantErr   bool
	}{
		{"Visual Studio 17 2022", "x86_64", "x64", false},
		{"Visual Studio 17 2022", "x86", "Win32", false},
		{"Visual Studio 16 2019", "armv8", "ARM64", false},
		{"Visual Studio 17 2022", "sparc", "", true},
		{"Ninja", "sparc", "", false},
		{"Xcode", "armv8", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.generator+"/"+tt.arch, func(t *testing.T) {
			got, err := GeneratorPlatform(tt.generator, tt.arch)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
