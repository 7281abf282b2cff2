package smoke

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biovault/hdf5pkg/internal/cmake"
	"github.com/biovault/hdf5pkg/internal/logging"
	"github.com/biovault/hdf5pkg/internal/recipe"
	"github.com/biovault/hdf5pkg/internal/runner"
	"github.com/biovault/hdf5pkg/internal/toolchain"
)

type fakeExecutor struct {
	commands []runner.ShellCommand
	failOn   string
}

func (f *fakeExecutor) Run(_ context.Context, cmd runner.ShellCommand) error {
	f.commands = append(f.commands, cmd)
	if f.failOn != "" && strings.Contains(cmd.String(), f.failOn) {
		return errors.New("exit status 2")
	}

	return nil
}

func (f *fakeExecutor) Output(ctx context.Context, cmd runner.ShellCommand) (string, error) {
	return "", f.Run(ctx, cmd)
}

var small = []Dataset{
	{Name: "test_dataset1", Rows: 30, Cols: 8},
	{Name: "test_dataset2", Rows: 10, Cols: 8},
}

func TestWriteDatasets_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), DatasetFile)

	require.NoError(t, WriteDatasets(path, small, 7))
	assert.NoError(t, VerifyDatasets(path, small))
}

func TestVerifyDatasets_Missing(t *testing.T) {
	path := filepath.Join(t.TempDir(), DatasetFile)
	require.NoError(t, WriteDatasets(path, small[:1], 7))

	err := VerifyDatasets(path, small)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dataset test_dataset2 not found")
}

func TestVerifyDatasets_MissingFile(t *testing.T) {
	err := VerifyDatasets(filepath.Join(t.TempDir(), "nope.hdf5"), small)
	assert.ErrorContains(t, err, "failed to open")
}

func TestWriteExample(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "src")
	require.NoError(t, WriteExample(dir))

	lists, err := os.ReadFile(filepath.Join(dir, "CMakeLists.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(lists), "find_package(hdf5")

	_, err = os.Stat(filepath.Join(dir, "hdf5example.cpp"))
	assert.NoError(t, err)
}

func newPackageDir(t *testing.T) string {
	t.Helper()

	dir := filepath.Join(t.TempDir(), "package")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "lib"), 0o755))

	return dir
}

func TestTester_Run(t *testing.T) {
	pkg := newPackageDir(t)
	work := t.TempDir()
	host := recipe.DetectSettings()
	exec := &fakeExecutor{}

	tester := NewTester(exec, logging.Discard(), cmake.NewCommandBuilder("cmake", 0))
	tester.Datasets = small

	require.NoError(t, tester.Run(context.Background(), pkg, work, host, "Unix Makefiles"))

	testDir := filepath.Join(work, TestDir)
	buildDir := filepath.Join(testDir, "build")

	require.Len(t, exec.commands, 3)
	assert.Equal(t, []string{
		"-S", filepath.Join(testDir, "src"), "-B", buildDir, "-G", "Unix Makefiles",
		"-C", filepath.Join(buildDir, toolchain.CacheFileName), "-DCMAKE_BUILD_TYPE=Release",
	}, exec.commands[0].Args)
	assert.Equal(t, []string{"--build", buildDir, "--config", "Release", "--verbose"}, exec.commands[1].Args)

	run := exec.commands[2]
	assert.Equal(t, ExecutablePath(buildDir, host, false), run.Path)
	assert.Equal(t, []string{DatasetFile, "test_dataset1"}, run.Args)
	assert.Equal(t, testDir, run.Dir)

	cache, err := os.ReadFile(filepath.Join(buildDir, toolchain.CacheFileName))
	require.NoError(t, err)
	p := filepath.ToSlash(pkg)
	assert.Contains(t, string(cache), `set(CMAKE_PREFIX_PATH "`+p+`/share;`+p+`" CACHE STRING "" FORCE)`)

	assert.NoError(t, VerifyDatasets(filepath.Join(testDir, DatasetFile), small))
}

func TestTester_RunCrossBuildSkipsExample(t *testing.T) {
	s := recipe.DetectSettings()
	s.Arch = "sparc"

	exec := &fakeExecutor{}
	tester := NewTester(exec, logging.Discard(), cmake.NewCommandBuilder("", 0))
	tester.Datasets = small

	require.NoError(t, tester.Run(context.Background(), newPackageDir(t), t.TempDir(), s, "Unix Makefiles"))
	assert.Len(t, exec.commands, 2)
}

func TestTester_RunBuildFailure(t *testing.T) {
	exec := &fakeExecutor{failOn: "--build"}
	tester := NewTester(exec, logging.Discard(), cmake.NewCommandBuilder("", 0))
	tester.Datasets = small

	err := tester.Run(context.Background(), newPackageDir(t), t.TempDir(), recipe.DetectSettings(), "Unix Makefiles")
	require.Error(t, err)
	assert.Len(t, exec.commands, 2)
}

func TestTester_RunMissingPackage(t *testing.T) {
	exec := &fakeExecutor{}
	tester := NewTester(exec, logging.Discard(), cmake.NewCommandBuilder("", 0))

	err := tester.Run(context.Background(), filepath.Join(t.TempDir(), "missing"), t.TempDir(), recipe.DetectSettings(), "")
	require.Error(t, err)
	assert.Empty(t, exec.commands)
}

func TestExecutablePath(t *testing.T) {
	windows := recipe.Settings{OS: "Windows", Compiler: recipe.CompilerVisualStudio, Arch: "x86_64"}
	linux := recipe.Settings{OS: "Linux", Compiler: "gcc", Arch: "x86_64"}

	assert.Equal(t, filepath.Join("b", "Release", "hdf5example.exe"), ExecutablePath("b", windows, true))
	assert.Equal(t, filepath.Join("b", "hdf5example"), ExecutablePath("b", linux, false))
}

func TestCrossBuilding(t *testing.T) {
	host := recipe.DetectSettings()
	assert.False(t, CrossBuilding(host))

	other := host
	other.OS = "Plan9"
	assert.True(t, CrossBuilding(other))
}
