package deps

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/biovault/hdf5pkg/internal/logging"
	"github.com/biovault/hdf5pkg/internal/recipe"
	"github.com/biovault/hdf5pkg/internal/runner"
)

// ConanfileName is the consumer file written for conan
const ConanfileName = "conanfile.txt"

// Resolver installs the requirements with conan and records where they went
type Resolver struct {
	ConanPath string
	Exec      runner.Executor
	Printer   *logging.Printer
}

// NewResolver creates a resolver using the given conan executable
func NewResolver(conanPath string, exec runner.Executor, p *logging.Printer) *Resolver {
	if conanPath == "" {
		conanPath = "conan"
	}

	if p == nil {
		p = logging.Discard()
	}

	return &Resolver{ConanPath: conanPath, Exec: exec, Printer: p}
}

// Resolve installs reqs for Release then Debug from scratchDir and returns
// the release and debug tables
func (r *Resolver) Resolve(ctx context.Context, scratchDir string, reqs []recipe.Requirement, s recipe.Settings, buildProfile, hostProfile string) (release, debug Table, err error) {
	if buildProfile == "" || hostProfile == "" {
		return nil, nil, fmt.Errorf("build and host profiles are required")
	}

	if err := WriteConanfile(scratchDir, reqs); err != nil {
		return nil, nil, err
	}

	for _, variant := range []string{recipe.Release, recipe.Debug} {
		r.Printer.Stage("Installing %s dependencies", variant)

		install := runner.ShellCommand{
			Path: r.ConanPath,
			Args: r.InstallArgs(scratchDir, s, variant, buildProfile, hostProfile),
		}
		r.Printer.Debugf("Command: %s", install)

		if err := r.Exec.Run(ctx, install); err != nil {
			return nil, nil, err
		}
	}

	release, err = r.info(ctx, scratchDir, s, recipe.Release, buildProfile, hostProfile)
	if err != nil {
		return nil, nil, err
	}

	debug, err = r.info(ctx, scratchDir, s, recipe.Debug, buildProfile, hostProfile)
	if err != nil {
		return nil, nil, err
	}

	return release, debug, nil
}

// InstallArgs builds the conan install arguments for a variant
func (r *Resolver) InstallArgs(dir string, s recipe.Settings, variant, buildProfile, hostProfile string) []string {
	args := []string{"install", dir, "-pr:b=" + buildProfile, "-pr:h=" + hostProfile, "--build=never"}
	return append(args, hostSettings(s, variant)...)
}

// InfoArgs builds the conan info arguments for a variant
func (r *Resolver) InfoArgs(dir string, s recipe.Settings, variant, buildProfile, hostProfile string) []string {
	args := []string{"info", "--paths", "--only", "package_folder", dir, "-pr:b=" + buildProfile, "-pr:h=" + hostProfile}
	return append(args, hostSettings(s, variant)...)
}

func (r *Resolver) info(ctx context.Context, dir string, s recipe.Settings, variant, buildProfile, hostProfile string) (Table, error) {
	cmd := runner.ShellCommand{
		Path: r.ConanPath,
		Args: r.InfoArgs(dir, s, variant, buildProfile, hostProfile),
	}
	r.Printer.Debugf("Command: %s", cmd)

	out, err := r.Exec.Output(ctx, cmd)
	if err != nil {
		return nil, err
	}

	t := ParseInfo(out)
	r.Printer.Infof("%s: %v", variant, t)

	return t, nil
}

// WriteConanfile writes a consumer conanfile listing reqs
func WriteConanfile(dir string, reqs []recipe.Requirement) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	var b strings.Builder
	b.WriteString("[requires]\n")
	for _, req := range reqs {
		b.WriteString(req.Reference() + "\n")
	}

	if err := os.WriteFile(filepath.Join(dir, ConanfileName), []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", ConanfileName, err)
	}

	return nil
}

// ParseInfo reduces conan info output to a table. Each reference line is
// followed by its package_folder line; the consumer has none and is skipped.
func ParseInfo(out string) Table {
	t := Table{}
	ref := ""

	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if folder, ok := strings.CutPrefix(line, "package_folder:"); ok {
			if ref != "" {
				t[ref] = strings.TrimSpace(folder)
			}
			ref = ""

			continue
		}

		ref = ""
		if name, _, ok := strings.Cut(line, "/"); ok && !strings.ContainsAny(name, " ()") {
			ref = name
		}
	}

	return t
}

func hostSettings(s recipe.Settings, variant string) []string {
	args := []string{"-s:h", "build_type=" + variant}

	if s.Platform() == recipe.PlatformWindows {
		runtime := "MD"
		if variant == recipe.Debug {
			runtime = "MDd"
		}

		args = append(args, "-s:h", "compiler.runtime="+runtime)
	}

	return args
}
