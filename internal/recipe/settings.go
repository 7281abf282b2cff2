package recipe

import (
	"runtime"
	"strings"

	"github.com/biovault/hdf5pkg/internal/codes"
)

// Platform is one of the three platform families the recipe distinguishes
type Platform int

const (
	PlatformLinux Platform = iota
	PlatformWindows
	PlatformMacos
)

func (p Platform) String() string {
	switch p {
	case PlatformWindows:
		return "Windows"
	case PlatformMacos:
		return "Macos"
	default:
		return "Linux"
	}
}

// Build variants
const (
	Debug   = "Debug"
	Release = "Release"
)

// Variants lists the build variants in the order they are processed
var Variants = []string{Debug, Release}

// Compiler identities with special handling
const (
	CompilerVisualStudio = "Visual Studio"
	CompilerMSVC         = "msvc"
)

// Settings describe the target of a build. They are read-only within the pipeline.
type Settings struct {
	OS              string
	Compiler        string
	CompilerRuntime string
	BuildType       string
	Arch            string
}

// DetectSettings derives default settings from the host
func DetectSettings() Settings {
	return settingsFor(runtime.GOOS, runtime.GOARCH)
}

func settingsFor(goos, goarch string) Settings {
	s := Settings{BuildType: Release}

	switch goos {
	case "windows":
		s.OS = "Windows"
		s.Compiler = CompilerVisualStudio
		s.CompilerRuntime = "MD"
	case "darwin":
		s.OS = "Macos"
		s.Compiler = "apple-clang"
	default:
		s.OS = "Linux"
		s.Compiler = "gcc"
	}

	switch goarch {
	case "amd64":
		s.Arch = "x86_64"
	case "386":
		s.Arch = "x86"
	case "arm64":
		s.Arch = "armv8"
	default:
		s.Arch = goarch
	}

	return s
}

// Apply overrides settings from key=value pairs
func (s *Settings) Apply(values map[string]string) error {
	for key, value := range values {
		switch key {
		case "os":
			s.OS = value
		case "compiler":
			s.Compiler = value
		case "compiler.runtime":
			s.CompilerRuntime = value
		case "build_type":
			s.BuildType = value
		case "arch":
			s.Arch = value
		default:
			return codes.NewConfigError("unknown setting %q", key)
		}
	}

	return nil
}

// Validate checks that the settings name a supported target
func (s Settings) Validate() error {
	switch strings.ToLower(s.OS) {
	case "windows", "linux", "macos":
	default:
		return codes.NewConfigError("unsupported os %q", s.OS)
	}

	if s.BuildType != Debug && s.BuildType != Release {
		return codes.NewConfigError("unsupported build_type %q", s.BuildType)
	}

	if s.Arch == "" {
		return codes.NewConfigError("arch not specified")
	}

	return nil
}

// Platform classifies the OS setting
func (s Settings) Platform() Platform {
	switch strings.ToLower(s.OS) {
	case "windows":
		return PlatformWindows
	case "macos":
		return PlatformMacos
	default:
		return PlatformLinux
	}
}

// IsVisualStudio reports whether the compiler is an MSVC flavour
func (s Settings) IsVisualStudio() bool {
	return s.Compiler == CompilerVisualStudio || s.Compiler == CompilerMSVC
}

// Values returns the settings as key=value pairs, empty values omitted
func (s Settings) Values() map[string]string {
	values := map[string]string{
		"os":               s.OS,
		"compiler":         s.Compiler,
		"compiler.runtime": s.CompilerRuntime,
		"build_type":       s.BuildType,
		"arch":             s.Arch,
	}

	for k, v := range values {
		if v == "" {
			delete(values, k)
		}
	}

	return values
}
