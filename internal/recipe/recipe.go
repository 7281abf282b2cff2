// Package recipe holds the fixed description of the HDF5 package: its
// metadata, the user-facing options, the target settings and the
// dependencies those options pull in.
package recipe

import (
	"fmt"
	"path"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/biovault/hdf5pkg/internal/codes"
)

const (
	Name        = "hdf5"
	License     = "MIT"
	Description = "HDF5 C and C++ libraries"
	URL         = "http://github.com/biovault/conan-hdf5"

	DefaultVersion = "1.14.2"

	// SourceSubfolder is the fixed local name of the extracted source tree
	SourceSubfolder = "hdf5"

	releasesBaseURL = "https://support.hdfgroup.org/ftp/HDF5/releases"
)

// Recipe identifies the upstream release being packaged
type Recipe struct {
	Version     string
	PatchSuffix string
}

// New creates a recipe for the given version. An empty version selects DefaultVersion.
func New(version, patchSuffix string) (*Recipe, error) {
	if version == "" {
		version = DefaultVersion
	}

	if strings.Count(version, ".") < 1 {
		return nil, codes.NewConfigError("invalid version %q: expected major.minor[.patch]", version)
	}

	if _, err := semver.NewVersion(version); err != nil {
		return nil, codes.NewConfigError("invalid version %q: %v", version, err)
	}

	return &Recipe{Version: version, PatchSuffix: patchSuffix}, nil
}

// ShortVersion returns major.minor
func (r *Recipe) ShortVersion() string {
	parts := strings.Split(r.Version, ".")
	return parts[0] + "." + parts[1]
}

// SourceFolder is the root directory inside the upstream archive
func (r *Recipe) SourceFolder() string {
	return fmt.Sprintf("CMake-hdf5-%s%s", r.Version, r.PatchSuffix)
}

// ArchiveExt returns the archive format published for the platform
func ArchiveExt(p Platform) string {
	if p == PlatformWindows {
		return "zip"
	}

	return "tar.gz"
}

// SourceURL returns the download URL of the CMake source distribution
func (r *Recipe) SourceURL(p Platform) string {
	return fmt.Sprintf("%s/hdf5-%s/hdf5-%s/src/%s.%s",
		releasesBaseURL, r.ShortVersion(), r.Version, r.SourceFolder(), ArchiveExt(p))
}

// ArchiveName is the file name of the downloaded archive
func (r *Recipe) ArchiveName(p Platform) string {
	return path.Base(r.SourceURL(p))
}

// BuildScriptFolder is the CMake source directory, relative to the work dir
func (r *Recipe) BuildScriptFolder() string {
	return path.Join(SourceSubfolder, fmt.Sprintf("hdf5-%s%s", r.Version, r.PatchSuffix))
}

// Reference returns name/version
func (r *Recipe) Reference() string {
	return Name + "/" + r.Version
}
