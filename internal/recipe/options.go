package recipe

import (
	"sort"
	"strconv"
	"strings"

	"github.com/biovault/hdf5pkg/internal/codes"
	"github.com/biovault/hdf5pkg/internal/utils"
)

// Strategies for obtaining zlib when with_zlib is enabled
const (
	// ZlibFromPackage links against a separately resolved zlib package
	ZlibFromPackage = "package"
	// ZlibDownload lets the HDF5 CMake build fetch the zlib tarball itself
	ZlibDownload = "download"
)

// Options are the user-facing toggles of the recipe
type Options struct {
	Shared      bool
	CXX         bool
	Parallel    bool
	WithZlib    bool
	SzipSupport bool
	BuildHL     bool
	ZlibSource  string
}

// DefaultOptions returns the recipe defaults
func DefaultOptions() Options {
	return Options{
		Shared:      false,
		CXX:         true,
		Parallel:    false,
		WithZlib:    true,
		SzipSupport: false,
		BuildHL:     false,
		ZlibSource:  ZlibFromPackage,
	}
}

// OptionNames lists the recognised option keys
var OptionNames = []string{"shared", "cxx", "parallel", "with_zlib", "szip_support", "build_hl", "zlib_source"}

// Set assigns a single option from its string form
func (o *Options) Set(name, value string) error {
	if name == "zlib_source" {
		o.ZlibSource = strings.ToLower(strings.TrimSpace(value))
		return nil
	}

	b, err := utils.ParseBool(value)
	if err != nil {
		return codes.NewConfigError("option %s: %v", name, err)
	}

	switch name {
	case "shared":
		o.Shared = b
	case "cxx":
		o.CXX = b
	case "parallel":
		o.Parallel = b
	case "with_zlib":
		o.WithZlib = b
	case "szip_support":
		o.SzipSupport = b
	case "build_hl":
		o.BuildHL = b
	default:
		return codes.NewConfigError("unknown option %q", name)
	}

	return nil
}

// Apply assigns every option in values
func (o *Options) Apply(values map[string]string) error {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if err := o.Set(k, values[k]); err != nil {
			return err
		}
	}

	return nil
}

// Validate rejects incompatible option combinations. It never touches the
// filesystem or network so it can run before anything else.
func (o Options) Validate() error {
	if o.CXX && o.Parallel {
		return codes.NewConfigError("The cxx and parallel options are not compatible")
	}

	switch o.ZlibSource {
	case ZlibFromPackage:
	case ZlibDownload:
		if !o.WithZlib {
			return codes.NewConfigError("zlib_source=%s requires with_zlib=True", ZlibDownload)
		}
	default:
		return codes.NewConfigError("invalid zlib_source %q: expected %q or %q", o.ZlibSource, ZlibFromPackage, ZlibDownload)
	}

	return nil
}

// UsesZlibPackage reports whether zlib comes from a resolved dependency
func (o Options) UsesZlibPackage() bool {
	return o.WithZlib && o.ZlibSource == ZlibFromPackage
}

// Values returns the options as name=value pairs in conan spelling
func (o Options) Values() map[string]string {
	return map[string]string{
		"shared":       pyBool(o.Shared),
		"cxx":          pyBool(o.CXX),
		"parallel":     pyBool(o.Parallel),
		"with_zlib":    pyBool(o.WithZlib),
		"szip_support": pyBool(o.SzipSupport),
		"build_hl":     pyBool(o.BuildHL),
		"zlib_source":  o.ZlibSource,
	}
}

func pyBool(b bool) string {
	s := strconv.FormatBool(b)
	return strings.ToUpper(s[:1]) + s[1:]
}
