package recipe

// Requirement is a versioned dependency reference
type Requirement struct {
	Name    string
	Version string
}

// Reference returns name/version
func (r Requirement) Reference() string {
	return r.Name + "/" + r.Version
}

// Pinned dependency versions
const (
	ZlibVersion    = "1.2.13"
	SzipVersion    = "2.1.1"
	OpenMPIVersion = "4.1.0"
)

// Requirements declares the dependencies the options pull in
func Requirements(o Options) []Requirement {
	var reqs []Requirement

	if o.UsesZlibPackage() {
		reqs = append(reqs, Requirement{Name: "zlib", Version: ZlibVersion})
	}

	if o.SzipSupport {
		reqs = append(reqs, Requirement{Name: "szip", Version: SzipVersion})
	}

	if o.Parallel {
		reqs = append(reqs, Requirement{Name: "openmpi", Version: OpenMPIVersion})
	}

	return reqs
}
