package recipe

import (
	"crypto/sha1"
	"encoding/hex"
	"io"
	"sort"
)

// PackageID computes the binary identity of a package. Every package holds
// both Debug and Release, so neither build_type nor the MSVC runtime is part
// of it.
func PackageID(r *Recipe, o Options, s Settings) string {
	h := sha1.New()

	h.Write([]byte(r.Reference() + "\n"))

	settings := s.Values()
	delete(settings, "build_type")

	if s.IsVisualStudio() {
		delete(settings, "compiler.runtime")
	}

	writeSorted(h, "[settings]", settings)
	writeSorted(h, "[options]", o.Values())

	return hex.EncodeToString(h.Sum(nil))
}

func writeSorted(w io.Writer, header string, values map[string]string) {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	io.WriteString(w, header+"\n")
	for _, k := range keys {
		w.Write([]byte(k + "=" + values[k] + "\n"))
	}
}
