package logging

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrinter(t *testing.T) {
	tests := []struct {
		name      string
		verbose   bool
		quiet     bool
		wantOut   []string
		wantNoOut []string
	}{
		{
			name:      "default prints progress but not debug",
			wantOut:   []string{"==> Building Debug", "copying zlib"},
			wantNoOut: []string{"cmake --build"},
		},
		{
			name:    "verbose prints debug",
			verbose: true,
			wantOut: []string{"==> Building Debug", "copying zlib", "cmake --build"},
		},
		{
			name:      "quiet prints nothing on stdout",
			quiet:     true,
			wantNoOut: []string{"Building", "copying zlib", "cmake --build"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out, errOut bytes.Buffer
			p := NewWithWriters(&out, &errOut, tt.verbose, tt.quiet)

			p.Stage("Building %s", "Debug")
			p.Infof("copying %s", "zlib")
			p.Debugf("cmake --build %s", "build")
			p.Warnf("no pdb files")
			p.Errorf("Missing library dict.json files.")

			for _, s := range tt.wantOut {
				assert.Contains(t, out.String(), s)
			}
			for _, s := range tt.wantNoOut {
				assert.NotContains(t, out.String(), s)
			}

			assert.Contains(t, errOut.String(), "Warning: no pdb files")
			assert.Contains(t, errOut.String(), "****ERROR*** Missing library dict.json files.")
		})
	}
}

func TestPrinter_Writer(t *testing.T) {
	var out bytes.Buffer
	assert.Equal(t, io.Writer(&out), NewWithWriters(&out, &out, false, false).Writer())
	assert.Equal(t, io.Discard, NewWithWriters(&out, &out, false, true).Writer())
}
