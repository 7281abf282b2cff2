// Package logging prints pipeline progress the way the CLI reports it:
// plain lines on stdout, verbose detail only on request, warnings and
// errors on stderr.
package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

// Printer writes progress messages
type Printer struct {
	Out     io.Writer
	Err     io.Writer
	Verbose bool
	Quiet   bool

	stage *color.Color
	warn  *color.Color
	fail  *color.Color
}

// New creates a printer writing to stdout and stderr
func New(verbose, quiet bool) *Printer {
	return NewWithWriters(os.Stdout, os.Stderr, verbose, quiet)
}

// NewWithWriters creates a printer with custom writers
func NewWithWriters(out, errOut io.Writer, verbose, quiet bool) *Printer {
	return &Printer{
		Out:     out,
		Err:     errOut,
		Verbose: verbose,
		Quiet:   quiet,
		stage:   color.New(color.FgCyan, color.Bold),
		warn:    color.New(color.FgYellow),
		fail:    color.New(color.FgRed, color.Bold),
	}
}

// Discard returns a printer that drops everything
func Discard() *Printer {
	return NewWithWriters(io.Discard, io.Discard, false, true)
}

// Stage announces a pipeline stage
func (p *Printer) Stage(format string, args ...any) {
	if p.Quiet {
		return
	}

	p.stage.Fprintf(p.Out, "==> "+format+"\n", args...)
}

// Infof prints a progress line
func (p *Printer) Infof(format string, args ...any) {
	if p.Quiet {
		return
	}

	fmt.Fprintf(p.Out, format+"\n", args...)
}

// Debugf prints only in verbose mode
func (p *Printer) Debugf(format string, args ...any) {
	if !p.Verbose {
		return
	}

	fmt.Fprintf(p.Out, format+"\n", args...)
}

// Warnf prints a warning to stderr
func (p *Printer) Warnf(format string, args ...any) {
	p.warn.Fprintf(p.Err, "Warning: "+format+"\n", args...)
}

// Errorf prints an error to stderr, regardless of quiet mode
func (p *Printer) Errorf(format string, args ...any) {
	p.fail.Fprintf(p.Err, "****ERROR*** "+format+"\n", args...)
}

// Writer returns the stream external tool output should go to
func (p *Printer) Writer() io.Writer {
	if p.Quiet {
		return io.Discard
	}

	return p.Out
}
