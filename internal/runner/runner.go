// Package runner executes external tools (cmake, conan, the test example)
// one at a time and turns failures into codes.ToolError.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"

	"github.com/biovault/hdf5pkg/internal/codes"
)

// ShellCommand is a fully resolved tool invocation
type ShellCommand struct {
	Path string
	Args []string
	// Working directory, empty for the current one
	Dir string
	// Extra environment, appended to the current environment
	Env map[string]string
}

// String renders the command line for progress output
func (c ShellCommand) String() string {
	return strings.TrimSpace(c.Path + " " + strings.Join(c.Args, " "))
}

// Commander interface for testing
type Commander interface {
	Run() error
}

// Executor runs shell commands. Runner is the production implementation.
type Executor interface {
	Run(ctx context.Context, cmd ShellCommand) error
	Output(ctx context.Context, cmd ShellCommand) (string, error)
}

// Runner executes commands through os/exec
type Runner struct {
	// Tool output is streamed here
	Stdout io.Writer
	Stderr io.Writer

	execCommand func(ctx context.Context, name string, args ...string) Commander
}

// New creates a runner streaming tool output to the given writers
func New(stdout, stderr io.Writer) *Runner {
	if stdout == nil {
		stdout = os.Stdout
	}

	if stderr == nil {
		stderr = os.Stderr
	}

	return &Runner{
		Stdout: stdout,
		Stderr: stderr,
		execCommand: func(ctx context.Context, name string, args ...string) Commander {
			return exec.CommandContext(ctx, name, args...)
		},
	}
}

// Run executes the command, streaming its output
func (r *Runner) Run(ctx context.Context, cmd ShellCommand) error {
	return r.run(ctx, cmd, r.Stdout)
}

// Output executes the command and returns its standard output
func (r *Runner) Output(ctx context.Context, cmd ShellCommand) (string, error) {
	var buf bytes.Buffer
	err := r.run(ctx, cmd, &buf)

	return buf.String(), err
}

func (r *Runner) run(ctx context.Context, cmd ShellCommand, stdout io.Writer) error {
	c := r.execCommand(ctx, cmd.Path, cmd.Args...)
	if ec, ok := c.(*exec.Cmd); ok {
		ec.Stdout = stdout
		ec.Stderr = r.Stderr
		ec.Dir = cmd.Dir
		if len(cmd.Env) > 0 {
			ec.Env = append(os.Environ(), envList(cmd.Env)...)
		}
	}

	err := c.Run()
	if err == nil {
		return nil
	}

	toolErr := &codes.ToolError{Tool: cmd.Path, Args: cmd.Args, Err: err}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		toolErr.ExitCode = exitErr.ExitCode()
	}

	return toolErr
}

func envList(env map[string]string) []string {
	list := make([]string, 0, len(env))
	for k, v := range env {
		list = append(list, fmt.Sprintf("%s=%s", k, v))
	}
	sort.Strings(list)

	return list
}
