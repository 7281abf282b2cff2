package codes

import (
	"errors"
	"fmt"
	"strings"
)

// Process exit codes reported by hdf5pkg
const (
	ExitSuccess         = 0
	ExitFailure         = 1
	ExitConfigError     = 2
	ExitToolFailure     = 3
	ExitMissingArtifact = 4
)

// ExitCodes maps hdf5pkg exit codes to their descriptions
var ExitCodes = map[int]string{
	ExitSuccess:         "Success",
	ExitFailure:         "General failure",
	ExitConfigError:     "Invalid configuration",
	ExitToolFailure:     "External tool failed",
	ExitMissingArtifact: "Required artifact missing",
}

// ConfigError is an invalid combination of options or settings.
// It is always raised before any external process starts.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string {
	return e.Msg
}

// NewConfigError creates a configuration error with a formatted message
func NewConfigError(format string, args ...any) error {
	return &ConfigError{Msg: fmt.Sprintf(format, args...)}
}

// ToolError is a non-zero exit (or launch failure) of an external tool
type ToolError struct {
	Tool     string
	Args     []string
	ExitCode int
	Err      error
}

func (e *ToolError) Error() string {
	cmdline := strings.TrimSpace(e.Tool + " " + strings.Join(e.Args, " "))
	if e.ExitCode > 0 {
		return fmt.Sprintf("%s failed (exit code %d): %v", cmdline, e.ExitCode, e.Err)
	}

	return fmt.Sprintf("%s failed: %v", cmdline, e.Err)
}

func (e *ToolError) Unwrap() error {
	return e.Err
}

// MissingArtifactError is an expected file that is absent. Hint tells the
// operator how to produce it.
type MissingArtifactError struct {
	Paths []string
	Hint  string
}

func (e *MissingArtifactError) Error() string {
	msg := fmt.Sprintf("missing required files: %s", strings.Join(e.Paths, ", "))
	if e.Hint != "" {
		msg += "\n" + e.Hint
	}

	return msg
}

// ExitCode classifies err into one of the process exit codes
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var cfgErr *ConfigError
	if errors.As(err, &cfgErr) {
		return ExitConfigError
	}

	var missing *MissingArtifactError
	if errors.As(err, &missing) {
		return ExitMissingArtifact
	}

	var toolErr *ToolError
	if errors.As(err, &toolErr) {
		return ExitToolFailure
	}

	return ExitFailure
}

// IsSuccess returns true if the exit code indicates success
func IsSuccess(code int) bool {
	return code == ExitSuccess
}

// GetErrorMessage returns the description for a given exit code, or a generic message if unknown
func GetErrorMessage(code int) string {
	if msg, ok := ExitCodes[code]; ok {
		return msg
	}

	return "Unknown error"
}
