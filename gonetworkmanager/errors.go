package gonetworkmanager

import (
	"fmt"
	"strings"
)

// UnavailableError means nmcli could not be started at all (not installed,
// not executable, or not found in PATH).
type UnavailableError struct {
	// Binary is the nmcli path that was tried
	Binary string
	Err    error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("nmcli unavailable (%s): %v", e.Binary, e.Err)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

// CommandError is a non-zero exit (or timeout) from an nmcli invocation.
type CommandError struct {
	Args     []string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *CommandError) Error() string {
	cmd := strings.Join(redactArgs(e.Args), " ")
	if e.Stderr != "" {
		return fmt.Sprintf("nmcli command '%s' failed (exit code %d): %s", cmd, e.ExitCode, e.Stderr)
	}
	return fmt.Sprintf("nmcli command '%s' failed (exit code %d): %v", cmd, e.ExitCode, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// ParseError means nmcli output did not match the expected format.
type ParseError struct {
	// Command names the nmcli report being parsed
	Command string
	// Line is the offending line, if any
	Line string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line != "" {
		return fmt.Sprintf("failed to parse %s output, line %q: %v", e.Command, e.Line, e.Err)
	}
	return fmt.Sprintf("failed to parse %s output: %v", e.Command, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
