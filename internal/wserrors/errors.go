// Package wserrors provides the category-tagged error type shared by every
// workstack subsystem. Use CategoryOf (built on errors.As) to branch on
// category.
package wserrors

import (
	"errors"
	"fmt"
)

// Category classifies a failure so the CLI layer can choose an exit code
// and a presentation without inspecting the message text.
type Category int

const (
	// Usage indicates an invalid flag combination or missing required input.
	Usage Category = iota
	// Validation indicates input violates a data rule (e.g. reserved name).
	Validation
	// NotFound indicates a referenced entity doesn't exist.
	NotFound
	// Conflict indicates an entity already exists or is in use elsewhere.
	Conflict
	// Precondition indicates state doesn't permit the requested action.
	Precondition
	// External indicates an underlying tool (git, gh, the stacked-diff CLI) failed.
	External
	// Corruption indicates persisted data is malformed.
	Corruption
	// Timeout indicates a status collector exceeded its budget. Internal only;
	// never propagates past the status pipeline.
	Timeout
)

func (c Category) String() string {
	switch c {
	case Usage:
		return "usage"
	case Validation:
		return "validation"
	case NotFound:
		return "not_found"
	case Conflict:
		return "conflict"
	case Precondition:
		return "precondition"
	case External:
		return "external"
	case Corruption:
		return "corruption"
	case Timeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Error is the single error kind every workstack interface surfaces.
type Error struct {
	Category Category
	Message  string
	Remedy   string // optional one-line remediation hint
	ExitCode int    // propagated exit code for External errors; 0 means "use default"
	Err      error  // wrapped cause, if any
}

func (e *Error) Error() string {
	if e.Remedy != "" {
		return fmt.Sprintf("%s\n%s", e.Message, e.Remedy)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func new(cat Category, format string, args ...any) *Error {
	return &Error{Category: cat, Message: fmt.Sprintf(format, args...)}
}

// New constructs a plain categorized error.
func New(cat Category, format string, args ...any) *Error {
	return new(cat, format, args...)
}

// WithRemedy attaches a remediation hint to an existing categorized error.
func (e *Error) WithRemedy(format string, args ...any) *Error {
	e.Remedy = fmt.Sprintf(format, args...)
	return e
}

// Wrap wraps an underlying error with a category and message.
func Wrap(cat Category, err error, format string, args ...any) *Error {
	e := new(cat, format, args...)
	e.Err = err
	return e
}

// CategoryOf extracts the category of err, or (0, false) if err is not one of ours.
func CategoryOf(err error) (Category, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Category, true
	}
	return 0, false
}

// ExternalFailed wraps a subprocess failure, recording its exit code so the
// CLI layer can forward it.
func ExternalFailed(command string, exitCode int, err error) *Error {
	e := Wrap(External, err, "command failed: %s", command)
	e.ExitCode = exitCode
	return e
}
