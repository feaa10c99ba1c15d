// Package exception provides the classified error type used throughout the
// labelpress print pipeline. Every failure that crosses a component boundary
// (executor, renderer, worker) is represented as a PrintError carrying one of
// four kinds, so callers can react to a timeout differently from a missing
// template without string matching.
package exception

import (
	"errors"
	"fmt"
	"runtime"
)

// Kind classifies a PrintError into one of the failure categories of the
// rendering pipeline.
type Kind string

const (
	// KindTimeout indicates the external renderer exceeded its wall-clock
	// deadline and was forcibly terminated. Never retried automatically.
	KindTimeout Kind = "TIMEOUT"
	// KindExecution indicates the external renderer ran and exited with a
	// non-zero status. Carries the exit code and captured diagnostics.
	KindExecution Kind = "EXECUTION"
	// KindMissingResource indicates a required input (template, data file or
	// the renderer executable itself) was absent before launch.
	KindMissingResource Kind = "MISSING_RESOURCE"
	// KindInternal covers any unexpected condition inside the pipeline that
	// does not fit the other kinds.
	KindInternal Kind = "INTERNAL"
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	return string(k)
}

// PrintError is the classified error type of the print pipeline.
// It holds the module where the error occurred, a message, the wrapped
// original error and the failure classification, plus the diagnostics
// captured from the external process when applicable.
type PrintError struct {
	// Kind is the failure classification.
	Kind Kind
	// Module indicates the component where the error occurred
	// (e.g. "executor", "renderer", "worker").
	Module string
	// Message is a concise description of the error.
	Message string
	// ExitCode is the exit status of the external process. Only meaningful
	// when Kind is KindExecution.
	ExitCode int
	// Output is the (already truncated) combined stdout/stderr capture of
	// the external process, when one was launched.
	Output string
	// OriginalErr is the wrapped original error.
	OriginalErr error
	// StackTrace is the stack trace at the time of the error (for debugging).
	StackTrace string
}

// New creates a new PrintError with the given classification.
// module: The component where the error occurred.
// kind: The failure classification.
// message: The error message.
// originalErr: The original error to wrap (may be nil).
func New(module string, kind Kind, message string, originalErr error) *PrintError {
	buf := make([]byte, 2048)
	n := runtime.Stack(buf, false)

	return &PrintError{
		Kind:        kind,
		Module:      module,
		Message:     message,
		OriginalErr: originalErr,
		StackTrace:  string(buf[:n]),
	}
}

// Newf creates a new PrintError using a format string.
func Newf(module string, kind Kind, format string, a ...interface{}) *PrintError {
	return New(module, kind, fmt.Sprintf(format, a...), nil)
}

// Error implements the error interface.
// It returns the error's kind, module, message and the string representation
// of the original error.
func (e *PrintError) Error() string {
	if e.OriginalErr != nil {
		return fmt.Sprintf("[%s] %s: %s: %v", e.Module, e.Kind, e.Message, e.OriginalErr)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Module, e.Kind, e.Message)
}

// Unwrap returns the original error for errors.Unwrap.
func (e *PrintError) Unwrap() error {
	return e.OriginalErr
}

// WithOutput attaches the captured process output to the error and returns it.
func (e *PrintError) WithOutput(output string) *PrintError {
	e.Output = output
	return e
}

// WithExitCode attaches the process exit code to the error and returns it.
func (e *PrintError) WithExitCode(code int) *PrintError {
	e.ExitCode = code
	return e
}

// KindOf returns the classification of err. Errors that are not PrintErrors
// (including nil wrappers around one somewhere in the chain being absent)
// are classified as KindInternal.
func KindOf(err error) Kind {
	var pe *PrintError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindInternal
}

// IsTimeout reports whether err is classified as a timeout failure.
func IsTimeout(err error) bool {
	return KindOf(err) == KindTimeout
}

// IsExecution reports whether err is classified as an execution failure.
func IsExecution(err error) bool {
	return KindOf(err) == KindExecution
}

// IsMissingResource reports whether err is classified as a missing-resource
// failure.
func IsMissingResource(err error) bool {
	return KindOf(err) == KindMissingResource
}

// Summarize produces the human-readable failure summary committed to the job
// record when a render attempt fails. The summary leads with the
// classification and includes the captured diagnostics when present.
func Summarize(err error) string {
	var pe *PrintError
	if !errors.As(err, &pe) {
		return fmt.Sprintf("internal error: %v", err)
	}

	switch pe.Kind {
	case KindTimeout:
		return fmt.Sprintf("render timed out: %s", pe.Message)
	case KindExecution:
		if pe.Output != "" {
			return fmt.Sprintf("renderer exited with code %d: %s", pe.ExitCode, pe.Output)
		}
		return fmt.Sprintf("renderer exited with code %d: %s", pe.ExitCode, pe.Message)
	case KindMissingResource:
		return fmt.Sprintf("missing resource: %s", pe.Message)
	default:
		return fmt.Sprintf("internal error: %s", pe.Message)
	}
}
