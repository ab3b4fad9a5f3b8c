// Package errors provides typed error handling for the resource applier and
// the status store.
//
// This package defines the error kinds a caller needs to branch on: a
// rejected controller write, a missing controller, a stale pid, a malformed
// status document. All errors support the standard errors.Is() and
// errors.As() functions for error inspection.
package errors

import (
	"errors"
	"fmt"
)

// ErrorKind represents the category of an error.
type ErrorKind int

const (
	// ErrInvalidConfig indicates the caller-supplied resource spec or status
	// document violates a semantic rule: leaf_weight on a v2 path, a unified
	// key containing '/', an empty or path-traversing container ID.
	ErrInvalidConfig ErrorKind = iota
	// ErrCgroup indicates the target controller is not available at the
	// resolved cgroup path: not mounted, or mounted without the controller
	// enabled in cgroup.controllers.
	ErrCgroup
	// ErrKernelRejected is a pass-through errno from a controller write that
	// isn't one of the documented special-cased retries.
	ErrKernelRejected
	// ErrIdentityMismatch indicates a pid exists but its recorded start time
	// diverges from what is on disk.
	ErrIdentityMismatch
	// ErrNotFound indicates a container directory, status file, or process
	// is absent.
	ErrNotFound
	// ErrIO indicates a filesystem failure outside of controller writes:
	// open, read, rename, unlink, mkfifo.
	ErrIO
	// ErrParse indicates malformed JSON or /proc/<pid>/stat content.
	ErrParse
)

// String returns a human-readable name for the error kind.
func (k ErrorKind) String() string {
	switch k {
	case ErrInvalidConfig:
		return "invalid config"
	case ErrCgroup:
		return "controller unavailable"
	case ErrKernelRejected:
		return "kernel rejected"
	case ErrIdentityMismatch:
		return "identity mismatch"
	case ErrNotFound:
		return "not found"
	case ErrIO:
		return "io error"
	case ErrParse:
		return "parse error"
	default:
		return "unknown error"
	}
}

// ContainerError represents an error that occurred during a container operation.
type ContainerError struct {
	// Op is the operation that failed (e.g., "create", "start", "exec").
	Op string
	// Container is the container ID, if applicable.
	Container string
	// Err is the underlying error.
	Err error
	// Kind is the error classification.
	Kind ErrorKind
	// Detail provides additional context about the error.
	Detail string
}

// Error returns the error message.
func (e *ContainerError) Error() string {
	if e == nil {
		return "<nil>"
	}

	var msg string
	if e.Container != "" {
		msg = fmt.Sprintf("container %s: ", e.Container)
	}
	if e.Op != "" {
		msg += fmt.Sprintf("%s: ", e.Op)
	}
	if e.Detail != "" {
		msg += e.Detail
	} else {
		msg += e.Kind.String()
	}
	if e.Err != nil {
		msg += fmt.Sprintf(": %v", e.Err)
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *ContainerError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is reports whether the error matches the target.
// It matches if the target is a *ContainerError with the same Kind; any
// other target is not matched here (errors.Is still goes on to compare it
// against the wrapped error via Unwrap).
func (e *ContainerError) Is(target error) bool {
	if e == nil {
		return target == nil
	}
	if t, ok := target.(*ContainerError); ok {
		return e.Kind == t.Kind
	}
	return false
}

// New creates a new ContainerError with the given kind.
func New(kind ErrorKind, op string, detail string) *ContainerError {
	return &ContainerError{
		Op:     op,
		Kind:   kind,
		Detail: detail,
	}
}

// Wrap wraps an error with container context.
func Wrap(err error, kind ErrorKind, op string) *ContainerError {
	return &ContainerError{
		Op:   op,
		Err:  err,
		Kind: kind,
	}
}

// WrapWithContainer wraps an error with container context and ID.
func WrapWithContainer(err error, kind ErrorKind, op string, containerID string) *ContainerError {
	return &ContainerError{
		Op:        op,
		Container: containerID,
		Err:       err,
		Kind:      kind,
	}
}

// WrapWithDetail wraps an error with additional detail.
func WrapWithDetail(err error, kind ErrorKind, op string, detail string) *ContainerError {
	return &ContainerError{
		Op:     op,
		Err:    err,
		Kind:   kind,
		Detail: detail,
	}
}

// IsKind checks if an error is of a specific kind.
func IsKind(err error, kind ErrorKind) bool {
	var cerr *ContainerError
	if errors.As(err, &cerr) {
		return cerr.Kind == kind
	}
	return false
}

// GetKind returns the error kind if the error is a ContainerError.
func GetKind(err error) (ErrorKind, bool) {
	var cerr *ContainerError
	if errors.As(err, &cerr) {
		return cerr.Kind, true
	}
	return 0, false
}

// Re-export standard library functions for convenience.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
)
