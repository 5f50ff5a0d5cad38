package diskkit

import (
	"errors"
	"fmt"
)

// The closed error taxonomy. Every driver maps backend-native failures
// onto exactly one of these kinds; the original error stays reachable
// through errors.Unwrap.
var (
	ErrNotFound    = errors.New("file not found")
	ErrWrite       = errors.New("write failed")
	ErrDecode      = errors.New("invalid byte sequence")
	ErrInvalidPath = errors.New("invalid path")
	ErrUnavailable = errors.New("backend unavailable")
	ErrSigning     = errors.New("url signing failed")

	// ErrReadOnly is returned by the read-only wrapper, not by drivers.
	ErrReadOnly = errors.New("disk is read-only")
)

// PathError records an error together with the operation and path that
// caused it.
type PathError struct {
	Op   string
	Path string
	Err  error
}

// Error implements the error interface
func (e *PathError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error
func (e *PathError) Unwrap() error {
	return e.Err
}

// NewPathError wraps err with operation and path context.
func NewPathError(op, path string, err error) *PathError {
	return &PathError{Op: op, Path: path, Err: err}
}

// WrapErr classifies a backend error under one of the taxonomy sentinels
// while keeping the original as wrapped detail.
func WrapErr(op, path string, kind, cause error) *PathError {
	if cause == nil || errors.Is(cause, kind) {
		return &PathError{Op: op, Path: path, Err: kind}
	}
	return &PathError{Op: op, Path: path, Err: fmt.Errorf("%w: %w", kind, cause)}
}

// PartialMoveError reports a move whose copy succeeded but whose trailing
// delete failed: the content now exists at both Src and Dst and the caller
// decides cleanup. It is never folded into a plain failure.
type PartialMoveError struct {
	Src string
	Dst string
	Err error // the delete failure
}

func (e *PartialMoveError) Error() string {
	return fmt.Sprintf("move %s -> %s: copy succeeded but source delete failed: %v", e.Src, e.Dst, e.Err)
}

func (e *PartialMoveError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether an error indicates a missing object.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsInvalidPath reports whether an error indicates a rejected path.
func IsInvalidPath(err error) bool {
	return errors.Is(err, ErrInvalidPath)
}

// IsPartialMove reports whether an error is a partial move, and returns
// the detail when it is.
func IsPartialMove(err error) (*PartialMoveError, bool) {
	var pm *PartialMoveError
	if errors.As(err, &pm) {
		return pm, true
	}
	return nil, false
}
