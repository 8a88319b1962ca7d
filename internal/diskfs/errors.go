package diskfs

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorKind classifies the failure reported by the single process-wide
// (per-FS) error flag. Names are taxonomy only; callers compare against it
// via KindOf (or errors.Is against a *Error of the same Kind) rather than
// type-asserting the concrete *Error themselves.
type ErrorKind int

const (
	ErrNone ErrorKind = iota
	ErrNotInitialized
	ErrAlreadyInitialized
	ErrOutOfSpace
	ErrInvalidOffset
	ErrBadTag
	ErrInvalidMagic
	ErrNotFound
	ErrAlreadyExists
	ErrInvalidPath
	ErrWrongType
	ErrNotEmpty
	ErrIOFailure
)

func (k ErrorKind) String() string {
	switch k {
	case ErrNotInitialized:
		return "NOT_INITIALIZED"
	case ErrAlreadyInitialized:
		return "ALREADY_INITIALIZED"
	case ErrOutOfSpace:
		return "OUT_OF_SPACE"
	case ErrInvalidOffset:
		return "INVALID_OFFSET"
	case ErrBadTag:
		return "BAD_TAG"
	case ErrInvalidMagic:
		return "INVALID_MAGIC"
	case ErrNotFound:
		return "NOT_FOUND"
	case ErrAlreadyExists:
		return "ALREADY_EXISTS"
	case ErrInvalidPath:
		return "INVALID_PATH"
	case ErrWrongType:
		return "WRONG_TYPE"
	case ErrNotEmpty:
		return "NOT_EMPTY"
	case ErrIOFailure:
		return "IO_FAILURE"
	default:
		return "NONE"
	}
}

// Error is the error value returned from every diskfs operation that fails.
// It carries a stack-traced cause (via github.com/pkg/errors) so
// internal/fslog can print useful diagnostics without changing the Kind the
// caller sees.
type Error struct {
	Kind  ErrorKind
	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.cause)
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error { return e.cause }

// Is reports whether target is an *Error of the same Kind, so
// errors.Is(err, &Error{Kind: ErrNotFound}) matches whatever the cause.
// A bare ErrorKind is not an error and cannot be passed to errors.Is.
func (e *Error) Is(target error) bool {
	if other, ok := target.(*Error); ok {
		return e.Kind == other.Kind
	}
	return false
}

func newError(kind ErrorKind, cause error) *Error {
	return &Error{Kind: kind, cause: cause}
}

// KindOf extracts the ErrorKind from an error produced by this package, or
// ErrNone if err is nil or not one of ours.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ErrNone
	}
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ErrNone
}

// fail records the error on the FS's single error flag (reset on next
// GetError) and returns it. Matching fs_get_error()'s reset-on-read
// semantics, the flag sticks until the next call to GetError -- recorded
// here, not at construction time, so a caller who ignores the returned
// error can still query it later.
func (fs *FS) fail(kind ErrorKind, cause error) error {
	e := newError(kind, cause)
	fs.lastError = e
	return e
}
