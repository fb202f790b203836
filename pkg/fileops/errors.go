package fileops

import (
	"errors"
	"fmt"
)

// Kind classifies a failure of a confined file operation.
type Kind int

const (
	KindParentAboveRoot Kind = iota + 1
	KindIllegalParent
	KindTooLong
	KindNotFound
	KindNotDirectory
	KindNotFile
	KindUnknownPathType
	KindAlreadyExists
	KindMoveFailed
	KindCreateFailed
	KindReadFailed
	KindWriteFailed
	KindDeleteFailed
	KindExecFailed
)

// Sentinels for errors.Is. Every *Error matches the sentinel of its Kind.
var (
	ErrParentAboveRoot = errors.New("parent above root")
	ErrIllegalParent   = errors.New("illegal parent reference")
	ErrTooLong         = errors.New("path too long")
	ErrNotFound        = errors.New("not found")
	ErrNotDirectory    = errors.New("not a directory")
	ErrNotFile         = errors.New("not a file")
	ErrUnknownPathType = errors.New("unknown path type")
	ErrAlreadyExists   = errors.New("already exists")
	ErrMoveFailed      = errors.New("move failed")
	ErrCreateFailed    = errors.New("create failed")
	ErrReadFailed      = errors.New("read failed")
	ErrWriteFailed     = errors.New("write failed")
	ErrDeleteFailed    = errors.New("delete failed")
	ErrExecFailed      = errors.New("exec failed")
)

var kindSentinels = map[Kind]error{
	KindParentAboveRoot: ErrParentAboveRoot,
	KindIllegalParent:   ErrIllegalParent,
	KindTooLong:         ErrTooLong,
	KindNotFound:        ErrNotFound,
	KindNotDirectory:    ErrNotDirectory,
	KindNotFile:         ErrNotFile,
	KindUnknownPathType: ErrUnknownPathType,
	KindAlreadyExists:   ErrAlreadyExists,
	KindMoveFailed:      ErrMoveFailed,
	KindCreateFailed:    ErrCreateFailed,
	KindReadFailed:      ErrReadFailed,
	KindWriteFailed:     ErrWriteFailed,
	KindDeleteFailed:    ErrDeleteFailed,
	KindExecFailed:      ErrExecFailed,
}

// String returns the sentinel message for the kind.
func (k Kind) String() string {
	if sentinel, ok := kindSentinels[k]; ok {
		return sentinel.Error()
	}
	return fmt.Sprintf("unknown kind %d", int(k))
}

// Error is the single error type returned by this package. Path holds the
// offending path; NewPath is only set for move failures. Err is the
// underlying OS error, if any.
type Error struct {
	Kind    Kind
	Path    string
	NewPath string
	Err     error
	limit   int
}

var _ error = (*Error)(nil)

func newError(kind Kind, path string, cause error) *Error {
	return &Error{Kind: kind, Path: path, Err: cause}
}

func newMoveError(kind Kind, oldPath, newPath string, cause error) *Error {
	return &Error{Kind: kind, Path: oldPath, NewPath: newPath, Err: cause}
}

func (e *Error) Error() string {
	if e == nil {
		return "(*fileops.Error)(nil)"
	}

	var msg string
	switch e.Kind {
	case KindParentAboveRoot:
		msg = fmt.Sprintf("path contains a reference to a directory above root: %q", e.Path)
	case KindIllegalParent:
		msg = fmt.Sprintf("path cannot contain references to a parent directory: %q", e.Path)
	case KindTooLong:
		msg = fmt.Sprintf("path is longer than max permitted path length (%d): %q", e.limit, e.Path)
	case KindNotFound:
		msg = fmt.Sprintf("path could not be found, ensure that it exists and has appropriate permissions: %q", e.Path)
	case KindNotDirectory:
		msg = fmt.Sprintf("path is not a directory: %q", e.Path)
	case KindNotFile:
		msg = fmt.Sprintf("path is not a file: %q", e.Path)
	case KindUnknownPathType:
		msg = fmt.Sprintf("could not determine path type (file or directory): %q", e.Path)
	case KindAlreadyExists:
		msg = fmt.Sprintf("could not move path, destination already exists: %q => %q", e.Path, e.NewPath)
	case KindMoveFailed:
		msg = fmt.Sprintf("path could not be moved: %q => %q", e.Path, e.NewPath)
	case KindCreateFailed:
		msg = fmt.Sprintf("path could not be created: %q", e.Path)
	case KindReadFailed:
		msg = fmt.Sprintf("path could not be read from: %q", e.Path)
	case KindWriteFailed:
		msg = fmt.Sprintf("path could not be written to: %q", e.Path)
	case KindDeleteFailed:
		msg = fmt.Sprintf("path could not be deleted: %q", e.Path)
	case KindExecFailed:
		msg = fmt.Sprintf("path could not be executed: %q", e.Path)
	default:
		msg = fmt.Sprintf("%s: %q", e.Kind, e.Path)
	}

	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the kind sentinel and the underlying cause.
func (e *Error) Unwrap() []error {
	sentinel := kindSentinels[e.Kind]
	switch {
	case sentinel == nil && e.Err == nil:
		return nil
	case sentinel == nil:
		return []error{e.Err}
	case e.Err == nil:
		return []error{sentinel}
	}
	return []error{sentinel, e.Err}
}

// KindOf reports the Kind of the first *Error in err's chain, or 0.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return 0
}
