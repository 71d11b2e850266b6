package faults

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sys/unix"
)

var (
	ErrNotADirectory = errors.New("not a directory")
	ErrFormat        = errors.New("format error")
	ErrCollision     = errors.New("collision")
	ErrFilesystem    = errors.New("filesystem error")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrFilesystem
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// CollisionError reports a rename or move whose target already exists.
type CollisionError struct {
	Source string
	Target string
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("collision: %s -> %s: target already exists", e.Source, e.Target)
}

func (e *CollisionError) Is(target error) bool { return target == ErrCollision }

// FilesystemError wraps a failed filesystem operation. It is never retried.
type FilesystemError struct {
	Op   string
	Path string
	Err  error
}

func (e *FilesystemError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("filesystem error: %s %s", e.Op, e.Path)
	}
	return fmt.Sprintf("filesystem error: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FilesystemError) Unwrap() error { return e.Err }

func (e *FilesystemError) Is(target error) bool { return target == ErrFilesystem }

// Hint describes the likely cause of the failure for operators.
func (e *FilesystemError) Hint() string {
	switch {
	case errors.Is(e.Err, unix.EXDEV):
		return "source and target are on different filesystems; move the entry manually"
	case errors.Is(e.Err, unix.EACCES), errors.Is(e.Err, unix.EPERM):
		return "permission denied; check ownership of the media directory"
	case errors.Is(e.Err, unix.ENOSPC):
		return "no space left on device"
	case errors.Is(e.Err, unix.EIO):
		return "i/o failure; check the underlying storage"
	default:
		return "check the media directory and retry"
	}
}

// Filesystem wraps err as a FilesystemError unless it already carries one of
// the taxonomy markers.
func Filesystem(op, path string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrFilesystem) || errors.Is(err, ErrCollision) || errors.Is(err, ErrFormat) {
		return err
	}
	return &FilesystemError{Op: op, Path: path, Err: err}
}

// Hint returns an operator hint for err, or an empty string when none applies.
func Hint(err error) string {
	var fsErr *FilesystemError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &fsErr):
		return fsErr.Hint()
	case errors.Is(err, ErrFormat):
		return "rename the entry so it contains a release year"
	case errors.Is(err, ErrCollision):
		return "remove or rename the existing target first"
	case errors.Is(err, ErrNotADirectory):
		return "pass an existing media directory"
	default:
		return ""
	}
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "jellyclean failure"
	}
	return strings.Join(parts, ": ")
}
