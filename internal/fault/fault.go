package fault

import (
	"errors"
	"fmt"
)

var (
	ErrClassificationAmbiguous = errors.New("command not understood")
	ErrBackendUnavailable      = errors.New("backend unavailable")
	ErrFilesystemConflict      = errors.New("path occupied by a different kind of entry")
	ErrAlreadyExists           = errors.New("already exists")
	ErrPathNotFound            = errors.New("path not found")
	ErrExecution               = errors.New("execution failed")

	ErrInvalidName = errors.New("name must be a single path segment")
	ErrOutsideBase = errors.New("location escapes the base directory")
)

// Message renders err as text suitable for a spoken or printed reply.
func Message(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrClassificationAmbiguous):
		return "I didn't understand the system command. Could you rephrase it?"
	case errors.Is(err, ErrBackendUnavailable):
		return fmt.Sprintf("Backend unavailable: %v", err)
	case errors.Is(err, ErrAlreadyExists):
		return fmt.Sprintf("Already exists: %v", err)
	case errors.Is(err, ErrFilesystemConflict):
		return fmt.Sprintf("Conflict: %v", err)
	case errors.Is(err, ErrPathNotFound):
		return fmt.Sprintf("Not found: %v", err)
	case errors.Is(err, ErrInvalidName), errors.Is(err, ErrOutsideBase):
		return fmt.Sprintf("Invalid path: %v", err)
	default:
		return fmt.Sprintf("Something went wrong: %v", err)
	}
}

// Execution wraps err as an ErrExecution unless it already belongs to the taxonomy.
func Execution(op string, err error) error {
	if err == nil {
		return nil
	}
	for _, known := range []error{
		ErrClassificationAmbiguous, ErrBackendUnavailable, ErrFilesystemConflict,
		ErrAlreadyExists, ErrPathNotFound, ErrExecution, ErrInvalidName, ErrOutsideBase,
	} {
		if errors.Is(err, known) {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	return fmt.Errorf("%s: %w: %w", op, ErrExecution, err)
}
