package commands

import (
	"github.com/pkg/errors"

	"github.com/oculus/oculus/internal/store"
	"github.com/oculus/oculus/pkg/window"
)

// Process exit codes
const (
	ExitOK             = 0
	ExitError          = 1
	ExitUsage          = 2
	ExitNotFound       = 3
	ExitLockTimeout    = 4
	ExitCorrupt        = 5
	ExitDirectoryError = 6
)

// usageError marks bad command-line input
type usageError struct {
	err error
}

func (e *usageError) Error() string {
	return e.err.Error()
}

func (e *usageError) Unwrap() error {
	return e.err
}

func exitCode(err error) int {
	var usage *usageError
	var notFound *window.WindowNotFoundError
	var unavailable *window.DirectoryUnavailableError
	var lockTimeout *store.LockTimeoutError
	var corrupt *store.CorruptStateError

	switch {
	case err == nil:
		return ExitOK
	case errors.As(err, &usage):
		return ExitUsage
	case errors.As(err, &notFound):
		return ExitNotFound
	case errors.As(err, &lockTimeout):
		return ExitLockTimeout
	case errors.As(err, &corrupt):
		return ExitCorrupt
	case errors.As(err, &unavailable):
		return ExitDirectoryError
	default:
		return ExitError
	}
}
