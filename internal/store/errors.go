package store

import (
	"fmt"
	"time"
)

// LockTimeoutError is returned when the exclusive lock could not be acquired
// within the configured bound
type LockTimeoutError struct {
	Path    string
	Timeout time.Duration
	Waited  time.Duration
}

func (e *LockTimeoutError) Error() string {
	return fmt.Sprintf("timed out after %v waiting for lock %s (limit %v)",
		e.Waited.Round(time.Millisecond), e.Path, e.Timeout)
}

// CorruptStateError is returned when the session document exists but cannot
// be decoded or violates the session invariants. The file is left untouched.
type CorruptStateError struct {
	Path string
	Err  error
}

func (e *CorruptStateError) Error() string {
	return fmt.Sprintf("session state %s is corrupt: %v (rerun with --repair to move it aside)", e.Path, e.Err)
}

func (e *CorruptStateError) Unwrap() error {
	return e.Err
}
