package store

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/pkg/errors"
)

// withLock runs fn while holding the exclusive lock on the lock file.
// The kernel drops the lock when the holder exits, so a crashed invocation
// never leaves a stale lock behind; a live holder is waited on for at most
// the lock timeout.
func (s *Store) withLock(ctx context.Context, fn func() error) error {
	if err := os.MkdirAll(filepath.Dir(s.lockPath), 0755); err != nil {
		return errors.Wrap(err, "failed to create lock directory")
	}

	lockCtx, cancel := context.WithTimeout(ctx, s.lockTimeout)
	defer cancel()

	lock := flock.New(s.lockPath)
	start := time.Now()

	locked, err := lock.TryLockContext(lockCtx, s.lockRetry)
	if !locked {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return errors.Wrap(ctxErr, "lock acquisition canceled")
		}
		if errors.Is(lockCtx.Err(), context.DeadlineExceeded) {
			waited := time.Since(start)
			s.logger.Debug().Str("lock", s.lockPath).Dur("waited", waited).Msg("Lock acquisition timed out")
			return &LockTimeoutError{Path: s.lockPath, Timeout: s.lockTimeout, Waited: waited}
		}
		if err == nil {
			err = errors.New("lock not acquired")
		}
		return errors.Wrapf(err, "failed to acquire lock %s", s.lockPath)
	}

	defer func() {
		if err := lock.Unlock(); err != nil {
			s.logger.Error().Err(err).Str("lock", s.lockPath).Msg("Failed to release lock")
		}
	}()

	s.logger.Debug().Str("lock", s.lockPath).Dur("waited", time.Since(start)).Msg("Lock acquired")
	return fn()
}
