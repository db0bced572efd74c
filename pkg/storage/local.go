package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/gofrs/flock"
)

const lockRetryInterval = 50 * time.Millisecond

// DefaultLockTimeout bounds how long a read or write waits for the advisory
// lock before giving up with ErrLockUnavailable.
const DefaultLockTimeout = 5 * time.Second

// LocalStore implements Store on the local filesystem. Each read or write
// holds an advisory flock on the target file for the duration of that single
// operation; locks are never held across a load-edit-save span.
type LocalStore struct {
	lockTimeout time.Duration
}

// NewLocalStore creates a LocalStore. A non-positive lockTimeout falls back
// to DefaultLockTimeout.
func NewLocalStore(lockTimeout time.Duration) *LocalStore {
	if lockTimeout <= 0 {
		lockTimeout = DefaultLockTimeout
	}
	return &LocalStore{lockTimeout: lockTimeout}
}

// WithLock acquires the advisory lock on path, runs fn, and releases the
// lock on every exit path. Shared locks are used for reads, exclusive locks
// for writes.
func (s *LocalStore) WithLock(ctx context.Context, path string, exclusive bool, fn func() error) error {
	fl := flock.New(path)

	lockCtx, cancel := context.WithTimeout(ctx, s.lockTimeout)
	defer cancel()

	var (
		locked bool
		err    error
	)
	if exclusive {
		locked, err = fl.TryLockContext(lockCtx, lockRetryInterval)
	} else {
		locked, err = fl.TryRLockContext(lockCtx, lockRetryInterval)
	}
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return fmt.Errorf("%s: %w", path, ErrLockUnavailable)
		}
		return classify(path, err)
	}
	if !locked {
		return fmt.Errorf("%s: %w", path, ErrLockUnavailable)
	}
	defer func() {
		_ = fl.Unlock()
	}()

	return fn()
}

func (s *LocalStore) ReadText(ctx context.Context, path string) (string, error) {
	// Check existence before locking: acquiring the flock would create an
	// empty file and mask the not-found condition.
	if _, err := os.Stat(path); err != nil {
		return "", classify(path, err)
	}

	var content string
	err := s.WithLock(ctx, path, false, func() error {
		data, err := os.ReadFile(path)
		if err != nil {
			return classify(path, err)
		}
		content = string(data)
		return nil
	})
	if err != nil {
		return "", err
	}
	return content, nil
}

// WriteText writes content under an exclusive lock. The write is direct, not
// atomic-rename guarded: a failure partway through may leave a truncated
// file. The file is created if it does not exist.
func (s *LocalStore) WriteText(ctx context.Context, path string, content string) error {
	return s.WithLock(ctx, path, true, func() error {
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return classify(path, err)
		}
		return nil
	})
}

func (s *LocalStore) Exists(_ context.Context, path string) (bool, error) {
	_, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, classify(path, err)
	}
	return true, nil
}

// Writable reports whether path can be opened for writing. A missing file
// counts as writable since saves create it.
func (s *LocalStore) Writable(_ context.Context, path string) (bool, error) {
	f, err := os.OpenFile(path, os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}
		if os.IsPermission(err) {
			return false, nil
		}
		return false, classify(path, err)
	}
	_ = f.Close()
	return true, nil
}

func classify(path string, err error) error {
	switch {
	case os.IsNotExist(err):
		return fmt.Errorf("%s: %w", path, ErrNotFound)
	case os.IsPermission(err):
		return fmt.Errorf("%s: %w", path, ErrPermissionDenied)
	default:
		return fmt.Errorf("%s: %w", path, err)
	}
}
