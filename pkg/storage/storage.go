package storage

import (
	"context"
	"errors"
)

// Sentinel errors classifying file-level failures. Callers wrap these into
// typed errors via pkg/cerr.
var (
	ErrNotFound         = errors.New("not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrLockUnavailable  = errors.New("lock unavailable")
)

// Store provides byte access to policy files, serialized by an advisory
// file lock. The lock cooperates with other instances of this tool only;
// it does not stop unrelated processes from writing the file.
type Store interface {
	ReadText(ctx context.Context, path string) (string, error)
	WriteText(ctx context.Context, path string, content string) error
	Exists(ctx context.Context, path string) (bool, error)
	Writable(ctx context.Context, path string) (bool, error)
}
