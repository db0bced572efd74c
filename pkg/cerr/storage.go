package cerr

import (
	"errors"
	"fmt"

	"github.com/grantedit/grantedit/pkg/storage"
)

func WrapReadError(path string, err error) error {
	if typed := classifyStorageError(path, err); typed != nil {
		return typed
	}
	return NewError(IOFailure, "failed to read policy file", fmt.Errorf("read %s: %w", path, err))
}

func WrapWriteError(path string, err error) error {
	if typed := classifyStorageError(path, err); typed != nil {
		return typed
	}
	return NewError(IOFailure, "failed to write policy file", fmt.Errorf("write %s: %w", path, err))
}

func classifyStorageError(path string, err error) error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return NewError(NotFound, fmt.Sprintf("%s not found", path), err)
	case errors.Is(err, storage.ErrPermissionDenied):
		return NewError(PermissionDenied, fmt.Sprintf("%s not accessible", path), err)
	case errors.Is(err, storage.ErrLockUnavailable):
		return NewError(LockUnavailable, fmt.Sprintf("%s is locked by another process", path), err)
	default:
		return nil
	}
}
