package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadWriteRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewLocalStore(0)
	path := filepath.Join(t.TempDir(), "java.policy")

	require.NoError(t, s.WriteText(ctx, path, "grant {\n};\n"))

	content, err := s.ReadText(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, "grant {\n};\n", content)
}

func TestReadTextNotFound(t *testing.T) {
	s := NewLocalStore(0)
	_, err := s.ReadText(context.Background(), filepath.Join(t.TempDir(), "missing.policy"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestWriteCreatesFile(t *testing.T) {
	ctx := context.Background()
	s := NewLocalStore(0)
	path := filepath.Join(t.TempDir(), "new.policy")

	exists, err := s.Exists(ctx, path)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, s.WriteText(ctx, path, "x"))

	exists, err = s.Exists(ctx, path)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestWritableMissingFile(t *testing.T) {
	s := NewLocalStore(0)
	ok, err := s.Writable(context.Background(), filepath.Join(t.TempDir(), "missing.policy"))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestWritableReadOnlyFile(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root ignores file modes")
	}
	path := filepath.Join(t.TempDir(), "ro.policy")
	require.NoError(t, os.WriteFile(path, []byte("grant {\n};\n"), 0o400))

	s := NewLocalStore(0)
	ok, err := s.Writable(context.Background(), path)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLockIsReleasedAfterOperation(t *testing.T) {
	ctx := context.Background()
	s := NewLocalStore(0)
	path := filepath.Join(t.TempDir(), "java.policy")

	require.NoError(t, s.WriteText(ctx, path, "first"))
	require.NoError(t, s.WriteText(ctx, path, "second"))

	content, err := s.ReadText(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, "second", content)
}

func TestWithLockContention(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "java.policy")
	require.NoError(t, os.WriteFile(path, []byte("grant {\n};\n"), 0o644))

	holder := NewLocalStore(0)
	contender := NewLocalStore(200 * time.Millisecond)

	err := holder.WithLock(ctx, path, true, func() error {
		// flock locks are per open file description, so the contender's
		// separate descriptor blocks until its timeout.
		_, readErr := contender.ReadText(ctx, path)
		return readErr
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrLockUnavailable))
}

func TestWithLockReleasesOnError(t *testing.T) {
	ctx := context.Background()
	s := NewLocalStore(0)
	path := filepath.Join(t.TempDir(), "java.policy")
	require.NoError(t, os.WriteFile(path, []byte(""), 0o644))

	wantErr := errors.New("body failed")
	err := s.WithLock(ctx, path, true, func() error {
		return wantErr
	})
	assert.ErrorIs(t, err, wantErr)

	// The lock must be free again.
	require.NoError(t, s.WithLock(ctx, path, true, func() error {
		return nil
	}))
}
