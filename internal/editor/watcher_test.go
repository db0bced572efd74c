package editor

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchDetectsWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "java.policy")
	require.NoError(t, os.WriteFile(path, []byte("grant {\n};\n"), 0o644))

	changed := make(chan struct{}, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := NewWatcher(path, testLogger())
	done := make(chan error, 1)
	go func() {
		done <- w.Watch(ctx, func() {
			select {
			case changed <- struct{}{}:
			default:
			}
		})
	}()

	// Give the watcher time to register and take the initial checksum.
	time.Sleep(200 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("grant {\n    permission java.security.AllPermission;\n};\n"), 0o644))

	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("external write was not reported")
	}

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestWatchDetectsCreation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "java.policy")

	changed := make(chan struct{}, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := NewWatcher(path, testLogger())
	go func() {
		_ = w.Watch(ctx, func() {
			select {
			case changed <- struct{}{}:
			default:
			}
		})
	}()

	time.Sleep(200 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("grant {\n};\n"), 0o644))

	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("file creation was not reported")
	}
}

func TestWatchIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "java.policy")
	require.NoError(t, os.WriteFile(path, []byte("grant {\n};\n"), 0o644))

	changed := make(chan struct{}, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := NewWatcher(path, testLogger())
	go func() {
		_ = w.Watch(ctx, func() {
			select {
			case changed <- struct{}{}:
			default:
			}
		})
	}()

	time.Sleep(200 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "unrelated.txt"), []byte("x"), 0o644))

	select {
	case <-changed:
		t.Fatal("unrelated file change was reported")
	case <-time.After(500 * time.Millisecond):
	}
}

func TestWatchIgnoresUnchangedContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "java.policy")
	content := []byte("grant {\n};\n")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	changed := make(chan struct{}, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := NewWatcher(path, testLogger())
	go func() {
		_ = w.Watch(ctx, func() {
			select {
			case changed <- struct{}{}:
			default:
			}
		})
	}()

	time.Sleep(200 * time.Millisecond)
	// Touch the file with identical bytes: an event fires but the checksum
	// is unchanged, so onChange must not be called.
	require.NoError(t, os.WriteFile(path, content, 0o644))

	select {
	case <-changed:
		t.Fatal("identical rewrite was reported as a change")
	case <-time.After(500 * time.Millisecond):
	}
}
