package editor

import (
	"context"
	"crypto/sha256"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/grantedit/grantedit/pkg/cerr"
)

// DebounceInterval is the delay after an fsnotify event before checking the
// checksum, letting rapid event bursts (write + rename) settle first.
const DebounceInterval = 100 * time.Millisecond

// Watcher reports external modification of the policy file. The advisory
// lock only serializes instances of this tool; the watcher covers every
// other writer by checksumming the file after filesystem events.
type Watcher struct {
	path   string
	logger *slog.Logger

	mu       sync.Mutex
	lastHash [sha256.Size]byte
}

func NewWatcher(path string, logger *slog.Logger) *Watcher {
	return &Watcher{
		path:   path,
		logger: logger,
	}
}

// Watch blocks until ctx is done, invoking onChange whenever the policy
// file's checksum changes underneath the editor.
func (w *Watcher) Watch(ctx context.Context, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return cerr.NewError(cerr.Internal, "failed to create filesystem watcher", err)
	}
	defer watcher.Close()

	// Watch the parent directory, not the file itself: tools that do
	// atomic replace (write temp file, rename) change the inode, and
	// watching the directory catches those renames.
	watchDir := filepath.Dir(w.path)
	fileName := filepath.Base(w.path)
	if err := watcher.Add(watchDir); err != nil {
		return cerr.NewError(cerr.Internal, "failed to watch policy file directory", err)
	}

	// A missing file hashes to the zero value, so creation counts as a
	// change too.
	initial, _ := hashFile(w.path)
	w.mu.Lock()
	w.lastHash = initial
	w.mu.Unlock()

	w.logger.DebugContext(ctx, "watching policy file", "path", w.path)

	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != fileName {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(DebounceInterval, func() {
				newHash, err := hashFile(w.path)
				if err != nil {
					w.logger.WarnContext(ctx, "failed to hash policy file after event", "path", w.path)
					return
				}
				w.mu.Lock()
				changed := newHash != w.lastHash
				w.lastHash = newHash
				w.mu.Unlock()
				if changed {
					w.logger.InfoContext(ctx, "policy file changed externally", "path", w.path)
					onChange()
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.WarnContext(ctx, "filesystem watcher error", "path", w.path, "err", err)

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func hashFile(path string) ([sha256.Size]byte, error) {
	var sum [sha256.Size]byte
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return sum, nil
		}
		return sum, err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return sum, err
	}
	copy(sum[:], h.Sum(nil))
	return sum, nil
}
