package filesystem

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/paperdex/internal/logger"
)

// DefaultDebounce is how long a file must stay quiet before it is reported.
const DefaultDebounce = 500 * time.Millisecond

// ErrWatcherClosed is returned when Watch is called on a closed watcher.
var ErrWatcherClosed = errors.New("watcher closed")

// Event reports a file that appeared or changed below a watched folder.
type Event struct {
	// Path is the absolute path of the file.
	Path string

	// Time is when the last filesystem event for the file was seen.
	Time time.Time
}

// Watcher watches a folder tree for new or rewritten files with
// matching extensions. New subdirectories are watched as they appear.
type Watcher struct {
	root     string
	exts     []string
	debounce time.Duration

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	closed  bool
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce sets the quiet period before a file is reported.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d >= 0 {
			w.debounce = d
		}
	}
}

// NewWatcher creates a watcher for files below root with one of exts.
func NewWatcher(root string, exts []string, opts ...WatcherOption) *Watcher {
	w := &Watcher{
		root:     root,
		exts:     exts,
		debounce: DefaultDebounce,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Watch starts watching and returns a channel of debounced file events.
// The channel is closed when ctx is cancelled or the watcher is closed.
func (w *Watcher) Watch(ctx context.Context) (<-chan Event, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil, ErrWatcherClosed
	}

	root, err := filepath.Abs(w.root)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, &fs.PathError{Op: "watch", Path: root, Err: errors.New("not a directory")}
	}
	w.root = root

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := addRecursive(fsw, root); err != nil {
		fsw.Close()
		return nil, err
	}
	if w.watcher != nil {
		w.watcher.Close()
	}
	w.watcher = fsw

	events := make(chan Event)
	go w.loop(ctx, fsw, events)
	return events, nil
}

func (w *Watcher) loop(ctx context.Context, fsw *fsnotify.Watcher, out chan<- Event) {
	defer close(out)

	pending := make(map[string]time.Time)
	ticker := time.NewTicker(w.tick())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			fsw.Close()
			return

		case ev, ok := <-fsw.Events:
			if !ok {
				return
			}
			if path, ok := w.handleFsEvent(fsw, ev); ok {
				pending[path] = time.Now()
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			logger.Warn("watch %s: %v", w.root, err)

		case now := <-ticker.C:
			for path, seen := range pending {
				if now.Sub(seen) < w.debounce {
					continue
				}
				delete(pending, path)
				select {
				case out <- Event{Path: path, Time: seen}:
				case <-ctx.Done():
					fsw.Close()
					return
				}
			}
		}
	}
}

// tick is the interval at which pending files are checked.
func (w *Watcher) tick() time.Duration {
	t := w.debounce / 4
	if t < 10*time.Millisecond {
		t = 10 * time.Millisecond
	}
	return t
}

// handleFsEvent returns the path to report for ev, if any. Created
// directories are added to the watch list instead of being reported.
func (w *Watcher) handleFsEvent(fsw *fsnotify.Watcher, ev fsnotify.Event) (string, bool) {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
		return "", false
	}

	rel, err := filepath.Rel(w.root, ev.Name)
	if err != nil || isHidden(rel) {
		return "", false
	}

	info, err := os.Stat(ev.Name)
	if err != nil {
		return "", false
	}
	if info.IsDir() {
		if ev.Has(fsnotify.Create) && fsw != nil {
			if err := addRecursive(fsw, ev.Name); err != nil {
				logger.Warn("watch %s: %v", ev.Name, err)
			}
		}
		return "", false
	}
	if !info.Mode().IsRegular() || !matchesExt(ev.Name, w.exts) {
		return "", false
	}

	return ev.Name, true
}

// addRecursive watches dir and every non-hidden directory below it.
// Subdirectories that cannot be read are logged and left unwatched.
func addRecursive(fsw *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			logger.Warn("Not watching unreadable %s: %v", path, err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && isHidden(d.Name()) {
			return filepath.SkipDir
		}
		return fsw.Add(path)
	})
}

// Close stops the watcher. Open event channels are closed.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true
	if w.watcher != nil {
		return w.watcher.Close()
	}
	return nil
}

// isHidden reports whether any element of path starts with a dot.
// "." and ".." are not hidden. The watcher ignores hidden entries, which
// are typically editor swap files and partial downloads.
func isHidden(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if len(part) > 1 && part[0] == '.' && part != ".." {
			return true
		}
	}
	return false
}
