package toggles

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bebsworthy/pathsieve/internal/debug"
)

// DefaultDebounce collapses the burst of events editors emit on save.
const DefaultDebounce = 50 * time.Millisecond

// WatchOption configures Watch
type WatchOption func(*watcher)

// WithDebounce sets the quiet period before a changed file is reloaded
func WithDebounce(d time.Duration) WatchOption {
	return func(w *watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithReloadHook is called after every reload attempt with its error, if any.
func WithReloadHook(fn func(error)) WatchOption {
	return func(w *watcher) {
		w.onReload = fn
	}
}

type watcher struct {
	store    *Store
	path     string
	fs       *fsnotify.Watcher
	debounce time.Duration
	onReload func(error)

	mu       sync.Mutex
	timer    *time.Timer
	lastHash []byte
}

// Watch reloads path into the store whenever its content changes, until ctx
// ends. The containing directory is watched so editors that replace the file
// by rename are picked up. Watch returns once the watcher is running.
func (s *Store) Watch(ctx context.Context, path string, opts ...WatchOption) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve toggles path: %w", err)
	}

	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fs.Add(filepath.Dir(absPath)); err != nil {
		_ = fs.Close()
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(absPath), err)
	}

	w := &watcher{
		store:    s,
		path:     absPath,
		fs:       fs,
		debounce: DefaultDebounce,
	}
	for _, opt := range opts {
		opt(w)
	}
	if hash, err := fileHash(absPath); err == nil {
		w.lastHash = hash
	}

	debug.Log("Toggles: watching %s", absPath)
	go w.loop(ctx)
	return nil
}

func (w *watcher) loop(ctx context.Context) {
	defer func() {
		w.mu.Lock()
		if w.timer != nil {
			w.timer.Stop()
		}
		w.mu.Unlock()
		_ = w.fs.Close()
	}()

	for {
		select {
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if abs, err := filepath.Abs(event.Name); err != nil || abs != w.path {
				continue
			}
			w.schedule()
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			debug.LogError(err, "toggles watcher")
		case <-ctx.Done():
			return
		}
	}
}

// schedule restarts the debounce timer
func (w *watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.reload)
}

func (w *watcher) reload() {
	w.mu.Lock()
	defer w.mu.Unlock()

	hash, err := fileHash(w.path)
	if err != nil {
		w.report(err)
		return
	}
	if bytes.Equal(hash, w.lastHash) {
		return
	}

	if err := w.store.LoadFile(w.path); err != nil {
		debug.LogError(err, "reloading toggles")
		w.report(err)
		return
	}
	w.lastHash = hash
	debug.Log("Toggles: reloaded %s", w.path)
	w.report(nil)
}

func (w *watcher) report(err error) {
	if w.onReload != nil {
		w.onReload(err)
	}
}

func fileHash(path string) ([]byte, error) {
	f, err := os.Open(path) // #nosec G304 - path supplied by the user
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return nil, err
	}
	return h.Sum(nil), nil
}
