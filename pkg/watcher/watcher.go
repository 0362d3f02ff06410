// Package watcher reports changes to a conversation database on disk.
//
// SQLite commits often touch only the -wal side file, so the watcher treats
// writes to the database file and its -wal and -journal companions as one
// change. Network and FUSE mounts fall back to stat polling.
package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/vanderheijden86/mindmap/pkg/debug"
)

// DefaultPollInterval is the default polling interval for fallback mode.
const DefaultPollInterval = 2 * time.Second

// sideSuffixes are the SQLite companion files whose writes count as
// changes to the database itself.
var sideSuffixes = []string{"-wal", "-journal"}

// Common errors.
var (
	ErrFileRemoved    = errors.New("watched database was removed")
	ErrPermission     = errors.New("permission denied")
	ErrAlreadyStarted = errors.New("watcher already started")
)

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounceDuration sets how long a burst of writes is coalesced.
func WithDebounceDuration(d time.Duration) WatcherOption {
	return func(w *Watcher) { w.debounceDuration = d }
}

// WithPollInterval sets the stat interval used in polling mode.
func WithPollInterval(d time.Duration) WatcherOption {
	return func(w *Watcher) { w.pollInterval = d }
}

// WithOnChange sets the callback invoked when the database changes.
func WithOnChange(fn func()) WatcherOption {
	return func(w *Watcher) { w.onChange = fn }
}

// WithOnError sets the callback invoked on errors.
func WithOnError(fn func(error)) WatcherOption {
	return func(w *Watcher) { w.onError = fn }
}

// WithForcePoll skips fsnotify and polls.
func WithForcePoll(force bool) WatcherOption {
	return func(w *Watcher) { w.forcePoll = force }
}

// Watcher monitors a database file for changes using fsnotify with polling fallback.
type Watcher struct {
	path             string
	debounceDuration time.Duration
	pollInterval     time.Duration
	onChange         func()
	onError          func(error)
	forcePoll        bool
	forcePollEnv     bool
	fsType           FilesystemType

	fsWatcher   *fsnotify.Watcher
	debouncer   *Debouncer
	useFallback bool
	last        fileState

	ctx      context.Context
	cancel   context.CancelFunc
	started  bool
	mu       sync.RWMutex
	changeCh chan struct{}
}

// NewWatcher creates a watcher for the database at path. The file need not
// exist yet.
func NewWatcher(path string, opts ...WatcherOption) (*Watcher, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		path:             absPath,
		debounceDuration: DefaultDebounceDuration,
		pollInterval:     DefaultPollInterval,
		onChange:         func() {},
		onError:          func(error) {},
		changeCh:         make(chan struct{}, 1),
	}

	for _, opt := range opts {
		opt(w)
	}

	w.debouncer = NewDebouncer(w.debounceDuration)

	return w, nil
}

// Start begins watching the database for changes.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.started {
		return ErrAlreadyStarted
	}

	st, err := statDatabase(w.path)
	if err != nil && os.IsPermission(err) {
		return ErrPermission
	}
	w.last = st

	w.ctx, w.cancel = context.WithCancel(context.Background())
	w.forcePollEnv = envBool("MM_FORCE_POLLING") || envBool("MM_FORCE_POLL")
	w.fsType = DetectFilesystemType(w.path)
	w.fsWatcher = nil
	w.useFallback = true

	switch {
	case w.forcePoll || w.forcePollEnv:
		debug.Log("watcher: polling %s (forced)", w.path)
	case isRemoteFilesystem(w.fsType):
		debug.Log("watcher: polling %s (%s filesystem)", w.path, w.fsType)
	default:
		// The directory, so atomic renames and side files are seen
		if fsw, err := w.openFsnotify(); err != nil {
			debug.Log("watcher: fsnotify unavailable, polling %s: %v", w.path, err)
		} else {
			w.fsWatcher = fsw
			w.useFallback = false
		}
	}

	if w.useFallback {
		go w.watchPolling()
	} else {
		go w.watchFsnotify()
	}
	w.started = true
	return nil
}

func (w *Watcher) openFsnotify() (*fsnotify.Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		fsw.Close()
		return nil, err
	}
	return fsw, nil
}

// Stop stops watching. The Changed channel stays open so a reader blocked on
// it never sees a spurious change.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.started {
		return
	}

	if w.cancel != nil {
		w.cancel()
	}

	if w.fsWatcher != nil {
		w.fsWatcher.Close()
		w.fsWatcher = nil
	}

	w.debouncer.Cancel()
	w.started = false
}

// IsPolling returns true if the watcher is using polling mode.
func (w *Watcher) IsPolling() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.useFallback
}

// IsStarted returns true if the watcher is running.
func (w *Watcher) IsStarted() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.started
}

// Changed returns a channel that receives when the database changes.
// This is an alternative to using the OnChange callback.
func (w *Watcher) Changed() <-chan struct{} {
	return w.changeCh
}

// Path returns the watched database path.
func (w *Watcher) Path() string {
	return w.path
}

// FilesystemType returns the best-effort filesystem classification for the watched path.
func (w *Watcher) FilesystemType() FilesystemType {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.fsType
}

// PollInterval returns the polling interval used when polling mode is active.
func (w *Watcher) PollInterval() time.Duration {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.pollInterval
}

func envBool(name string) bool {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return false
	}
	switch strings.ToLower(v) {
	case "1", "true", "yes", "y", "on":
		return true
	default:
		return false
	}
}

// watchFsnotify monitors using fsnotify events.
func (w *Watcher) watchFsnotify() {
	base := filepath.Base(w.path)

	// Capture channel references to avoid race with Stop() setting fsWatcher to nil
	w.mu.RLock()
	if w.fsWatcher == nil {
		w.mu.RUnlock()
		return
	}
	events := w.fsWatcher.Events
	errors := w.fsWatcher.Errors
	w.mu.RUnlock()

	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-events:
			if !ok {
				return
			}

			name := filepath.Base(event.Name)
			isMain := name == base
			if !isMain && !isSideFile(base, name) {
				continue
			}

			switch {
			case event.Op&fsnotify.Remove != 0:
				// SQLite deletes its journal on every commit
				if isMain {
					w.onError(ErrFileRemoved)
				} else {
					w.debouncer.Trigger(w.notifyChange)
				}

			case event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0:
				w.debouncer.Trigger(w.notifyChange)
			}

		case err, ok := <-errors:
			if !ok {
				return
			}
			w.onError(err)
		}
	}
}

// watchPolling stats the database every poll interval.
func (w *Watcher) watchPolling() {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			if w.poll() {
				w.debouncer.Trigger(w.notifyChange)
			}
		}
	}
}

// poll compares the database against the last stat and reports a change.
// Errors go to the error callback; a database that never existed is not one.
func (w *Watcher) poll() bool {
	st, err := statDatabase(w.path)

	w.mu.Lock()
	prev := w.last
	if err == nil {
		w.last = st
	}
	w.mu.Unlock()

	switch {
	case err == nil:
		return st.differs(prev)
	case os.IsNotExist(err):
		if prev.exists() {
			w.onError(ErrFileRemoved)
		}
	case os.IsPermission(err):
		w.onError(ErrPermission)
	default:
		w.onError(err)
	}
	return false
}

// notifyChange invokes the onChange callback and signals the change channel.
func (w *Watcher) notifyChange() {
	w.mu.RLock()
	started := w.started
	w.mu.RUnlock()

	// Best effort: a debounced call may still land just after Stop.
	if !started {
		return
	}

	w.onChange()

	// Non-blocking send to change channel
	select {
	case w.changeCh <- struct{}{}:
	default:
	}
}

// fileState is the combined stat of a database and its WAL file.
type fileState struct {
	mtime   time.Time
	size    int64
	walTime time.Time
	walSize int64
}

func (s fileState) exists() bool { return !s.mtime.IsZero() }

func (s fileState) differs(o fileState) bool {
	return !s.mtime.Equal(o.mtime) || s.size != o.size ||
		!s.walTime.Equal(o.walTime) || s.walSize != o.walSize
}

// statDatabase stats path and its -wal file. A missing WAL is not an error.
func statDatabase(path string) (fileState, error) {
	info, err := os.Stat(path)
	if err != nil {
		return fileState{}, err
	}
	st := fileState{mtime: info.ModTime(), size: info.Size()}
	if wal, err := os.Stat(path + "-wal"); err == nil {
		st.walTime = wal.ModTime()
		st.walSize = wal.Size()
	}
	return st, nil
}

func isSideFile(base, name string) bool {
	for _, suf := range sideSuffixes {
		if name == base+suf {
			return true
		}
	}
	return false
}
