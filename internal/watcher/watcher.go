// Package watcher implements C6 (Watcher Service): an fsnotify-backed
// recursive filesystem watch that emits logical events in terms of
// root-relative paths (spec.md §4.6), adapted from the teacher's
// FileWatcher (internal/indexing/watcher.go).
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/symbolmap/codemap/internal/debug"
	"github.com/symbolmap/codemap/internal/types"
)

// ExclusionFilter reports whether an absolute path is excluded. It is
// consulted for directories before they are watched and for every event
// path, with isDir telling which.
type ExclusionFilter func(path string, isDir bool) bool

// Watcher wraps fsnotify to produce types.RawEvent values relative to a
// project root. A Watcher that fails to start an OS-level facility enters
// degraded mode (Active() == false) rather than failing outright, per
// spec.md §4.6.
type Watcher struct {
	root     string
	excluded ExclusionFilter
	onEvent  func(types.RawEvent)

	mu      sync.Mutex
	fsw     *fsnotify.Watcher
	active  bool
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	visited map[string]bool
}

// New constructs a Watcher bound to root. excluded may be nil to accept
// every directory. The underlying OS facility is only opened by Start.
func New(root string, excluded ExclusionFilter, onEvent func(types.RawEvent)) *Watcher {
	return &Watcher{root: root, excluded: excluded, onEvent: onEvent}
}

// Active reports whether the OS-level watch facility is currently
// running. False means the system must rely on explicit rescans.
func (w *Watcher) Active() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.active
}

// Start attempts to open the OS watch facility and recursively arm
// watches under root. A failure to open the facility (e.g. inotify
// instance limits) leaves the Watcher inactive rather than returning an
// error: callers keep serving via rescans (spec.md §4.6).
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.active {
		return nil
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		debug.LogWatch("watcher: fsnotify unavailable, entering degraded mode: %v", err)
		w.active = false
		return nil
	}

	w.fsw = fsw
	w.visited = make(map[string]bool)
	w.ctx, w.cancel = context.WithCancel(context.Background())

	if err := w.addWatches(w.root); err != nil {
		fsw.Close()
		w.fsw = nil
		return fmt.Errorf("watcher: initial scan of %s: %w", w.root, err)
	}

	w.active = true
	w.wg.Add(1)
	go w.processEvents()
	return nil
}

// Stop tears down the watch facility and waits for the event loop to
// exit. Safe to call on an already-stopped or never-started Watcher.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.active {
		w.mu.Unlock()
		return
	}
	w.active = false
	cancel := w.cancel
	fsw := w.fsw
	w.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if fsw != nil {
		fsw.Close()
	}
	w.wg.Wait()
}

// addWatches recursively arms watches under root, guarding against
// symlink cycles by resolving each directory's real path before
// descending (adapted from the teacher's addWatches).
func (w *Watcher) addWatches(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			return nil
		}

		real, err := filepath.EvalSymlinks(path)
		if err != nil {
			return nil
		}
		if w.visited[real] {
			return filepath.SkipDir
		}
		w.visited[real] = true

		if w.excluded != nil && w.excluded(path, true) {
			return filepath.SkipDir
		}

		if err := w.fsw.Add(path); err != nil {
			debug.LogWatch("watcher: failed to watch %s: %v", path, err)
		}
		return nil
	})
}

func (w *Watcher) processEvents() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(ev)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			debug.LogWatch("watcher: fsnotify error: %v", err)
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	rel, err := filepath.Rel(w.root, ev.Name)
	if err != nil {
		rel = ev.Name
	}
	rel = filepath.ToSlash(rel)

	info, statErr := os.Stat(ev.Name)
	if statErr != nil {
		if ev.Op&fsnotify.Remove != 0 {
			if w.excluded == nil || !w.excluded(ev.Name, false) {
				w.emit(rel, types.EventDeleted)
			}
		}
		return
	}

	if info.IsDir() {
		w.handleDirEvent(ev, info)
		return
	}

	if w.excluded != nil && w.excluded(ev.Name, false) {
		return
	}

	// Atomic-save patterns on some platforms surface as a rename of a
	// temp file onto the target; fsnotify cannot correlate the two
	// halves generically, so any rename observed on a still-present
	// path is normalized to modified rather than reported as a delete
	// (spec.md §4.6).
	switch {
	case ev.Op&fsnotify.Create != 0:
		w.emit(rel, types.EventCreated)
	case ev.Op&(fsnotify.Write|fsnotify.Rename|fsnotify.Chmod) != 0:
		w.emit(rel, types.EventModified)
	case ev.Op&fsnotify.Remove != 0:
		w.emit(rel, types.EventDeleted)
	}
}

func (w *Watcher) handleDirEvent(ev fsnotify.Event, info os.FileInfo) {
	if ev.Op&fsnotify.Create == 0 {
		return
	}
	if w.excluded != nil && w.excluded(ev.Name, true) {
		return
	}
	w.mu.Lock()
	if w.fsw != nil {
		if err := w.fsw.Add(ev.Name); err != nil {
			debug.LogWatch("watcher: failed to watch new directory %s: %v", ev.Name, err)
		}
	}
	w.mu.Unlock()
}

func (w *Watcher) emit(relPath string, kind types.EventKind) {
	if w.onEvent == nil {
		return
	}
	w.onEvent(types.RawEvent{Path: relPath, Kind: kind})
}
