package snapshot

import (
	"context"
	"sync"
	"time"

	"github.com/symbolmap/codemap/internal/debug"
)

// DebouncedWriter coalesces Save calls: a batch commit schedules a
// rewrite, but a burst of commits within the debounce window collapses
// into a single write of the latest Document. Adapted from the teacher's
// DebouncedRebuilder (internal/indexing/debounced_rebuilder.go).
type DebouncedWriter struct {
	root         string
	debounceTime time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	pending *Document

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	onSaved func(error)
}

// NewDebouncedWriter builds a writer for snapshots under root. debounceMs
// defaults to 50 when <= 0, matching the teacher's default.
func NewDebouncedWriter(root string, debounceMs int) *DebouncedWriter {
	if debounceMs <= 0 {
		debounceMs = 50
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &DebouncedWriter{
		root:         root,
		debounceTime: time.Duration(debounceMs) * time.Millisecond,
		ctx:          ctx,
		cancel:       cancel,
	}
}

// SetOnSaved installs a callback invoked (with the Save error, if any)
// after each debounced write completes.
func (d *DebouncedWriter) SetOnSaved(fn func(error)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onSaved = fn
}

// ScheduleSave records doc as the latest pending state and (re)arms the
// debounce timer. Repeated calls before the timer fires only update which
// Document will eventually be written.
func (d *DebouncedWriter) ScheduleSave(doc Document) {
	d.mu.Lock()
	defer d.mu.Unlock()

	cp := doc
	d.pending = &cp

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.debounceTime, d.performSave)
}

func (d *DebouncedWriter) performSave() {
	d.mu.Lock()
	doc := d.pending
	d.pending = nil
	cb := d.onSaved
	d.mu.Unlock()

	if doc == nil {
		return
	}

	d.wg.Add(1)
	defer d.wg.Done()

	select {
	case <-d.ctx.Done():
		return
	default:
	}

	err := Save(d.root, *doc)
	if err != nil {
		debug.LogIndexing("debounced snapshot save failed: %v", err)
	}
	if cb != nil {
		cb(err)
	}
}

// ForceSave writes any pending Document immediately, bypassing the
// debounce window. A no-op if nothing is pending.
func (d *DebouncedWriter) ForceSave() {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.mu.Unlock()
	d.performSave()
}

// Shutdown cancels any in-flight wait, stops the timer, and blocks until
// an in-progress write (if any) finishes.
func (d *DebouncedWriter) Shutdown() {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.cancel()
	d.mu.Unlock()
	d.wg.Wait()
}

// Pending reports whether a write is currently debounced and unflushed.
func (d *DebouncedWriter) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending != nil
}
