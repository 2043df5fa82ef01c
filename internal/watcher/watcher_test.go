package watcher

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/symbolmap/codemap/internal/types"
)

type collector struct {
	mu     sync.Mutex
	events []types.RawEvent
}

func (c *collector) add(ev types.RawEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
}

func (c *collector) waitFor(t *testing.T, path string, kind types.EventKind) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		c.mu.Lock()
		for _, ev := range c.events {
			if ev.Path == path && ev.Kind == kind {
				c.mu.Unlock()
				return
			}
		}
		c.mu.Unlock()
		time.Sleep(20 * time.Millisecond)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	t.Fatalf("never observed {%s, %v} among %v", path, kind, c.events)
}

func TestWatcherObservesFileCreation(t *testing.T) {
	root := t.TempDir()
	c := &collector{}
	w := New(root, nil, c.add)

	if err := w.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()
	if !w.Active() {
		t.Skip("fsnotify unavailable in this environment, degraded mode")
	}

	if err := os.WriteFile(filepath.Join(root, "new.go"), []byte("package a"), 0o644); err != nil {
		t.Fatal(err)
	}

	c.waitFor(t, "new.go", types.EventCreated)
}

func TestWatcherObservesModification(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "existing.go")
	if err := os.WriteFile(path, []byte("package a"), 0o644); err != nil {
		t.Fatal(err)
	}

	c := &collector{}
	w := New(root, nil, c.add)
	if err := w.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()
	if !w.Active() {
		t.Skip("fsnotify unavailable in this environment, degraded mode")
	}

	if err := os.WriteFile(path, []byte("package a // changed"), 0o644); err != nil {
		t.Fatal(err)
	}

	c.waitFor(t, "existing.go", types.EventModified)
}

func TestWatcherObservesDeletion(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "doomed.go")
	if err := os.WriteFile(path, []byte("package a"), 0o644); err != nil {
		t.Fatal(err)
	}

	c := &collector{}
	w := New(root, nil, c.add)
	if err := w.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()
	if !w.Active() {
		t.Skip("fsnotify unavailable in this environment, degraded mode")
	}

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}

	c.waitFor(t, "doomed.go", types.EventDeleted)
}

func TestWatcherExclusionFilterSuppressesEvents(t *testing.T) {
	root := t.TempDir()
	if err := os.Mkdir(filepath.Join(root, "vendor"), 0o755); err != nil {
		t.Fatal(err)
	}

	c := &collector{}
	excluded := func(path string, isDir bool) bool {
		return filepath.Base(path) == "vendor"
	}
	w := New(root, excluded, c.add)
	if err := w.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()
	if !w.Active() {
		t.Skip("fsnotify unavailable in this environment, degraded mode")
	}

	if err := os.WriteFile(filepath.Join(root, "vendor", "lib.go"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	// Also touch a non-excluded file so we have a positive signal that the
	// watcher is alive and would have reported the vendor write if it
	// weren't excluded.
	if err := os.WriteFile(filepath.Join(root, "main.go"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	c.waitFor(t, "main.go", types.EventCreated)

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, ev := range c.events {
		if ev.Path == "vendor/lib.go" {
			t.Fatalf("excluded directory should never be watched, got event %v", ev)
		}
	}
}

func TestStartIsIdempotent(t *testing.T) {
	root := t.TempDir()
	w := New(root, nil, func(types.RawEvent) {})
	if err := w.Start(); err != nil {
		t.Fatalf("first Start: %v", err)
	}
	defer w.Stop()
	if err := w.Start(); err != nil {
		t.Fatalf("second Start should be a no-op, got %v", err)
	}
}

func TestStopIsIdempotentAndSafeBeforeStart(t *testing.T) {
	w := New(t.TempDir(), nil, func(types.RawEvent) {})
	w.Stop() // never started
	w.Stop() // still safe
}
