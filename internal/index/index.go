// Package index implements C3 (Symbol Index): the single in-memory,
// concurrency-safe store of every file's FileSummary, plus the read
// operations built on top of it (tree, file lookup, search, status).
// Grounded on the teacher's internal/core/symbol.go SymbolIndex — a single
// RWMutex-guarded map with a bulk-replace mode for full scans and a
// incremental-apply mode for batch commits (spec.md §4.3).
package index

import (
	"sort"
	"sync"
	"time"

	"github.com/symbolmap/codemap/internal/types"
)

// Index holds one FileSummary per indexed path. All mutation goes through
// ReplaceAll or ApplyBatch, both of which take the single write lock for
// their whole duration — there is exactly one writer at a time by
// construction (the Committer in the indexing pipeline), so the lock only
// ever contends with readers (spec.md §5).
type Index struct {
	mu    sync.RWMutex
	files map[string]types.FileSummary

	lastFullScan   time.Time
	lastEventBatch time.Time
}

// New returns an empty Index.
func New() *Index {
	return &Index{files: make(map[string]types.FileSummary)}
}

// ReplaceAll atomically swaps the entire index contents, used after a full
// scan (spec.md §4.2/§4.3). It is the only operation that can shrink the
// index for files that no longer exist, since a full scan enumerates the
// complete current file set.
func (idx *Index) ReplaceAll(files []types.FileSummary) {
	next := make(map[string]types.FileSummary, len(files))
	for _, f := range files {
		next[f.Path] = f
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.files = next
	idx.lastFullScan = time.Now()
}

// ApplyBatch commits one drained Scheduler batch: upserts replace or add a
// FileSummary, deletes remove one. Both slices are applied under a single
// lock acquisition so a reader never observes a partially-applied batch
// (spec.md §4.5 "the unit of atomic commit to the Index").
func (idx *Index) ApplyBatch(upserts []types.FileSummary, deletes []string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	for _, path := range deletes {
		delete(idx.files, path)
	}
	for _, f := range upserts {
		idx.files[f.Path] = f
	}
	idx.lastEventBatch = time.Now()
}

// File returns the FileSummary for an exact root-relative path.
func (idx *Index) File(path string) (types.FileSummary, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	f, ok := idx.files[path]
	return f, ok
}

// Status reports point-in-time counts; the caller (C8) fills in the
// watcher/scheduler-derived fields this package has no visibility into.
func (idx *Index) Status() types.Status {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	symbolCount := 0
	for _, f := range idx.files {
		symbolCount += len(f.Symbols)
	}
	return types.Status{
		FilesIndexed:   len(idx.files),
		SymbolsIndexed: symbolCount,
		LastFullScan:   idx.lastFullScan,
		LastEventBatch: idx.lastEventBatch,
	}
}

// snapshot returns a defensive, read-locked copy of every FileSummary, for
// callers (Tree, Search) that need to iterate without holding the lock
// for the duration of their own work. Sorted by Path so repeated snapshots
// of unchanged state are byte-identical once serialized, rather than
// varying with Go's randomized map iteration order (spec.md §5, P7).
func (idx *Index) snapshot() []types.FileSummary {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	out := make([]types.FileSummary, 0, len(idx.files))
	for _, f := range idx.files {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// Files returns the same defensive copy as snapshot, exported for the
// Snapshot Store's writer (C4), which needs the full current file set to
// persist after every commit (spec.md §4.4 "after every Scheduler batch
// commit, rewrite the snapshot").
func (idx *Index) Files() []types.FileSummary {
	return idx.snapshot()
}
