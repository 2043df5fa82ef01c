// Package scheduler implements C5 (Change Scheduler): debouncing and
// deduplicating raw filesystem events from the Watcher into idempotent
// batches for the indexing pipeline (spec.md §4.5).
package scheduler

import (
	"sort"
	"sync"
	"time"

	"github.com/symbolmap/codemap/internal/debug"
	"github.com/symbolmap/codemap/internal/types"
)

// DefaultDebounce is the quiescence window before a drain (spec.md §4.5).
const DefaultDebounce = 250 * time.Millisecond

// DefaultMaxDelay caps how long a sustained write storm can postpone a
// drain (spec.md §4.5).
const DefaultMaxDelay = 2 * time.Second

// ExclusionFilter reports whether a path falls inside an excluded
// directory and should be dropped before it ever reaches the dedup map.
type ExclusionFilter func(path string) bool

// Scheduler batches successive events on the same path per the merge
// table in spec.md §4.5, grounded on the teacher's eventDebouncer
// (internal/indexing/watcher.go), generalized with a second deadline
// timer for the spec's required hard maximum delay.
type Scheduler struct {
	debounce time.Duration
	maxDelay time.Duration
	excluded ExclusionFilter

	mu          sync.Mutex
	pending     types.Batch
	timer       *time.Timer
	deadline    *time.Timer
	deadlineSet bool

	onDrain func(types.Batch)
}

// New builds a Scheduler. A zero debounce or maxDelay falls back to the
// spec defaults. excluded may be nil to accept every path.
func New(debounce, maxDelay time.Duration, excluded ExclusionFilter) *Scheduler {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if maxDelay <= 0 {
		maxDelay = DefaultMaxDelay
	}
	return &Scheduler{
		debounce: debounce,
		maxDelay: maxDelay,
		excluded: excluded,
		pending:  make(types.Batch),
	}
}

// SetOnDrain installs the callback invoked with each drained batch. Must
// be set before the first event is submitted.
func (s *Scheduler) SetOnDrain(fn func(types.Batch)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onDrain = fn
}

// Submit records a raw event, merging it with any prior pending event on
// the same path per the spec §4.5 table, and (re)arms the debounce timer.
// The event kind is merged as given; moves go through SubmitMove, which
// decomposes them into delete(src) + create(dst).
func (s *Scheduler) Submit(ev types.RawEvent) {
	if s.excluded != nil && s.excluded(ev.Path) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.mergeLocked(ev.Path, ev.Kind)
	s.armLocked()
}

// SubmitMove decomposes a moved event into delete(src) + create(dst), the
// two independently-mergeable events spec.md §4.5 specifies.
func (s *Scheduler) SubmitMove(src, dst string) {
	if s.excluded == nil || !s.excluded(src) {
		s.mu.Lock()
		s.mergeLocked(src, types.EventDeleted)
		s.mu.Unlock()
	}
	if s.excluded == nil || !s.excluded(dst) {
		s.mu.Lock()
		s.mergeLocked(dst, types.EventCreated)
		s.mu.Unlock()
	}

	s.mu.Lock()
	s.armLocked()
	s.mu.Unlock()
}

// mergeLocked applies the spec §4.5 merge table. Caller holds s.mu.
func (s *Scheduler) mergeLocked(path string, next types.EventKind) {
	prev, had := s.pending[path]
	if !had {
		s.pending[path] = next
		return
	}

	merged, drop := merge(prev, next)
	if drop {
		delete(s.pending, path)
		return
	}
	s.pending[path] = merged
}

// merge implements the spec §4.5 table for a path that already has a
// pending effective kind prev, given a freshly observed kind next.
func merge(prev, next types.EventKind) (result types.EventKind, drop bool) {
	switch prev {
	case types.EventCreated:
		switch next {
		case types.EventCreated, types.EventModified:
			return types.EventCreated, false
		case types.EventDeleted:
			return 0, true
		}
	case types.EventModified, types.EventDeleted:
		switch next {
		case types.EventCreated:
			return types.EventModified, false
		case types.EventModified:
			return types.EventModified, false
		case types.EventDeleted:
			return types.EventDeleted, false
		}
	}
	return next, false
}

// armLocked (re)starts the debounce timer and, on the first event since
// the last drain, starts the hard-deadline timer. Caller holds s.mu.
func (s *Scheduler) armLocked() {
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.debounce, s.onTimerFire)

	if !s.deadlineSet {
		s.deadlineSet = true
		s.deadline = time.AfterFunc(s.maxDelay, s.onDeadlineFire)
	}
}

func (s *Scheduler) onTimerFire() {
	s.drainAndDispatch()
}

func (s *Scheduler) onDeadlineFire() {
	debug.LogIndexing("scheduler: max delay reached, forcing drain")
	s.drainAndDispatch()
}

func (s *Scheduler) drainAndDispatch() {
	batch := s.Drain()
	if len(batch) == 0 {
		return
	}
	s.mu.Lock()
	cb := s.onDrain
	s.mu.Unlock()
	if cb != nil {
		cb(batch)
	}
}

// Drain returns the current pending batch and resets the buffer. Callers
// that want deterministic apply order should iterate SortedPaths(batch).
func (s *Scheduler) Drain() types.Batch {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
	}
	if s.deadline != nil {
		s.deadline.Stop()
	}
	s.deadlineSet = false

	batch := s.pending
	s.pending = make(types.Batch)
	return batch
}

// Flush forces an immediate drain and dispatch, bypassing the debounce
// window. Used by ApplySettings/shutdown paths that must not wait.
func (s *Scheduler) Flush() {
	s.drainAndDispatch()
}

// SortedPaths returns a batch's paths in deterministic (alphabetical)
// order, matching the commit-ordering guarantee in spec.md §4.5.
func SortedPaths(b types.Batch) []string {
	paths := make([]string, 0, len(b))
	for p := range b {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// PendingCount reports how many distinct paths are currently buffered.
func (s *Scheduler) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}
