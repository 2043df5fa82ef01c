// Package lifecycle implements C8 (Settings & Lifecycle): the central
// orchestrator that wires C2-C7 together, runs the cold-start protocol,
// and applies settings changes atomically (spec.md §4.8). Grounded on the
// teacher's internal/server/server.go IndexServer (mutex-guarded state,
// background indexing goroutine) generalized from an RPC server to a
// library-level orchestrator.
package lifecycle

import (
	"context"
	"fmt"
	"sync"

	"github.com/symbolmap/codemap/internal/analyzer"
	"github.com/symbolmap/codemap/internal/config"
	"github.com/symbolmap/codemap/internal/debug"
	"github.com/symbolmap/codemap/internal/index"
	"github.com/symbolmap/codemap/internal/scheduler"
	"github.com/symbolmap/codemap/internal/snapshot"
	"github.com/symbolmap/codemap/internal/types"
)

// Service is the orchestrator described in spec.md §4.8. It owns one
// Index, one Snapshot Store binding, and the active Scanner/Scheduler/
// Watcher for the currently configured root.
type Service struct {
	mu sync.RWMutex

	state    State
	settings types.AppSettings
	registry *analyzer.Registry
	tuning   config.Tuning
	idx      *index.Index
	comp     *components
	onUpdate func(updated, deleted []string)

	validator *config.Validator

	scanCtx    context.Context
	scanCancel context.CancelFunc
	scanWG     sync.WaitGroup
}

// New runs the cold-start protocol (spec.md §4.4/§4.8) for settings and
// returns a Service ready to serve queries. A readable snapshot seeds the
// Index immediately (state serving_warm); a full background scan then
// brings the Index to serving_fresh. No snapshot, or an unusable one,
// leaves the Index empty until that first scan completes (state
// scanning).
func New(settings types.AppSettings) (*Service, error) {
	validator := config.NewValidator()
	if err := validator.Validate(settings); err != nil {
		return nil, err
	}

	tuning, err := config.LoadTuning(settings.RootPath)
	if err != nil {
		debug.LogLifecycle("tuning file load failed, using defaults: %v", err)
	}

	s := &Service{
		state:     StateBooting,
		settings:  settings,
		registry:  analyzer.NewRegistry(),
		tuning:    tuning,
		idx:       index.New(),
		validator: validator,
	}

	doc, meta, err := snapshot.Load(settings.RootPath)
	if err != nil {
		debug.LogLifecycle("snapshot load error (continuing cold): %v", err)
	}
	if meta.WasUsable && doc.Root == settings.RootPath {
		s.idx.ReplaceAll(doc.Files)
		s.state = StateServingWarm
	} else {
		s.state = StateScanning
	}

	comp, err := buildComponents(settings, tuning, s.registry, s.onBatchDrain)
	if err != nil {
		return nil, fmt.Errorf("lifecycle: build components: %w", err)
	}
	s.comp = comp

	if err := comp.watch.Start(); err != nil {
		debug.LogLifecycle("watcher failed to start, degraded mode: %v", err)
	}

	s.scanCtx, s.scanCancel = context.WithCancel(context.Background())
	s.runFullScan(s.scanCtx)

	return s, nil
}

// Tree, File, Search, Status are the read-only Index queries exposed by
// spec.md §6.
func (s *Service) Tree() *types.ProjectTreeNode { return s.idx.Tree() }

func (s *Service) File(path string) (types.FileSummary, bool) { return s.idx.File(path) }

func (s *Service) Search(term string, limit int) []types.SearchResult {
	return s.idx.Search(term, limit)
}

func (s *Service) Status() types.Status {
	st := s.idx.Status()
	s.mu.RLock()
	st.WatcherActive = s.comp.watch.Active()
	st.IncludeDocstrings = s.settings.IncludeDocstrings
	st.PendingEvents = s.comp.sched.PendingCount()
	s.mu.RUnlock()
	return st
}

// SetOnUpdate installs the callback invoked after each committed batch
// or full scan with the updated and deleted paths, so a caller-owned
// Broadcaster (C7 is an explicit external collaborator per spec.md §4.7,
// not something this package instantiates itself) can fan the event out.
func (s *Service) SetOnUpdate(fn func(updated, deleted []string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onUpdate = fn
}

// Rescan forces a full scan asynchronously (spec.md §6). Each call starts
// a new background scan; it does not check whether one is already
// running.
func (s *Service) Rescan() {
	s.mu.RLock()
	ctx := s.scanCtx
	s.mu.RUnlock()
	s.runFullScan(ctx)
}

// runFullScan drives the Scanner over the whole root, replaces the Index
// atomically, and schedules a snapshot rewrite, matching spec.md §4.2's
// full-scan operation and §4.8's "scanning" state.
func (s *Service) runFullScan(ctx context.Context) {
	s.mu.Lock()
	if s.state == StateBooting || s.state == StateServingWarm {
		s.state = StateScanning
	}
	comp := s.comp
	settings := s.settings
	s.mu.Unlock()

	s.scanWG.Add(1)
	go func() {
		defer s.scanWG.Done()

		result, err := comp.scan.FullScan(ctx)
		if err != nil {
			debug.LogLifecycle("full scan cancelled or failed: %v", err)
			return
		}

		s.idx.ReplaceAll(result.Files)

		s.mu.Lock()
		if s.state == StateScanning {
			s.state = StateServingFresh
		}
		cb := s.onUpdate
		s.mu.Unlock()

		comp.snapWriter.ScheduleSave(snapshot.Document{
			Version:           snapshot.CurrentVersion,
			Root:              settings.RootPath,
			IncludeDocstrings: settings.IncludeDocstrings,
			Files:             result.Files,
		})

		if cb != nil {
			paths := make([]string, 0, len(result.Files))
			for _, f := range result.Files {
				paths = append(paths, f.Path)
			}
			cb(paths, nil)
		}
	}()
}

// onBatchDrain is the committer described in spec.md §5: it dispatches a
// drained Scheduler batch into the parse pool, applies the results to the
// Index in one commit, schedules a snapshot rewrite, then notifies the
// caller-owned Broadcaster hook.
func (s *Service) onBatchDrain(batch types.Batch) {
	s.mu.RLock()
	comp := s.comp
	settings := s.settings
	cb := s.onUpdate
	s.mu.RUnlock()

	var creates, deletes []string
	for _, p := range scheduler.SortedPaths(batch) {
		if batch[p] == types.EventDeleted {
			deletes = append(deletes, p)
		} else {
			creates = append(creates, p)
		}
	}

	upserts := runParsePool(context.Background(), creates, comp.scan.AnalyzeOne)

	s.idx.ApplyBatch(upserts, deletes)

	comp.snapWriter.ScheduleSave(snapshot.Document{
		Version:           snapshot.CurrentVersion,
		Root:              settings.RootPath,
		IncludeDocstrings: settings.IncludeDocstrings,
		Files:             s.idx.Files(),
	})

	if cb != nil {
		paths := make([]string, 0, len(upserts)+len(deletes))
		for _, f := range upserts {
			paths = append(paths, f.Path)
		}
		cb(paths, deletes)
	}
}

// Close cancels any in-flight full scan, stops the Watcher, and flushes
// any pending snapshot write.
func (s *Service) Close() {
	s.mu.Lock()
	cancel := s.scanCancel
	comp := s.comp
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.scanWG.Wait()
	if comp != nil {
		comp.stop()
	}
}
