package lifecycle

import (
	"context"

	"github.com/symbolmap/codemap/internal/config"
	"github.com/symbolmap/codemap/internal/debug"
	"github.com/symbolmap/codemap/internal/index"
	"github.com/symbolmap/codemap/internal/scanner"
	"github.com/symbolmap/codemap/internal/snapshot"
	"github.com/symbolmap/codemap/internal/types"
)

// ApplySettings validates next and applies it with the atomic,
// staged semantics of spec.md §4.8:
//  1. validate (root exists, is a directory, readable)
//  2. docstring-only change: request a full rescan, no component teardown
//  3. exclude_dirs changed: stop Watcher, rebuild Scanner's exclusion set,
//     rescan, restart Watcher
//  4. root_path changed: tear down and rebuild C2/C3/C4/C6 for the new root
//
// On any failure mid-transition the prior configuration is kept; the old
// components are only released once the new ones are fully built and a
// first scan has been scheduled.
func (s *Service) ApplySettings(next types.AppSettings) ([]string, types.AppSettings, error) {
	if err := s.validator.Validate(next); err != nil {
		return nil, s.currentSettings(), err
	}

	s.mu.Lock()
	old := s.settings
	s.mu.Unlock()

	diff := config.DiffSettings(old, next)
	if !diff.Any() {
		return nil, old, nil
	}

	s.mu.Lock()
	s.state = StateReconfiguring
	s.mu.Unlock()

	var err error
	switch {
	case diff.RootPathChanged:
		err = s.reconfigureRoot(next)
	case diff.ExcludeDirsChanged:
		err = s.reconfigureExcludes(next)
	default:
		// IncludeDocstrings-only: no component teardown, just a rescan
		// under the new flag.
		s.mu.Lock()
		s.settings.IncludeDocstrings = next.IncludeDocstrings
		s.mu.Unlock()
		s.replaceScannerOptions(next)
		s.Rescan()
	}

	s.mu.Lock()
	if err != nil {
		s.settings = old
	}
	s.state = StateServingFresh
	s.mu.Unlock()

	if err != nil {
		return nil, old, err
	}
	return diff.Changed(), next, nil
}

func (s *Service) currentSettings() types.AppSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// replaceScannerOptions swaps in a Scanner configured with next's
// IncludeDocstrings/ExcludeDirs without touching the Watcher or
// Scheduler, used by the docstring-only tier.
func (s *Service) replaceScannerOptions(next types.AppSettings) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sc, err := scanner.New(next.RootPath, s.registry, scanner.Options{
		ExcludeDirs:          next.ExcludeDirs,
		RespectGitignore:     tuningRespectGitignore(s.tuning),
		DetectBuildArtifacts: true,
		IncludeDocstrings:    next.IncludeDocstrings,
	})
	if err != nil {
		debug.LogLifecycle("failed to rebuild scanner for docstring toggle: %v", err)
		return
	}
	s.comp.scan = sc
}

// reconfigureExcludes stops the Watcher, rebuilds the Scanner and
// Scheduler's exclusion set, forces a rescan, then restarts the Watcher
// (spec.md §4.8 step 3).
func (s *Service) reconfigureExcludes(next types.AppSettings) error {
	s.mu.Lock()
	comp := s.comp
	s.mu.Unlock()

	comp.watch.Stop()

	newComp, err := buildComponents(next, s.tuning, s.registry, s.onBatchDrain)
	if err != nil {
		// Roll back: restart the old watcher since the new components
		// never replaced it.
		if startErr := comp.watch.Start(); startErr != nil {
			debug.LogLifecycle("rollback watcher restart failed: %v", startErr)
		}
		return err
	}

	if err := newComp.watch.Start(); err != nil {
		debug.LogLifecycle("watcher failed to start after exclude change, degraded mode: %v", err)
	}

	s.mu.Lock()
	s.settings = next
	s.comp = newComp
	s.mu.Unlock()

	comp.sched.Flush()
	comp.snapWriter.Shutdown()

	s.Rescan()
	return nil
}

// reconfigureRoot tears down every component bound to the old root and
// builds a fresh set for the new one (spec.md §4.8 step 4): new
// Scanner/Index/SnapshotStore/Watcher, cold-start protocol rerun, any
// in-flight scan cancelled.
func (s *Service) reconfigureRoot(next types.AppSettings) error {
	s.mu.Lock()
	oldComp := s.comp
	oldCancel := s.scanCancel
	s.mu.Unlock()

	if oldCancel != nil {
		oldCancel()
	}
	s.scanWG.Wait()

	newTuning, tuningErr := config.LoadTuning(next.RootPath)
	if tuningErr != nil {
		debug.LogLifecycle("tuning file load failed for new root, using defaults: %v", tuningErr)
	}

	newComp, err := buildComponents(next, newTuning, s.registry, s.onBatchDrain)
	if err != nil {
		return err
	}

	newIdx := index.New()
	doc, meta, loadErr := snapshot.Load(next.RootPath)
	if loadErr != nil {
		debug.LogLifecycle("snapshot load error for new root (continuing cold): %v", loadErr)
	}
	if meta.WasUsable && doc.Root == next.RootPath {
		newIdx.ReplaceAll(doc.Files)
	}

	if err := newComp.watch.Start(); err != nil {
		debug.LogLifecycle("watcher failed to start for new root, degraded mode: %v", err)
	}

	s.mu.Lock()
	s.settings = next
	s.tuning = newTuning
	s.idx = newIdx
	s.comp = newComp
	s.scanCtx, s.scanCancel = context.WithCancel(context.Background())
	cb := s.onUpdate
	s.mu.Unlock()

	oldComp.stop()

	s.runFullScan(s.scanCtx)

	if cb != nil {
		// The tree changed roots entirely; signal a refresh rather than
		// an incremental path list.
		cb(nil, nil)
	}
	return nil
}
