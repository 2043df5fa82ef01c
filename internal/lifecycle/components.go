package lifecycle

import (
	"strings"
	"time"

	"github.com/symbolmap/codemap/internal/analyzer"
	"github.com/symbolmap/codemap/internal/config"
	"github.com/symbolmap/codemap/internal/scanner"
	"github.com/symbolmap/codemap/internal/scheduler"
	"github.com/symbolmap/codemap/internal/snapshot"
	"github.com/symbolmap/codemap/internal/types"
	"github.com/symbolmap/codemap/internal/watcher"
)

// components bundles everything bound to one root so ApplySettings' root
// change path (spec.md §4.8 step 4) can build a full replacement set and
// swap it in as one unit, matching the teacher's tear-down/rebuild shape
// for reconfiguration.
type components struct {
	root       string
	scan       *scanner.Scanner
	sched      *scheduler.Scheduler
	watch      *watcher.Watcher
	snapWriter *snapshot.DebouncedWriter
}

// buildComponents constructs a fresh Scanner/Scheduler/Watcher/snapshot
// writer bound to settings.RootPath. onBatch is invoked with every
// drained Scheduler batch; the caller wires it to the committer.
func buildComponents(settings types.AppSettings, tuning config.Tuning, registry *analyzer.Registry, onBatch func(types.Batch)) (*components, error) {
	excludeSet := make(map[string]bool, len(settings.ExcludeDirs))
	for _, d := range settings.ExcludeDirs {
		excludeSet[strings.ToLower(d)] = true
	}

	sc, err := scanner.New(settings.RootPath, registry, scanner.Options{
		ExcludeDirs:          settings.ExcludeDirs,
		RespectGitignore:     tuningRespectGitignore(tuning),
		DetectBuildArtifacts: true,
		IncludeDocstrings:    settings.IncludeDocstrings,
	})
	if err != nil {
		return nil, err
	}

	debounce := time.Duration(tuning.DebounceMs) * time.Millisecond
	maxDelay := time.Duration(tuning.MaxDelayMs) * time.Millisecond

	excluded := func(path string) bool {
		return dirExcluded(path, excludeSet)
	}

	sched := scheduler.New(debounce, maxDelay, excluded)
	sched.SetOnDrain(onBatch)

	w := watcher.New(settings.RootPath, func(p string, isDir bool) bool {
		return dirExcluded(p, excludeSet)
	}, sched.Submit)

	snapWriter := snapshot.NewDebouncedWriter(settings.RootPath, tuning.DebounceMs)

	return &components{
		root:       settings.RootPath,
		scan:       sc,
		sched:      sched,
		watch:      w,
		snapWriter: snapWriter,
	}, nil
}

func tuningRespectGitignore(t config.Tuning) bool {
	if t.RespectGitignore != nil {
		return *t.RespectGitignore
	}
	return true
}

// dirExcluded applies spec.md §4.2's name-based exclusion rule (case
// insensitive directory-name token match, plus leading-dot directories by
// default) to any path by testing every path segment's base name.
func dirExcluded(path string, excludeSet map[string]bool) bool {
	segments := strings.Split(strings.ReplaceAll(path, "\\", "/"), "/")
	for _, seg := range segments {
		if seg == "" {
			continue
		}
		if excludeSet[strings.ToLower(seg)] {
			return true
		}
		if strings.HasPrefix(seg, ".") && seg != "." && seg != ".." {
			return true
		}
	}
	return false
}

func (c *components) stop() {
	c.watch.Stop()
	c.snapWriter.ForceSave()
	c.snapWriter.Shutdown()
}
