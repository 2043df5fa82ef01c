package lifecycle

import (
	"context"
	"runtime"
	"sort"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/symbolmap/codemap/internal/types"
)

// parsePoolSize returns NumCPU-1, minimum 1, matching the teacher's
// ParallelFileWorkers smart default (internal/config/validator.go
// setSmartDefaults) and spec.md §5's "parse pool sized to the number of
// CPU cores minus one (minimum 1)".
func parsePoolSize() int64 {
	n := runtime.NumCPU() - 1
	if n < 1 {
		n = 1
	}
	return int64(n)
}

// analyzeFunc analyzes exactly one root-relative path, returning its
// FileSummary and whether the path was recognized at all. The Service
// passes Scanner.AnalyzeOne; taking it as a function keeps the pool free
// of a scanner dependency of its own.
type analyzeFunc func(ctx context.Context, relPath string) (types.FileSummary, bool)

// runParsePool dispatches one parse job per path into a semaphore-bounded
// pool (golang.org/x/sync/semaphore, a teacher dependency used here in
// place of a hand-rolled worker-pool channel to cap concurrent parses per
// spec.md §5) and collects results. Jobs are pure and do not communicate,
// matching the spec's "jobs do not communicate" requirement.
func runParsePool(ctx context.Context, paths []string, analyze analyzeFunc) []types.FileSummary {
	sem := semaphore.NewWeighted(parsePoolSize())

	var mu sync.Mutex
	var wg sync.WaitGroup
	results := make([]types.FileSummary, 0, len(paths))

	for _, p := range paths {
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		wg.Add(1)
		go func(relPath string) {
			defer wg.Done()
			defer sem.Release(1)

			summary, recognized := analyze(ctx, relPath)
			if !recognized {
				return
			}
			mu.Lock()
			results = append(results, summary)
			mu.Unlock()
		}(p)
	}

	wg.Wait()

	sort.Slice(results, func(i, j int) bool { return results[i].Path < results[j].Path })
	return results
}
