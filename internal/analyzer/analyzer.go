// Package analyzer implements C1 (Language Analyzers): turning one file's
// raw bytes into a types.FileSummary, independent of where those bytes came
// from (spec.md §4.1).
package analyzer

import (
	"context"
	"time"

	"github.com/symbolmap/codemap/internal/types"
)

// MaxFileSize is the default ceiling above which a file is recorded with a
// FileIssue instead of parsed (spec.md §9, Open Question 2: decided as
// 5 MiB — large enough for any hand-written source file, small enough that
// a single oversized generated file cannot stall a scan batch).
const MaxFileSize = 5 << 20

// ParseBudget is the soft per-file wall-clock budget enforced by ctx
// deadlines set by the caller (the Scheduler/Scanner), not by the analyzer
// itself; analyzers only need to check ctx between top-level declarations.
const ParseBudget = 2 * time.Second

// Options controls optional, per-call analysis behavior (spec.md §4.1).
type Options struct {
	// IncludeDocstrings requests that the leading string-literal docstring
	// of each class/function/method body be captured, where the language
	// has such a convention. Analyzers for languages without one (JS/TS,
	// Go, Rust, ...) silently ignore this flag.
	IncludeDocstrings bool
}

// Analyzer turns file content into symbols, independent of transport.
// Analyze must never panic: internal failures are reported as a FileIssue
// on the returned summary, not as a Go error, because a summary must still
// exist for every scanned file (spec.md §3, FileSummary invariant).
type Analyzer interface {
	// Language is the human-readable name recorded on FileSummary.Language.
	Language() string

	// Analyze parses content and returns the symbols and issues found.
	// ctx carries the per-file/per-batch deadline; analyzers must check it
	// at declaration granularity, never preemptively mid-parse (spec.md §5).
	Analyze(ctx context.Context, path string, content []byte, opts Options) ([]types.SymbolInfo, []types.FileIssue)
}

// Registry maps file extensions to the Analyzer that handles them. It is
// built once at startup and read concurrently thereafter; there is no
// mutex because registration always completes before first use.
type Registry struct {
	byExt map[string]Analyzer
}

// NewRegistry builds the default registry covering every language the
// engine supports out of the box (spec.md §4.1 plus the domain-stack
// expansion in SPEC_FULL.md §4.1).
func NewRegistry() *Registry {
	r := &Registry{byExt: make(map[string]Analyzer)}

	r.register(newPythonAnalyzer())
	r.register(newJavaScriptAnalyzer())
	r.register(newTypeScriptAnalyzer())
	r.register(newGoAnalyzer())
	r.register(newJavaAnalyzer())
	r.register(newRustAnalyzer())
	r.register(newPHPAnalyzer())
	r.register(newCppAnalyzer())
	r.register(newCSharpAnalyzer())
	r.register(newZigAnalyzer())
	r.register(newMarkupAnalyzer())

	return r
}

func (r *Registry) register(a extAnalyzer) {
	for _, ext := range a.Extensions() {
		r.byExt[ext] = a
	}
}

// For returns the Analyzer registered for ext (including the leading dot),
// or false if the extension is unrecognized — the Scanner records such
// files as "known but not parsed" rather than skipping them (spec.md §4.2).
func (r *Registry) For(ext string) (Analyzer, bool) {
	a, ok := r.byExt[ext]
	return a, ok
}

// extAnalyzer is the internal registration shape: every concrete analyzer
// in this package also reports which extensions it owns.
type extAnalyzer interface {
	Analyzer
	Extensions() []string
}
