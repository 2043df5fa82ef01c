// Package scanner implements C2 (Project Scanner): walking a project root,
// deciding what is in scope, and producing a FileSummary per recognized
// file (spec.md §4.2). It is grounded on the teacher's
// internal/indexing/watcher.go addWatches/shouldIgnoreDirectory walk and
// internal/config/config.go's exclusion model, adapted from "decide what
// to watch" to "decide what to index".
package scanner

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/symbolmap/codemap/internal/analyzer"
	"github.com/symbolmap/codemap/internal/contenthash"
	"github.com/symbolmap/codemap/internal/debug"
	"github.com/symbolmap/codemap/internal/types"
	"github.com/symbolmap/codemap/pkg/pathutil"
)

// Options configures a Scanner beyond the built-in defaults (spec.md §4.2,
// §6 AppSettings).
type Options struct {
	// ExcludeDirs are additional doublestar glob patterns, unioned with
	// DefaultExclude.
	ExcludeDirs []string
	// RespectGitignore additionally excludes whatever root/.gitignore matches.
	RespectGitignore bool
	// DetectBuildArtifacts enriches ExcludeDirs with output directories
	// read from Cargo.toml/pyproject.toml/package.json.
	DetectBuildArtifacts bool
	// IncludeDocstrings is forwarded to every analyzer.Analyze call.
	IncludeDocstrings bool
}

// Scanner walks one project root and turns files into FileSummary values.
type Scanner struct {
	root      string
	analyzers *analyzer.Registry
	exclude   []string
	gitignore *gitignorePatterns
	opts      Options
}

// New builds a Scanner for root. It loads .gitignore and build-artifact
// hints eagerly since both are cheap, local file reads done once per scan
// generation rather than per file.
func New(root string, analyzers *analyzer.Registry, opts Options) (*Scanner, error) {
	exclude := make([]string, 0, len(DefaultExclude)+len(opts.ExcludeDirs))
	exclude = append(exclude, DefaultExclude...)
	exclude = append(exclude, opts.ExcludeDirs...)
	if opts.DetectBuildArtifacts {
		exclude = append(exclude, detectBuildArtifactDirs(root)...)
	}

	var gi *gitignorePatterns
	if opts.RespectGitignore {
		loaded, err := loadGitignore(root)
		if err != nil {
			return nil, err
		}
		gi = loaded
	}

	return &Scanner{root: root, analyzers: analyzers, exclude: exclude, gitignore: gi, opts: opts}, nil
}

// Result is the output of one scan: indexed files, and the relative paths
// of files the Scanner recognized but has no Analyzer for (spec.md §4.2,
// "known but not parsed").
type Result struct {
	Files          []types.FileSummary
	KnownNotParsed []string
}

// FullScan walks the entire project root.
func (s *Scanner) FullScan(ctx context.Context) (Result, error) {
	var result Result

	err := filepath.Walk(s.root, func(absPath string, info os.FileInfo, err error) error {
		if err != nil {
			// Unreadable entries (permission errors, races with external
			// deletes) are skipped, not fatal to the whole scan.
			if info != nil && info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if absPath == s.root {
			return nil
		}

		relPath := pathutil.ToRelative(absPath, s.root)

		if info.IsDir() {
			if s.isExcluded(relPath, true) {
				return filepath.SkipDir
			}
			return nil
		}

		if info.Mode()&os.ModeSymlink != 0 {
			return nil
		}
		if s.isExcluded(relPath, false) {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		summary, recognized := s.analyzeFile(ctx, absPath, relPath, info)
		if !recognized {
			result.KnownNotParsed = append(result.KnownNotParsed, relPath)
			return nil
		}
		result.Files = append(result.Files, summary)
		return nil
	})

	return result, err
}

// PartialScan re-analyzes exactly the given root-relative paths, used by
// the Scheduler to turn a drained batch of created/modified paths into
// FileSummary values without re-walking the whole tree (spec.md §4.5).
// A path that no longer exists, is excluded, or is a directory or symlink
// is simply omitted; an existing file with no registered Analyzer is
// listed in KnownNotParsed.
func (s *Scanner) PartialScan(ctx context.Context, relPaths []string) Result {
	var result Result
	for _, relPath := range relPaths {
		select {
		case <-ctx.Done():
			return result
		default:
		}

		if s.isExcluded(relPath, false) {
			continue
		}
		info, err := os.Lstat(pathutil.ToAbsolute(relPath, s.root))
		if err != nil || info.IsDir() || info.Mode()&os.ModeSymlink != 0 {
			continue
		}
		summary, recognized := s.AnalyzeOne(ctx, relPath)
		if !recognized {
			result.KnownNotParsed = append(result.KnownNotParsed, relPath)
			continue
		}
		result.Files = append(result.Files, summary)
	}
	return result
}

// AnalyzeOne analyzes exactly one root-relative path, returning its
// FileSummary and whether it was recognized. recognized is false when the
// path is missing, a directory, a symlink or excluded, and also when its
// extension has no registered Analyzer; the result does not tell these
// cases apart. Exported so
// the Lifecycle's parse pool (spec.md §5) can dispatch per-path jobs
// directly without re-walking the filesystem.
func (s *Scanner) AnalyzeOne(ctx context.Context, relPath string) (types.FileSummary, bool) {
	if s.isExcluded(relPath, false) {
		return types.FileSummary{}, false
	}
	absPath := pathutil.ToAbsolute(relPath, s.root)
	info, err := os.Lstat(absPath)
	if err != nil || info.IsDir() || info.Mode()&os.ModeSymlink != 0 {
		return types.FileSummary{}, false
	}
	return s.analyzeFile(ctx, absPath, relPath, info)
}

func (s *Scanner) analyzeFile(ctx context.Context, absPath, relPath string, info os.FileInfo) (types.FileSummary, bool) {
	ext := strings.ToLower(filepath.Ext(relPath))
	lang, ok := s.analyzers.For(ext)
	if !ok {
		return types.FileSummary{}, false
	}

	summary := types.FileSummary{
		Path:       relPath,
		Language:   lang.Language(),
		ModifiedAt: info.ModTime().UTC(),
	}

	if info.Size() > analyzer.MaxFileSize {
		summary.Errors = []types.FileIssue{{Message: "file exceeds maximum analyzable size"}}
		return summary, true
	}

	content, err := os.ReadFile(absPath)
	if err != nil {
		summary.Errors = []types.FileIssue{{Message: "read failed: " + err.Error()}}
		return summary, true
	}

	summary.ContentHash = contenthash.Sum(content)

	if !utf8.Valid(content) {
		// Open Question 1: never skip a non-UTF-8 file outright. tree-sitter
		// and go-fast both operate on raw bytes, so parsing continues
		// best-effort; the issue is advisory, not fatal.
		summary.Errors = append(summary.Errors, types.FileIssue{Message: "file is not valid UTF-8; analyzed best-effort"})
	}

	parseCtx, cancel := context.WithTimeout(ctx, analyzer.ParseBudget)
	defer cancel()

	symbols, issues := lang.Analyze(parseCtx, relPath, content, analyzer.Options{IncludeDocstrings: s.opts.IncludeDocstrings})
	summary.Symbols = symbols
	summary.Errors = append(summary.Errors, issues...)

	debug.LogIndexing("analyzed %s (%d symbols, %d issues)", relPath, len(symbols), len(summary.Errors))
	return summary, true
}

func (s *Scanner) isExcluded(relPath string, isDir bool) bool {
	lowerPath := strings.ToLower(relPath)
	for _, pattern := range s.exclude {
		pattern = strings.ToLower(pattern)
		if ok, _ := doublestar.Match(pattern, lowerPath); ok {
			return true
		}
		if ok, _ := doublestar.Match(pattern, filepath.Base(lowerPath)); ok {
			return true
		}
	}
	if s.gitignore != nil && s.gitignore.Match(relPath) {
		return true
	}
	return false
}
