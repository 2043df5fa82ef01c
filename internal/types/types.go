// Package types holds the data model shared by every component of the
// indexing engine: SymbolInfo, FileIssue, FileSummary, ProjectTreeNode,
// AppSettings and Snapshot, as specified in spec.md §3.
package types

import "time"

// SymbolKind enumerates the three declaration shapes the engine tracks.
// Only class/function/method are in scope; spec.md's Non-goals exclude
// cross-file resolution of anything richer (variables, imports, types).
type SymbolKind string

const (
	KindClass    SymbolKind = "class"
	KindFunction SymbolKind = "function"
	KindMethod   SymbolKind = "method"
)

// SymbolInfo is one declaration found in a file (spec.md §3).
//
// JSON key order is fixed (spec.md §6): name, kind, parent?, lineno,
// docstring?. Parent and Docstring are omitted — not emitted as null —
// when absent, so snapshot diffs stay stable.
type SymbolInfo struct {
	Name      string     `json:"name"`
	Kind      SymbolKind `json:"kind"`
	Parent    string     `json:"parent,omitempty"`
	Lineno    int        `json:"lineno"`
	Docstring string     `json:"docstring,omitempty"`
}

// FileIssue is a parse problem local to one file (spec.md §3). Its
// presence never prevents a FileSummary from existing.
type FileIssue struct {
	Message string `json:"message"`
	Lineno  int    `json:"lineno,omitempty"`
}

// FileSummary is the unit of indexing (spec.md §3).
//
// JSON key order is fixed (spec.md §6): path, language, modified_at,
// content_hash, symbols, errors.
type FileSummary struct {
	Path        string       `json:"path"`
	Language    string       `json:"language"`
	ModifiedAt  time.Time    `json:"modified_at"`
	ContentHash string       `json:"content_hash"`
	Symbols     []SymbolInfo `json:"symbols"`
	Errors      []FileIssue  `json:"errors"`
}

// ProjectTreeNode is a directory or file node the UI renders (spec.md §3).
// It is built on demand from the Index; it is never independently stored.
type ProjectTreeNode struct {
	Name     string             `json:"name"`
	Path     string             `json:"path"`
	IsDir    bool               `json:"is_dir"`
	Children []*ProjectTreeNode `json:"children,omitempty"`
	Symbols  []SymbolInfo       `json:"symbols,omitempty"`
}

// SearchResult is one ranked hit from Index.Search (spec.md §4.3).
type SearchResult struct {
	Path             string     `json:"path"`
	SymbolName       string     `json:"symbol_name"`
	Kind             SymbolKind `json:"kind"`
	Lineno           int        `json:"lineno"`
	DocstringExcerpt string     `json:"docstring_excerpt,omitempty"`
}

// AppSettings is the persisted, user-editable configuration (spec.md §3,
// §6). ExcludeDirs is a set of directory-name tokens compared
// case-insensitively; the default exclusion set is always unioned in, it
// is never replaced by a user's list.
//
// JSON key order is fixed (spec.md §6): version, root_path, exclude_dirs,
// include_docstrings.
type AppSettings struct {
	Version           int      `json:"version"`
	RootPath          string   `json:"root_path"`
	ExcludeDirs       []string `json:"exclude_dirs"`
	IncludeDocstrings bool     `json:"include_docstrings"`
}

// Status is a point-in-time snapshot of engine health (spec.md §6).
type Status struct {
	WatcherActive     bool      `json:"watcher_active"`
	IncludeDocstrings bool      `json:"include_docstrings"`
	FilesIndexed      int       `json:"files_indexed"`
	SymbolsIndexed    int       `json:"symbols_indexed"`
	LastFullScan      time.Time `json:"last_full_scan"`
	LastEventBatch    time.Time `json:"last_event_batch"`
	PendingEvents     int       `json:"pending_events"`
}
