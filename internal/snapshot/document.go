// Package snapshot implements C4 (Snapshot Store): the on-disk warm copy
// of the Index, written under <root>/.code-map/code-map.json (spec.md
// §3, §4.4, §6). The Index exclusively owns the live FileSummary set;
// this package only ever holds a disk copy of it (spec.md §4 Ownership).
package snapshot

import (
	"time"

	"github.com/symbolmap/codemap/internal/types"
)

// CurrentVersion is the schema version written by this build. A snapshot
// whose Version differs is discarded and rebuilt rather than partially
// trusted (spec.md §3 Snapshot invariant).
const CurrentVersion = 1

// FileName is the snapshot's path relative to the project root.
const FileName = ".code-map/code-map.json"

// Document is the exact on-disk shape (spec.md §6): fixed key order
// version, root, include_docstrings, files.
type Document struct {
	Version           int                 `json:"version"`
	Root              string              `json:"root"`
	IncludeDocstrings bool                `json:"include_docstrings"`
	Files             []types.FileSummary `json:"files"`
}

// Meta is returned alongside a loaded Document for callers that need to
// log or report on staleness without re-reading the file.
type Meta struct {
	Path      string
	LoadedAt  time.Time
	WasUsable bool
}
