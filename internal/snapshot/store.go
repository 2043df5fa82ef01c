package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/symbolmap/codemap/internal/debug"
)

// Load reads and validates the snapshot at root/FileName. A missing file,
// a version mismatch, or a structurally invalid document is reported via
// Meta.WasUsable = false rather than an error: callers always fall back
// to a fresh full scan, never block startup (spec.md §3 invariant).
func Load(root string) (Document, Meta, error) {
	path := filepath.Join(root, FileName)
	meta := Meta{Path: path}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Document{}, meta, nil
		}
		return Document{}, meta, err
	}

	if err := validateShape(raw); err != nil {
		debug.LogIndexing("snapshot at %s failed shape validation: %v", path, err)
		return Document{}, meta, nil
	}

	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		debug.LogIndexing("snapshot at %s failed to decode: %v", path, err)
		return Document{}, meta, nil
	}

	if doc.Version != CurrentVersion {
		debug.LogIndexing("snapshot at %s has version %d, want %d; discarding", path, doc.Version, CurrentVersion)
		return Document{}, meta, nil
	}

	meta.WasUsable = true
	return doc, meta, nil
}

// Save writes doc to root/FileName atomically: encode to a temp file in
// the same directory, fsync it, then rename over the final path. A crash
// mid-write leaves either the old snapshot or nothing — never a
// truncated one (spec.md §4.4; no pack dependency offers a ready-made
// atomic file writer, so this corner stays on the standard library — see
// DESIGN.md).
func Save(root string, doc Document) error {
	dir := filepath.Join(root, filepath.Dir(FileName))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("snapshot dir: %w", err)
	}

	final := filepath.Join(root, FileName)
	tmp, err := os.CreateTemp(dir, ".code-map-*.tmp")
	if err != nil {
		return fmt.Errorf("snapshot temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		tmp.Close()
		return fmt.Errorf("snapshot encode: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("snapshot fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("snapshot close: %w", err)
	}
	if err := os.Rename(tmpPath, final); err != nil {
		return fmt.Errorf("snapshot rename: %w", err)
	}
	return nil
}
