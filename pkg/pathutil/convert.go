// Package pathutil converts between absolute filesystem paths and the
// root-relative, forward-slash paths used throughout the on-disk formats
// and query results (spec.md §3, §6).
package pathutil

import (
	"path/filepath"
	"strings"
)

// ToRelative converts an absolute path to one relative to root, using
// forward slashes regardless of host OS. Falls back to the cleaned absolute
// path if the file lies outside root; a path that is already relative is
// returned cleaned and slash-normalized.
func ToRelative(absPath, root string) string {
	if absPath == "" || root == "" {
		return filepath.ToSlash(absPath)
	}

	if !filepath.IsAbs(absPath) {
		return filepath.ToSlash(filepath.Clean(absPath))
	}

	absPath = filepath.Clean(absPath)
	root = filepath.Clean(root)

	rel, err := filepath.Rel(root, absPath)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(absPath)
	}

	return filepath.ToSlash(rel)
}

// ToAbsolute joins a root-relative, forward-slash path back onto root,
// producing an OS-native absolute path.
func ToAbsolute(relPath, root string) string {
	native := filepath.FromSlash(relPath)
	return filepath.Join(root, native)
}
