package snapshot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/symbolmap/codemap/internal/types"
)

func TestSaveThenLoadRoundTrips(t *testing.T) {
	root := t.TempDir()
	doc := Document{
		Version:           CurrentVersion,
		Root:              root,
		IncludeDocstrings: true,
		Files: []types.FileSummary{
			{Path: "a.go", Language: "go", ContentHash: "abc"},
		},
	}

	require.NoError(t, Save(root, doc))

	got, meta, err := Load(root)
	require.NoError(t, err)
	require.True(t, meta.WasUsable, "expected WasUsable = true for a freshly saved snapshot")
	require.Equal(t, root, got.Root)
	require.Len(t, got.Files, 1)
	require.Equal(t, "a.go", got.Files[0].Path)
}

func TestLoadMissingFileIsUnusableNotError(t *testing.T) {
	root := t.TempDir()

	doc, meta, err := Load(root)
	require.NoError(t, err, "missing snapshot must not error")
	require.False(t, meta.WasUsable, "expected WasUsable = false for a missing snapshot")
	require.Zero(t, doc.Version)
}

func TestLoadCorruptJSONIsUnusableNotError(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, filepath.Dir(FileName))
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, FileName), []byte("{not json"), 0o644))

	_, meta, err := Load(root)
	require.NoError(t, err, "corrupt snapshot must not error")
	require.False(t, meta.WasUsable, "expected WasUsable = false for corrupt JSON")
}

func TestLoadVersionMismatchIsUnusableNotError(t *testing.T) {
	root := t.TempDir()
	doc := Document{Version: CurrentVersion + 1, Root: root}
	require.NoError(t, Save(root, doc))

	_, meta, err := Load(root)
	require.NoError(t, err, "version mismatch must not error")
	require.False(t, meta.WasUsable, "expected WasUsable = false for a version mismatch")
}

func TestSaveLeavesNoTempFilesBehind(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, Save(root, Document{Version: CurrentVersion, Root: root}))

	entries, err := os.ReadDir(filepath.Join(root, filepath.Dir(FileName)))
	require.NoError(t, err)
	for _, e := range entries {
		require.NotEqual(t, ".tmp", filepath.Ext(e.Name()), "leftover temp file after Save: %s", e.Name())
	}
}
