package index

import (
	"testing"

	"github.com/symbolmap/codemap/internal/types"
)

func TestTreeOrdersDirectoriesBeforeFilesAlphabetically(t *testing.T) {
	idx := New()
	idx.ReplaceAll([]types.FileSummary{
		{Path: "zeta.go"},
		{Path: "alpha/inner.go"},
		{Path: "beta.go"},
	})

	root := idx.Tree()
	if len(root.Children) != 3 {
		t.Fatalf("expected 3 top-level children, got %d", len(root.Children))
	}

	// Directories sort first, then files alphabetically.
	if !root.Children[0].IsDir || root.Children[0].Name != "alpha" {
		t.Errorf("expected alpha/ directory first, got %+v", root.Children[0])
	}
	if root.Children[1].IsDir || root.Children[1].Name != "beta.go" {
		t.Errorf("expected beta.go second, got %+v", root.Children[1])
	}
	if root.Children[2].IsDir || root.Children[2].Name != "zeta.go" {
		t.Errorf("expected zeta.go third, got %+v", root.Children[2])
	}

	alpha := root.Children[0]
	if len(alpha.Children) != 1 || alpha.Children[0].Name != "inner.go" {
		t.Errorf("expected alpha/inner.go nested under alpha, got %+v", alpha.Children)
	}
}

func TestTreeIsRebuiltFromCurrentState(t *testing.T) {
	idx := New()
	idx.ReplaceAll([]types.FileSummary{{Path: "a.go"}})
	first := idx.Tree()

	idx.ReplaceAll([]types.FileSummary{{Path: "a.go"}, {Path: "b.go"}})
	second := idx.Tree()

	if len(first.Children) != 1 {
		t.Errorf("first snapshot should have 1 child, got %d", len(first.Children))
	}
	if len(second.Children) != 2 {
		t.Errorf("second snapshot should reflect the new file, got %d children", len(second.Children))
	}
}
