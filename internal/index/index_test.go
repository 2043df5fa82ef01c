package index

import (
	"testing"

	"github.com/symbolmap/codemap/internal/types"
)

func TestReplaceAllThenFile(t *testing.T) {
	idx := New()
	idx.ReplaceAll([]types.FileSummary{
		{Path: "a.go", Language: "go", Symbols: []types.SymbolInfo{{Name: "Foo", Kind: types.KindFunction}}},
		{Path: "b.go", Language: "go"},
	})

	f, ok := idx.File("a.go")
	if !ok {
		t.Fatal("expected a.go to be present after ReplaceAll")
	}
	if len(f.Symbols) != 1 || f.Symbols[0].Name != "Foo" {
		t.Errorf("got symbols %+v", f.Symbols)
	}

	if _, ok := idx.File("missing.go"); ok {
		t.Error("File should report false for an unknown path")
	}
}

func TestReplaceAllShrinksIndex(t *testing.T) {
	idx := New()
	idx.ReplaceAll([]types.FileSummary{{Path: "a.go"}, {Path: "b.go"}})
	idx.ReplaceAll([]types.FileSummary{{Path: "a.go"}})

	if _, ok := idx.File("b.go"); ok {
		t.Error("b.go should have been dropped by the second ReplaceAll")
	}
	if st := idx.Status(); st.FilesIndexed != 1 {
		t.Errorf("FilesIndexed = %d, want 1", st.FilesIndexed)
	}
}

func TestApplyBatchUpsertsAndDeletesAtomically(t *testing.T) {
	idx := New()
	idx.ReplaceAll([]types.FileSummary{{Path: "a.go"}, {Path: "b.go"}})

	idx.ApplyBatch(
		[]types.FileSummary{{Path: "a.go", Language: "go"}, {Path: "c.go", Language: "go"}},
		[]string{"b.go"},
	)

	if _, ok := idx.File("b.go"); ok {
		t.Error("b.go should have been removed by ApplyBatch's delete list")
	}
	if f, ok := idx.File("a.go"); !ok || f.Language != "go" {
		t.Error("a.go should have been upserted with the new FileSummary")
	}
	if _, ok := idx.File("c.go"); !ok {
		t.Error("c.go should have been added by ApplyBatch's upsert list")
	}
}

func TestStatusCountsSymbolsAcrossFiles(t *testing.T) {
	idx := New()
	idx.ReplaceAll([]types.FileSummary{
		{Path: "a.go", Symbols: []types.SymbolInfo{{Name: "A"}, {Name: "B"}}},
		{Path: "b.go", Symbols: []types.SymbolInfo{{Name: "C"}}},
	})

	st := idx.Status()
	if st.FilesIndexed != 2 {
		t.Errorf("FilesIndexed = %d, want 2", st.FilesIndexed)
	}
	if st.SymbolsIndexed != 3 {
		t.Errorf("SymbolsIndexed = %d, want 3", st.SymbolsIndexed)
	}
}

func TestFilesReturnsDefensiveCopy(t *testing.T) {
	idx := New()
	idx.ReplaceAll([]types.FileSummary{{Path: "a.go"}})

	files := idx.Files()
	files[0].Path = "mutated"

	f, ok := idx.File("a.go")
	if !ok || f.Path != "a.go" {
		t.Error("mutating the slice returned by Files must not affect the Index's internal state")
	}
}
