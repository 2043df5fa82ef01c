package config

import (
	"os"
	"testing"

	codemaperrors "github.com/symbolmap/codemap/internal/errors"
	"github.com/symbolmap/codemap/internal/types"
)

func TestValidateAcceptsExistingDirectory(t *testing.T) {
	v := NewValidator()
	if err := v.Validate(types.AppSettings{RootPath: t.TempDir()}); err != nil {
		t.Fatalf("Validate rejected a real directory: %v", err)
	}
}

func TestValidateRejectsEmptyRoot(t *testing.T) {
	v := NewValidator()
	err := v.Validate(types.AppSettings{RootPath: ""})
	if err == nil {
		t.Fatal("expected an error for an empty root_path")
	}
	var cfgErr *codemaperrors.ConfigError
	if ce, ok := err.(*codemaperrors.ConfigError); ok {
		cfgErr = ce
	}
	if cfgErr == nil {
		t.Fatalf("expected a *errors.ConfigError, got %T", err)
	}
	if cfgErr.Field != "root_path" {
		t.Errorf("ConfigError.Field = %q, want root_path", cfgErr.Field)
	}
}

func TestValidateRejectsNonexistentPath(t *testing.T) {
	v := NewValidator()
	err := v.Validate(types.AppSettings{RootPath: "/does/not/exist/anywhere"})
	if err == nil {
		t.Fatal("expected an error for a nonexistent root_path")
	}
}

func TestValidateRejectsFileNotDirectory(t *testing.T) {
	dir := t.TempDir()
	filePath := dir + "/not-a-dir"
	if err := os.WriteFile(filePath, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	v := NewValidator()
	if err := v.Validate(types.AppSettings{RootPath: filePath}); err == nil {
		t.Fatal("expected an error when root_path is a regular file")
	}
}

func TestDiffSettingsDetectsEachFieldIndependently(t *testing.T) {
	old := types.AppSettings{RootPath: "/a", ExcludeDirs: []string{"vendor"}, IncludeDocstrings: false}

	rootChanged := old
	rootChanged.RootPath = "/b"
	if d := DiffSettings(old, rootChanged); !d.RootPathChanged || d.ExcludeDirsChanged || d.IncludeDocstringsChanged {
		t.Errorf("expected only RootPathChanged, got %+v", d)
	}

	docChanged := old
	docChanged.IncludeDocstrings = true
	if d := DiffSettings(old, docChanged); d.RootPathChanged || d.ExcludeDirsChanged || !d.IncludeDocstringsChanged {
		t.Errorf("expected only IncludeDocstringsChanged, got %+v", d)
	}

	reordered := old
	reordered.ExcludeDirs = []string{"vendor"}
	if d := DiffSettings(old, reordered); d.Any() {
		t.Errorf("identical exclude sets must not register as changed, got %+v", d)
	}

	excludeChanged := old
	excludeChanged.ExcludeDirs = []string{"vendor", "node_modules"}
	if d := DiffSettings(old, excludeChanged); !d.ExcludeDirsChanged {
		t.Errorf("expected ExcludeDirsChanged, got %+v", d)
	}
}

func TestSameSetIsOrderIndependent(t *testing.T) {
	a := []string{"node_modules", ".git", "vendor"}
	b := []string{"vendor", "node_modules", ".git"}
	if !sameSet(a, b) {
		t.Error("sameSet should ignore ordering")
	}
	if sameSet(a, []string{"vendor", "node_modules"}) {
		t.Error("sameSet should detect a missing element")
	}
}
