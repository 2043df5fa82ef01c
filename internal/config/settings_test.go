package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/symbolmap/codemap/internal/types"
)

func TestLoadSettingsMissingFileYieldsDefaults(t *testing.T) {
	root := t.TempDir()

	s, existed, err := LoadSettings(root)
	if err != nil {
		t.Fatalf("missing settings file must not error, got %v", err)
	}
	if existed {
		t.Fatal("expected existed = false for a missing file")
	}
	if s.RootPath != root || s.Version != CurrentSettingsVersion {
		t.Errorf("got %+v, want DefaultSettings(%q)", s, root)
	}
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	root := t.TempDir()
	want := types.AppSettings{
		Version:           CurrentSettingsVersion,
		RootPath:          root,
		ExcludeDirs:       []string{"node_modules", ".git"},
		IncludeDocstrings: true,
	}

	if err := SaveSettings(root, want); err != nil {
		t.Fatalf("SaveSettings: %v", err)
	}

	got, existed, err := LoadSettings(root)
	if err != nil || !existed {
		t.Fatalf("LoadSettings: got=%+v existed=%v err=%v", got, existed, err)
	}
	if got.RootPath != want.RootPath || got.IncludeDocstrings != want.IncludeDocstrings || len(got.ExcludeDirs) != 2 {
		t.Errorf("LoadSettings = %+v, want %+v", got, want)
	}
}

func TestLoadSettingsCorruptFileYieldsDefaults(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, filepath.Dir(SettingsFileName))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, SettingsFileName), []byte("not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	s, existed, err := LoadSettings(root)
	if err != nil {
		t.Fatalf("corrupt settings file must not error, got %v", err)
	}
	if existed {
		t.Fatal("expected existed = false for corrupt content")
	}
	if s.RootPath != root {
		t.Errorf("expected fallback to defaults, got %+v", s)
	}
}

func TestLoadSettingsVersionMismatchYieldsDefaults(t *testing.T) {
	root := t.TempDir()
	old := types.AppSettings{Version: CurrentSettingsVersion + 1, RootPath: root}
	if err := SaveSettings(root, old); err != nil {
		t.Fatal(err)
	}

	s, existed, err := LoadSettings(root)
	if err != nil || existed {
		t.Fatalf("version mismatch should yield existed=false, got existed=%v err=%v", existed, err)
	}
	if s.Version != CurrentSettingsVersion {
		t.Errorf("expected defaults with current version, got %+v", s)
	}
}
