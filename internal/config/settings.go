// Package config implements the ambient configuration stack: persisted
// AppSettings (spec.md §3, §6), validation with smart defaults (adapted
// from the teacher's internal/config/validator.go), and an optional local
// tuning file (adapted from the teacher's internal/config/kdl_config.go).
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/symbolmap/codemap/internal/types"
)

// CurrentSettingsVersion is the schema version written by this build.
const CurrentSettingsVersion = 1

// SettingsFileName is the settings path relative to a project root,
// stored under the same reserved metadata directory as the snapshot
// (spec.md §6, "well-known path under the root's metadata directory").
const SettingsFileName = ".code-map/settings.json"

// DefaultSettings returns the settings applied when no settings file
// exists yet for root.
func DefaultSettings(root string) types.AppSettings {
	return types.AppSettings{
		Version:           CurrentSettingsVersion,
		RootPath:          root,
		ExcludeDirs:       nil,
		IncludeDocstrings: false,
	}
}

// LoadSettings reads root/SettingsFileName. A missing file is not an
// error: it yields DefaultSettings. A present but corrupt or
// version-mismatched file also yields DefaultSettings with a nil error,
// since settings (like the snapshot) must never block startup.
func LoadSettings(root string) (types.AppSettings, bool, error) {
	path := filepath.Join(root, SettingsFileName)
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(root), false, nil
		}
		return DefaultSettings(root), false, err
	}

	var s types.AppSettings
	if err := json.Unmarshal(raw, &s); err != nil {
		return DefaultSettings(root), false, nil
	}
	if s.Version != CurrentSettingsVersion {
		return DefaultSettings(root), false, nil
	}
	return s, true, nil
}

// SaveSettings writes settings to root/SettingsFileName with the exact
// key order fixed in types.AppSettings' JSON tags (spec.md §6).
func SaveSettings(root string, settings types.AppSettings) error {
	dir := filepath.Join(root, filepath.Dir(SettingsFileName))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	raw, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(root, SettingsFileName), raw, 0o644)
}
