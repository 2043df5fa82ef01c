package config

import (
	"os"

	codemaperrors "github.com/symbolmap/codemap/internal/errors"
	"github.com/symbolmap/codemap/internal/types"
)

// Validator checks a candidate AppSettings before it is applied,
// adapted from the teacher's internal/config/validator.go Validator.
type Validator struct{}

// NewValidator constructs a Validator.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate checks settings per spec.md §4.8 step 1: root_path must exist,
// be a directory, and be readable. Returns a *errors.ConfigError
// (machine-readable kind) on failure, never a bare error, since this is
// one of the calls spec.md §7 requires to surface a typed failure.
func (v *Validator) Validate(settings types.AppSettings) error {
	if settings.RootPath == "" {
		return codemaperrors.NewConfigError("root_path", settings.RootPath, os.ErrInvalid)
	}

	info, err := os.Stat(settings.RootPath)
	if err != nil {
		return codemaperrors.NewConfigError("root_path", settings.RootPath, err)
	}
	if !info.IsDir() {
		return codemaperrors.NewConfigError("root_path", settings.RootPath, os.ErrInvalid)
	}

	f, err := os.Open(settings.RootPath)
	if err != nil {
		return codemaperrors.NewConfigError("root_path", settings.RootPath, err)
	}
	f.Close()

	return nil
}

// Diff reports which top-level fields differ between old and next, used
// by the Lifecycle service to pick the cheapest reconfiguration tier
// (spec.md §4.8).
type Diff struct {
	RootPathChanged          bool
	ExcludeDirsChanged       bool
	IncludeDocstringsChanged bool
}

// Any reports whether at least one field changed.
func (d Diff) Any() bool {
	return d.RootPathChanged || d.ExcludeDirsChanged || d.IncludeDocstringsChanged
}

// Changed returns the field names that differ, used to satisfy
// apply_settings' contract of "the list of fields that actually changed"
// (spec.md §6).
func (d Diff) Changed() []string {
	var out []string
	if d.RootPathChanged {
		out = append(out, "root_path")
	}
	if d.ExcludeDirsChanged {
		out = append(out, "exclude_dirs")
	}
	if d.IncludeDocstringsChanged {
		out = append(out, "include_docstrings")
	}
	return out
}

// DiffSettings compares old against next field by field.
func DiffSettings(old, next types.AppSettings) Diff {
	return Diff{
		RootPathChanged:          old.RootPath != next.RootPath,
		ExcludeDirsChanged:       !sameSet(old.ExcludeDirs, next.ExcludeDirs),
		IncludeDocstringsChanged: old.IncludeDocstrings != next.IncludeDocstrings,
	}
}

func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[string]int, len(a))
	for _, v := range a {
		seen[v]++
	}
	for _, v := range b {
		seen[v]--
	}
	for _, n := range seen {
		if n != 0 {
			return false
		}
	}
	return true
}
