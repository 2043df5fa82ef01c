package scanner

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// detectBuildArtifactDirs inspects language build-config files at root and
// returns extra exclusion globs for any custom output directory they
// declare, grounded on the teacher's internal/config/build_artifact_detector.go
// (detectRustOutputs/detectPythonOutputs/detectJavaScriptOutputs): it reads
// Cargo.toml and pyproject.toml target-dir settings and package.json's
// config.outDir.
func detectBuildArtifactDirs(root string) []string {
	var patterns []string
	patterns = append(patterns, detectCargoTargetDir(root)...)
	patterns = append(patterns, detectPyprojectTargetDir(root)...)
	patterns = append(patterns, detectPackageJSONOutDir(root)...)
	return patterns
}

func detectCargoTargetDir(root string) []string {
	data, err := os.ReadFile(filepath.Join(root, "Cargo.toml"))
	if err != nil {
		return nil
	}
	var cargo struct {
		Profile map[string]struct {
			TargetDir string `toml:"target-dir"`
		} `toml:"profile"`
	}
	if toml.Unmarshal(data, &cargo) != nil {
		return nil
	}
	var patterns []string
	for _, profile := range cargo.Profile {
		if profile.TargetDir != "" {
			patterns = append(patterns, "**/"+profile.TargetDir+"/**")
		}
	}
	return patterns
}

func detectPyprojectTargetDir(root string) []string {
	data, err := os.ReadFile(filepath.Join(root, "pyproject.toml"))
	if err != nil {
		return nil
	}
	var pyproject struct {
		Tool struct {
			Poetry struct {
				Build struct {
					TargetDir string `toml:"target-dir"`
				} `toml:"build"`
			} `toml:"poetry"`
		} `toml:"tool"`
	}
	if toml.Unmarshal(data, &pyproject) != nil {
		return nil
	}
	if dir := pyproject.Tool.Poetry.Build.TargetDir; dir != "" {
		return []string{"**/" + dir + "/**"}
	}
	return nil
}

func detectPackageJSONOutDir(root string) []string {
	data, err := os.ReadFile(filepath.Join(root, "package.json"))
	if err != nil {
		return nil
	}
	var pkg struct {
		Config struct {
			OutDir string `json:"outDir"`
		} `json:"config"`
	}
	if json.Unmarshal(data, &pkg) != nil || pkg.Config.OutDir == "" {
		return nil
	}
	return []string{"**/" + pkg.Config.OutDir + "/**"}
}
