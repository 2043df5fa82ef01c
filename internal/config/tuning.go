package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"
)

// TuningFileName is the ambient, non-normative local tuning file. Unlike
// AppSettings/the snapshot it carries no bit-exact contract and never
// affects on-disk serialization; it only adjusts performance knobs
// (spec.md §4.8 "ambient-stack enrichment"), adapted from the teacher's
// .lci.kdl (internal/config/kdl_config.go).
const TuningFileName = ".codemap.kdl"

// Tuning holds the subset of performance knobs this engine reads from
// the local KDL file. Zero values mean "use the package default".
type Tuning struct {
	ParseWorkers     int
	DebounceMs       int
	MaxDelayMs       int
	MaxFileSizeMB    int
	RespectGitignore *bool
}

// LoadTuning reads root/TuningFileName. A missing file returns a zero
// Tuning and a nil error: every field's absence just means "use the
// default", mirroring the teacher's LoadKDL treating a missing file as
// "use defaults" rather than an error.
func LoadTuning(root string) (Tuning, error) {
	path := filepath.Join(root, TuningFileName)
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Tuning{}, nil
		}
		return Tuning{}, err
	}

	doc, err := kdl.Parse(strings.NewReader(string(content)))
	if err != nil {
		return Tuning{}, fmt.Errorf("parse %s: %w", TuningFileName, err)
	}

	var t Tuning
	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "performance":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "parse_workers":
					if v, ok := firstIntArg(cn); ok {
						t.ParseWorkers = v
					}
				case "debounce_ms":
					if v, ok := firstIntArg(cn); ok {
						t.DebounceMs = v
					}
				case "max_delay_ms":
					if v, ok := firstIntArg(cn); ok {
						t.MaxDelayMs = v
					}
				case "max_file_size_mb":
					if v, ok := firstIntArg(cn); ok {
						t.MaxFileSizeMB = v
					}
				}
			}
		case "index":
			for _, cn := range n.Children {
				if nodeName(cn) == "respect_gitignore" {
					if b, ok := firstBoolArg(cn); ok {
						t.RespectGitignore = &b
					}
				}
			}
		}
	}
	return t, nil
}

func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func firstBoolArg(n *document.Node) (bool, bool) {
	if len(n.Arguments) == 0 {
		return false, false
	}
	if b, ok := n.Arguments[0].Value.(bool); ok {
		return b, true
	}
	return false, false
}
