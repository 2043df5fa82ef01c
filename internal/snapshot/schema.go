package snapshot

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"
)

// documentSchema describes the Document shape. It is built once and
// repurposed from the teacher's MCP tool-input-schema usage
// (internal/mcp/server.go:registerTools builds *jsonschema.Schema values
// the same way) to validating a persisted document's structure before
// trusting it, rather than describing an RPC tool's parameters.
var (
	schemaOnce sync.Once
	resolved   *jsonschema.Resolved
	resolveErr error
)

func documentSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:     "object",
		Required: []string{"version", "root", "include_docstrings", "files"},
		Properties: map[string]*jsonschema.Schema{
			"version":            {Type: "integer"},
			"root":               {Type: "string"},
			"include_docstrings": {Type: "boolean"},
			"files":              {Type: "array"},
		},
	}
}

func resolvedSchema() (*jsonschema.Resolved, error) {
	schemaOnce.Do(func() {
		resolved, resolveErr = documentSchema().Resolve(nil)
	})
	return resolved, resolveErr
}

// validateShape checks raw against the schema before it is unmarshaled
// into a typed Document, so a structurally wrong file (wrong types, a
// missing required key) is rejected the same way a version mismatch is —
// mechanically, rather than by hand-written field presence checks
// (spec.md §3 "wholly readable ... or discarded").
func validateShape(raw []byte) error {
	r, err := resolvedSchema()
	if err != nil {
		// A schema that fails to resolve is a bug in this package, not a
		// reason to reject every snapshot on disk; version/unmarshal
		// checks remain the hard gate.
		return nil
	}

	var instance any
	if err := json.Unmarshal(raw, &instance); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if err := r.Validate(instance); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}
