package analyzer

import (
	"bytes"
	"context"
	"fmt"
	"regexp"

	"github.com/symbolmap/codemap/internal/types"
)

// scriptBlockPattern is the permissive regex fallback spec.md §4.1 calls
// for on HTML and other markup languages: no grammar, just a tolerant
// scan for <script>...</script> boundaries.
var scriptBlockPattern = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script\s*>`)

// markupAnalyzer is the catch-all for markup and config files that carry
// no class/function/method declarations of their own (HTML, Markdown,
// JSON, YAML, plain text). It never fails; its only structure comes from
// a permissive regex scan for embedded <script> blocks, recorded as
// script#N pseudo-symbols so the tree view shows something beyond a bare
// file leaf even for markup, instead of falling into the Scanner's
// known-but-not-parsed bucket.
type markupAnalyzer struct {
	language   string
	extensions []string
}

func newMarkupAnalyzer() *markupAnalyzer {
	return &markupAnalyzer{
		language:   "markup",
		extensions: []string{".html", ".htm", ".xml", ".md", ".markdown", ".json", ".yaml", ".yml"},
	}
}

func (a *markupAnalyzer) Language() string     { return a.language }
func (a *markupAnalyzer) Extensions() []string { return a.extensions }

func (a *markupAnalyzer) Analyze(ctx context.Context, path string, content []byte, opts Options) ([]types.SymbolInfo, []types.FileIssue) {
	matches := scriptBlockPattern.FindAllIndex(content, -1)
	if len(matches) == 0 {
		return nil, nil
	}

	symbols := make([]types.SymbolInfo, 0, len(matches))
	for i, m := range matches {
		symbols = append(symbols, types.SymbolInfo{
			Name:   fmt.Sprintf("script#%d", i+1),
			Kind:   types.KindFunction,
			Lineno: bytes.Count(content[:m[0]], []byte("\n")) + 1,
		})
	}
	return symbols, nil
}
