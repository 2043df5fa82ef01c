package scanner

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// gitignorePatterns holds the doublestar-compatible patterns loaded from a
// project's .gitignore, grounded on the structure of the teacher's
// internal/config/gitignore.go (LoadGitignore/scanAndParsePatterns/
// shouldSkipLine) but matched with doublestar instead of a hand-rolled,
// per-pattern regex compiler, since doublestar is already the engine the
// rest of the exclusion stack uses.
type gitignorePatterns struct {
	patterns []string
	negated  []bool
}

// loadGitignore reads root/.gitignore. A missing file is not an error.
func loadGitignore(root string) (*gitignorePatterns, error) {
	f, err := os.Open(filepath.Join(root, ".gitignore"))
	if err != nil {
		if os.IsNotExist(err) {
			return &gitignorePatterns{}, nil
		}
		return nil, err
	}
	defer f.Close()

	g := &gitignorePatterns{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		negate := strings.HasPrefix(line, "!")
		if negate {
			line = line[1:]
		}
		g.patterns = append(g.patterns, toDoublestarPattern(line))
		g.negated = append(g.negated, negate)
	}
	return g, scanner.Err()
}

// toDoublestarPattern adapts a .gitignore line to a doublestar glob:
// a pattern with no interior slash matches at any depth, one with a
// leading slash is anchored to the project root, and a trailing slash
// (directory-only) is widened to match anything beneath it.
func toDoublestarPattern(p string) string {
	anchored := strings.HasPrefix(p, "/")
	p = strings.TrimPrefix(p, "/")
	p = strings.TrimSuffix(p, "/")

	if !strings.Contains(p, "/") && !anchored {
		return "**/" + p + "/**"
	}
	if anchored {
		return p + "/**"
	}
	return "**/" + p + "/**"
}

// Match reports whether relPath (forward-slash, root-relative) is ignored.
// Later patterns override earlier ones, matching git's own precedence.
func (g *gitignorePatterns) Match(relPath string) bool {
	if g == nil {
		return false
	}
	ignored := false
	for i, pattern := range g.patterns {
		if ok, _ := doublestar.Match(pattern, relPath); ok {
			ignored = !g.negated[i]
		}
	}
	return ignored
}
