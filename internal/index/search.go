package index

import (
	"sort"
	"strings"

	"github.com/hbollon/go-edlib"
	"github.com/surgebase/porter2"

	"github.com/symbolmap/codemap/internal/types"
)

// fuzzyThreshold is the minimum Jaro-Winkler similarity a symbol name must
// clear to surface in the fuzzy tier (grounded on the teacher's
// internal/semantic/fuzzy_matcher.go default of 0.80).
const fuzzyThreshold = 0.80

type candidate struct {
	path string
	sym  types.SymbolInfo
}

// Search ranks symbols by name against term in four strictly ordered
// tiers: exact name match, substring match, stemmed match, then
// Jaro-Winkler fuzzy match (spec.md §4.3). The first two tiers are the
// spec's mandatory ranking; the stemmed and fuzzy tiers are a
// domain-stack enrichment that only ever fills in remaining capacity
// after both mandatory tiers are exhausted — they can never reorder or
// displace an exact/substring hit.
func (idx *Index) Search(term string, limit int) []types.SearchResult {
	if term == "" || limit <= 0 {
		return nil
	}
	lowerTerm := strings.ToLower(term)
	stemTerm := porter2.Stem(lowerTerm)

	files := idx.snapshot()

	var exact, substring, stemmed, fuzzy []candidate
	seen := make(map[string]bool)

	for _, f := range files {
		for _, sym := range f.Symbols {
			lname := strings.ToLower(sym.Name)
			key := f.Path + "\x00" + sym.Name + "\x00" + string(sym.Kind)

			switch {
			case lname == lowerTerm:
				exact = append(exact, candidate{f.Path, sym})
				seen[key] = true
			case strings.Contains(lname, lowerTerm):
				substring = append(substring, candidate{f.Path, sym})
				seen[key] = true
			}
		}
	}

	for _, f := range files {
		for _, sym := range f.Symbols {
			key := f.Path + "\x00" + sym.Name + "\x00" + string(sym.Kind)
			if seen[key] {
				continue
			}
			lname := strings.ToLower(sym.Name)
			if porter2.Stem(lname) == stemTerm {
				stemmed = append(stemmed, candidate{f.Path, sym})
				seen[key] = true
				continue
			}
			if score, err := edlib.StringsSimilarity(lname, lowerTerm, edlib.JaroWinkler); err == nil && float64(score) >= fuzzyThreshold {
				fuzzy = append(fuzzy, candidate{f.Path, sym})
				seen[key] = true
			}
		}
	}

	sortCandidates(exact)
	sortCandidates(substring)
	sortCandidates(stemmed)
	sortCandidates(fuzzy)

	out := make([]types.SearchResult, 0, limit)
	for _, tier := range [][]candidate{exact, substring, stemmed, fuzzy} {
		for _, c := range tier {
			if len(out) >= limit {
				return out
			}
			out = append(out, toResult(c))
		}
	}
	return out
}

// sortCandidates applies the spec's tie-break within a tier: shorter path
// first, then lexicographic path, then lexicographic symbol name.
func sortCandidates(c []candidate) {
	sort.Slice(c, func(i, j int) bool {
		a, b := c[i], c[j]
		if len(a.path) != len(b.path) {
			return len(a.path) < len(b.path)
		}
		if a.path != b.path {
			return a.path < b.path
		}
		return a.sym.Name < b.sym.Name
	})
}

func toResult(c candidate) types.SearchResult {
	excerpt := c.sym.Docstring
	if len(excerpt) > 160 {
		excerpt = excerpt[:160]
	}
	return types.SearchResult{
		Path:             c.path,
		SymbolName:       c.sym.Name,
		Kind:             c.sym.Kind,
		Lineno:           c.sym.Lineno,
		DocstringExcerpt: excerpt,
	}
}
