package analyzer

import (
	"context"
	"strings"
	"unsafe"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/symbolmap/codemap/internal/types"
)

// languageSpec describes, for one tree-sitter grammar, the node kinds and
// field names a treeSitterAnalyzer needs to tell class/function/method
// declarations apart and to unwrap export wrappers. It generalizes the
// per-language setupJavaScript/setupTypeScript/setupPython functions of the
// teacher repo into one reusable, config-driven analyzer.
type languageSpec struct {
	name       string
	extensions []string
	language   func() unsafe.Pointer

	classKinds    map[string]bool
	functionKinds map[string]bool
	methodKinds   map[string]bool
	exportKinds   map[string]bool

	nameField        string          // field carrying the identifier, usually "name"
	classBodyField   string          // field on a class node holding its member list
	exportDeclField  string          // field on an export wrapper holding the declaration
	assignedFuncKind map[string]bool // value kinds treated as an anonymous function literal

	// containerKinds holds method-bearing nodes with no symbol of their own
	// (Rust's impl/trait blocks: the struct/trait was already named
	// elsewhere). containerNameFields are tried in order to recover the
	// parent name; containerBodyField holds the member list.
	containerKinds      map[string]bool
	containerNameFields []string
	containerBodyField  string

	// topLevelMethodKind/receiverField handle grammars where methods are
	// flat top-level siblings of functions, distinguished by kind and
	// carrying their own receiver/parent reference (Go).
	topLevelMethodKind string
	receiverField      string

	// docstring describes how to pull a leading string-literal docstring
	// out of a body block. Nil means the language has no such convention.
	docstring *docstringSpec
}

type docstringSpec struct {
	bodyField   string // field on class/function node holding its body block
	stmtKind    string // wrapper statement kind, e.g. "expression_statement"
	stringKinds map[string]bool
}

// treeSitterAnalyzer is the single generic Analyzer used for every
// structured-grammar language; only its languageSpec differs per language.
type treeSitterAnalyzer struct {
	spec   languageSpec
	lang   *tree_sitter.Language
	valid  bool
}

func newTreeSitterAnalyzer(spec languageSpec) *treeSitterAnalyzer {
	ptr := spec.language()
	lang := tree_sitter.NewLanguage(ptr)
	return &treeSitterAnalyzer{spec: spec, lang: lang, valid: lang != nil}
}

func (a *treeSitterAnalyzer) Language() string     { return a.spec.name }
func (a *treeSitterAnalyzer) Extensions() []string  { return a.spec.extensions }

func (a *treeSitterAnalyzer) Analyze(ctx context.Context, path string, content []byte, opts Options) ([]types.SymbolInfo, []types.FileIssue) {
	if !a.valid {
		return nil, []types.FileIssue{{Message: a.spec.name + " grammar unavailable"}}
	}

	parser := tree_sitter.NewParser()
	defer parser.Close()
	if err := parser.SetLanguage(a.lang); err != nil {
		return nil, []types.FileIssue{{Message: "failed to load grammar: " + err.Error()}}
	}

	// tree-sitter's C core may retain a pointer into the buffer it is
	// handed; copy defensively so a caller that reuses content afterward
	// (as the Scanner's read buffer does across files) can't race the parse.
	buf := make([]byte, len(content))
	copy(buf, content)

	tree := parser.Parse(buf, nil)
	if tree == nil {
		return nil, []types.FileIssue{{Message: "parse failed"}}
	}
	defer tree.Close()

	w := &walker{spec: a.spec, content: buf, opts: opts}
	w.walkTopLevel(ctx, tree.RootNode())
	return w.symbols, w.issues
}

// walker extracts top-level declarations only: it never descends into a
// function or method body, which is what keeps nested functions and
// methods-of-methods out of the result (spec.md §4.1 method/function
// extraction invariant).
type walker struct {
	spec    languageSpec
	content []byte
	opts    Options
	symbols []types.SymbolInfo
	issues  []types.FileIssue
}

func (w *walker) walkTopLevel(ctx context.Context, root *tree_sitter.Node) {
	n := int(root.NamedChildCount())
	for i := 0; i < n; i++ {
		select {
		case <-ctx.Done():
			w.symbols = nil
			w.issues = append(w.issues, types.FileIssue{Message: "analysis cancelled"})
			return
		default:
		}
		w.handleTopLevel(root.NamedChild(uint(i)))
	}
}

func (w *walker) handleTopLevel(node *tree_sitter.Node) {
	if node == nil {
		return
	}
	kind := node.Kind()

	if w.spec.exportKinds[kind] {
		if decl := node.ChildByFieldName(w.spec.exportDeclField); decl != nil {
			w.handleTopLevel(decl)
		}
		return
	}

	switch {
	case w.spec.classKinds[kind]:
		w.handleClass(node)
	case w.spec.containerKinds[kind]:
		w.handleContainer(node)
	case kind != "" && kind == w.spec.topLevelMethodKind:
		w.handleReceiverMethod(node)
	case w.spec.functionKinds[kind]:
		w.handleFunction(node, "")
	case kind == "lexical_declaration" || kind == "variable_declaration" || kind == "const_declaration":
		w.handleAssignedFunctions(node)
	}
}

// handleContainer handles method-bearing blocks that carry no symbol of
// their own, such as Rust's `impl Type { ... }` and `trait Name { ... }`.
func (w *walker) handleContainer(node *tree_sitter.Node) {
	var parent string
	for _, field := range w.spec.containerNameFields {
		if child := node.ChildByFieldName(field); child != nil {
			parent = string(w.content[child.StartByte():child.EndByte()])
			break
		}
	}
	body := node.ChildByFieldName(w.spec.containerBodyField)
	if body == nil {
		return
	}
	n := int(body.NamedChildCount())
	for i := 0; i < n; i++ {
		member := body.NamedChild(uint(i))
		if member != nil && w.spec.methodKinds[member.Kind()] {
			w.handleFunction(member, parent)
		}
	}
}

// handleReceiverMethod handles Go's method_declaration: a top-level sibling
// of function_declaration that carries its parent type via a receiver
// field instead of body nesting.
func (w *walker) handleReceiverMethod(node *tree_sitter.Node) {
	name := w.fieldText(node, w.spec.nameField)
	if name == "" {
		return
	}
	parent := ""
	if w.spec.receiverField != "" {
		if recv := node.ChildByFieldName(w.spec.receiverField); recv != nil {
			if t := findDescendant(recv, set("type_identifier"), 4); t != nil {
				parent = string(w.content[t.StartByte():t.EndByte()])
			}
		}
	}
	w.symbols = append(w.symbols, types.SymbolInfo{
		Name:   name,
		Kind:   types.KindMethod,
		Parent: parent,
		Lineno: line(node),
	})
}

func (w *walker) handleClass(node *tree_sitter.Node) {
	name := w.fieldText(node, w.spec.nameField)
	if name == "" {
		return
	}
	w.symbols = append(w.symbols, types.SymbolInfo{
		Name:      name,
		Kind:      types.KindClass,
		Lineno:    line(node),
		Docstring: w.docstringFor(node),
	})

	body := node.ChildByFieldName(w.spec.classBodyField)
	if body == nil {
		return
	}
	members := int(body.NamedChildCount())
	for i := 0; i < members; i++ {
		member := body.NamedChild(uint(i))
		if member == nil {
			continue
		}
		if w.spec.methodKinds[member.Kind()] {
			w.handleFunction(member, name)
		}
	}
}

func (w *walker) handleFunction(node *tree_sitter.Node, parent string) {
	name := w.fieldText(node, w.spec.nameField)
	if name == "" {
		return
	}
	kind := types.KindFunction
	if parent != "" {
		kind = types.KindMethod
	}
	w.symbols = append(w.symbols, types.SymbolInfo{
		Name:      name,
		Kind:      kind,
		Parent:    parent,
		Lineno:    line(node),
		Docstring: w.docstringFor(node),
	})
}

// handleAssignedFunctions catches the `const foo = () => {}` idiom common
// in JS/TS: a variable declarator whose value is an anonymous function
// literal is treated as a free function named after the variable.
func (w *walker) handleAssignedFunctions(node *tree_sitter.Node) {
	if w.spec.assignedFuncKind == nil {
		return
	}
	n := int(node.NamedChildCount())
	for i := 0; i < n; i++ {
		decl := node.NamedChild(uint(i))
		if decl == nil || decl.Kind() != "variable_declarator" {
			continue
		}
		value := decl.ChildByFieldName("value")
		if value == nil || !w.spec.assignedFuncKind[value.Kind()] {
			continue
		}
		name := w.fieldText(decl, w.spec.nameField)
		if name == "" {
			continue
		}
		w.symbols = append(w.symbols, types.SymbolInfo{
			Name:   name,
			Kind:   types.KindFunction,
			Lineno: line(decl),
		})
	}
}

// identifierKinds covers the handful of grammar-specific leaf kinds that
// carry a plain name across every language wired into this package.
var identifierKinds = map[string]bool{
	"identifier":          true,
	"type_identifier":     true,
	"field_identifier":    true,
	"property_identifier": true,
}

// findDescendant does a bounded depth-first search for the first node
// whose kind is in kinds. It exists for grammars where the declaration
// itself carries no named field for its identifier (C++'s function_definition
// nests its name under declarator.declarator; Zig has no fields at all).
func findDescendant(node *tree_sitter.Node, kinds map[string]bool, maxDepth int) *tree_sitter.Node {
	if node == nil || maxDepth < 0 {
		return nil
	}
	if kinds[node.Kind()] {
		return node
	}
	n := int(node.NamedChildCount())
	for i := 0; i < n; i++ {
		if r := findDescendant(node.NamedChild(uint(i)), kinds, maxDepth-1); r != nil {
			return r
		}
	}
	return nil
}

func (w *walker) fieldText(node *tree_sitter.Node, field string) string {
	var child *tree_sitter.Node
	if field != "" {
		child = node.ChildByFieldName(field)
	}
	if child == nil {
		child = findDescendant(node, identifierKinds, 4)
	}
	if child == nil {
		return ""
	}
	return string(w.content[child.StartByte():child.EndByte()])
}

func (w *walker) docstringFor(node *tree_sitter.Node) string {
	if !w.opts.IncludeDocstrings || w.spec.docstring == nil {
		return ""
	}
	d := w.spec.docstring
	body := node.ChildByFieldName(d.bodyField)
	if body == nil || body.NamedChildCount() == 0 {
		return ""
	}
	first := body.NamedChild(0)
	if first == nil || first.Kind() != d.stmtKind {
		return ""
	}
	if first.NamedChildCount() == 0 {
		return ""
	}
	lit := first.NamedChild(0)
	if lit == nil || !d.stringKinds[lit.Kind()] {
		return ""
	}
	raw := string(w.content[lit.StartByte():lit.EndByte()])
	return unquoteDocstring(raw)
}

func unquoteDocstring(raw string) string {
	raw = strings.TrimSpace(raw)
	for _, q := range []string{`"""`, "'''"} {
		if strings.HasPrefix(raw, q) && strings.HasSuffix(raw, q) && len(raw) >= 2*len(q) {
			return strings.TrimSpace(raw[len(q) : len(raw)-len(q)])
		}
	}
	for _, q := range []string{`"`, "'", "`"} {
		if strings.HasPrefix(raw, q) && strings.HasSuffix(raw, q) && len(raw) >= 2 {
			return strings.TrimSpace(raw[1 : len(raw)-1])
		}
	}
	return raw
}

func line(node *tree_sitter.Node) int {
	return int(node.StartPosition().Row) + 1
}
