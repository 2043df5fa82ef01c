package analyzer

import (
	"unsafe"

	tree_sitter_csharp "github.com/tree-sitter/tree-sitter-c-sharp/bindings/go"
	tree_sitter_cpp "github.com/tree-sitter/tree-sitter-cpp/bindings/go"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	tree_sitter_java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_php "github.com/tree-sitter/tree-sitter-php/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
	tree_sitter_zig "github.com/tree-sitter-grammars/tree-sitter-zig/bindings/go"
)

// The languageSpec literals below are grounded directly on the query
// strings of the teacher's internal/parser/parser_language_setup.go
// (one setupXxx function per language) and generalized into data fed to
// the single treeSitterAnalyzer, instead of one bespoke type per language.

func newPythonAnalyzer() *treeSitterAnalyzer {
	return newTreeSitterAnalyzer(languageSpec{
		name:           "python",
		extensions:     []string{".py", ".pyi"},
		language:       func() unsafe.Pointer { return tree_sitter_python.Language() },
		classKinds:     set("class_definition"),
		functionKinds:  set("function_definition"),
		methodKinds:    set("function_definition"),
		nameField:      "name",
		classBodyField: "body",
		docstring: &docstringSpec{
			bodyField:   "body",
			stmtKind:    "expression_statement",
			stringKinds: set("string"),
		},
	})
}

func jsLikeSpec(name string, extensions []string, lang func() unsafe.Pointer) languageSpec {
	return languageSpec{
		name:             name,
		extensions:       extensions,
		language:         lang,
		classKinds:       set("class_declaration"),
		functionKinds:    set("function_declaration", "generator_function_declaration"),
		methodKinds:      set("method_definition"),
		nameField:        "name",
		classBodyField:   "body",
		exportKinds:      set("export_statement"),
		exportDeclField:  "declaration",
		assignedFuncKind: set("arrow_function", "function_expression", "generator_function"),
	}
}

func newJavaScriptAnalyzer() *jsAnalyzer {
	spec := jsLikeSpec("javascript", []string{".js", ".jsx", ".mjs", ".cjs"}, func() unsafe.Pointer { return tree_sitter_javascript.Language() })
	return &jsAnalyzer{
		primary:  newTreeSitterAnalyzer(spec),
		fallback: newJSFallbackAnalyzer(spec.extensions),
	}
}

func newTypeScriptAnalyzer() *treeSitterAnalyzer {
	spec := jsLikeSpec("typescript", []string{".ts", ".tsx", ".mts", ".cts"}, func() unsafe.Pointer { return tree_sitter_typescript.LanguageTypescript() })
	return newTreeSitterAnalyzer(spec)
}

func newGoAnalyzer() *treeSitterAnalyzer {
	return newTreeSitterAnalyzer(languageSpec{
		name:               "go",
		extensions:         []string{".go"},
		language:           func() unsafe.Pointer { return tree_sitter_go.Language() },
		functionKinds:      set("function_declaration"),
		nameField:          "name",
		topLevelMethodKind: "method_declaration",
		receiverField:      "receiver",
	})
}

func newJavaAnalyzer() *treeSitterAnalyzer {
	return newTreeSitterAnalyzer(languageSpec{
		name:           "java",
		extensions:     []string{".java"},
		language:       func() unsafe.Pointer { return tree_sitter_java.Language() },
		classKinds:     set("class_declaration", "record_declaration", "interface_declaration", "enum_declaration"),
		methodKinds:    set("method_declaration", "constructor_declaration"),
		nameField:      "name",
		classBodyField: "body",
	})
}

func newRustAnalyzer() *treeSitterAnalyzer {
	return newTreeSitterAnalyzer(languageSpec{
		name:                "rust",
		extensions:          []string{".rs"},
		language:            func() unsafe.Pointer { return tree_sitter_rust.Language() },
		classKinds:          set("struct_item", "enum_item"),
		functionKinds:       set("function_item"),
		methodKinds:         set("function_item"),
		nameField:           "name",
		classBodyField:      "body",
		containerKinds:      set("impl_item", "trait_item"),
		containerNameFields: []string{"type", "name"},
		containerBodyField:  "body",
	})
}

func newPHPAnalyzer() *treeSitterAnalyzer {
	return newTreeSitterAnalyzer(languageSpec{
		name:           "php",
		extensions:     []string{".php", ".phtml"},
		language:       func() unsafe.Pointer { return tree_sitter_php.LanguagePHP() },
		classKinds:     set("class_declaration"),
		functionKinds:  set("function_definition"),
		methodKinds:    set("method_declaration"),
		nameField:      "name",
		classBodyField: "body",
	})
}

func newCppAnalyzer() *treeSitterAnalyzer {
	return newTreeSitterAnalyzer(languageSpec{
		name:           "c++",
		extensions:     []string{".cpp", ".cc", ".cxx", ".c", ".h", ".hpp"},
		language:       func() unsafe.Pointer { return tree_sitter_cpp.Language() },
		classKinds:     set("class_specifier", "struct_specifier"),
		functionKinds:  set("function_definition"),
		methodKinds:    set("function_definition"),
		nameField:      "name",
		classBodyField: "body",
	})
}

func newCSharpAnalyzer() *treeSitterAnalyzer {
	return newTreeSitterAnalyzer(languageSpec{
		name:           "c#",
		extensions:     []string{".cs"},
		language:       func() unsafe.Pointer { return tree_sitter_csharp.Language() },
		classKinds:     set("class_declaration", "struct_declaration", "record_declaration", "interface_declaration"),
		methodKinds:    set("method_declaration", "constructor_declaration"),
		nameField:      "name",
		classBodyField: "body",
	})
}

func newZigAnalyzer() *treeSitterAnalyzer {
	return newTreeSitterAnalyzer(languageSpec{
		name:          "zig",
		extensions:    []string{".zig"},
		language:      func() unsafe.Pointer { return tree_sitter_zig.Language() },
		functionKinds: set("function_declaration"),
	})
}

func set(values ...string) map[string]bool {
	m := make(map[string]bool, len(values))
	for _, v := range values {
		m[v] = true
	}
	return m
}
