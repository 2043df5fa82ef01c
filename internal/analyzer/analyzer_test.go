package analyzer

import (
	"context"
	"testing"

	"github.com/symbolmap/codemap/internal/types"
)

func symbolNames(symbols []types.SymbolInfo) []string {
	var names []string
	for _, s := range symbols {
		names = append(names, s.Name)
	}
	return names
}

func TestRegistryResolvesKnownExtensions(t *testing.T) {
	r := NewRegistry()

	for _, ext := range []string{".go", ".py", ".js", ".ts", ".java", ".rs", ".php", ".cpp", ".cs", ".zig", ".md"} {
		if _, ok := r.For(ext); !ok {
			t.Errorf("expected %s to be registered", ext)
		}
	}
	if _, ok := r.For(".unknownthing"); ok {
		t.Error("unregistered extension should not resolve")
	}
}

func TestGoAnalyzerExtractsFunctionsAndReceiverMethods(t *testing.T) {
	src := `package sample

func TopLevel() {}

type Widget struct{}

func (w *Widget) Render() {}
`
	r := NewRegistry()
	a, _ := r.For(".go")

	symbols, issues := a.Analyze(context.Background(), "sample.go", []byte(src), Options{})
	if len(issues) != 0 {
		t.Fatalf("unexpected issues: %v", issues)
	}

	names := symbolNames(symbols)
	if !contains(names, "TopLevel") {
		t.Errorf("expected TopLevel function, got %v", names)
	}
	if !contains(names, "Render") {
		t.Errorf("expected Render receiver method, got %v", names)
	}

	for _, s := range symbols {
		if s.Name == "Render" && s.Kind != types.KindMethod {
			t.Errorf("Render should be recorded as a method, got kind %v", s.Kind)
		}
		if s.Name == "TopLevel" && s.Kind != types.KindFunction {
			t.Errorf("TopLevel should be recorded as a function, got kind %v", s.Kind)
		}
	}
}

func TestGoAnalyzerIgnoresNestedFunctionLiterals(t *testing.T) {
	src := `package sample

func Outer() {
	inner := func() {}
	_ = inner
}
`
	r := NewRegistry()
	a, _ := r.For(".go")

	symbols, _ := a.Analyze(context.Background(), "sample.go", []byte(src), Options{})
	names := symbolNames(symbols)
	if len(names) != 1 || names[0] != "Outer" {
		t.Errorf("expected only the top-level Outer function, got %v", names)
	}
}

func TestPythonAnalyzerCapturesDocstringWhenRequested(t *testing.T) {
	src := "class Greeter:\n" +
		"    def hello(self):\n" +
		"        \"\"\"Say hello.\"\"\"\n" +
		"        return 1\n"

	r := NewRegistry()
	a, _ := r.For(".py")

	symbols, _ := a.Analyze(context.Background(), "greeter.py", []byte(src), Options{IncludeDocstrings: true})

	var method *types.SymbolInfo
	for i := range symbols {
		if symbols[i].Name == "hello" {
			method = &symbols[i]
		}
	}
	if method == nil {
		t.Fatalf("expected a hello method among %v", symbolNames(symbols))
	}
	if method.Parent != "Greeter" {
		t.Errorf("expected hello's parent to be Greeter, got %q", method.Parent)
	}
	if method.Docstring == "" {
		t.Error("expected a captured docstring when IncludeDocstrings is set")
	}
}

func TestPythonAnalyzerOmitsDocstringWhenNotRequested(t *testing.T) {
	src := "def hello():\n    \"\"\"Say hello.\"\"\"\n    return 1\n"

	r := NewRegistry()
	a, _ := r.For(".py")

	symbols, _ := a.Analyze(context.Background(), "hello.py", []byte(src), Options{IncludeDocstrings: false})
	if len(symbols) != 1 {
		t.Fatalf("expected 1 symbol, got %d", len(symbols))
	}
	if symbols[0].Docstring != "" {
		t.Error("docstring should be omitted unless IncludeDocstrings is set")
	}
}

func TestMarkupAnalyzerReportsNoSymbolsWithoutScriptBlocks(t *testing.T) {
	r := NewRegistry()
	a, _ := r.For(".md")

	symbols, issues := a.Analyze(context.Background(), "README.md", []byte("# Title\n\nSome text."), Options{})
	if symbols != nil || issues != nil {
		t.Errorf("markup analyzer should report zero symbols and issues absent any <script> block, got %v / %v", symbols, issues)
	}
	if a.Language() != "markup" {
		t.Errorf("expected markup language label, got %q", a.Language())
	}
}

func TestMarkupAnalyzerExtractsScriptBlocksAsPseudoSymbols(t *testing.T) {
	src := `<html>
<head><script>console.log("one");</script></head>
<body>
<script type="text/javascript">
console.log("two");
</script>
</body>
</html>`

	r := NewRegistry()
	a, _ := r.For(".html")

	symbols, issues := a.Analyze(context.Background(), "index.html", []byte(src), Options{})
	if len(issues) != 0 {
		t.Fatalf("unexpected issues: %v", issues)
	}
	if len(symbols) != 2 {
		t.Fatalf("expected 2 script#N pseudo-symbols, got %+v", symbols)
	}
	if symbols[0].Name != "script#1" || symbols[1].Name != "script#2" {
		t.Errorf("expected sequential script#N names, got %q, %q", symbols[0].Name, symbols[1].Name)
	}
	for _, s := range symbols {
		if s.Kind != types.KindFunction {
			t.Errorf("expected script pseudo-symbols tagged as functions, got %v", s.Kind)
		}
	}
	if symbols[0].Lineno != 2 {
		t.Errorf("expected the first script block on line 2, got %d", symbols[0].Lineno)
	}
	if symbols[1].Lineno != 4 {
		t.Errorf("expected the second script block on line 4, got %d", symbols[1].Lineno)
	}
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
