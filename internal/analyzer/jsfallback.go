package analyzer

import (
	"context"

	"github.com/t14raptor/go-fast/ast"
	"github.com/t14raptor/go-fast/parser"

	"github.com/symbolmap/codemap/internal/types"
)

// jsAnalyzer wraps the tree-sitter JavaScript analyzer with a go-fast
// fallback, grounded on internal/analysis/javascript_gofast_analyzer.go.
// Tree-sitter is the primary path everywhere (it alone handles JSX/ESM);
// go-fast only takes over on the rare host where the tree-sitter-javascript
// grammar itself failed to link, so a statically-linkable pure-Go parser
// keeps JS indexing alive in degraded mode.
type jsAnalyzer struct {
	primary  *treeSitterAnalyzer
	fallback *jsFallbackAnalyzer
}

func (a *jsAnalyzer) Language() string    { return a.primary.Language() }
func (a *jsAnalyzer) Extensions() []string { return a.primary.Extensions() }

func (a *jsAnalyzer) Analyze(ctx context.Context, path string, content []byte, opts Options) ([]types.SymbolInfo, []types.FileIssue) {
	if a.primary.valid {
		return a.primary.Analyze(ctx, path, content, opts)
	}
	return a.fallback.Analyze(ctx, path, content, opts)
}

// jsFallbackAnalyzer extracts top-level classes, functions and methods
// using go-fast's pure-Go parser. It does not understand JSX or ESM
// import/export syntax (go-fast's own limitation), so it is strictly a
// degraded-mode analyzer, never the preferred path.
type jsFallbackAnalyzer struct {
	extensions []string
}

func newJSFallbackAnalyzer(extensions []string) *jsFallbackAnalyzer {
	return &jsFallbackAnalyzer{extensions: extensions}
}

func (a *jsFallbackAnalyzer) Language() string     { return "javascript" }
func (a *jsFallbackAnalyzer) Extensions() []string { return a.extensions }

func (a *jsFallbackAnalyzer) Analyze(ctx context.Context, path string, content []byte, opts Options) ([]types.SymbolInfo, []types.FileIssue) {
	program, err := parser.ParseFile(string(content))
	if err != nil {
		return nil, []types.FileIssue{{Message: "fallback parse failed: " + err.Error()}}
	}

	var symbols []types.SymbolInfo
	for _, stmt := range program.Body {
		select {
		case <-ctx.Done():
			return nil, []types.FileIssue{{Message: "analysis cancelled"}}
		default:
		}
		symbols = append(symbols, topLevelJSSymbols(stmt.Stmt, content)...)
	}
	return symbols, nil
}

func topLevelJSSymbols(stmt ast.Stmt, content []byte) []types.SymbolInfo {
	switch s := stmt.(type) {
	case *ast.FunctionDeclaration:
		if s.Function == nil || s.Function.Name == nil {
			return nil
		}
		return []types.SymbolInfo{{
			Name:   s.Function.Name.Name,
			Kind:   types.KindFunction,
			Lineno: lineAt(content, int(s.Function.Function)),
		}}

	case *ast.ClassDeclaration:
		if s.Class == nil || s.Class.Name == nil {
			return nil
		}
		className := s.Class.Name.Name
		out := []types.SymbolInfo{{
			Name:   className,
			Kind:   types.KindClass,
			Lineno: lineAt(content, int(s.Class.Class)),
		}}
		for _, element := range s.Class.Body {
			method, ok := element.Element.(*ast.MethodDefinition)
			if !ok || method.Key == nil || method.Body == nil {
				continue
			}
			name := jsPropertyName(method.Key.Expr)
			if name == "" {
				continue
			}
			out = append(out, types.SymbolInfo{
				Name:   name,
				Kind:   types.KindMethod,
				Parent: className,
				Lineno: lineAt(content, int(method.Idx)),
			})
		}
		return out

	case *ast.VariableDeclaration:
		var out []types.SymbolInfo
		for _, decl := range s.List {
			if decl.Target == nil || decl.Target.Target == nil || decl.Initializer == nil {
				continue
			}
			name := jsBindingName(decl.Target.Target)
			if name == "" {
				continue
			}
			switch decl.Initializer.Expr.(type) {
			case *ast.FunctionLiteral, *ast.ArrowFunctionLiteral:
				out = append(out, types.SymbolInfo{
					Name:   name,
					Kind:   types.KindFunction,
					Lineno: lineAt(content, int(s.Idx)),
				})
			}
		}
		return out
	}
	return nil
}

func jsBindingName(target ast.BindingTarget) string {
	if id, ok := target.(*ast.Identifier); ok {
		return id.Name
	}
	return ""
}

func jsPropertyName(expr ast.Expr) string {
	if id, ok := expr.(*ast.Identifier); ok {
		return id.Name
	}
	return ""
}

func lineAt(content []byte, idx int) int {
	if idx < 0 {
		idx = 0
	}
	if idx > len(content) {
		idx = len(content)
	}
	line := 1
	for _, b := range content[:idx] {
		if b == '\n' {
			line++
		}
	}
	return line
}
