package graph

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// Compile-time assertion: *TreeSitterParser satisfies Parser.
var _ Parser = (*TreeSitterParser)(nil)

// TreeSitterParser implements Parser using tree-sitter grammars.
// A new tree-sitter parser is created per Parse call, so concurrent Parse
// calls are safe.
type TreeSitterParser struct {
	languages map[Language]*tree_sitter.Language
	tsx       *tree_sitter.Language
}

// NewTreeSitterParser creates a TreeSitterParser with Go, TypeScript (and
// TSX/JavaScript), Python and Rust grammars registered.
func NewTreeSitterParser() *TreeSitterParser {
	return &TreeSitterParser{
		languages: map[Language]*tree_sitter.Language{
			LangGo:         tree_sitter.NewLanguage(tree_sitter_go.Language()),
			LangTypeScript: tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript()),
			LangPython:     tree_sitter.NewLanguage(tree_sitter_python.Language()),
			LangRust:       tree_sitter.NewLanguage(tree_sitter_rust.Language()),
		},
		tsx: tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTSX()),
	}
}

// Parse extracts imports and function summaries from a single source file.
func (p *TreeSitterParser) Parse(_ context.Context, filePath string, source []byte, lang Language) (*SourceFile, error) {
	tsLang, ok := p.languages[lang]
	if !ok {
		return nil, fmt.Errorf("unsupported language: %s", lang)
	}
	if lang == LangTypeScript && usesJSX(filePath) {
		tsLang = p.tsx
	}
	g := grammars[lang]

	parser := tree_sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(tsLang); err != nil {
		return nil, fmt.Errorf("set language %s: %w", lang, err)
	}

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, fmt.Errorf("tree-sitter returned nil tree for %s", filePath)
	}
	defer tree.Close()

	x := &extraction{g: g, source: source}
	x.walk(tree.RootNode())

	return &SourceFile{
		Path:      filePath,
		Language:  lang,
		Imports:   x.imports,
		Functions: x.functions,
		EndLine:   lineCount(source),
	}, nil
}

// SupportedLanguages returns the languages this parser can handle.
func (p *TreeSitterParser) SupportedLanguages() []Language {
	return append([]Language(nil), SupportedLanguages...)
}

// Close is a no-op because parsers are created per Parse call.
func (p *TreeSitterParser) Close() error {
	return nil
}

// extraction accumulates facts for one file while walking its tree.
type extraction struct {
	g         *grammar
	source    []byte
	imports   []string
	functions []FunctionInfo
}

func (x *extraction) walk(node *tree_sitter.Node) {
	kind := node.Kind()

	if field, ok := x.g.imports[kind]; ok {
		if spec := x.importSpecifier(node, field); spec != "" {
			if kind == x.g.fromImport && strings.Trim(spec, ".") == "" {
				x.imports = append(x.imports, x.submoduleSpecifiers(node, spec)...)
			} else {
				x.imports = append(x.imports, spec)
			}
		}
	}

	if x.g.functions[kind] {
		x.functions = append(x.functions, x.function(node))
	}

	for i := uint(0); i < node.NamedChildCount(); i++ {
		if child := node.NamedChild(i); child != nil {
			x.walk(child)
		}
	}
}

func (x *extraction) importSpecifier(node *tree_sitter.Node, field string) string {
	target := node.ChildByFieldName(field)
	if target == nil {
		return ""
	}
	return strings.Trim(target.Utf8Text(x.source), "\"'`")
}

// submoduleSpecifiers expands "from . import a, b as c" into ".a" and ".b".
// A wildcard import keeps the package specifier itself.
func (x *extraction) submoduleSpecifiers(node *tree_sitter.Node, pkg string) []string {
	module := node.ChildByFieldName("module_name")
	var out []string
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		if child == nil || (module != nil && child.Id() == module.Id()) {
			continue
		}
		switch child.Kind() {
		case "dotted_name":
			out = append(out, pkg+child.Utf8Text(x.source))
		case "aliased_import":
			if name := child.ChildByFieldName("name"); name != nil {
				out = append(out, pkg+name.Utf8Text(x.source))
			}
		}
	}
	if len(out) == 0 {
		return []string{pkg}
	}
	return out
}

func (x *extraction) function(node *tree_sitter.Node) FunctionInfo {
	fn := FunctionInfo{
		Name:       x.functionName(node),
		StartLine:  int(node.StartPosition().Row) + 1,
		EndLine:    int(node.EndPosition().Row) + 1,
		Params:     x.paramCount(node),
		Complexity: 1,
	}
	for i := uint(0); i < node.NamedChildCount(); i++ {
		if child := node.NamedChild(i); child != nil {
			x.measure(child, kindOf(node), 0, &fn)
		}
	}
	return fn
}

// measure adds the complexity and nesting contributed by node, without
// descending into nested functions (they are reported on their own).
func (x *extraction) measure(node *tree_sitter.Node, parentKind string, depth int, fn *FunctionInfo) {
	kind := node.Kind()
	if x.g.functions[kind] {
		return
	}

	if x.g.branches[kind] {
		fn.Complexity++
	}
	if x.g.binaryKinds[kind] {
		if op := node.ChildByFieldName("operator"); op != nil && x.g.logicalOps[op.Utf8Text(x.source)] {
			fn.Complexity++
		}
	}

	// "else if" chains stay at the depth of the first if.
	if x.g.nesting[kind] && parentKind != "else_clause" && parentKind != kind {
		depth++
		if depth > fn.MaxNesting {
			fn.MaxNesting = depth
		}
	}

	for i := uint(0); i < node.NamedChildCount(); i++ {
		if child := node.NamedChild(i); child != nil {
			x.measure(child, kind, depth, fn)
		}
	}
}

func (x *extraction) functionName(node *tree_sitter.Node) string {
	if name := node.ChildByFieldName("name"); name != nil {
		return name.Utf8Text(x.source)
	}
	// Anonymous functions take the name of what they are bound to.
	if parent := node.Parent(); parent != nil {
		for _, field := range []string{"name", "left", "key", "pattern"} {
			if name := parent.ChildByFieldName(field); name != nil && name.Id() != node.Id() {
				return name.Utf8Text(x.source)
			}
		}
	}
	return "<anonymous>"
}

func (x *extraction) paramCount(node *tree_sitter.Node) int {
	params := node.ChildByFieldName("parameters")
	if params == nil {
		if node.ChildByFieldName("parameter") != nil {
			return 1 // single-parameter arrow function
		}
		return 0
	}

	count := 0
	for i := uint(0); i < params.NamedChildCount(); i++ {
		p := params.NamedChild(i)
		if p == nil || !x.g.params[p.Kind()] {
			continue
		}
		if x.g.skipParams[x.paramName(p)] {
			continue
		}
		count += x.namesDeclared(p)
	}
	return count
}

func (x *extraction) paramName(p *tree_sitter.Node) string {
	for _, field := range []string{"pattern", "name"} {
		if n := p.ChildByFieldName(field); n != nil {
			return n.Utf8Text(x.source)
		}
	}
	return p.Utf8Text(x.source)
}

// namesDeclared counts the names a single parameter node declares, at
// least one.
func (x *extraction) namesDeclared(p *tree_sitter.Node) int {
	if x.g.paramIdentifier == "" || p.Kind() == x.g.paramIdentifier {
		return 1
	}
	n := 0
	for i := uint(0); i < p.NamedChildCount(); i++ {
		if c := p.NamedChild(i); c != nil && c.Kind() == x.g.paramIdentifier {
			n++
		}
	}
	if n == 0 {
		return 1
	}
	return n
}

func kindOf(node *tree_sitter.Node) string {
	if node == nil {
		return ""
	}
	return node.Kind()
}

func usesJSX(filePath string) bool {
	switch path.Ext(filePath) {
	case ".tsx", ".jsx", ".js", ".mjs":
		return true
	}
	return false
}

// lineCount returns the number of the last line in source. A trailing
// newline does not start a new line.
func lineCount(source []byte) int {
	if len(source) == 0 {
		return 0
	}
	n := bytes.Count(source, []byte{'\n'})
	if source[len(source)-1] != '\n' {
		n++
	}
	return n
}
