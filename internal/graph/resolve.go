package graph

import (
	"bufio"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// Compile-time assertions: *Resolver satisfies ImportResolver and
// MultiResolver.
var (
	_ ImportResolver = (*Resolver)(nil)
	_ MultiResolver  = (*Resolver)(nil)
)

// Resolver rewrites raw import specifiers into module paths that match
// SourceFile.Path values. It is built once per analysis run from the set of
// known module paths. Package-ecosystem imports are never resolved.
type Resolver struct {
	repoRoot  string
	fileSet   map[string]bool
	dirIndex  map[string][]string
	goModPath string
}

// NewResolver builds a Resolver from the repository root and the set of
// known repo-relative, slash-separated module paths. The root go.mod, if
// present, supplies the module path that Go imports are rooted at.
func NewResolver(repoRoot string, knownFiles []string) *Resolver {
	r := &Resolver{
		repoRoot: repoRoot,
		fileSet:  make(map[string]bool, len(knownFiles)),
		dirIndex: make(map[string][]string),
	}

	for _, f := range knownFiles {
		r.fileSet[f] = true
		dir := path.Dir(f)
		r.dirIndex[dir] = append(r.dirIndex[dir], f)
	}
	for dir := range r.dirIndex {
		sort.Strings(r.dirIndex[dir])
	}

	r.scanGoMod()
	return r
}

// SetGoModulePath overrides the module path read from go.mod.
func (r *Resolver) SetGoModulePath(modPath string) {
	r.goModPath = modPath
}

// IsLocal reports whether specifier is relative or rooted in the project.
func (r *Resolver) IsLocal(specifier string, lang Language) bool {
	switch lang {
	case LangTypeScript:
		return strings.HasPrefix(specifier, "./") ||
			strings.HasPrefix(specifier, "../") ||
			strings.HasPrefix(specifier, "/") ||
			specifier == "." || specifier == ".."
	case LangPython:
		return strings.HasPrefix(specifier, ".")
	case LangRust:
		return strings.HasPrefix(specifier, "crate::") ||
			strings.HasPrefix(specifier, "self::") ||
			strings.HasPrefix(specifier, "super::")
	case LangGo:
		return r.goModPath != "" &&
			(specifier == r.goModPath || strings.HasPrefix(specifier, r.goModPath+"/"))
	default:
		return false
	}
}

// Resolve maps a local specifier imported from fromPath to a known module
// path. It returns false when nothing matches.
func (r *Resolver) Resolve(specifier, fromPath string, lang Language) (string, bool) {
	switch lang {
	case LangTypeScript:
		return r.resolveTS(specifier, fromPath)
	case LangGo:
		return r.resolveGo(specifier)
	case LangPython:
		return r.resolvePython(specifier, fromPath)
	case LangRust:
		return r.resolveRust(specifier, fromPath)
	default:
		return "", false
	}
}

// ResolveAll is Resolve for specifiers that may name several modules. A Go
// package import yields every non-test file of the package, so the
// package's afferent coupling is spread over all of its files.
func (r *Resolver) ResolveAll(specifier, fromPath string, lang Language) []string {
	if lang == LangGo {
		return r.goPackageFiles(specifier)
	}
	if target, ok := r.Resolve(specifier, fromPath, lang); ok {
		return []string{target}
	}
	return nil
}

// --- TypeScript / JavaScript ---

var tsExtensions = []string{
	".ts", ".tsx", ".js", ".jsx", ".mjs",
	"/index.ts", "/index.tsx", "/index.js", "/index.jsx",
}

func (r *Resolver) resolveTS(importPath, sourceFile string) (string, bool) {
	var base string
	if strings.HasPrefix(importPath, "/") {
		base = path.Clean(strings.TrimPrefix(importPath, "/"))
	} else {
		base = path.Join(path.Dir(sourceFile), importPath)
	}
	if strings.HasPrefix(base, "..") {
		return "", false // escapes the analysis root
	}
	// "./x.js" written for a TypeScript source that compiles to x.js.
	if resolved, ok := r.probeFile(base, tsExtensions); ok {
		return resolved, true
	}
	if ext := path.Ext(base); ext == ".js" || ext == ".jsx" || ext == ".mjs" {
		return r.probeFile(strings.TrimSuffix(base, ext), tsExtensions)
	}
	return "", false
}

// --- Go ---

// resolveGo picks the first non-test file of the package as its
// representative.
func (r *Resolver) resolveGo(importPath string) (string, bool) {
	files := r.goPackageFiles(importPath)
	if len(files) == 0 {
		return "", false
	}
	return files[0], true
}

// goPackageFiles returns the sorted non-test source files of a package.
func (r *Resolver) goPackageFiles(importPath string) []string {
	relDir := strings.TrimPrefix(strings.TrimPrefix(importPath, r.goModPath), "/")
	if relDir == "" {
		relDir = "."
	}

	var out []string
	for _, f := range r.dirIndex[relDir] {
		if strings.HasSuffix(f, ".go") && !strings.HasSuffix(f, "_test.go") {
			out = append(out, f)
		}
	}
	return out
}

// --- Python ---

func (r *Resolver) resolvePython(importPath, sourceFile string) (string, bool) {
	dots := len(importPath) - len(strings.TrimLeft(importPath, "."))
	modulePart := importPath[dots:]

	// One dot is the current package, each further dot goes one level up.
	baseDir := path.Dir(sourceFile)
	for i := 1; i < dots; i++ {
		baseDir = path.Dir(baseDir)
	}

	if modulePart == "" {
		return r.probeFile(path.Join(baseDir, "__init__"), []string{".py"})
	}

	relPath := strings.ReplaceAll(modulePart, ".", "/")
	return r.probeFile(path.Join(baseDir, relPath), []string{".py", "/__init__.py"})
}

// --- Rust ---

var rsExtensions = []string{".rs", "/mod.rs"}

func (r *Resolver) resolveRust(importPath, sourceFile string) (string, bool) {
	// "crate::model::{Repository, User}" -> "crate::model"
	if idx := strings.Index(importPath, "::{"); idx != -1 {
		importPath = importPath[:idx]
	}

	var candidates []string
	switch {
	case strings.HasPrefix(importPath, "crate::"):
		rel := strings.ReplaceAll(strings.TrimPrefix(importPath, "crate::"), "::", "/")
		if srcDir := findCrateRoot(sourceFile); srcDir != "" {
			candidates = append(candidates, path.Join(srcDir, rel))
		}
		candidates = append(candidates, path.Join("src", rel), rel)
	case strings.HasPrefix(importPath, "self::"):
		rel := strings.ReplaceAll(strings.TrimPrefix(importPath, "self::"), "::", "/")
		candidates = append(candidates, path.Join(path.Dir(sourceFile), rel))
	case strings.HasPrefix(importPath, "super::"):
		rel := strings.ReplaceAll(strings.TrimPrefix(importPath, "super::"), "::", "/")
		candidates = append(candidates, path.Join(path.Dir(path.Dir(sourceFile)), rel))
	default:
		return "", false
	}

	// "use crate::a::b::Item" names an item inside module a/b; walk up until a
	// module file matches.
	for _, base := range candidates {
		for cur := base; cur != "." && cur != "/" && cur != ""; cur = path.Dir(cur) {
			if resolved, ok := r.probeFile(cur, rsExtensions); ok {
				return resolved, true
			}
		}
	}
	return "", false
}

// findCrateRoot walks up from a file path to the nearest "src" directory,
// the conventional crate source root.
func findCrateRoot(filePath string) string {
	dir := path.Dir(filePath)
	for dir != "." && dir != "/" && dir != "" {
		if path.Base(dir) == "src" {
			return dir
		}
		dir = path.Dir(dir)
	}
	return ""
}

// --- Shared helpers ---

// probeFile checks if basePath, or basePath with one of the extensions
// appended, is a known module. No filesystem I/O.
func (r *Resolver) probeFile(basePath string, extensions []string) (string, bool) {
	if r.fileSet[basePath] {
		return basePath, true
	}
	for _, ext := range extensions {
		if candidate := basePath + ext; r.fileSet[candidate] {
			return candidate, true
		}
	}
	return "", false
}

func (r *Resolver) scanGoMod() {
	if r.repoRoot == "" {
		return
	}
	f, err := os.Open(filepath.Join(r.repoRoot, "go.mod"))
	if err != nil {
		return
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "module ") {
			r.goModPath = strings.Trim(strings.TrimSpace(strings.TrimPrefix(line, "module")), `"`)
			return
		}
	}
}
