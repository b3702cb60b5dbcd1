package graph

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar"
	"golang.org/x/sync/errgroup"
)

// extToLanguage maps file extensions to parser languages.
var extToLanguage = map[string]Language{
	".go":  LangGo,
	".ts":  LangTypeScript,
	".tsx": LangTypeScript,
	".js":  LangTypeScript,
	".jsx": LangTypeScript,
	".mjs": LangTypeScript,
	".py":  LangPython,
	".rs":  LangRust,
}

// skippedDirs are never descended into.
var skippedDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"vendor":       true,
	"dist":         true,
	"build":        true,
	"target":       true,
	"__pycache__":  true,
}

// LanguageForPath returns the language a file is parsed as, based on its
// extension.
func LanguageForPath(p string) (Language, bool) {
	lang, ok := extToLanguage[strings.ToLower(path.Ext(p))]
	return lang, ok
}

// Loader walks an analysis root and parses every supported source file.
type Loader struct {
	parser    Parser
	logger    *slog.Logger
	exclude   []string
	languages map[Language]bool
	limit     int
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithLoaderLogger sets the logger used for skipped-file diagnostics.
func WithLoaderLogger(l *slog.Logger) LoaderOption {
	return func(ld *Loader) { ld.logger = l }
}

// WithExclude adds glob patterns (doublestar syntax, matched against
// slash-separated paths relative to the root) to skip. A pattern without
// glob characters also excludes everything below it.
func WithExclude(patterns ...string) LoaderOption {
	return func(ld *Loader) { ld.exclude = append(ld.exclude, patterns...) }
}

// WithLanguages restricts loading to the given languages. An empty list
// keeps every supported language.
func WithLanguages(langs ...Language) LoaderOption {
	return func(ld *Loader) {
		if len(langs) == 0 {
			return
		}
		ld.languages = make(map[Language]bool, len(langs))
		for _, l := range langs {
			ld.languages[Language(strings.ToLower(string(l)))] = true
		}
	}
}

// WithParseConcurrency caps the number of files parsed at once.
func WithParseConcurrency(n int) LoaderOption {
	return func(ld *Loader) {
		if n > 0 {
			ld.limit = n
		}
	}
}

// NewLoader creates a Loader that parses with p.
func NewLoader(p Parser, opts ...LoaderOption) *Loader {
	ld := &Loader{
		parser:    p,
		logger:    slog.Default(),
		languages: make(map[Language]bool, len(SupportedLanguages)),
		limit:     runtime.NumCPU(),
	}
	for _, l := range SupportedLanguages {
		ld.languages[l] = true
	}
	for _, opt := range opts {
		opt(ld)
	}
	return ld
}

type candidate struct {
	abs  string
	rel  string
	lang Language
}

// Load returns the parsed source files under root, sorted by path.
// Unreadable or unparseable files are skipped.
func (ld *Loader) Load(ctx context.Context, root string) ([]SourceFile, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("cannot access root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root is not a directory: %s", root)
	}

	var candidates []candidate
	walkErr := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			ld.logger.Debug("skipping inaccessible path", "path", p, "err", err)
			return nil
		}
		rel, relErr := filepath.Rel(root, p)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if rel != "." && (skippedDirs[d.Name()] || ld.excluded(rel)) {
				return filepath.SkipDir
			}
			return nil
		}

		lang, ok := LanguageForPath(rel)
		if !ok || !ld.languages[lang] || ld.excluded(rel) {
			return nil
		}
		candidates = append(candidates, candidate{abs: p, rel: rel, lang: lang})
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("walk: %w", walkErr)
	}

	parsed := make([]*SourceFile, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ld.limit)

	for i, c := range candidates {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			source, err := os.ReadFile(c.abs)
			if err != nil {
				ld.logger.Debug("skipping unreadable file", "file", c.rel, "err", err)
				return nil
			}
			sf, err := ld.parser.Parse(gctx, c.rel, source, c.lang)
			if err != nil {
				ld.logger.Debug("skipping unparseable file", "file", c.rel, "err", err)
				return nil
			}
			parsed[i] = sf
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	files := make([]SourceFile, 0, len(parsed))
	for _, sf := range parsed {
		if sf != nil {
			files = append(files, *sf)
		}
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

func (ld *Loader) excluded(rel string) bool {
	for _, pattern := range ld.exclude {
		pattern = strings.TrimSuffix(filepath.ToSlash(pattern), "/")
		if pattern == "" {
			continue
		}
		if rel == pattern || strings.HasPrefix(rel, pattern+"/") {
			return true
		}
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
		if ok, _ := doublestar.Match(pattern, path.Base(rel)); ok {
			return true
		}
	}
	return false
}
