package graph

import "context"

// Parser extracts the structural facts of a single source file.
// Implementations: TreeSitterParser (production), stub parsers in tests.
type Parser interface {
	// Parse extracts imports and function summaries from one source file.
	// path is the repo-relative module path; lang selects the grammar.
	Parse(ctx context.Context, path string, source []byte, lang Language) (*SourceFile, error)

	// SupportedLanguages returns the languages this parser can handle.
	SupportedLanguages() []Language

	// Close releases parser resources.
	Close() error
}
