// Package parser holds the per-language syntax parsing capability: a
// registry of tree-sitter grammars with the node-type tables the distiller
// and complexity analysis need. Languages register at startup; a language
// with no entry is a capability gap the caller degrades on, never an error.
package parser

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// NodeTypes names the declaration node types of one grammar.
type NodeTypes struct {
	Function string
	Method   string
	Class    string
}

// Spec is one registered language: its grammar plus the node-type tables
// used to walk it. AltGrammars overrides the grammar per file extension
// (TSX files share the TypeScript language but parse with a different
// grammar).
type Spec struct {
	Language    string
	Grammar     *sitter.Language
	AltGrammars map[string]*sitter.Language
	Decls       NodeTypes
	Bodies      []string
	Branches    []string
}

// GrammarFor picks the grammar for a specific file path.
func (s *Spec) GrammarFor(path string) *sitter.Language {
	if len(s.AltGrammars) > 0 {
		if g, ok := s.AltGrammars[strings.ToLower(filepath.Ext(path))]; ok {
			return g
		}
	}
	return s.Grammar
}

var (
	// specs maps a classifier language name to its parser. Registration
	// happens in init; lookups after startup are read-only.
	specs = make(map[string]*Spec)

	// disabledLanguages is parsed before any init function runs so that
	// registration can consult it.
	disabledLanguages = parseDisabledLanguages()
)

// parseDisabledLanguages reads CODETAG_DISABLED_LANGUAGES, a comma-separated
// list of language names whose parsers should not register. Useful for
// reproducing capability-gap behaviour without rebuilding.
func parseDisabledLanguages() map[string]bool {
	disabled := make(map[string]bool)
	env := os.Getenv("CODETAG_DISABLED_LANGUAGES")
	if env == "" {
		return disabled
	}
	for _, name := range strings.Split(env, ",") {
		name = normalise(name)
		if name != "" {
			disabled[name] = true
		}
	}
	return disabled
}

func normalise(name string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), "_", "-"))
}

// Register adds a language spec unless it is disabled via the environment.
func Register(spec *Spec) {
	if disabledLanguages[normalise(spec.Language)] {
		return
	}
	specs[spec.Language] = spec
}

// Lookup returns the registered Spec for a classifier language name.
func Lookup(language string) (*Spec, bool) {
	spec, ok := specs[language]
	return spec, ok
}

// Languages returns the registered language names, sorted.
func Languages() []string {
	names := make([]string, 0, len(specs))
	for name := range specs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
