// Package ignore resolves which repository paths are excluded from analysis.
// It layers standard ignore-file semantics (per-directory scopes, negation,
// directory-only patterns) over built-in defaults, with user-supplied
// exclusions taking precedence over both.
package ignore

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// IgnoreFileName is the per-directory rules file read at every scope.
const IgnoreFileName = ".gitignore"

// builtinRules are always active at the lowest precedence, so any rules file
// or user pattern can override them. Trailing separators keep them from ever
// matching plain files.
var builtinRules = []string{
	".git/",
	".hg/",
	".svn/",
	"node_modules/",
	"__pycache__/",
	".venv/",
	"venv/",
	".pytest_cache/",
	".mypy_cache/",
	".idea/",
	".vscode/",
	".DS_Store",
	"Thumbs.db",
}

// Options configure an Engine beyond the rules files it discovers.
type Options struct {
	// ExcludeDirs names directories pruned wherever they appear.
	ExcludeDirs []string

	// ExcludePatterns are glob patterns (doublestar syntax) excluded at the
	// highest precedence. Patterns without a separator match base names.
	ExcludePatterns []string

	// NoBuiltins disables the built-in default rules.
	NoBuiltins bool
}

// Engine answers include/exclude for repository-relative paths. Scopes are
// pushed root to leaf as the walk descends; within the accumulated rule list
// the last matching pattern wins, which makes deeper scopes and later lines
// take precedence. The engine is not safe for concurrent use.
type Engine struct {
	root        string
	patterns    []gitignore.Pattern
	excludeDirs map[string]bool
	userGlobs   []string
	warnings    []string
}

// New builds an Engine rooted at root. Invalid user patterns are dropped
// with a warning rather than failing the run.
func New(root string, opts Options) *Engine {
	e := &Engine{
		root:        root,
		excludeDirs: make(map[string]bool, len(opts.ExcludeDirs)),
	}
	for _, d := range opts.ExcludeDirs {
		d = strings.Trim(strings.TrimSpace(d), "/")
		if d != "" {
			e.excludeDirs[d] = true
		}
	}
	for _, p := range opts.ExcludePatterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !doublestar.ValidatePattern(p) {
			e.warnings = append(e.warnings, fmt.Sprintf("invalid exclude pattern: %s", p))
			continue
		}
		e.userGlobs = append(e.userGlobs, p)
	}
	if !opts.NoBuiltins {
		for _, r := range builtinRules {
			e.patterns = append(e.patterns, gitignore.ParsePattern(r, nil))
		}
	}
	return e
}

// EnterDir loads the rules file of the directory at rel (slash-separated,
// "" for the root) into the engine. The walker calls this once per admitted
// directory, parents before children. A rules file that cannot be read or is
// not text is skipped with a warning; shallower scopes and built-ins still
// apply below it.
func (e *Engine) EnterDir(rel string) {
	name := filepath.Join(e.root, filepath.FromSlash(rel), IgnoreFileName)
	content, err := os.ReadFile(name)
	if err != nil {
		if !os.IsNotExist(err) {
			e.warnings = append(e.warnings, fmt.Sprintf("access denied: %s", joinRel(rel, IgnoreFileName)))
		}
		return
	}
	if bytes.IndexByte(content, 0x00) >= 0 {
		e.warnings = append(e.warnings, fmt.Sprintf("not text: %s", joinRel(rel, IgnoreFileName)))
		return
	}

	var domain []string
	if rel != "" {
		domain = strings.Split(rel, "/")
	}
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}
		e.patterns = append(e.patterns, gitignore.ParsePattern(line, domain))
	}
}

// Match reports whether the path at rel (slash-separated, relative to the
// root) is ignored. isDir distinguishes directories so that directory-only
// rules never match files. The root itself is never ignored.
func (e *Engine) Match(rel string, isDir bool) bool {
	if rel == "" {
		return false
	}
	segments := strings.Split(rel, "/")

	// User exclusions sit above everything and cannot be negated.
	for i, seg := range segments {
		if e.excludeDirs[seg] && (isDir || i < len(segments)-1) {
			return true
		}
	}
	base := segments[len(segments)-1]
	for _, g := range e.userGlobs {
		target := rel
		if !strings.Contains(g, "/") {
			target = base
		}
		if ok, _ := doublestar.Match(g, target); ok {
			return true
		}
	}

	// Rules files and built-ins: last match wins.
	for i := len(e.patterns) - 1; i >= 0; i-- {
		switch e.patterns[i].Match(segments, isDir) {
		case gitignore.Exclude:
			return true
		case gitignore.Include:
			return false
		}
	}
	return false
}

// Warnings returns the soft failures collected so far, in discovery order.
func (e *Engine) Warnings() []string {
	return e.warnings
}

func joinRel(rel, name string) string {
	if rel == "" {
		return name
	}
	return rel + "/" + name
}
