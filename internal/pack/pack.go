// Package pack concatenates repository files into a single budgeted stream.
// Files are emitted in walk order behind path headers; the budget is owned
// by the sequential emission loop, so output is deterministic and a file is
// never cut mid-content.
package pack

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/codetag/codetag/internal/classify"
	"github.com/codetag/codetag/internal/distill"
	"github.com/codetag/codetag/internal/ignore"
	"github.com/codetag/codetag/internal/parser"
	"github.com/codetag/codetag/internal/walk"
)

// Defaults for the CLI surface.
const (
	DefaultMaxTokens     = 250000
	DefaultMaxFileSizeKB = 100
)

// Format selects the output envelope.
type Format string

const (
	// FormatRaw emits file content directly under each path header.
	FormatRaw Format = "raw"

	// FormatMarkdown wraps each file in a fenced code block tagged with the
	// classifier's language.
	FormatMarkdown Format = "markdown"
)

// Options control a pack run.
type Options struct {
	IncludeHidden     bool
	ExcludeDirs       []string
	ExcludePatterns   []string
	ExcludeExtensions []string

	// MaxTokens is the overall budget. Zero or negative selects the default.
	MaxTokens int

	// MaxFileSizeKB is the per-file input ceiling. Zero or negative selects
	// the default.
	MaxFileSizeKB int

	Format Format

	// ExactTokenizer prices files with real BPE counts instead of the
	// byte-length estimate.
	ExactTokenizer bool

	// Level enables distillation of each file before packing. Zero packs
	// raw content.
	Level distill.Level

	// Anchors prefixes retained declarations with @line markers at outline
	// level.
	Anchors bool
}

// Result summarises a pack run. Emitted, Skipped, and Omitted partition the
// candidate files: everything examined lands in exactly one list.
type Result struct {
	// Emitted files made it into the output, in emission order.
	Emitted []string

	// Skipped files exceeded the per-file ceiling.
	Skipped []string

	// Omitted files did not fit the remaining budget. The first file that
	// fails to fit stops packing; everything after it lands here too, except
	// over-ceiling files, which stay skipped.
	Omitted []string

	// TokensUsed is the total cost consumed, headers included.
	TokensUsed int

	// Warnings aggregates per-file degradations, sorted.
	Warnings []string
}

// Run walks root and writes the pack to w. The returned error is fatal
// (bad root, cancellation, write failure); per-file problems degrade into
// Result.Warnings.
func Run(ctx context.Context, root string, w io.Writer, opts Options, logger *logrus.Logger) (*Result, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("cannot access path: %w", err)
	}
	budget := opts.MaxTokens
	if budget <= 0 {
		budget = DefaultMaxTokens
	}
	ceiling := int64(opts.MaxFileSizeKB) * 1024
	if ceiling <= 0 {
		ceiling = DefaultMaxFileSizeKB * 1024
	}
	format := opts.Format
	if format == "" {
		format = FormatRaw
	}

	eng := ignore.New(absRoot, ignore.Options{
		ExcludeDirs:     opts.ExcludeDirs,
		ExcludePatterns: opts.ExcludePatterns,
	})
	entries, walkWarnings, err := walk.Collect(ctx, absRoot, eng, walk.Options{IncludeHidden: opts.IncludeHidden})
	if err != nil {
		return nil, err
	}

	excludeExts := extensionSet(opts.ExcludeExtensions)
	var files []walk.Entry
	for _, e := range entries {
		if e.Dir || excludeExts[strings.ToLower(path.Ext(e.Rel))] {
			continue
		}
		files = append(files, e)
	}

	tok, tokWarning := newTokenizer(opts.ExactTokenizer)
	res := &Result{
		Emitted: []string{},
		Skipped: []string{},
		Omitted: []string{},
	}
	res.Warnings = append(res.Warnings, eng.Warnings()...)
	res.Warnings = append(res.Warnings, walkWarnings...)
	if tokWarning != "" {
		res.Warnings = append(res.Warnings, tokWarning)
		logger.Warn(tokWarning)
	}

	logger.WithFields(logrus.Fields{
		"path":   absRoot,
		"files":  len(files),
		"budget": budget,
	}).Debug("Starting pack")

	p := &packer{
		root:    absRoot,
		format:  format,
		level:   opts.Level,
		anchors: opts.Anchors,
	}

	remaining := budget
	for i, e := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if e.Size > ceiling {
			res.Skipped = append(res.Skipped, e.Rel)
			continue
		}

		unit, warning, ok := p.render(ctx, e.Rel)
		if warning != "" {
			res.Warnings = append(res.Warnings, warning)
		}
		if !ok {
			continue
		}

		cost := tok.Count(unit)
		if cost > remaining {
			// Budget exhausted: this file and everything after it is out.
			// Over-ceiling stragglers still count as skipped.
			for _, rest := range files[i:] {
				if rest.Size > ceiling {
					res.Skipped = append(res.Skipped, rest.Rel)
				} else {
					res.Omitted = append(res.Omitted, rest.Rel)
				}
			}
			break
		}
		if _, err := io.WriteString(w, unit); err != nil {
			return nil, fmt.Errorf("writing pack: %w", err)
		}
		remaining -= cost
		res.TokensUsed += cost
		res.Emitted = append(res.Emitted, e.Rel)
	}

	sort.Strings(res.Warnings)
	logger.WithFields(logrus.Fields{
		"emitted": len(res.Emitted),
		"skipped": len(res.Skipped),
		"omitted": len(res.Omitted),
		"tokens":  res.TokensUsed,
	}).Debug("Pack complete")
	return res, nil
}

type packer struct {
	root    string
	format  Format
	level   distill.Level
	anchors bool
}

// render produces the budgetable unit for one file: header plus body, fenced
// for markdown. ok is false when the file cannot contribute (unreadable or
// binary); a warning explains why.
func (p *packer) render(ctx context.Context, rel string) (unit, warning string, ok bool) {
	content, err := os.ReadFile(filepath.Join(p.root, filepath.FromSlash(rel)))
	if err != nil {
		return "", "access denied: " + rel, false
	}

	prefix := content
	if len(prefix) > classify.SampleSize {
		prefix = prefix[:classify.SampleSize]
	}
	cls := classify.Detect(rel, prefix)
	if cls.Binary {
		return "", "not text: " + rel, false
	}

	body := content
	if p.level > 0 {
		distilled, fallback := p.distillBody(ctx, rel, cls.Language, content)
		body = distilled
		warning = fallback
	}

	var b strings.Builder
	b.Grow(len(body) + len(rel) + 32)
	fmt.Fprintf(&b, "--- FILE: %s ---\n", rel)
	if p.format == FormatMarkdown {
		b.WriteString("```")
		b.WriteString(fenceTag(cls.Language))
		b.WriteByte('\n')
		b.Write(body)
		if len(body) > 0 && body[len(body)-1] != '\n' {
			b.WriteByte('\n')
		}
		b.WriteString("```\n")
	} else {
		b.Write(body)
		if len(body) > 0 && body[len(body)-1] != '\n' {
			b.WriteByte('\n')
		}
	}
	b.WriteByte('\n')
	return b.String(), warning, true
}

// distillBody condenses one file, falling back to raw content when no
// parser serves the language.
func (p *packer) distillBody(ctx context.Context, rel, language string, content []byte) ([]byte, string) {
	spec, found := parser.Lookup(language)
	if !found {
		return content, fmt.Sprintf("no parser for %s: %s", language, rel)
	}
	out, err := distill.File(ctx, spec, rel, content, distill.Options{Level: p.level, Anchors: p.anchors})
	if err != nil {
		return content, fmt.Sprintf("no parser for %s: %s", language, rel)
	}
	return []byte(out), ""
}

func extensionSet(exts []string) map[string]bool {
	set := make(map[string]bool, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		set[e] = true
	}
	return set
}

// fenceTag maps a classifier language to a markdown fence tag.
func fenceTag(language string) string {
	switch language {
	case classify.Unknown:
		return ""
	case "C++":
		return "cpp"
	case "C/C++ Header":
		return "c"
	case "C#":
		return "csharp"
	}
	return strings.ToLower(language)
}
