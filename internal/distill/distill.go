// Package distill reduces source files to their structure. Level 1 keeps
// declarations and immediate docstrings and drops executable bodies; level 2
// keeps only names and their nesting. Output is byte-identical for identical
// input, level, and options.
package distill

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/codetag/codetag/internal/parser"
)

// Level selects how much detail survives distillation.
type Level int

const (
	// LevelSignatures keeps signatures and docstrings, dropping bodies.
	LevelSignatures Level = 1
	// LevelOutline keeps declaration names and nesting only.
	LevelOutline Level = 2
)

// Options configure one distillation.
type Options struct {
	Level Level

	// Anchors prefixes outline entries with their @<line> location.
	// Only meaningful at LevelOutline.
	Anchors bool
}

const bodyPlaceholder = " { /* ... */ }"

// File distills one file with the language's registered parser. The caller
// resolves the Spec; a missing parser is the caller's capability gap to
// degrade on.
func File(ctx context.Context, spec *parser.Spec, path string, source []byte, opts Options) (string, error) {
	switch opts.Level {
	case LevelSignatures:
		return signatures(ctx, spec, path, source)
	case LevelOutline:
		return outline(ctx, spec, path, source, opts.Anchors)
	default:
		return "", fmt.Errorf("invalid distillation level: %d", opts.Level)
	}
}

// signatures strips function and method bodies while preserving everything
// around them.
func signatures(ctx context.Context, spec *parser.Spec, path string, source []byte) (string, error) {
	tree, err := spec.ParseTree(ctx, path, source)
	if err != nil {
		return "", err
	}
	defer tree.Close()

	replacements := make(map[[2]uint32]string)
	if err := collectBodyReplacements(tree.RootNode(), spec, source, replacements, 0); err != nil {
		return "", err
	}
	if len(replacements) > parser.MaxASTNodes {
		return "", fmt.Errorf("too many AST nodes: %d (max: %d)", len(replacements), parser.MaxASTNodes)
	}
	return buildOutput(source, replacements)
}

func collectBodyReplacements(node *sitter.Node, spec *parser.Spec, source []byte, replacements map[[2]uint32]string, depth int) error {
	if depth > parser.MaxASTDepth {
		return fmt.Errorf("maximum AST depth exceeded: %d", parser.MaxASTDepth)
	}

	nodeType := node.Type()
	if nodeType == spec.Decls.Function || nodeType == spec.Decls.Method ||
		nodeType == "arrow_function" || nodeType == "function_expression" {
		if body := findBodyNode(node, spec.Bodies); body != nil {
			replacements[[2]uint32{body.StartByte(), body.EndByte()}] = bodyReplacement(spec, source, body)
		}
	}

	childCount := int(node.ChildCount())
	for i := 0; i < childCount; i++ {
		if child := node.Child(i); child != nil {
			if err := collectBodyReplacements(child, spec, source, replacements, depth+1); err != nil {
				return err
			}
		}
	}
	return nil
}

func findBodyNode(node *sitter.Node, bodyTypes []string) *sitter.Node {
	childCount := int(node.ChildCount())
	for i := 0; i < childCount; i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		for _, bt := range bodyTypes {
			if child.Type() == bt {
				return child
			}
		}
	}
	return nil
}

// bodyReplacement picks what stands in for a removed body. Brace languages
// get a brace placeholder. Python blocks keep their docstring, then an
// ellipsis at the block's own indentation.
func bodyReplacement(spec *parser.Spec, source []byte, body *sitter.Node) string {
	if spec.Language != "Python" {
		return bodyPlaceholder
	}

	doc := docstring(body, source)
	if doc == "" {
		return "..."
	}
	return doc + "\n" + blockIndent(source, body.StartByte()) + "..."
}

// docstring returns the leading string literal of a Python block, or "".
func docstring(block *sitter.Node, source []byte) string {
	if block.NamedChildCount() == 0 {
		return ""
	}
	first := block.NamedChild(0)
	if first == nil || first.Type() != "expression_statement" || first.NamedChildCount() == 0 {
		return ""
	}
	str := first.NamedChild(0)
	if str == nil || str.Type() != "string" {
		return ""
	}
	return string(source[str.StartByte():str.EndByte()])
}

// blockIndent recovers the whitespace prefix of the line a block starts on.
func blockIndent(source []byte, start uint32) string {
	lineStart := bytes.LastIndexByte(source[:start], '\n') + 1
	prefix := source[lineStart:start]
	if len(bytes.TrimLeft(prefix, " \t")) != 0 {
		return "    "
	}
	return string(prefix)
}

// buildOutput applies replacements in position order, skipping ranges
// already covered by an earlier one (nested bodies ride along with their
// parent).
func buildOutput(source []byte, replacements map[[2]uint32]string) (string, error) {
	if len(replacements) == 0 {
		return string(source), nil
	}

	type replacement struct {
		start, end uint32
		text       string
	}
	sorted := make([]replacement, 0, len(replacements))
	for key, val := range replacements {
		sorted = append(sorted, replacement{start: key[0], end: key[1], text: val})
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].start < sorted[j].start })

	var result strings.Builder
	result.Grow(len(source) + len(sorted)*len(bodyPlaceholder))

	lastPos := uint32(0)
	for _, r := range sorted {
		if r.end < r.start || r.end > uint32(len(source)) {
			return "", fmt.Errorf("invalid AST range: start=%d end=%d", r.start, r.end)
		}
		if r.start < lastPos {
			continue
		}
		result.Write(source[lastPos:r.start])
		result.WriteString(r.text)
		lastPos = r.end
	}
	result.Write(source[lastPos:])
	return result.String(), nil
}

// outline emits one line per named declaration, indented two spaces per
// nesting level.
func outline(ctx context.Context, spec *parser.Spec, path string, source []byte, anchors bool) (string, error) {
	tree, err := spec.ParseTree(ctx, path, source)
	if err != nil {
		return "", err
	}
	defer tree.Close()

	var b strings.Builder
	writeOutline(tree.RootNode(), spec, source, anchors, 0, 0, &b)
	return b.String(), nil
}

func writeOutline(node *sitter.Node, spec *parser.Spec, source []byte, anchors bool, nest, depth int, b *strings.Builder) {
	if depth > parser.MaxASTDepth {
		return
	}

	childNest := nest
	nodeType := node.Type()
	if nodeType == spec.Decls.Function || nodeType == spec.Decls.Method || (spec.Decls.Class != "" && nodeType == spec.Decls.Class) {
		emitted := false
		if name := parser.NodeName(node, source); name != "" {
			writeOutlineEntry(b, anchors, nest, int(node.StartPoint().Row)+1, name)
			emitted = true
		} else {
			// Grouped declarations (a Go type block, say) name their
			// children instead of themselves.
			count := int(node.NamedChildCount())
			for i := 0; i < count; i++ {
				child := node.NamedChild(i)
				if child == nil {
					continue
				}
				if name := parser.NodeName(child, source); name != "" {
					writeOutlineEntry(b, anchors, nest, int(child.StartPoint().Row)+1, name)
					emitted = true
				}
			}
		}
		if emitted {
			childNest = nest + 1
		}
	}

	childCount := int(node.ChildCount())
	for i := 0; i < childCount; i++ {
		if child := node.Child(i); child != nil {
			writeOutline(child, spec, source, anchors, childNest, depth+1, b)
		}
	}
}

func writeOutlineEntry(b *strings.Builder, anchors bool, nest, line int, name string) {
	b.WriteString(strings.Repeat("  ", nest))
	if anchors {
		fmt.Fprintf(b, "@%d ", line)
	}
	b.WriteString(name)
	b.WriteByte('\n')
}
