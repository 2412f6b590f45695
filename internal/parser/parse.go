package parser

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
)

const (
	// MaxASTDepth prevents stack overflow from deeply nested code
	MaxASTDepth = 500
	// MaxASTNodes prevents memory exhaustion from large ASTs
	MaxASTNodes = 100000
)

// ParseTree parses source with the grammar GrammarFor selects for path.
// Callers own the returned tree and must Close it.
func (s *Spec) ParseTree(ctx context.Context, path string, source []byte) (*sitter.Tree, error) {
	p := sitter.NewParser()
	p.SetLanguage(s.GrammarFor(path))

	tree, err := p.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("failed to parse source code: %w", err)
	}
	if tree.RootNode() == nil {
		tree.Close()
		return nil, fmt.Errorf("failed to parse source code: no root node")
	}
	return tree, nil
}

// NodeName extracts the declared name of a function/method/class node.
// Grammars that expose a name field are handled first; C-family declarator
// chains and bare identifier children cover the rest. Returns "" when the
// node is anonymous.
func NodeName(node *sitter.Node, source []byte) string {
	if n := node.ChildByFieldName("name"); n != nil {
		return string(source[n.StartByte():n.EndByte()])
	}

	if d := node.ChildByFieldName("declarator"); d != nil {
		for cur := d; cur != nil; {
			switch cur.Type() {
			case "identifier", "field_identifier":
				return string(source[cur.StartByte():cur.EndByte()])
			}
			cur = cur.ChildByFieldName("declarator")
		}
	}

	childCount := int(node.ChildCount())
	for i := 0; i < childCount; i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "identifier", "name", "property_identifier", "field_identifier", "word":
			return string(source[child.StartByte():child.EndByte()])
		}
	}
	return ""
}
