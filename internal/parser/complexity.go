package parser

import (
	"context"

	sitter "github.com/smacker/go-tree-sitter"
)

// Function is one named function or method with its cyclomatic complexity
// (1 plus the number of branch points in its own body, nested declarations
// excluded).
type Function struct {
	Name       string
	Line       int
	Complexity int
}

// Functions parses source and returns every named function/method found.
// Anonymous functions are skipped. Results follow source order.
func (s *Spec) Functions(ctx context.Context, path string, source []byte) ([]Function, error) {
	tree, err := s.ParseTree(ctx, path, source)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	var out []Function
	s.collectFunctions(tree.RootNode(), source, 0, &out)
	return out, nil
}

func (s *Spec) collectFunctions(node *sitter.Node, source []byte, depth int, out *[]Function) {
	if depth > MaxASTDepth {
		return
	}

	nodeType := node.Type()
	if nodeType == s.Decls.Function || nodeType == s.Decls.Method {
		if name := NodeName(node, source); name != "" {
			*out = append(*out, Function{
				Name:       name,
				Line:       int(node.StartPoint().Row) + 1,
				Complexity: 1 + s.countBranches(node, 0),
			})
		}
	}

	childCount := int(node.ChildCount())
	for i := 0; i < childCount; i++ {
		if child := node.Child(i); child != nil {
			s.collectFunctions(child, source, depth+1, out)
		}
	}
}

// countBranches counts branch nodes beneath node without descending into
// nested function declarations, which score separately.
func (s *Spec) countBranches(node *sitter.Node, depth int) int {
	if depth > MaxASTDepth {
		return 0
	}

	count := 0
	childCount := int(node.ChildCount())
	for i := 0; i < childCount; i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		childType := child.Type()
		if childType == s.Decls.Function || childType == s.Decls.Method {
			continue
		}
		for _, b := range s.Branches {
			if childType == b {
				count++
				break
			}
		}
		count += s.countBranches(child, depth+1)
	}
	return count
}
